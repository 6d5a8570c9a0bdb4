package linienfahrplan

import (
	"errors"
	"fmt"
)

// ErrNoValidLine marks an export for a line number that carries no
// timetable data. The planning system still emits a document for it,
// containing only a status message.
var ErrNoValidLine = errors.New("document contains no valid line")

// ErrNoRotations marks an export whose line exists but has no vehicle
// rotations scheduled.
var ErrNoRotations = errors.New("document contains no rotations")

// IsSkippable reports whether err identifies one of the placeholder
// documents that should be skipped rather than treated as a failure.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrNoValidLine) || errors.Is(err, ErrNoRotations)
}

// MalformedDocumentError describes a document that was parsed but does
// not satisfy the schema. Path locates the offending element.
type MalformedDocumentError struct {
	Path   string
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document at %s: %s", e.Path, e.Reason)
}
