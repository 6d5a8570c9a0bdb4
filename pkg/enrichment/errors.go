package enrichment

import (
	"errors"
	"fmt"
)

// TransientError marks a service failure worth retrying, a timeout or
// an overloaded upstream.
type TransientError struct {
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient enrichment failure: %s", e.Err)
	}
	return fmt.Sprintf("transient enrichment failure: status %d", e.Status)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// FatalError marks a failure no retry can fix, an invalid key or an
// exhausted quota. It aborts the whole enrichment stage.
type FatalError struct {
	Status int
	Err    error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fatal enrichment failure: %s", e.Err)
	}
	return fmt.Sprintf("fatal enrichment failure: status %d", e.Status)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
