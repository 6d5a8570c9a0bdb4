package graph

import (
	"errors"
	"fmt"
)

// DanglingReferenceError records a cross reference whose target does
// not exist in the document.
type DanglingReferenceError struct {
	Entity   string
	EntityID int64
	Field    string
	TargetID int64
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%s %d references missing %s %d", e.Entity, e.EntityID, e.Field, e.TargetID)
}

// OrderViolation records a rotation segment whose trips are not in
// non-decreasing departure order.
type OrderViolation struct {
	RotationID     int64
	SegmentOrdinal int64
	TripID         int64
}

func (v *OrderViolation) Error() string {
	return fmt.Sprintf("rotation %d segment %d: trip %d departs before its predecessor",
		v.RotationID, v.SegmentOrdinal, v.TripID)
}

// Report collects everything the resolver had to leave out or flag.
// In best effort mode the excluded entities are dropped from the
// network but always accounted for here.
type Report struct {
	Dangling        []*DanglingReferenceError
	OrderViolations []*OrderViolation

	ExcludedTrips     []int64
	ExcludedRotations []int64
}

func (report *Report) Clean() bool {
	return len(report.Dangling) == 0 && len(report.OrderViolations) == 0
}

// Err folds every recorded issue into a single error, or nil when the
// resolution was clean.
func (report *Report) Err() error {
	var errs []error
	for _, dangling := range report.Dangling {
		errs = append(errs, dangling)
	}
	for _, violation := range report.OrderViolations {
		errs = append(errs, violation)
	}
	return errors.Join(errs...)
}
