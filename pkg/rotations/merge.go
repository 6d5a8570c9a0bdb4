package rotations

import (
	"fmt"
	"time"

	"github.com/netzplan/netzplan/pkg/graph"
	"github.com/netzplan/netzplan/pkg/util"

	"github.com/jinzhu/copier"
)

const secondsPerDay = 86400

// sameHalt treats two points as one location when they share a stop
// area, otherwise the points themselves must match.
func sameHalt(a *graph.NetworkPoint, b *graph.NetworkPoint) bool {
	if a == nil || b == nil {
		return false
	}
	if a.StopArea != nil && b.StopArea != nil {
		return a.StopArea.ID == b.StopArea.ID
	}
	return a.ID == b.ID
}

// mergeState tracks a merged rotation under construction together
// with the first rotation of its chain, whose operating day anchors
// the time shift for every later continuation.
type mergeState struct {
	merged *graph.VehicleRotation
	head   *graph.VehicleRotation
}

// mergeSplitRotations pairs rotations that end away from their depot
// with a rotation of the same depot and vehicle type starting at that
// location on the next calendar day. A duty split over more than two
// days chains: the tail of one pair may head the next day's pair.
// Pairs are always reported, and only rewritten when the policy
// explicitly allows merging.
func (assembler *Assembler) mergeSplitRotations(rotations []*graph.VehicleRotation, report *Report) ([]*graph.VehicleRotation, error) {
	usedAsSecond := map[*graph.VehicleRotation]bool{}
	chains := map[*graph.VehicleRotation]*mergeState{}
	mergedInto := map[*graph.VehicleRotation]*graph.VehicleRotation{}

	result := make([]*graph.VehicleRotation, 0, len(rotations))
	result = append(result, rotations...)

	for i, first := range rotations {
		lastPoint := first.LastPoint()
		if lastPoint == nil || first.Depot == nil || sameHalt(lastPoint, first.Depot) {
			continue
		}

		for _, second := range rotations[i+1:] {
			if usedAsSecond[second] || second.Depot == nil {
				continue
			}
			if second.Depot.ID != first.Depot.ID || second.VehicleType != first.VehicleType {
				continue
			}
			if !second.OperatingDay.Equal(first.OperatingDay.AddDate(0, 0, 1)) {
				continue
			}
			if !sameHalt(second.FirstPoint(), lastPoint) {
				continue
			}

			suggestion := &MergeSuggestion{
				FirstRotationID:  first.ID,
				SecondRotationID: second.ID,
				DepotID:          first.Depot.ID,
				VehicleType:      first.VehicleType,
				LocationID:       lastPoint.ID,
				LocationName:     lastPoint.LongName,
				FirstDay:         first.OperatingDay,
				SecondDay:        second.OperatingDay,
				DayGap:           1,
			}
			report.MergeSuggestions = append(report.MergeSuggestions, suggestion)
			usedAsSecond[second] = true

			if assembler.Policy.AutoMerge {
				accepted, err := assembler.Policy.acceptMerge(suggestion)
				if err != nil {
					return nil, err
				}
				if accepted {
					if err := applyMerge(first, second, suggestion, report, chains, mergedInto); err != nil {
						return nil, err
					}
				}
			}

			break
		}
	}

	if len(mergedInto) == 0 {
		return result, nil
	}

	var rewritten []*graph.VehicleRotation
	for _, rotation := range result {
		replacement, found := mergedInto[rotation]
		if !found {
			rewritten = append(rewritten, rotation)
			continue
		}
		if replacement != nil {
			rewritten = append(rewritten, replacement)
		}
	}

	return rewritten, nil
}

// applyMerge folds second into first's chain. When first is already
// part of a merged rotation the continuation appends there, shifted
// relative to the operating day of the chain's head.
func applyMerge(first *graph.VehicleRotation, second *graph.VehicleRotation, suggestion *MergeSuggestion, report *Report, chains map[*graph.VehicleRotation]*mergeState, mergedInto map[*graph.VehicleRotation]*graph.VehicleRotation) error {
	state, chained := chains[first]

	source := first
	base := first
	if chained {
		source = state.merged
		base = state.head
	}

	merged, err := mergeRotations(source, second, daysBetween(base.OperatingDay, second.OperatingDay))
	if err != nil {
		return err
	}

	suggestion.Applied = true
	report.AppliedMerges++

	if !chained {
		state = &mergeState{head: first}
	}
	state.merged = merged
	chains[second] = state

	mergedInto[state.head] = merged
	mergedInto[second] = nil

	return nil
}

func daysBetween(from time.Time, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// mergeRotations builds the continuous rotation out of deep copies,
// the resolved snapshot itself is never mutated. The second
// rotation's times shift onto the first rotation's operating day.
func mergeRotations(first *graph.VehicleRotation, second *graph.VehicleRotation, dayGap int) (*graph.VehicleRotation, error) {
	merged := &graph.VehicleRotation{}
	if err := copier.CopyWithOption(merged, first, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copying rotation %d: %w", first.ID, err)
	}

	tail := &graph.VehicleRotation{}
	if err := copier.CopyWithOption(tail, second, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copying rotation %d: %w", second.ID, err)
	}

	shift := int64(dayGap) * secondsPerDay
	for _, segment := range tail.Segments {
		segment.BeginSeconds += shift
		segment.EndSeconds += shift
		for _, trip := range segment.Trips {
			trip.StartSeconds += shift
		}
	}

	merged.Label = fmt.Sprintf("%s+%s", first.Label, second.Label)
	merged.Segments = append(merged.Segments, tail.Segments...)
	merged.ValidDays = append(merged.ValidDays, tail.ValidDays...)

	return merged, nil
}

// VehicleTypes returns the distinct vehicle type tags across a
// rotation's segments.
func VehicleTypes(rotation *graph.VehicleRotation) []string {
	var tags []string
	for _, segment := range rotation.Segments {
		tags = append(tags, segment.VehicleTypes...)
	}
	return util.RemoveDuplicateStrings(tags, nil)
}
