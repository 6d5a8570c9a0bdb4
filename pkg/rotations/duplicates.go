package rotations

import (
	"time"

	"github.com/netzplan/netzplan/pkg/graph"
	"github.com/netzplan/netzplan/pkg/util"
)

const daysPerWeek = 7

type occurrenceKey struct {
	lineNumber     int64
	variantOrdinal int64
	secondsOfDay   int64
}

type occurrence struct {
	rotation *graph.VehicleRotation
	segment  *graph.RotationSegment
	index    int
	trip     *graph.Trip
	day      time.Time
}

// eliminateDuplicates finds trips re-emitted at a multiple of seven
// days and removes one side of each pair per policy. Detection only
// runs when the schedule's span is itself a whole number of weeks,
// anything else cannot be the week stitching artefact.
func (assembler *Assembler) eliminateDuplicates(rotations []*graph.VehicleRotation, report *Report) ([]*graph.VehicleRotation, error) {
	occurrences := collectOccurrences(rotations)
	if len(occurrences) == 0 {
		return rotations, nil
	}

	first := occurrences[0].day
	last := occurrences[0].day
	for _, current := range occurrences {
		if current.day.Before(first) {
			first = current.day
		}
		if current.day.After(last) {
			last = current.day
		}
	}
	spanDays := int(last.Sub(first).Hours() / 24)
	if spanDays == 0 || spanDays%daysPerWeek != 0 {
		return rotations, nil
	}

	kept := map[occurrenceKey]*occurrence{}
	remove := map[*occurrence]bool{}

	for _, current := range occurrences {
		key := occurrenceKey{
			lineNumber:     current.trip.LineNumber,
			variantOrdinal: current.trip.Variant.Ordinal,
			secondsOfDay:   util.SecondsOfDay(current.trip.StartSeconds),
		}

		previous, found := kept[key]
		if !found {
			kept[key] = current
			continue
		}

		gapDays := int(current.day.Sub(previous.day).Hours() / 24)
		if gapDays <= 0 || gapDays%daysPerWeek != 0 {
			continue
		}

		pair := &DuplicatePair{
			LineNumber:          key.lineNumber,
			VariantOrdinal:      key.variantOrdinal,
			SecondsOfDay:        key.secondsOfDay,
			KeptTripID:          previous.trip.ID,
			DuplicateTripID:     current.trip.ID,
			KeptRotationID:      previous.rotation.ID,
			DuplicateRotationID: current.rotation.ID,
			KeptDay:             previous.day,
			DuplicateDay:        current.day,
			WeekGap:             gapDays / daysPerWeek,
		}

		accepted, err := assembler.Policy.acceptDuplicate(pair)
		if err != nil {
			return nil, err
		}
		if !accepted {
			continue
		}

		if assembler.Policy.DuplicateKeep == DuplicateKeepLast {
			pair.KeptTripID, pair.DuplicateTripID = pair.DuplicateTripID, pair.KeptTripID
			pair.KeptRotationID, pair.DuplicateRotationID = pair.DuplicateRotationID, pair.KeptRotationID
			pair.KeptDay, pair.DuplicateDay = pair.DuplicateDay, pair.KeptDay

			remove[previous] = true
			kept[key] = current
		} else {
			remove[current] = true
		}

		report.DiscardedDuplicates = append(report.DiscardedDuplicates, pair)
	}

	if len(remove) == 0 {
		return rotations, nil
	}

	return rebuildWithoutOccurrences(rotations, occurrences, remove, report), nil
}

func collectOccurrences(rotations []*graph.VehicleRotation) []*occurrence {
	var occurrences []*occurrence
	for _, rotation := range rotations {
		for _, segment := range rotation.Segments {
			for index, trip := range segment.Trips {
				occurrences = append(occurrences, &occurrence{
					rotation: rotation,
					segment:  segment,
					index:    index,
					trip:     trip,
					day:      rotation.OperatingDay.AddDate(0, 0, int(util.DayOffset(trip.StartSeconds))),
				})
			}
		}
	}
	return occurrences
}

func rebuildWithoutOccurrences(rotations []*graph.VehicleRotation, occurrences []*occurrence, remove map[*occurrence]bool, report *Report) []*graph.VehicleRotation {
	removedTrips := map[*graph.RotationSegment]map[int]bool{}
	for current := range remove {
		if removedTrips[current.segment] == nil {
			removedTrips[current.segment] = map[int]bool{}
		}
		removedTrips[current.segment][current.index] = true
	}

	var result []*graph.VehicleRotation
	for _, rotation := range rotations {
		var segments []*graph.RotationSegment
		for _, segment := range rotation.Segments {
			removed := removedTrips[segment]
			if len(removed) == 0 {
				segments = append(segments, segment)
				continue
			}

			var trips []*graph.Trip
			for index, trip := range segment.Trips {
				if !removed[index] {
					trips = append(trips, trip)
				}
			}
			if len(trips) > 0 {
				filtered := *segment
				filtered.Trips = trips
				segments = append(segments, &filtered)
			}
		}

		if len(segments) == 0 {
			report.EmptiedRotations = append(report.EmptiedRotations, rotation.ID)
			continue
		}

		if len(segments) != len(rotation.Segments) || anyFiltered(segments, rotation.Segments) {
			rewritten := *rotation
			rewritten.Segments = segments
			result = append(result, &rewritten)
		} else {
			result = append(result, rotation)
		}
	}

	return result
}

func anyFiltered(rebuilt []*graph.RotationSegment, original []*graph.RotationSegment) bool {
	for i := range rebuilt {
		if rebuilt[i] != original[i] {
			return true
		}
	}
	return false
}
