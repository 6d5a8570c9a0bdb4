package rotations

import (
	"sort"
	"time"

	"github.com/netzplan/netzplan/pkg/graph"

	"github.com/rs/zerolog/log"
)

// MergeSuggestion pairs two rotations that look like one physical
// vehicle duty split at the operating day boundary. Suggestions are
// advisory, Applied is only set when the policy asked for the merge.
type MergeSuggestion struct {
	FirstRotationID  int64
	SecondRotationID int64

	DepotID     int64
	VehicleType string

	// Where the first rotation ends and the second one begins.
	LocationID   int64
	LocationName string

	FirstDay  time.Time
	SecondDay time.Time
	DayGap    int

	Applied bool
}

// DuplicatePair records a weekly duplicate and which side survived.
type DuplicatePair struct {
	LineNumber     int64
	VariantOrdinal int64
	SecondsOfDay   int64

	KeptTripID      int64
	DuplicateTripID int64

	KeptRotationID      int64
	DuplicateRotationID int64

	KeptDay      time.Time
	DuplicateDay time.Time
	WeekGap      int
}

// ContiguityGap records two consecutive segments of one rotation
// whose declared times do not join up. Negative GapSeconds means the
// next segment begins before the previous one ends.
type ContiguityGap struct {
	RotationID int64

	FirstSegmentOrdinal  int64
	SecondSegmentOrdinal int64

	EndSeconds   int64
	BeginSeconds int64
	GapSeconds   int64
}

// Report is the assembler's audit trail. Nothing the assembler drops
// or rewrites is missing from here.
type Report struct {
	MergeSuggestions    []*MergeSuggestion
	AppliedMerges       int
	DiscardedDuplicates []*DuplicatePair
	EmptiedRotations    []int64
	ContiguityGaps      []*ContiguityGap
}

// Result carries the assembled rotations alongside the report.
type Result struct {
	Rotations []*graph.VehicleRotation
	Report    *Report
}

type Assembler struct {
	Policy *Policy
}

func NewAssembler(policy *Policy) *Assembler {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Assembler{Policy: policy}
}

// Assemble filters weekly duplicates, then detects rotations split
// across midnight. The input snapshot is already resolved and
// immutable, rewritten rotations are deep copies.
func (assembler *Assembler) Assemble(rotations []*graph.VehicleRotation) (*Result, error) {
	report := &Report{}

	ordered := make([]*graph.VehicleRotation, len(rotations))
	copy(ordered, rotations)
	sort.SliceStable(ordered, func(i int, j int) bool {
		if !ordered[i].OperatingDay.Equal(ordered[j].OperatingDay) {
			return ordered[i].OperatingDay.Before(ordered[j].OperatingDay)
		}
		return ordered[i].ID < ordered[j].ID
	})

	checkContiguity(ordered, report)

	deduplicated, err := assembler.eliminateDuplicates(ordered, report)
	if err != nil {
		return nil, err
	}

	assembled, err := assembler.mergeSplitRotations(deduplicated, report)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("rotations", len(assembled)).
		Int("mergeSuggestions", len(report.MergeSuggestions)).
		Int("appliedMerges", report.AppliedMerges).
		Int("discardedDuplicates", len(report.DiscardedDuplicates)).
		Int("contiguityGaps", len(report.ContiguityGaps)).
		Msg("Assembled vehicle rotations")

	return &Result{Rotations: assembled, Report: report}, nil
}

// checkContiguity verifies that each rotation's segments join up in
// time, a hole between two duty blocks means the vehicle is
// unaccounted for. Gaps are advisory, the rotation still assembles.
func checkContiguity(rotations []*graph.VehicleRotation, report *Report) {
	for _, rotation := range rotations {
		for i := 1; i < len(rotation.Segments); i++ {
			previous := rotation.Segments[i-1]
			next := rotation.Segments[i]

			gap := next.BeginSeconds - previous.EndSeconds
			if gap == 0 {
				continue
			}

			report.ContiguityGaps = append(report.ContiguityGaps, &ContiguityGap{
				RotationID:           rotation.ID,
				FirstSegmentOrdinal:  previous.Ordinal,
				SecondSegmentOrdinal: next.Ordinal,
				EndSeconds:           previous.EndSeconds,
				BeginSeconds:         next.BeginSeconds,
				GapSeconds:           gap,
			})
		}
	}
}
