package rotations

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/netzplan/netzplan/pkg/graph"
)

func stopPoint(id int64, name string) *graph.NetworkPoint {
	return &graph.NetworkPoint{ID: id, LongName: name, Kind: graph.PointKindStop}
}

func depotPoint(id int64) *graph.NetworkPoint {
	return &graph.NetworkPoint{ID: id, LongName: "Betriebshof", Kind: graph.PointKindBoundary}
}

func testTrip(id int64, variantOrdinal int64, start int64, from *graph.NetworkPoint, to *graph.NetworkPoint) *graph.Trip {
	return &graph.Trip{
		ID:           id,
		LineNumber:   100,
		Variant:      &graph.RouteVariant{Ordinal: variantOrdinal},
		StartSeconds: start,
		Kind:         graph.TripKindPassenger,
		StopTimes: []*graph.StopTime{
			{Point: from},
			{Point: to, ArrivalOffset: 30 * time.Minute},
		},
	}
}

func testRotation(id int64, label string, depot *graph.NetworkPoint, day time.Time, trips ...*graph.Trip) *graph.VehicleRotation {
	return &graph.VehicleRotation{
		ID:           id,
		Label:        label,
		Depot:        depot,
		VehicleType:  "EN",
		OperatingDay: day,
		ValidDays:    []time.Time{day},
		Segments: []*graph.RotationSegment{
			{Ordinal: 1, VehicleTypes: []string{"EN"}, Trips: trips},
		},
	}
}

func TestAssembleEmitsExactlyOneMergeSuggestion(t *testing.T) {
	depot := depotPoint(201)
	stopA := stopPoint(101, "S Alexanderplatz")
	stopB := stopPoint(102, "Memhardstr.")
	dayOne := time.Date(2022, time.November, 7, 0, 0, 0, 0, time.UTC)
	dayTwo := dayOne.AddDate(0, 0, 1)

	// The first rotation ends at stop B, away from its depot, and
	// the second one starts there the next day.
	first := testRotation(40001, "100/1", depot, dayOne, testTrip(7001, 1, 70000, stopA, stopB))
	second := testRotation(40002, "100/2", depot, dayTwo, testTrip(7002, 2, 18000, stopB, stopA))

	result, err := NewAssembler(nil).Assemble([]*graph.VehicleRotation{first, second})
	if err != nil {
		t.Fatalf("Assemble() returned error: %v", err)
	}

	if len(result.Report.MergeSuggestions) != 1 {
		t.Fatalf("emitted %d merge suggestions, want exactly 1", len(result.Report.MergeSuggestions))
	}

	suggestion := result.Report.MergeSuggestions[0]
	if suggestion.FirstRotationID != 40001 || suggestion.SecondRotationID != 40002 {
		t.Errorf("suggestion pairs %d and %d", suggestion.FirstRotationID, suggestion.SecondRotationID)
	}
	if suggestion.LocationID != 102 || suggestion.DayGap != 1 {
		t.Errorf("suggestion details wrong: %+v", suggestion)
	}
	if suggestion.Applied {
		t.Error("suggestion was applied without a merge policy")
	}
	if len(result.Rotations) != 2 {
		t.Errorf("assembled %d rotations, want the original 2", len(result.Rotations))
	}
}

func TestAssembleDoesNotPairDifferentDepots(t *testing.T) {
	stopB := stopPoint(102, "Memhardstr.")
	dayOne := time.Date(2022, time.November, 7, 0, 0, 0, 0, time.UTC)

	first := testRotation(40001, "100/1", depotPoint(201), dayOne,
		testTrip(7001, 1, 70000, stopPoint(101, "A"), stopB))
	second := testRotation(40002, "100/2", depotPoint(202), dayOne.AddDate(0, 0, 1),
		testTrip(7002, 2, 18000, stopB, stopPoint(101, "A")))

	result, err := NewAssembler(nil).Assemble([]*graph.VehicleRotation{first, second})
	if err != nil {
		t.Fatalf("Assemble() returned error: %v", err)
	}
	if len(result.Report.MergeSuggestions) != 0 {
		t.Errorf("emitted %d merge suggestions across depots", len(result.Report.MergeSuggestions))
	}
}

func TestAssembleAutoMerge(t *testing.T) {
	depot := depotPoint(201)
	stopA := stopPoint(101, "S Alexanderplatz")
	stopB := stopPoint(102, "Memhardstr.")
	dayOne := time.Date(2022, time.November, 7, 0, 0, 0, 0, time.UTC)

	first := testRotation(40001, "100/1", depot, dayOne, testTrip(7001, 1, 70000, stopA, stopB))
	second := testRotation(40002, "100/2", depot, dayOne.AddDate(0, 0, 1), testTrip(7002, 2, 18000, stopB, stopA))

	assembler := NewAssembler(&Policy{AutoMerge: true, DuplicateKeep: DuplicateKeepFirst})
	result, err := assembler.Assemble([]*graph.VehicleRotation{first, second})
	if err != nil {
		t.Fatalf("Assemble() returned error: %v", err)
	}

	if len(result.Rotations) != 1 {
		t.Fatalf("assembled %d rotations, want 1 merged", len(result.Rotations))
	}
	merged := result.Rotations[0]
	if merged.Label != "100/1+100/2" {
		t.Errorf("merged label is %q", merged.Label)
	}
	if len(merged.Segments) != 2 {
		t.Fatalf("merged rotation has %d segments, want 2", len(merged.Segments))
	}
	if got := merged.Segments[1].Trips[0].StartSeconds; got != 18000+86400 {
		t.Errorf("second leg start is %d, want shifted past midnight", got)
	}
	if len(merged.ValidDays) != 2 {
		t.Errorf("merged rotation has %d valid days, want 2", len(merged.ValidDays))
	}
	if result.Report.AppliedMerges != 1 || !result.Report.MergeSuggestions[0].Applied {
		t.Error("applied merge not reported")
	}

	// The resolved snapshot must stay untouched.
	if second.Segments[0].Trips[0].StartSeconds != 18000 {
		t.Error("merge mutated the original rotation")
	}
}

func TestAssembleChainsThreeDaySplit(t *testing.T) {
	depot := depotPoint(201)
	stopA := stopPoint(101, "S Alexanderplatz")
	stopB := stopPoint(102, "Memhardstr.")
	stopC := stopPoint(103, "Mollstr.")
	dayOne := time.Date(2022, time.November, 7, 0, 0, 0, 0, time.UTC)

	// One physical duty split over three operating days: each part
	// ends where the next day's part begins.
	first := testRotation(40001, "100/1", depot, dayOne, testTrip(7001, 1, 70000, stopA, stopB))
	second := testRotation(40002, "100/2", depot, dayOne.AddDate(0, 0, 1), testTrip(7002, 2, 18000, stopB, stopC))
	third := testRotation(40003, "100/3", depot, dayOne.AddDate(0, 0, 2), testTrip(7003, 3, 18000, stopC, stopA))

	result, err := NewAssembler(nil).Assemble([]*graph.VehicleRotation{first, second, third})
	if err != nil {
		t.Fatalf("Assemble() returned error: %v", err)
	}

	if len(result.Report.MergeSuggestions) != 2 {
		t.Fatalf("emitted %d merge suggestions, want 2 for a three day chain", len(result.Report.MergeSuggestions))
	}
	if got := result.Report.MergeSuggestions[0]; got.FirstRotationID != 40001 || got.SecondRotationID != 40002 {
		t.Errorf("first suggestion pairs %d and %d", got.FirstRotationID, got.SecondRotationID)
	}
	if got := result.Report.MergeSuggestions[1]; got.FirstRotationID != 40002 || got.SecondRotationID != 40003 {
		t.Errorf("second suggestion pairs %d and %d", got.FirstRotationID, got.SecondRotationID)
	}
	if len(result.Rotations) != 3 {
		t.Errorf("assembled %d rotations, want the original 3", len(result.Rotations))
	}
}

func TestAssembleAutoMergeChain(t *testing.T) {
	depot := depotPoint(201)
	stopA := stopPoint(101, "S Alexanderplatz")
	stopB := stopPoint(102, "Memhardstr.")
	stopC := stopPoint(103, "Mollstr.")
	dayOne := time.Date(2022, time.November, 7, 0, 0, 0, 0, time.UTC)

	first := testRotation(40001, "100/1", depot, dayOne, testTrip(7001, 1, 70000, stopA, stopB))
	second := testRotation(40002, "100/2", depot, dayOne.AddDate(0, 0, 1), testTrip(7002, 2, 18000, stopB, stopC))
	third := testRotation(40003, "100/3", depot, dayOne.AddDate(0, 0, 2), testTrip(7003, 3, 18000, stopC, stopA))

	assembler := NewAssembler(&Policy{AutoMerge: true, DuplicateKeep: DuplicateKeepFirst})
	result, err := assembler.Assemble([]*graph.VehicleRotation{first, second, third})
	if err != nil {
		t.Fatalf("Assemble() returned error: %v", err)
	}

	if len(result.Rotations) != 1 {
		t.Fatalf("assembled %d rotations, want 1 merged chain", len(result.Rotations))
	}
	merged := result.Rotations[0]
	if merged.Label != "100/1+100/2+100/3" {
		t.Errorf("merged label is %q", merged.Label)
	}
	if len(merged.Segments) != 3 {
		t.Fatalf("merged rotation has %d segments, want 3", len(merged.Segments))
	}
	if got := merged.Segments[1].Trips[0].StartSeconds; got != 18000+86400 {
		t.Errorf("second leg start is %d, want shifted by one day", got)
	}
	if got := merged.Segments[2].Trips[0].StartSeconds; got != 18000+2*86400 {
		t.Errorf("third leg start is %d, want shifted by two days", got)
	}
	if result.Report.AppliedMerges != 2 {
		t.Errorf("applied %d merges, want 2", result.Report.AppliedMerges)
	}
	for _, suggestion := range result.Report.MergeSuggestions {
		if !suggestion.Applied {
			t.Errorf("suggestion %d+%d not applied", suggestion.FirstRotationID, suggestion.SecondRotationID)
		}
	}

	// The resolved snapshot must stay untouched.
	if third.Segments[0].Trips[0].StartSeconds != 18000 {
		t.Error("chained merge mutated the original rotation")
	}
}

func TestAssembleReportsSegmentGaps(t *testing.T) {
	depot := depotPoint(201)
	stopA := stopPoint(101, "S Alexanderplatz")
	stopB := stopPoint(102, "Memhardstr.")
	dayOne := time.Date(2022, time.November, 7, 0, 0, 0, 0, time.UTC)

	// The vehicle is unaccounted for between 08:00 and 14:00.
	gapped := &graph.VehicleRotation{
		ID:           40001,
		Label:        "100/1",
		Depot:        depot,
		VehicleType:  "EN",
		OperatingDay: dayOne,
		ValidDays:    []time.Time{dayOne},
		Segments: []*graph.RotationSegment{
			{Ordinal: 1, BeginSeconds: 18000, EndSeconds: 28800,
				Trips: []*graph.Trip{testTrip(7001, 1, 18000, stopA, stopB)}},
			{Ordinal: 2, BeginSeconds: 50400, EndSeconds: 61200,
				Trips: []*graph.Trip{testTrip(7002, 2, 50400, stopB, stopA)}},
		},
	}

	result, err := NewAssembler(nil).Assemble([]*graph.VehicleRotation{gapped})
	if err != nil {
		t.Fatalf("Assemble() returned error: %v", err)
	}

	if len(result.Report.ContiguityGaps) != 1 {
		t.Fatalf("reported %d contiguity gaps, want 1", len(result.Report.ContiguityGaps))
	}
	gap := result.Report.ContiguityGaps[0]
	if gap.RotationID != 40001 || gap.FirstSegmentOrdinal != 1 || gap.SecondSegmentOrdinal != 2 {
		t.Errorf("gap recorded wrong: %+v", gap)
	}
	if gap.GapSeconds != 21600 {
		t.Errorf("gap is %d seconds, want 21600", gap.GapSeconds)
	}

	// The rotation still assembles, the gap is advisory.
	if len(result.Rotations) != 1 {
		t.Errorf("assembled %d rotations, want 1", len(result.Rotations))
	}
}

func TestAssembleAcceptsContiguousSegments(t *testing.T) {
	depot := depotPoint(201)
	stopA := stopPoint(101, "S Alexanderplatz")
	stopB := stopPoint(102, "Memhardstr.")
	dayOne := time.Date(2022, time.November, 7, 0, 0, 0, 0, time.UTC)

	contiguous := &graph.VehicleRotation{
		ID:           40001,
		Label:        "100/1",
		Depot:        depot,
		VehicleType:  "EN",
		OperatingDay: dayOne,
		ValidDays:    []time.Time{dayOne},
		Segments: []*graph.RotationSegment{
			{Ordinal: 1, BeginSeconds: 18000, EndSeconds: 28800,
				Trips: []*graph.Trip{testTrip(7001, 1, 18000, stopA, stopB)}},
			{Ordinal: 2, BeginSeconds: 28800, EndSeconds: 39600,
				Trips: []*graph.Trip{testTrip(7002, 2, 28800, stopB, stopA)}},
		},
	}

	result, err := NewAssembler(nil).Assemble([]*graph.VehicleRotation{contiguous})
	if err != nil {
		t.Fatalf("Assemble() returned error: %v", err)
	}
	if len(result.Report.ContiguityGaps) != 0 {
		t.Errorf("reported %d contiguity gaps for contiguous segments", len(result.Report.ContiguityGaps))
	}
}

func TestAssembleRemovesWeeklyDuplicates(t *testing.T) {
	depot := depotPoint(201)
	stopA := stopPoint(101, "S Alexanderplatz")
	stopB := stopPoint(102, "Memhardstr.")
	dayOne := time.Date(2022, time.November, 7, 0, 0, 0, 0, time.UTC)

	early := testTrip(7001, 1, 91800, stopA, stopB)
	weekLater := testTrip(7101, 1, 91800+7*86400, stopA, stopB)
	closing := testTrip(7002, 2, 92600, stopB, depot)
	rotation := testRotation(40001, "100/1", depot, dayOne, early, closing, weekLater)

	result, err := NewAssembler(nil).Assemble([]*graph.VehicleRotation{rotation})
	if err != nil {
		t.Fatalf("Assemble() returned error: %v", err)
	}

	if len(result.Report.DiscardedDuplicates) != 1 {
		t.Fatalf("discarded %d duplicates, want 1", len(result.Report.DiscardedDuplicates))
	}
	pair := result.Report.DiscardedDuplicates[0]
	if pair.KeptTripID != 7001 || pair.DuplicateTripID != 7101 || pair.WeekGap != 1 {
		t.Errorf("duplicate pair recorded wrong: %+v", pair)
	}

	trips := result.Rotations[0].Trips()
	if len(trips) != 2 {
		t.Fatalf("assembled rotation has %d trips, want 2", len(trips))
	}
	for _, trip := range trips {
		if trip.ID == 7101 {
			t.Error("duplicate trip survived assembly")
		}
	}

	// The input snapshot keeps all three trips.
	if len(rotation.Trips()) != 3 {
		t.Error("deduplication mutated the original rotation")
	}
}

func TestAssembleKeepLastPolicy(t *testing.T) {
	depot := depotPoint(201)
	stopA := stopPoint(101, "S Alexanderplatz")
	stopB := stopPoint(102, "Memhardstr.")
	dayOne := time.Date(2022, time.November, 7, 0, 0, 0, 0, time.UTC)

	early := testTrip(7001, 1, 91800, stopA, stopB)
	weekLater := testTrip(7101, 1, 91800+7*86400, stopA, stopB)
	rotation := testRotation(40001, "100/1", depot, dayOne, early, weekLater)

	assembler := NewAssembler(&Policy{DuplicateKeep: DuplicateKeepLast})
	result, err := assembler.Assemble([]*graph.VehicleRotation{rotation})
	if err != nil {
		t.Fatalf("Assemble() returned error: %v", err)
	}

	pair := result.Report.DiscardedDuplicates[0]
	if pair.KeptTripID != 7101 || pair.DuplicateTripID != 7001 {
		t.Errorf("keep-last pair recorded wrong: %+v", pair)
	}
	trips := result.Rotations[0].Trips()
	if len(trips) != 1 || trips[0].ID != 7101 {
		t.Errorf("keep-last retained the wrong trip: %+v", trips)
	}
}

func TestAssembleSkipsDedupForPartialWeeks(t *testing.T) {
	depot := depotPoint(201)
	stopA := stopPoint(101, "S Alexanderplatz")
	stopB := stopPoint(102, "Memhardstr.")
	dayOne := time.Date(2022, time.November, 7, 0, 0, 0, 0, time.UTC)

	rotation := testRotation(40001, "100/1", depot, dayOne,
		testTrip(7001, 1, 91800, stopA, stopB),
		testTrip(7101, 1, 91800+3*86400, stopA, stopB))

	result, err := NewAssembler(nil).Assemble([]*graph.VehicleRotation{rotation})
	if err != nil {
		t.Fatalf("Assemble() returned error: %v", err)
	}
	if len(result.Report.DiscardedDuplicates) != 0 {
		t.Errorf("deduplicated a schedule spanning a partial week")
	}
	if len(result.Rotations[0].Trips()) != 2 {
		t.Error("trips were dropped from a partial week schedule")
	}
}

func TestAssembleDuplicatePredicate(t *testing.T) {
	depot := depotPoint(201)
	stopA := stopPoint(101, "S Alexanderplatz")
	stopB := stopPoint(102, "Memhardstr.")
	dayOne := time.Date(2022, time.November, 7, 0, 0, 0, 0, time.UTC)

	rotation := testRotation(40001, "100/1", depot, dayOne,
		testTrip(7001, 1, 91800, stopA, stopB),
		testTrip(7101, 1, 91800+7*86400, stopA, stopB))

	policy := &Policy{DuplicateKeep: DuplicateKeepFirst, DuplicatePredicate: "WeekGap > 1"}
	if err := policy.compile(); err != nil {
		t.Fatalf("compiling policy: %v", err)
	}

	result, err := NewAssembler(policy).Assemble([]*graph.VehicleRotation{rotation})
	if err != nil {
		t.Fatalf("Assemble() returned error: %v", err)
	}
	if len(result.Report.DiscardedDuplicates) != 0 {
		t.Error("predicate did not veto the elimination")
	}
	if len(result.Rotations[0].Trips()) != 2 {
		t.Error("trips were dropped despite the predicate veto")
	}
}

func TestLoadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	contents := `auto_merge: true
merge_predicate: 'VehicleType == "EN"'
duplicate_keep: last
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing policy file: %v", err)
	}

	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy() returned error: %v", err)
	}
	if !policy.AutoMerge || policy.DuplicateKeep != DuplicateKeepLast {
		t.Errorf("policy loaded wrong: %+v", policy)
	}
	if policy.mergeProgram == nil {
		t.Error("merge predicate was not compiled")
	}
}

func TestLoadPolicyRejectsUnknownKeepValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("duplicate_keep: newest\n"), 0644); err != nil {
		t.Fatalf("writing policy file: %v", err)
	}

	if _, err := LoadPolicy(path); err == nil {
		t.Fatal("LoadPolicy() accepted an unknown duplicate_keep value")
	}
}
