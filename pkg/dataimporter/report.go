package dataimporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/gocarina/gocsv"
)

type duplicateRecord struct {
	LineNumber          int64  `csv:"line_number"`
	VariantOrdinal      int64  `csv:"variant_ordinal"`
	SecondsOfDay        int64  `csv:"seconds_of_day"`
	KeptTripID          int64  `csv:"kept_trip_id"`
	DuplicateTripID     int64  `csv:"duplicate_trip_id"`
	KeptRotationID      int64  `csv:"kept_rotation_id"`
	DuplicateRotationID int64  `csv:"duplicate_rotation_id"`
	WeekGap             int    `csv:"week_gap"`
	KeptDay             string `csv:"kept_day"`
	DuplicateDay        string `csv:"duplicate_day"`
}

type mergeRecord struct {
	FirstRotationID  int64  `csv:"first_rotation_id"`
	SecondRotationID int64  `csv:"second_rotation_id"`
	DepotID          int64  `csv:"depot_id"`
	VehicleType      string `csv:"vehicle_type"`
	LocationID       int64  `csv:"location_id"`
	LocationName     string `csv:"location_name"`
	FirstDay         string `csv:"first_day"`
	SecondDay        string `csv:"second_day"`
	DayGap           int    `csv:"day_gap"`
	Applied          bool   `csv:"applied"`
}

type contiguityRecord struct {
	RotationID           int64 `csv:"rotation_id"`
	FirstSegmentOrdinal  int64 `csv:"first_segment_ordinal"`
	SecondSegmentOrdinal int64 `csv:"second_segment_ordinal"`
	EndSeconds           int64 `csv:"end_seconds"`
	BeginSeconds         int64 `csv:"begin_seconds"`
	GapSeconds           int64 `csv:"gap_seconds"`
}

type danglingRecord struct {
	Entity   string `csv:"entity"`
	EntityID int64  `csv:"entity_id"`
	Field    string `csv:"field"`
	TargetID int64  `csv:"target_id"`
}

const dayFormat = "2006-01-02"

// WriteAuditCSV exports the run's audit trail as CSV files under
// directory, one file per concern. Empty concerns produce no file.
func WriteAuditCSV(directory string, result *RunResult) error {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return err
	}

	if result.Assembly != nil && len(result.Assembly.DiscardedDuplicates) > 0 {
		records := make([]*duplicateRecord, 0, len(result.Assembly.DiscardedDuplicates))
		for _, pair := range result.Assembly.DiscardedDuplicates {
			records = append(records, &duplicateRecord{
				LineNumber:          pair.LineNumber,
				VariantOrdinal:      pair.VariantOrdinal,
				SecondsOfDay:        pair.SecondsOfDay,
				KeptTripID:          pair.KeptTripID,
				DuplicateTripID:     pair.DuplicateTripID,
				KeptRotationID:      pair.KeptRotationID,
				DuplicateRotationID: pair.DuplicateRotationID,
				WeekGap:             pair.WeekGap,
				KeptDay:             pair.KeptDay.Format(dayFormat),
				DuplicateDay:        pair.DuplicateDay.Format(dayFormat),
			})
		}
		if err := writeCSVFile(filepath.Join(directory, "discarded_duplicates.csv"), records); err != nil {
			return err
		}
	}

	if result.Assembly != nil && len(result.Assembly.MergeSuggestions) > 0 {
		records := make([]*mergeRecord, 0, len(result.Assembly.MergeSuggestions))
		for _, suggestion := range result.Assembly.MergeSuggestions {
			records = append(records, &mergeRecord{
				FirstRotationID:  suggestion.FirstRotationID,
				SecondRotationID: suggestion.SecondRotationID,
				DepotID:          suggestion.DepotID,
				VehicleType:      suggestion.VehicleType,
				LocationID:       suggestion.LocationID,
				LocationName:     suggestion.LocationName,
				FirstDay:         suggestion.FirstDay.Format(dayFormat),
				SecondDay:        suggestion.SecondDay.Format(dayFormat),
				DayGap:           suggestion.DayGap,
				Applied:          suggestion.Applied,
			})
		}
		if err := writeCSVFile(filepath.Join(directory, "merge_suggestions.csv"), records); err != nil {
			return err
		}
	}

	if result.Assembly != nil && len(result.Assembly.ContiguityGaps) > 0 {
		records := make([]*contiguityRecord, 0, len(result.Assembly.ContiguityGaps))
		for _, gap := range result.Assembly.ContiguityGaps {
			records = append(records, &contiguityRecord{
				RotationID:           gap.RotationID,
				FirstSegmentOrdinal:  gap.FirstSegmentOrdinal,
				SecondSegmentOrdinal: gap.SecondSegmentOrdinal,
				EndSeconds:           gap.EndSeconds,
				BeginSeconds:         gap.BeginSeconds,
				GapSeconds:           gap.GapSeconds,
			})
		}
		if err := writeCSVFile(filepath.Join(directory, "contiguity_gaps.csv"), records); err != nil {
			return err
		}
	}

	if result.Resolution != nil && len(result.Resolution.Dangling) > 0 {
		records := make([]*danglingRecord, 0, len(result.Resolution.Dangling))
		for _, dangling := range result.Resolution.Dangling {
			records = append(records, &danglingRecord{
				Entity:   dangling.Entity,
				EntityID: dangling.EntityID,
				Field:    dangling.Field,
				TargetID: dangling.TargetID,
			})
		}
		if err := writeCSVFile(filepath.Join(directory, "dangling_references.csv"), records); err != nil {
			return err
		}
	}

	return nil
}

func writeCSVFile(path string, records interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return gocsv.Marshal(records, file)
}

// PrintSummary writes a human readable run summary to stdout.
func PrintSummary(result *RunResult) {
	headingColour := color.New(color.FgCyan, color.Bold)
	valueColour := color.New(color.FgMagenta)
	warningColour := color.New(color.FgYellow)

	headingColour.Printf("Line %d", result.Network.LineNumber)
	if result.Network.LineName != "" {
		headingColour.Printf(" (%s)", result.Network.LineName)
	}
	fmt.Println()

	valueColour.Printf("  %d stops, %d routes, %d trips, %d rotations\n",
		len(result.Entities.Stops), len(result.Entities.Routes),
		len(result.Entities.Trips), len(result.Entities.Rotations))

	if result.Enrichment != nil {
		valueColour.Printf("  %d positions enriched (%d from cache)\n",
			result.Enrichment.Enriched, result.Enrichment.CacheHits)
		if len(result.Enrichment.Unenriched) > 0 {
			warningColour.Printf("  %d points left without a position\n", len(result.Enrichment.Unenriched))
		}
	}

	if result.Assembly != nil {
		if len(result.Assembly.DiscardedDuplicates) > 0 {
			valueColour.Printf("  %d weekly duplicate trips discarded\n", len(result.Assembly.DiscardedDuplicates))
		}
		if len(result.Assembly.MergeSuggestions) > 0 {
			valueColour.Printf("  %d midnight merge suggestions (%d applied)\n",
				len(result.Assembly.MergeSuggestions), result.Assembly.AppliedMerges)
		}
		if len(result.Assembly.ContiguityGaps) > 0 {
			warningColour.Printf("  %d rotations with segment time gaps\n", len(result.Assembly.ContiguityGaps))
		}
	}

	if result.Resolution != nil && len(result.Resolution.Dangling) > 0 {
		warningColour.Printf("  %d dangling references\n", len(result.Resolution.Dangling))
	}
}
