package dataimporter

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/netzplan/netzplan/pkg/dataimporter/formats/linienfahrplan"
	"github.com/netzplan/netzplan/pkg/enrichment"
	"github.com/netzplan/netzplan/pkg/graph"
	"github.com/netzplan/netzplan/pkg/ntdf"
	"github.com/netzplan/netzplan/pkg/rotations"
)

// Pipeline runs one source document end to end: parse, resolve, enrich,
// assemble, convert. It holds no connections of its own so it can run
// against in-memory collaborators.
type Pipeline struct {
	// BestEffort drops unresolvable trips and rotations instead of
	// failing the whole document.
	BestEffort bool

	// Enricher is optional. When nil the network is emitted without
	// geodetic positions.
	Enricher *enrichment.Enricher

	// Policy is optional. When nil the default assembly policy applies.
	Policy *rotations.Policy

	Datasource *ntdf.DataSource
}

// RunResult carries the converted entities together with the audit
// reports of every stage.
type RunResult struct {
	Network  *graph.Network
	Entities *Entities

	Resolution *graph.Report
	Enrichment *enrichment.Summary
	Assembly   *rotations.Report
}

// Run processes a single document. Placeholder documents surface as
// errors satisfying linienfahrplan.IsSkippable, the caller decides
// whether to treat those as fatal.
func (pipeline *Pipeline) Run(ctx context.Context, reader io.Reader) (*RunResult, error) {
	var document linienfahrplan.Linienfahrplan
	if err := document.ParseFile(reader); err != nil {
		return nil, err
	}

	network, resolution, err := graph.Resolve(&document, graph.Options{
		BestEffort: pipeline.BestEffort,
	})
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		Network:    network,
		Resolution: resolution,
	}

	if pipeline.Enricher != nil {
		points := make([]*graph.NetworkPoint, 0, len(network.Points))
		for _, point := range network.Points {
			points = append(points, point)
		}

		summary, err := pipeline.Enricher.EnrichAll(ctx, points)
		if err != nil {
			return nil, err
		}
		result.Enrichment = summary
	} else {
		log.Info().Int64("line", network.LineNumber).Msg("Enrichment disabled, emitting without positions")
	}

	assembler := rotations.NewAssembler(pipeline.Policy)
	assembled, err := assembler.Assemble(network.Rotations)
	if err != nil {
		return nil, err
	}
	result.Assembly = assembled.Report

	datasource := pipeline.Datasource
	if datasource == nil {
		datasource = &ntdf.DataSource{
			OriginalFormat: "linienfahrplan",
			Provider:       "netzplan",
		}
	}
	if datasource.Identifier == "" {
		datasource.Identifier = document.Generierung.Datenversion
	}

	result.Entities = convertEntities(network, assembled.Rotations, datasource)

	log.Info().
		Int64("line", network.LineNumber).
		Int("stops", len(result.Entities.Stops)).
		Int("routes", len(result.Entities.Routes)).
		Int("trips", len(result.Entities.Trips)).
		Int("rotations", len(result.Entities.Rotations)).
		Msg("Document processed")

	return result, nil
}
