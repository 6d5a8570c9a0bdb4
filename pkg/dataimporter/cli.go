package dataimporter

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/rs/zerolog/log"

	"github.com/netzplan/netzplan/pkg/database"
	"github.com/netzplan/netzplan/pkg/dataimporter/formats/linienfahrplan"
	"github.com/netzplan/netzplan/pkg/enrichment"
	"github.com/netzplan/netzplan/pkg/ntdf"
	"github.com/netzplan/netzplan/pkg/redis_client"
	"github.com/netzplan/netzplan/pkg/rotations"

	_ "time/tzdata"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-importer",
		Usage: "Convert Linienfahrplan documents into the normalized schedule model",
		Subcommands: []*cli.Command{
			{
				Name:  "linienfahrplan",
				Usage: "Import one or more Linienfahrplan XML documents",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Usage:    "File or glob of XML documents to import",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "best-effort",
						Usage: "Drop unresolvable trips and rotations instead of failing the document",
					},
					&cli.StringFlag{
						Name:  "policy",
						Usage: "Path to a YAML assembly policy file",
					},
					&cli.BoolFlag{
						Name:  "skip-enrichment",
						Usage: "Emit without geodetic positions",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Process documents without writing to Mongo",
					},
					&cli.StringFlag{
						Name:  "report-dir",
						Usage: "Directory to write CSV audit reports into",
					},
				},
				Action: importLinienfahrplan,
			},
		},
	}
}

func importLinienfahrplan(c *cli.Context) error {
	dryRun := c.Bool("dry-run")

	if !dryRun {
		if err := database.Connect(); err != nil {
			return err
		}
	}

	var policy *rotations.Policy
	if policyPath := c.String("policy"); policyPath != "" {
		var err error
		policy, err = rotations.LoadPolicy(policyPath)
		if err != nil {
			return err
		}
	}

	var enricher *enrichment.Enricher
	if !c.Bool("skip-enrichment") {
		config, err := enrichment.ConfigFromEnvironment()
		if err != nil {
			return err
		}

		var positionCache enrichment.Cache
		if err := redis_client.Connect(); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, caching geocodes in memory")
			positionCache = enrichment.NewMemoryCache()
		} else {
			positionCache = enrichment.NewRedisCache(config.CacheExpiration)
		}

		enricher = enrichment.NewEnricher(config, positionCache)
	}

	paths, err := filepath.Glob(c.String("source"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		log.Fatal().Str("source", c.String("source")).Msg("No documents match source")
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := importDocument(c.Context, path, policy, enricher, c); err != nil {
			return err
		}
	}

	return nil
}

func importDocument(ctx context.Context, path string, policy *rotations.Policy, enricher *enrichment.Enricher, c *cli.Context) error {
	log.Info().Str("file", path).Msg("Importing Linienfahrplan document")

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	pipeline := &Pipeline{
		BestEffort: c.Bool("best-effort"),
		Enricher:   enricher,
		Policy:     policy,
		Datasource: &ntdf.DataSource{
			OriginalFormat: "linienfahrplan",
			Provider:       "netzplan",
			Dataset:        filepath.Base(path),
		},
	}

	result, err := pipeline.Run(ctx, file)
	if err != nil {
		if linienfahrplan.IsSkippable(err) {
			log.Info().Str("file", path).Err(err).Msg("Skipping placeholder document")
			return nil
		}
		return err
	}

	if reportDir := c.String("report-dir"); reportDir != "" {
		if err := WriteAuditCSV(reportDir, result); err != nil {
			return err
		}
	}

	if !c.Bool("dry-run") {
		if err := Emit(ctx, result.Entities); err != nil {
			return err
		}
	}

	PrintSummary(result)

	return nil
}
