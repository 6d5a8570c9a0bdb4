package enrichment

import (
	"context"
	"sync"

	"github.com/netzplan/netzplan/pkg/graph"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// Summary accounts for every point the stage touched. Points that
// stayed unenriched after exhausting retries are listed rather than
// failing the run.
type Summary struct {
	Enriched  int
	CacheHits int

	Unenriched       []int64
	ElevationMissing []int64
}

// Enricher attaches geodetic positions to network points. The cache
// is consulted first, only misses reach the external services. At
// most Concurrency calls are in flight at once.
type Enricher struct {
	Cache     Cache
	Geocoder  Geocoder
	Elevation ElevationService

	Concurrency int
}

// EnrichAll enriches every point without a geodetic position. A fatal
// service failure cancels the remaining work and is returned; results
// fetched before the cancellation stay cached and attached.
func (enricher *Enricher) EnrichAll(ctx context.Context, points []*graph.NetworkPoint) (*Summary, error) {
	var pending []*graph.NetworkPoint
	for _, point := range points {
		if point.Position == nil {
			pending = append(pending, point)
		}
	}

	concurrency := enricher.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	summary := &Summary{}
	var summaryMutex sync.Mutex

	workers := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(concurrency).
		WithCancelOnError()

	for _, point := range pending {
		point := point

		workers.Go(func(ctx context.Context) error {
			outcome, err := enricher.enrichPoint(ctx, point)
			if err != nil {
				return err
			}

			summaryMutex.Lock()
			defer summaryMutex.Unlock()

			switch outcome {
			case outcomeCacheHit:
				summary.CacheHits++
				summary.Enriched++
			case outcomeFetched:
				summary.Enriched++
			case outcomeUnenriched:
				summary.Unenriched = append(summary.Unenriched, point.ID)
			}
			if point.Position != nil && point.Position.Elevation == nil && enricher.Elevation != nil {
				summary.ElevationMissing = append(summary.ElevationMissing, point.ID)
			}

			return nil
		})
	}

	if err := workers.Wait(); err != nil {
		return summary, err
	}

	log.Info().
		Int("enriched", summary.Enriched).
		Int("cacheHits", summary.CacheHits).
		Int("unenriched", len(summary.Unenriched)).
		Msg("Enriched network points")

	return summary, nil
}

type enrichOutcome int

const (
	outcomeCacheHit enrichOutcome = iota
	outcomeFetched
	outcomeUnenriched
)

func (enricher *Enricher) enrichPoint(ctx context.Context, point *graph.NetworkPoint) (enrichOutcome, error) {
	key := CacheKey(point.Easting, point.Northing)

	cached, found, err := enricher.Cache.Get(ctx, key)
	if err != nil {
		return outcomeUnenriched, err
	}
	if found {
		attach(point, cached)
		return outcomeCacheHit, nil
	}

	latitude, longitude, err := enricher.Geocoder.ReverseProject(ctx, point.Easting, point.Northing)
	if err != nil {
		if IsFatal(err) || ctx.Err() != nil {
			return outcomeUnenriched, err
		}

		log.Warn().Err(err).Int64("point", point.ID).Msg("Point left unenriched")
		return outcomeUnenriched, nil
	}

	position := &CachedPosition{
		Latitude:  latitude,
		Longitude: longitude,
	}

	if enricher.Elevation != nil {
		elevation, err := enricher.Elevation.Elevation(ctx, latitude, longitude)
		if err != nil {
			if IsFatal(err) || ctx.Err() != nil {
				return outcomeUnenriched, err
			}
			// Elevation stays nil, downstream can tell it apart
			// from sea level.
			log.Warn().Err(err).Int64("point", point.ID).Msg("Elevation lookup failed")
		} else {
			position.Elevation = &elevation
		}
	}

	if err := enricher.Cache.Set(ctx, key, position); err != nil {
		log.Warn().Err(err).Int64("point", point.ID).Msg("Failed caching position")
	}

	attach(point, position)
	return outcomeFetched, nil
}

func attach(point *graph.NetworkPoint, position *CachedPosition) {
	point.Position = &graph.GeodeticPosition{
		Latitude:  position.Latitude,
		Longitude: position.Longitude,
		Elevation: position.Elevation,
	}
}
