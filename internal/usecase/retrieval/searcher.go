package retrieval

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/casematch/internal/domain/search/filter"
	"github.com/kailas-cloud/casematch/internal/domain/search/hit"
	"github.com/kailas-cloud/casematch/internal/domain/space"
	"github.com/kailas-cloud/casematch/internal/metrics"
)

// DualSearcher queries the face and text spaces concurrently with one shared filter.
// A failing space degrades to an empty list instead of failing the call.
type DualSearcher struct {
	spaces  SpaceSearcher
	logger  *zap.Logger
	timeout time.Duration
}

// NewDualSearcher creates a dual-space searcher.
func NewDualSearcher(spaces SpaceSearcher, logger *zap.Logger) *DualSearcher {
	return &DualSearcher{spaces: spaces, logger: logger}
}

// WithSpaceTimeout bounds each per-space search. Zero disables the bound.
func (d *DualSearcher) WithSpaceTimeout(timeout time.Duration) *DualSearcher {
	d.timeout = timeout
	return d
}

// Search returns the face and text hit lists, each best first and at most limit long.
// A nil vector skips its space without a call. The only error is the caller's context error,
// in which case no hits are returned.
func (d *DualSearcher) Search(
	ctx context.Context, face, text []float32, filters filter.Expression, limit int,
) (faceHits, textHits []hit.Hit, err error) {
	g, gctx := errgroup.WithContext(ctx)

	if len(face) > 0 {
		g.Go(func() error {
			faceHits = d.searchSpace(gctx, space.Face, face, filters, limit)
			return nil
		})
	}
	if len(text) > 0 {
		g.Go(func() error {
			textHits = d.searchSpace(gctx, space.Text, text, filters, limit)
			return nil
		})
	}

	// tasks never return errors; a failed space is already degraded
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return faceHits, textHits, nil
}

func (d *DualSearcher) searchSpace(
	ctx context.Context, sp space.Space, vector []float32, filters filter.Expression, limit int,
) []hit.Hit {
	parent := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	hits, err := d.spaces.Search(ctx, sp, vector, filters, limit)
	elapsed := time.Since(start)

	if err != nil && parent.Err() != nil {
		// The caller gave up; Search returns its error, so nothing is degraded.
		metrics.SpaceSearchDuration.WithLabelValues(string(sp), "cancelled").Observe(elapsed.Seconds())
		return nil
	}
	if err != nil {
		metrics.SpaceSearchDuration.WithLabelValues(string(sp), "error").Observe(elapsed.Seconds())
		metrics.SpaceDegradedTotal.WithLabelValues(string(sp)).Inc()
		d.logger.Warn("Space search failed, treating as empty",
			zap.String("space", string(sp)),
			zap.Int("limit", limit),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil
	}

	metrics.SpaceSearchDuration.WithLabelValues(string(sp), "ok").Observe(elapsed.Seconds())

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
