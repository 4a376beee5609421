package retrieval

import (
	"context"

	"github.com/kailas-cloud/casematch/internal/domain/search/filter"
	"github.com/kailas-cloud/casematch/internal/domain/search/hit"
	"github.com/kailas-cloud/casematch/internal/domain/space"
)

// SpaceSearcher runs a nearest-neighbor search in one space.
type SpaceSearcher interface {
	Search(
		ctx context.Context, sp space.Space,
		vector []float32, filters filter.Expression, limit int,
	) ([]hit.Hit, error)
}
