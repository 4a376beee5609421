package retrieval

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/search/candidate"
	"github.com/kailas-cloud/casematch/internal/domain/search/filter"
	"github.com/kailas-cloud/casematch/internal/domain/search/query"
	"github.com/kailas-cloud/casematch/internal/domain/space"
	"github.com/kailas-cloud/casematch/internal/metrics"
)

// Service ranks candidates for a query over both spaces.
// It is stateless and safe for concurrent use.
type Service struct {
	searcher *DualSearcher
	dims     space.Dimensions
}

// New creates a retrieval service. dims holds the configured vector width of each space.
func New(searcher *DualSearcher, dims space.Dimensions) *Service {
	return &Service{searcher: searcher, dims: dims}
}

// SearchAndCombine validates q, searches both spaces and fuses the results into at most q.TopN candidates.
// It fails with domain.ErrInvalidQuery when no vector is supplied and with domain.ErrVectorDimMismatch when a
// vector does not match its space; neither case touches the index. Spaces that fail are treated as empty,
// so an unreachable index yields an empty list, not an error.
func (s *Service) SearchAndCombine(ctx context.Context, q query.Query) ([]candidate.Candidate, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if q.HasFace() {
		if err := s.dims.Check(space.Face, q.FaceVector); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorDimMismatch, err)
		}
	}
	if q.HasText() {
		if err := s.dims.Check(space.Text, q.TextVector); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorDimMismatch, err)
		}
	}
	if q.TopN <= 0 {
		return []candidate.Candidate{}, nil
	}

	expr := filter.FromConstraints(q.Constraints)

	faceHits, textHits, err := s.searcher.Search(ctx, q.FaceVector, q.TextVector, expr, q.PoolSize())
	if err != nil {
		return nil, fmt.Errorf("search spaces: %w", err)
	}

	out := Fuse(faceHits, textHits, q.WeightFace, q.WeightText, q.TopN)
	metrics.FusedCandidates.Observe(float64(len(out)))

	if out == nil {
		out = []candidate.Candidate{}
	}
	return out, nil
}
