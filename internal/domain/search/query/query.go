package query

import (
	"fmt"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/search/filter"
)

// Retrieval limits.
const (
	DefaultTopN      = 10
	DefaultPoolLimit = 50
	MaxPoolLimit     = 1000
)

// Query is one retrieval request over the face and text spaces.
// A nil vector means that modality was not supplied.
type Query struct {
	FaceVector  []float32
	TextVector  []float32
	Constraints filter.Constraints
	WeightFace  float64
	WeightText  float64
	TopN        int
	PoolLimit   int
}

// HasFace reports whether a face vector was supplied.
func (q Query) HasFace() bool { return len(q.FaceVector) > 0 }

// HasText reports whether a text vector was supplied.
func (q Query) HasText() bool { return len(q.TextVector) > 0 }

// Validate checks the query shape. It does not check vector widths.
func (q Query) Validate() error {
	if !q.HasFace() && !q.HasText() {
		return fmt.Errorf("%w: at least one of face or text vector is required", domain.ErrInvalidQuery)
	}
	if q.WeightFace < 0 || q.WeightText < 0 {
		return fmt.Errorf("%w: weights must be non-negative", domain.ErrInvalidQuery)
	}
	return nil
}

// PoolSize returns the per-space neighbor count, never smaller than TopN.
func (q Query) PoolSize() int {
	if q.PoolLimit < q.TopN {
		return q.TopN
	}
	return q.PoolLimit
}
