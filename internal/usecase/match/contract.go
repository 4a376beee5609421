package match

import (
	"context"

	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/search/candidate"
	"github.com/kailas-cloud/casematch/internal/domain/search/query"
	"github.com/kailas-cloud/casematch/internal/domain/space"
)

// Retriever ranks candidates over both spaces.
type Retriever interface {
	SearchAndCombine(ctx context.Context, q query.Query) ([]candidate.Candidate, error)
}

// RecordGetter looks up case records by PID.
type RecordGetter interface {
	Get(ctx context.Context, pid string) (record.Record, error)
}

// VectorSource reads the stored embedding of a PID; nil means none is stored.
type VectorSource interface {
	Vector(ctx context.Context, sp space.Space, pid string) ([]float32, error)
}
