package chi

import (
	"context"

	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/search/candidate"
	"github.com/kailas-cloud/casematch/internal/domain/search/query"
	"github.com/kailas-cloud/casematch/internal/domain/space"
	matchuc "github.com/kailas-cloud/casematch/internal/usecase/match"
)

// Retriever ranks raw query vectors over both spaces.
type Retriever interface {
	SearchAndCombine(ctx context.Context, q query.Query) ([]candidate.Candidate, error)
}

// Matcher runs the attribute and photo driven match flow and the lookup of records
// similar to an indexed one.
type Matcher interface {
	Search(ctx context.Context, req matchuc.Request) (matchuc.Response, error)
	Similar(ctx context.Context, req matchuc.SimilarRequest) (matchuc.Response, error)
}

// RecordStore reads case records.
type RecordStore interface {
	Get(ctx context.Context, pid string) (record.Record, error)
	Count(ctx context.Context) (record.Counts, error)
}

// SpaceCounter counts the embeddings stored in a space.
type SpaceCounter interface {
	Count(ctx context.Context, sp space.Space) (int, error)
}
