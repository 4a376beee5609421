package ingest

import (
	"context"

	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/space"
)

// SpaceWriter stores and removes embedding records.
type SpaceWriter interface {
	Upsert(ctx context.Context, sp space.Space, rec space.Record) error
	Has(ctx context.Context, sp space.Space, pid string) (bool, error)
	Delete(ctx context.Context, pid string) error
}

// RecordLister pages case records by PID.
type RecordLister interface {
	List(ctx context.Context, k record.Kind, after string, limit int) ([]record.Record, error)
}

// PhotoLoader reads the profile photo referenced by a record.
type PhotoLoader func(ctx context.Context, ref string) ([]byte, error)
