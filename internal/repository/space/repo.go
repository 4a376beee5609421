package space

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/casematch/internal/db"
	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/search/filter"
	"github.com/kailas-cloud/casematch/internal/domain/search/hit"
	domspace "github.com/kailas-cloud/casematch/internal/domain/space"
)

// store is the consumer interface for space operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo reads and writes embedding records of the face and text spaces.
type Repo struct {
	store store
	dims  domspace.Dimensions
	hnsw  HNSWConfig
}

// New creates a space repository. dims holds the configured vector width of each space.
func New(s store, dims domspace.Dimensions) *Repo {
	return &Repo{store: s, dims: dims, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Dimensions returns the configured vector widths.
func (r *Repo) Dimensions() domspace.Dimensions { return r.dims }

// Search returns up to limit nearest neighbors of vector in sp, best first.
func (r *Repo) Search(
	ctx context.Context, sp domspace.Space, vector []float32, filters filter.Expression, limit int,
) ([]hit.Hit, error) {
	q := &db.KNNQuery{
		IndexName:    sp.IndexName(),
		Filters:      filters,
		Vector:       vector,
		K:            limit,
		ReturnFields: displayFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", sp, err)
	}

	return entriesToHits(sp, sr), nil
}

// Upsert writes one embedding record into sp, replacing any previous one for the PID.
func (r *Repo) Upsert(ctx context.Context, sp domspace.Space, rec domspace.Record) error {
	if !sp.IsValid() {
		return fmt.Errorf("%w: unknown space %q", domain.ErrInvalidRequest, sp)
	}
	if err := r.dims.Check(sp, rec.Vector()); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrVectorDimMismatch, err)
	}

	if err := r.store.HSet(ctx, sp.Key(rec.PID()), recordToHash(&rec)); err != nil {
		return fmt.Errorf("upsert %s %s: %w", sp, rec.PID(), err)
	}
	return nil
}

// Count returns the number of embedding records in sp.
func (r *Repo) Count(ctx context.Context, sp domspace.Space) (int, error) {
	n, err := r.store.SearchCount(ctx, sp.IndexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", sp, err)
	}
	return n, nil
}

// Vector returns the stored vector of pid in sp, or nil when pid has no record there.
func (r *Repo) Vector(ctx context.Context, sp domspace.Space, pid string) ([]float32, error) {
	fields, err := r.store.HGetAll(ctx, sp.Key(pid))
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s vector of %s: %w", sp, pid, err)
	}

	vec, err := bytesToVector(fields[domspace.FieldVector])
	if err != nil {
		return nil, fmt.Errorf("decode %s vector of %s: %w", sp, pid, err)
	}
	return vec, nil
}

// Has reports whether pid has a record in sp.
func (r *Repo) Has(ctx context.Context, sp domspace.Space, pid string) (bool, error) {
	ok, err := r.store.Exists(ctx, sp.Key(pid))
	if err != nil {
		return false, fmt.Errorf("check %s record of %s: %w", sp, pid, err)
	}
	return ok, nil
}

// Delete removes the records of pid from both spaces. Missing records are not an error.
func (r *Repo) Delete(ctx context.Context, pid string) error {
	for _, sp := range domspace.All() {
		if err := r.store.Del(ctx, sp.Key(pid)); err != nil {
			return fmt.Errorf("delete %s record of %s: %w", sp, pid, err)
		}
	}
	return nil
}
