package space

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/casematch/internal/db"
	domspace "github.com/kailas-cloud/casematch/internal/domain/space"
)

// EnsureIndex creates the FT index of sp if it does not exist yet.
// It reports whether an index was created. An existing index is left untouched,
// even when its schema differs.
func (r *Repo) EnsureIndex(ctx context.Context, sp domspace.Space) (bool, error) {
	dim := r.dims[sp]
	if dim <= 0 {
		return false, fmt.Errorf("no vector dimension configured for %s space", sp)
	}

	exists, err := r.store.IndexExists(ctx, sp.IndexName())
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", sp, err)
	}
	if exists {
		return false, nil
	}

	def, err := buildIndex(sp, dim, r.hnsw)
	if err != nil {
		return false, fmt.Errorf("build index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		// lost a race with a concurrent setup
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", sp, err)
	}
	return true, nil
}

// RecreateIndex drops the FT index of sp, if any, and creates it again with the current
// width and HNSW settings. Stored hashes survive and are re-indexed in the background.
func (r *Repo) RecreateIndex(ctx context.Context, sp domspace.Space) error {
	if err := r.store.DropIndex(ctx, sp.IndexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", sp, err)
	}
	if _, err := r.EnsureIndex(ctx, sp); err != nil {
		return err
	}
	return nil
}

// buildIndex defines the hash schema shared by both spaces: scalar filters plus an HNSW/COSINE vector.
func buildIndex(sp domspace.Space, dim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(sp.IndexName()).
		Prefix(sp.KeyPrefix()).
		Tag(domspace.FieldPID).
		Tag(domspace.FieldGender).
		Numeric(domspace.FieldAge).
		Numeric(domspace.FieldHeightCM).
		VectorHNSW(domspace.FieldVector, "vector", dim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
}
