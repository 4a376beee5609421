package casematch

import (
	"context"
	"fmt"
	"time"

	dombatch "github.com/kailas-cloud/casematch/internal/domain/batch"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/space"
	"github.com/kailas-cloud/casematch/internal/usecase/ingest"
)

// Upsert writes the face and text embeddings of p and returns the spaces written.
// A person with nothing to embed writes nothing.
func (c *Client) Upsert(ctx context.Context, p Person) (spaces []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("upsert", start, err) }()

	written, err := c.ingest.Ingest(ctx, personToItem(&p))
	if err != nil {
		return nil, fmt.Errorf("upsert %s: %w", p.PID, err)
	}
	return spaceNames(written), nil
}

// UpsertBatch writes up to 100 persons and reports a result per person, in input order.
func (c *Client) UpsertBatch(ctx context.Context, persons []Person) []BatchResult {
	start := time.Now()

	items := make([]ingest.Item, len(persons))
	for i := range persons {
		items[i] = personToItem(&persons[i])
	}

	results := c.ingest.IngestBatch(ctx, items)
	out := make([]BatchResult, len(results))
	var firstErr error
	for i, r := range results {
		out[i] = BatchResult{
			PID:    r.PID(),
			Status: string(r.Status()),
			Spaces: spaceNames(r.Spaces()),
			Err:    r.Err(),
		}
		if r.Status() == dombatch.StatusError && firstErr == nil {
			firstErr = r.Err()
		}
	}
	c.obs.observe("upsert_batch", start, firstErr)
	return out
}

// Delete removes the face and text embeddings of pid. Deleting an unknown PID is not an error.
func (c *Client) Delete(ctx context.Context, pid string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete", start, err) }()

	if err = c.ingest.Remove(ctx, pid); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

func personToItem(p *Person) ingest.Item {
	kind := record.Kind(p.Kind)
	if kind == "" {
		kind, _ = record.KindFromPID(p.PID)
	}
	return ingest.Item{
		PID:        p.PID,
		Kind:       kind,
		Name:       p.Name,
		Age:        p.Age,
		Gender:     p.Gender,
		HeightCM:   p.HeightCM,
		FaceVector: p.FaceVector,
		TextVector: p.TextVector,
		Photo:      p.Photo,
		Text:       p.Text,
	}
}

func spaceNames(spaces []space.Space) []string {
	if len(spaces) == 0 {
		return nil
	}
	out := make([]string, len(spaces))
	for i, sp := range spaces {
		out[i] = string(sp)
	}
	return out
}
