package casematch

import (
	"context"
	"fmt"
	"time"
)

// RecordStats are case record totals per register, broken down by case status.
// Records without a status count under "unknown".
type RecordStats struct {
	MissingPersons       int
	UnidentifiedBodies   int
	MissingByStatus      map[string]int
	UnidentifiedByStatus map[string]int
}

// Stats summarizes the index and, with WithRecords, the case database.
type Stats struct {
	Embeddings map[string]int // space → stored embeddings
	Records    *RecordStats   // nil without WithRecords
}

// Stats returns per-space embedding counts and, when a case database is
// configured, per-register record counts by status.
func (c *Client) Stats(ctx context.Context) (out Stats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("stats", start, err) }()

	if out.Embeddings, err = c.Count(ctx); err != nil {
		return Stats{}, err
	}
	if c.records == nil {
		return out, nil
	}

	counts, err := c.records.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count records: %w", err)
	}
	out.Records = &RecordStats{
		MissingPersons:       counts.MissingPersons,
		UnidentifiedBodies:   counts.UnidentifiedBodies,
		MissingByStatus:      counts.MissingByStatus,
		UnidentifiedByStatus: counts.UnidentifiedByStatus,
	}
	return out, nil
}
