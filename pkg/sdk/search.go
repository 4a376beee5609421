package casematch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/search/candidate"
	"github.com/kailas-cloud/casematch/internal/domain/search/filter"
	"github.com/kailas-cloud/casematch/internal/domain/search/query"
)

// Search ranks case records against the request, best first.
// Text and Photo are embedded with the configured providers when no vector is given;
// a provider failure fails the call.
func (c *Client) Search(ctx context.Context, req SearchRequest) (out []Candidate, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	q, err := c.buildQuery(ctx, req)
	if err != nil {
		return nil, err
	}

	cands, err := c.retrieval.SearchAndCombine(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out = make([]Candidate, len(cands))
	for i, cand := range cands {
		out[i] = candidateFromDomain(cand)
	}
	return out, nil
}

func (c *Client) buildQuery(ctx context.Context, req SearchRequest) (query.Query, error) {
	q := query.Query{
		FaceVector:  req.FaceVector,
		TextVector:  req.TextVector,
		Constraints: constraintsFromFilters(req.Filters),
		WeightFace:  c.defaults.weightFace,
		WeightText:  c.defaults.weightText,
		TopN:        c.defaults.topN,
		PoolLimit:   c.defaults.poolLimit,
	}
	if req.WeightFace != nil {
		q.WeightFace = *req.WeightFace
	}
	if req.WeightText != nil {
		q.WeightText = *req.WeightText
	}
	if req.TopN < 0 || req.PoolLimit < 0 {
		return query.Query{}, fmt.Errorf("%w: top_n and pool_limit must not be negative", domain.ErrInvalidRequest)
	}
	if req.TopN > 0 {
		q.TopN = req.TopN
	}
	if req.PoolLimit > 0 {
		q.PoolLimit = req.PoolLimit
	}
	if c.defaults.maxPool > 0 && q.PoolLimit > c.defaults.maxPool {
		return query.Query{}, fmt.Errorf("%w: pool_limit must not exceed %d",
			domain.ErrInvalidRequest, c.defaults.maxPool)
	}

	if len(q.FaceVector) == 0 && len(req.Photo) > 0 {
		if c.face == nil {
			return query.Query{}, fmt.Errorf("%w: face embedder not configured (use WithFaceEmbedder)",
				domain.ErrInvalidRequest)
		}
		vec, err := c.face.EmbedFace(ctx, req.Photo)
		if err != nil {
			return query.Query{}, fmt.Errorf("embed photo: %w", err)
		}
		q.FaceVector = vec
	}

	if len(q.TextVector) == 0 && req.Text != "" {
		if c.text == nil {
			return query.Query{}, fmt.Errorf("%w: embedder not configured (use WithEmbedder)",
				domain.ErrInvalidRequest)
		}
		res, err := c.text.Embed(ctx, req.Text)
		if err != nil {
			return query.Query{}, fmt.Errorf("embed text: %w", err)
		}
		q.TextVector = res.Embedding
	}

	return q, nil
}

func constraintsFromFilters(f Filters) filter.Constraints {
	return filter.Constraints{
		Gender:    f.Gender,
		AgeMin:    f.AgeMin,
		AgeMax:    f.AgeMax,
		HeightMin: f.HeightMin,
		HeightMax: f.HeightMax,
	}
}

func candidateFromDomain(c candidate.Candidate) Candidate {
	d := c.Display()
	return Candidate{
		PID:           c.PID(),
		CombinedScore: c.Combined(),
		FaceScore:     c.FaceScore(),
		TextScore:     c.TextScore(),
		Age:           d.Age,
		Gender:        d.Gender,
		HeightCM:      d.HeightCM,
	}
}
