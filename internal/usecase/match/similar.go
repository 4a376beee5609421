package match

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/search/candidate"
	"github.com/kailas-cloud/casematch/internal/domain/search/filter"
	"github.com/kailas-cloud/casematch/internal/domain/search/query"
	"github.com/kailas-cloud/casematch/internal/domain/space"
)

// SimilarRequest asks for the records closest to an already indexed one.
type SimilarRequest struct {
	PID         string
	Constraints filter.Constraints
	TopN        int
	// OtherRegister keeps only records of the other register, so a missing person
	// is compared against unidentified bodies and the reverse.
	OtherRegister bool
}

// Similar ranks records against the stored face and text vectors of req.PID and enriches
// them like Search. The source record never appears in its own results.
func (s *Service) Similar(ctx context.Context, req SimilarRequest) (Response, error) {
	if s.vectors == nil {
		return Response{}, fmt.Errorf("%w: stored vectors are not available", domain.ErrInvalidRequest)
	}
	_, _, topN, err := s.resolve(Request{TopN: req.TopN})
	if err != nil {
		return Response{}, err
	}

	src, err := s.records.Get(ctx, req.PID)
	if err != nil {
		return Response{}, fmt.Errorf("load source record: %w", err)
	}

	faceVec, err := s.vectors.Vector(ctx, space.Face, req.PID)
	if err != nil {
		return Response{}, fmt.Errorf("read face vector: %w", err)
	}
	textVec, err := s.vectors.Vector(ctx, space.Text, req.PID)
	if err != nil {
		return Response{}, fmt.Errorf("read text vector: %w", err)
	}
	if faceVec == nil && textVec == nil {
		return Response{}, fmt.Errorf("%w: %s has no stored embeddings", domain.ErrInvalidQuery, req.PID)
	}

	resp := Response{
		Description: record.Describe(src.Descriptor()),
		UsedFace:    faceVec != nil,
		UsedText:    textVec != nil,
		WeightFace:  s.opts.WeightFace,
		WeightText:  s.opts.WeightText,
	}

	// The source ranks first against itself, and the register filter runs after fusion,
	// so ask for a wider list and cut it back below.
	want := topN + 1
	if req.OtherRegister {
		want = topN * 2
	}
	cands, err := s.retriever.SearchAndCombine(ctx, query.Query{
		FaceVector:  faceVec,
		TextVector:  textVec,
		Constraints: req.Constraints,
		WeightFace:  resp.WeightFace,
		WeightText:  resp.WeightText,
		TopN:        want,
		PoolLimit:   max(s.opts.PoolLimit, want),
	})
	if err != nil {
		return resp, fmt.Errorf("retrieve candidates: %w", err)
	}

	cands = keepRelated(cands, src, req.OtherRegister, topN)
	resp.Matches, err = s.enrich(ctx, cands, src.Attributes())
	if err != nil {
		return resp, err
	}
	return resp, nil
}

func keepRelated(cands []candidate.Candidate, src record.Record, otherRegister bool, n int) []candidate.Candidate {
	out := make([]candidate.Candidate, 0, min(len(cands), n))
	for _, c := range cands {
		if c.PID() == src.PID {
			continue
		}
		if otherRegister {
			if k, ok := record.KindFromPID(c.PID()); ok && k == src.Kind {
				continue
			}
		}
		out = append(out, c)
		if len(out) == n {
			break
		}
	}
	return out
}

