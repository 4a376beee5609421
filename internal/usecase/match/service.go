package match

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/search/candidate"
	"github.com/kailas-cloud/casematch/internal/domain/search/filter"
	"github.com/kailas-cloud/casematch/internal/domain/search/query"
)

// Default fusion weights of the match flow.
const (
	DefaultWeightFace = 0.6
	DefaultWeightText = 0.4
	DefaultMaxTopN    = 50
)

// Warnings reported when one modality could not be produced.
const (
	WarnTextEmbedding = "text embedding unavailable"
	WarnFaceEmbedding = "face embedding unavailable"
)

// Options configure the match flow.
type Options struct {
	WeightFace float64
	WeightText float64
	TopN       int
	MaxTopN    int
	PoolLimit  int

	// MaxPoolLimit caps a per-request pool_limit; zero means no cap.
	MaxPoolLimit int
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{
		WeightFace:   DefaultWeightFace,
		WeightText:   DefaultWeightText,
		TopN:         query.DefaultTopN,
		MaxTopN:      DefaultMaxTopN,
		PoolLimit:    query.DefaultPoolLimit,
		MaxPoolLimit: query.MaxPoolLimit,
	}
}

// Request describes a person to look for.
// SearchText, when set, replaces the text generated from Person.
// FaceVector takes precedence over Photo.
type Request struct {
	Person      record.Descriptor
	SearchText  string
	FaceVector  []float32
	Photo       []byte
	Constraints filter.Constraints
	WeightFace  *float64
	WeightText  *float64
	TopN        int
}

// Match is one enriched candidate.
type Match struct {
	Candidate  candidate.Candidate
	Record     record.Record
	Confidence float64
	Comparison attribute.Comparison
}

// Response is the outcome of a match search.
type Response struct {
	Description string
	UsedFace    bool
	UsedText    bool
	WeightFace  float64
	WeightText  float64
	Warnings    []string
	Matches     []Match
}

// Service runs the end-to-end match flow: embed, retrieve, enrich.
type Service struct {
	retriever Retriever
	records   RecordGetter
	vectors   VectorSource
	text      domain.Embedder
	face      domain.FaceEmbedder
	opts      Options
	logger    *zap.Logger
}

// New creates a match service. face can be nil when no face service is configured.
func New(
	retriever Retriever,
	records RecordGetter,
	text domain.Embedder,
	face domain.FaceEmbedder,
	opts Options,
	logger *zap.Logger,
) *Service {
	return &Service{
		retriever: retriever,
		records:   records,
		text:      text,
		face:      face,
		opts:      opts,
		logger:    logger,
	}
}

// WithVectors enables Similar, which reuses the stored embeddings of a known PID.
func (s *Service) WithVectors(v VectorSource) *Service {
	s.vectors = v
	return s
}

// Search embeds the request, retrieves ranked candidates and enriches each with its record.
// A failing embedder only drops its modality; the call fails with domain.ErrInvalidQuery
// when neither modality could be produced. Candidates without a record are dropped.
func (s *Service) Search(ctx context.Context, req Request) (Response, error) {
	wFace, wText, topN, err := s.resolve(req)
	if err != nil {
		return Response{}, err
	}

	resp := Response{WeightFace: wFace, WeightText: wText}

	resp.Description = strings.TrimSpace(req.SearchText)
	if resp.Description == "" {
		resp.Description = record.Describe(req.Person)
	}

	textVec := s.embedText(ctx, resp.Description, &resp)
	faceVec := s.embedFace(ctx, req, &resp)

	if textVec == nil && faceVec == nil {
		return resp, fmt.Errorf("%w: no embedding could be produced, provide a photo, a face vector or a description",
			domain.ErrInvalidQuery)
	}
	resp.UsedFace = faceVec != nil
	resp.UsedText = textVec != nil

	cands, err := s.retriever.SearchAndCombine(ctx, query.Query{
		FaceVector:  faceVec,
		TextVector:  textVec,
		Constraints: req.Constraints,
		WeightFace:  wFace,
		WeightText:  wText,
		TopN:        topN,
		PoolLimit:   s.opts.PoolLimit,
	})
	if err != nil {
		return resp, fmt.Errorf("retrieve candidates: %w", err)
	}

	resp.Matches, err = s.enrich(ctx, cands, req.Person.Attributes())
	if err != nil {
		return resp, err
	}
	return resp, nil
}

func (s *Service) resolve(req Request) (wFace, wText float64, topN int, err error) {
	wFace, wText = s.opts.WeightFace, s.opts.WeightText
	if req.WeightFace != nil {
		wFace = *req.WeightFace
	}
	if req.WeightText != nil {
		wText = *req.WeightText
	}
	if wFace < 0 || wText < 0 {
		return 0, 0, 0, fmt.Errorf("%w: weights must be non-negative", domain.ErrInvalidQuery)
	}

	topN = req.TopN
	if topN <= 0 {
		topN = s.opts.TopN
	}
	if s.opts.MaxTopN > 0 && topN > s.opts.MaxTopN {
		return 0, 0, 0, fmt.Errorf("%w: top_n must not exceed %d", domain.ErrInvalidQuery, s.opts.MaxTopN)
	}
	return wFace, wText, topN, nil
}

func (s *Service) embedText(ctx context.Context, text string, resp *Response) []float32 {
	if text == "" || s.text == nil {
		return nil
	}
	res, err := s.text.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("Text embedding failed, continuing without text", zap.Error(err))
		resp.Warnings = append(resp.Warnings, WarnTextEmbedding)
		return nil
	}
	if len(res.Embedding) == 0 {
		return nil
	}
	return res.Embedding
}

func (s *Service) embedFace(ctx context.Context, req Request, resp *Response) []float32 {
	if len(req.FaceVector) > 0 {
		return req.FaceVector
	}
	if len(req.Photo) == 0 {
		return nil
	}
	if s.face == nil {
		resp.Warnings = append(resp.Warnings, WarnFaceEmbedding)
		return nil
	}
	vec, err := s.face.EmbedFace(ctx, req.Photo)
	if err != nil {
		s.logger.Warn("Face embedding failed, continuing without face", zap.Error(err))
		resp.Warnings = append(resp.Warnings, WarnFaceEmbedding)
		return nil
	}
	if len(vec) == 0 {
		return nil
	}
	return vec
}

func (s *Service) enrich(ctx context.Context, cands []candidate.Candidate, want attribute.Set) ([]Match, error) {
	out := make([]Match, 0, len(cands))
	for _, c := range cands {
		rec, err := s.records.Get(ctx, c.PID())
		if errors.Is(err, domain.ErrRecordNotFound) {
			s.logger.Debug("Dropping candidate without record", zap.String("pid", c.PID()))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load record %q: %w", c.PID(), err)
		}

		out = append(out, Match{
			Candidate:  c,
			Record:     rec,
			Confidence: Confidence(c.Combined()),
			Comparison: attribute.Compare(want, rec.Attributes()),
		})
	}
	return out, nil
}

// Confidence converts a combined score into a percentage rounded to two decimals.
func Confidence(combined float64) float64 {
	return attribute.RoundPercent(combined * 100)
}
