package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain"
	dombatch "github.com/kailas-cloud/casematch/internal/domain/batch"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/space"
)

// Limits.
const (
	MaxPIDLength    = 128
	MaxBatchSize    = 100
	DefaultPageSize = 100
)

// Extra fields stored next to the vectors for display.
const (
	extraKind = "kind"
	extraName = "name"
)

// Item is one person to write into the spaces.
// Text is embedded when TextVector is empty; Photo is embedded when FaceVector is empty.
type Item struct {
	PID        string
	Kind       record.Kind
	Name       string
	Age        *int
	Gender     string
	HeightCM   *int
	FaceVector []float32
	TextVector []float32
	Photo      []byte
	Text       string
}

// ItemFromRecord builds an item from a case record, describing it as text.
func ItemFromRecord(r *record.Record) Item {
	return Item{
		PID:      r.PID,
		Kind:     r.Kind,
		Name:     r.Name,
		Age:      r.Age,
		Gender:   r.Gender,
		HeightCM: r.HeightCM,
		Text:     record.Describe(r.Descriptor()),
	}
}

// Service writes face and text embeddings with their scalar metadata.
type Service struct {
	spaces       SpaceWriter
	text         domain.Embedder
	face         domain.FaceEmbedder
	skipExisting bool
	logger       *zap.Logger
}

// New creates an ingest service. text and face may be nil; items then need precomputed vectors.
func New(spaces SpaceWriter, text domain.Embedder, face domain.FaceEmbedder, logger *zap.Logger) *Service {
	return &Service{spaces: spaces, text: text, face: face, logger: logger}
}

// WithSkipExisting makes the service leave a space alone when it already holds a record
// for the PID and the item would have to be embedded to produce one. Precomputed vectors
// are always written.
func (s *Service) WithSkipExisting(skip bool) *Service {
	s.skipExisting = skip
	return s
}

// Remove deletes every embedding record of pid.
func (s *Service) Remove(ctx context.Context, pid string) error {
	if err := validatePID(pid); err != nil {
		return err
	}
	if err := s.spaces.Delete(ctx, pid); err != nil {
		return fmt.Errorf("remove %s: %w", pid, err)
	}
	return nil
}

// Ingest writes the face vector and the text vector of one item and returns the spaces written.
// An item with nothing to embed writes nothing and returns no spaces.
func (s *Service) Ingest(ctx context.Context, it Item) ([]space.Space, error) {
	if err := validatePID(it.PID); err != nil {
		return nil, err
	}

	var written []space.Space

	faceVec, err := s.faceVector(ctx, it)
	if err != nil {
		return written, err
	}
	if faceVec != nil {
		if err := s.write(ctx, space.Face, it, faceVec); err != nil {
			return written, err
		}
		written = append(written, space.Face)
	}

	textVec, err := s.textVector(ctx, it)
	if err != nil {
		return written, err
	}
	if textVec != nil {
		if err := s.write(ctx, space.Text, it, textVec); err != nil {
			return written, err
		}
		written = append(written, space.Text)
	}

	return written, nil
}

// IngestBatch ingests items one by one and reports per-item outcomes.
func (s *Service) IngestBatch(ctx context.Context, items []Item) []dombatch.Result {
	results := make([]dombatch.Result, len(items))

	if len(items) > MaxBatchSize {
		for i := range items {
			results[i] = dombatch.NewError(items[i].PID,
				fmt.Errorf("batch size exceeds %d: %w", MaxBatchSize, domain.ErrInvalidRequest))
		}
		return results
	}

	for i := range items {
		if err := ctx.Err(); err != nil {
			results[i] = dombatch.NewError(items[i].PID, err)
			continue
		}
		results[i] = s.ingestOne(ctx, items[i])
	}
	return results
}

// IngestRecords walks every record of both registers and ingests it.
// loadPhoto may be nil; records without a loadable photo get a text vector only.
func (s *Service) IngestRecords(
	ctx context.Context, lister RecordLister, loadPhoto PhotoLoader, pageSize int,
) (dombatch.Summary, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var sum dombatch.Summary
	for _, kind := range []record.Kind{record.MissingPerson, record.UnidentifiedBody} {
		after := ""
		for {
			page, err := lister.List(ctx, kind, after, pageSize)
			if err != nil {
				return sum, fmt.Errorf("list %s: %w", kind, err)
			}
			if len(page) == 0 {
				break
			}

			for i := range page {
				it := ItemFromRecord(&page[i])
				if loadPhoto != nil && page[i].ProfilePhoto != "" {
					photo, err := loadPhoto(ctx, page[i].ProfilePhoto)
					if err != nil {
						s.logger.Warn("Failed to load profile photo",
							zap.String("pid", it.PID), zap.String("photo", page[i].ProfilePhoto), zap.Error(err))
					} else {
						it.Photo = photo
					}
				}
				r := s.ingestOne(ctx, it)
				sum.Add(r)
				if r.Err() != nil {
					s.logger.Warn("Failed to ingest record", zap.String("pid", it.PID), zap.Error(r.Err()))
				}
			}

			if err := ctx.Err(); err != nil {
				return sum, err
			}
			after = page[len(page)-1].PID
		}
	}

	s.logger.Info("Ingestion finished",
		zap.Int("ok", sum.OK),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed),
		zap.Int("face_vectors", sum.Face),
		zap.Int("text_vectors", sum.Text),
	)
	return sum, nil
}

func (s *Service) ingestOne(ctx context.Context, it Item) dombatch.Result {
	written, err := s.Ingest(ctx, it)
	switch {
	case err != nil:
		return dombatch.NewError(it.PID, err)
	case len(written) == 0:
		return dombatch.NewSkipped(it.PID)
	default:
		return dombatch.NewOK(it.PID, written)
	}
}

func (s *Service) faceVector(ctx context.Context, it Item) ([]float32, error) {
	if len(it.FaceVector) > 0 {
		return it.FaceVector, nil
	}
	if len(it.Photo) == 0 || s.face == nil {
		return nil, nil
	}
	if done, err := s.alreadyStored(ctx, space.Face, it.PID); err != nil || done {
		return nil, err
	}
	vec, err := s.face.EmbedFace(ctx, it.Photo)
	if err != nil {
		// A photo without a detectable face still leaves the text space usable.
		if errors.Is(err, domain.ErrFaceProviderError) {
			s.logger.Warn("Face embedding failed, skipping face space", zap.String("pid", it.PID), zap.Error(err))
			return nil, nil
		}
		return nil, fmt.Errorf("embed face for %s: %w", it.PID, err)
	}
	return vec, nil
}

func (s *Service) textVector(ctx context.Context, it Item) ([]float32, error) {
	if len(it.TextVector) > 0 {
		return it.TextVector, nil
	}
	if strings.TrimSpace(it.Text) == "" || s.text == nil {
		return nil, nil
	}
	if done, err := s.alreadyStored(ctx, space.Text, it.PID); err != nil || done {
		return nil, err
	}
	res, err := s.text.Embed(ctx, it.Text)
	if err != nil {
		return nil, fmt.Errorf("embed text for %s: %w", it.PID, err)
	}
	return res.Embedding, nil
}

func (s *Service) alreadyStored(ctx context.Context, sp space.Space, pid string) (bool, error) {
	if !s.skipExisting {
		return false, nil
	}
	ok, err := s.spaces.Has(ctx, sp, pid)
	if err != nil {
		return false, fmt.Errorf("check existing %s vector for %s: %w", sp, pid, err)
	}
	if ok {
		s.logger.Debug("Keeping existing vector", zap.String("pid", pid), zap.String("space", string(sp)))
	}
	return ok, nil
}

func (s *Service) write(ctx context.Context, sp space.Space, it Item, vec []float32) error {
	extra := map[string]string{}
	if it.Kind != "" {
		extra[extraKind] = string(it.Kind)
	}
	if it.Name != "" {
		extra[extraName] = it.Name
	}

	rec, err := space.NewRecord(it.PID, vec, it.Age, it.Gender, it.HeightCM, extra)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if err := s.spaces.Upsert(ctx, sp, rec); err != nil {
		return fmt.Errorf("upsert %s vector for %s: %w", sp, it.PID, err)
	}
	return nil
}

func validatePID(pid string) error {
	if pid == "" {
		return fmt.Errorf("%w: pid is required", domain.ErrInvalidRequest)
	}
	if len(pid) > MaxPIDLength {
		return fmt.Errorf("%w: pid longer than %d characters", domain.ErrInvalidRequest, MaxPIDLength)
	}
	for _, r := range pid {
		if unicode.IsSpace(r) || r == '*' || !unicode.IsPrint(r) {
			return fmt.Errorf("%w: pid %q contains invalid characters", domain.ErrInvalidRequest, pid)
		}
	}
	return nil
}
