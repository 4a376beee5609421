package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/casematch/internal/domain/batch"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/space"
	recordrepo "github.com/kailas-cloud/casematch/internal/repository/record"
	"github.com/kailas-cloud/casematch/internal/usecase/ingest"
)

// maxLineBytes bounds one JSONL line; precomputed vectors make lines long.
const maxLineBytes = 4 << 20

var (
	flagFromRecords bool
	flagFile        string
	flagPageSize    int
	flagSkipExist   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed case records and write them into the face and text spaces",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !flagFromRecords && flagFile == "" {
			return errors.New("one of --from-records or --file is required")
		}

		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx := cmd.Context()
		store, err := openStore(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		spaces := newSpaceRepo(store, cfg.Spaces)
		for _, sp := range space.All() {
			if _, err := spaces.EnsureIndex(ctx, sp); err != nil {
				return fmt.Errorf("ensure %s index: %w", sp, err)
			}
		}

		_, textEmbedder := buildEmbedder(cfg, store, logger)
		_, faceEmbedder := buildFaceEmbedder(cfg, logger)
		docEmbedder := withInstruction(textEmbedder, cfg.Embedding.DocumentInstruction)
		svc := ingest.New(spaces, docEmbedder, faceEmbedder, logger).WithSkipExisting(flagSkipExist)
		load := photoLoader(cfg.Face.PhotoDir)

		var total dombatch.Summary
		if flagFromRecords {
			records, err := recordrepo.Open(ctx, cfg.Records.DSN)
			if err != nil {
				return fmt.Errorf("open case records: %w", err)
			}
			defer func() { _ = records.Close() }()

			sum, err := svc.IngestRecords(ctx, records, load, flagPageSize)
			merge(&total, sum)
			if err != nil {
				return fmt.Errorf("ingest records: %w", err)
			}
		}

		if flagFile != "" {
			sum, err := ingestFile(ctx, svc, flagFile, load, logger)
			merge(&total, sum)
			if err != nil {
				return err
			}
		}

		logger.Info("Ingest complete",
			zap.Int("ok", total.OK),
			zap.Int("skipped", total.Skipped),
			zap.Int("failed", total.Failed),
		)
		if total.Failed > 0 {
			return fmt.Errorf("%d items failed", total.Failed)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&flagFromRecords, "from-records", false, "ingest every record of the case database")
	ingestCmd.Flags().StringVar(&flagFile, "file", "", "ingest items from a JSONL file")
	ingestCmd.Flags().IntVar(&flagPageSize, "page-size", ingest.DefaultPageSize, "records read per page with --from-records")
	ingestCmd.Flags().BoolVar(&flagSkipExist, "skip-existing", false,
		"do not re-embed a PID whose vector is already stored in that space")
}

// fileItem is one line of an ingest JSONL file. Photo is a path relative to the photo directory.
type fileItem struct {
	PID        string    `json:"pid"`
	Kind       string    `json:"kind,omitempty"`
	Name       string    `json:"name,omitempty"`
	Age        *int      `json:"age,omitempty"`
	Gender     string    `json:"gender,omitempty"`
	HeightCM   *int      `json:"height_cm,omitempty"`
	FaceVector []float32 `json:"face_vector,omitempty"`
	TextVector []float32 `json:"text_vector,omitempty"`
	Photo      string    `json:"photo,omitempty"`
	Text       string    `json:"text,omitempty"`
}

func (f *fileItem) item() ingest.Item {
	kind := record.Kind(f.Kind)
	if kind == "" {
		kind, _ = record.KindFromPID(f.PID)
	}
	return ingest.Item{
		PID:        f.PID,
		Kind:       kind,
		Name:       f.Name,
		Age:        f.Age,
		Gender:     f.Gender,
		HeightCM:   f.HeightCM,
		FaceVector: f.FaceVector,
		TextVector: f.TextVector,
		Text:       f.Text,
	}
}

func ingestFile(
	ctx context.Context, svc *ingest.Service, path string, load ingest.PhotoLoader, logger *zap.Logger,
) (dombatch.Summary, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return dombatch.Summary{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var sum dombatch.Summary
	err = readItems(f, ingest.MaxBatchSize, func(batch []fileItem) error {
		items := make([]ingest.Item, len(batch))
		for i := range batch {
			items[i] = batch[i].item()
			if batch[i].Photo == "" || load == nil {
				continue
			}
			photo, err := load(ctx, batch[i].Photo)
			if err != nil {
				logger.Warn("Failed to load photo", zap.String("pid", batch[i].PID), zap.Error(err))
				continue
			}
			items[i].Photo = photo
		}
		for _, r := range svc.IngestBatch(ctx, items) {
			sum.Add(r)
			if r.Err() != nil {
				logger.Warn("Failed to ingest item", zap.String("pid", r.PID()), zap.Error(r.Err()))
			}
		}
		return ctx.Err()
	})
	if err != nil {
		return sum, fmt.Errorf("ingest %s: %w", path, err)
	}
	return sum, nil
}

// readItems decodes JSONL from r and hands it to fn in batches of at most size items.
// Blank lines are skipped; a malformed line stops the read.
func readItems(r io.Reader, size int, fn func([]fileItem) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	batch := make([]fileItem, 0, size)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var it fileItem
		if err := json.Unmarshal(raw, &it); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		batch = append(batch, it)
		if len(batch) == size {
			if err := fn(batch); err != nil {
				return err
			}
			batch = make([]fileItem, 0, size)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read line %d: %w", line+1, err)
	}
	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

func merge(dst *dombatch.Summary, src dombatch.Summary) {
	dst.OK += src.OK
	dst.Skipped += src.Skipped
	dst.Failed += src.Failed
	dst.Face += src.Face
	dst.Text += src.Text
}
