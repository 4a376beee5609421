package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/casematch/internal/domain"
	dombatch "github.com/kailas-cloud/casematch/internal/domain/batch"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/space"
)

func TestIngest_BothVectorsGiven(t *testing.T) {
	svc, sp, text, face := newTestService(t)

	written, err := svc.Ingest(context.Background(), Item{
		PID:        "UIDB-1",
		Age:        intPtr(44),
		Gender:     "Male",
		FaceVector: []float32{1, 0},
		TextVector: []float32{0, 0, 1},
	})
	require.NoError(t, err)

	assert.Equal(t, []space.Space{space.Face, space.Text}, written)
	assert.Equal(t, written, spacesOf(sp.calls))
	assert.Empty(t, text.texts)
	assert.Equal(t, 0, face.calls)

	rec := sp.calls[0].rec
	assert.Equal(t, "UIDB-1", rec.PID())
	assert.Equal(t, 44, *rec.Age())
	assert.Equal(t, "Male", rec.Gender())
	assert.Nil(t, rec.HeightCM())
}

func TestIngest_EmbedsTextAndPhoto(t *testing.T) {
	svc, sp, text, face := newTestService(t)

	written, err := svc.Ingest(context.Background(), Item{
		PID:   "MP-1",
		Kind:  record.MissingPerson,
		Name:  "Ravi",
		Photo: []byte("img"),
		Text:  "Male. 40 years old.",
	})
	require.NoError(t, err)

	assert.Equal(t, []space.Space{space.Face, space.Text}, written)
	assert.Equal(t, 1, face.calls)
	assert.Equal(t, []string{"Male. 40 years old."}, text.texts)
	assert.Equal(t, face.vec, sp.calls[0].rec.Vector())
	assert.Equal(t, text.vec, sp.calls[1].rec.Vector())
	assert.Equal(t, map[string]string{"kind": "missing_person", "name": "Ravi"}, sp.calls[1].rec.Extra())
}

func TestIngest_NothingToWrite(t *testing.T) {
	svc, sp, _, _ := newTestService(t)

	written, err := svc.Ingest(context.Background(), Item{PID: "MP-1", Text: "   "})
	require.NoError(t, err)
	assert.Empty(t, written)
	assert.Empty(t, sp.calls)
}

func TestIngest_InvalidPID(t *testing.T) {
	tests := []string{"", "MP 1", "MP-*", strings.Repeat("x", MaxPIDLength+1), "MP-\x00"}

	for _, pid := range tests {
		svc, sp, _, _ := newTestService(t)
		_, err := svc.Ingest(context.Background(), Item{PID: pid, TextVector: []float32{1}})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest, "pid %q", pid)
		assert.Empty(t, sp.calls)
	}
}

func TestIngest_FaceFailureKeepsText(t *testing.T) {
	svc, sp, _, face := newTestService(t)
	face.err = domain.ErrFaceProviderError

	written, err := svc.Ingest(context.Background(), Item{PID: "MP-1", Photo: []byte("img"), Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, []space.Space{space.Text}, written)
	assert.Equal(t, []space.Space{space.Text}, spacesOf(sp.calls))
}

func TestIngest_TextFailureReportsFaceWritten(t *testing.T) {
	svc, _, text, _ := newTestService(t)
	text.err = domain.ErrEmbeddingProviderError

	written, err := svc.Ingest(context.Background(), Item{PID: "MP-1", FaceVector: []float32{1, 0}, Text: "x"})
	require.ErrorIs(t, err, domain.ErrEmbeddingProviderError)
	assert.Equal(t, []space.Space{space.Face}, written)
}

func TestIngest_StoreError(t *testing.T) {
	svc, sp, _, _ := newTestService(t)
	sp.upsertFn = func(space.Space, space.Record) error { return domain.ErrVectorDimMismatch }

	written, err := svc.Ingest(context.Background(), Item{PID: "MP-1", FaceVector: []float32{1}})
	require.ErrorIs(t, err, domain.ErrVectorDimMismatch)
	assert.Empty(t, written)
}

func TestIngestBatch(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	results := svc.IngestBatch(context.Background(), []Item{
		{PID: "MP-1", Text: "x"},
		{PID: "", Text: "x"},
		{PID: "MP-2"},
	})

	require.Len(t, results, 3)
	assert.Equal(t, dombatch.StatusOK, results[0].Status())
	assert.Equal(t, dombatch.StatusError, results[1].Status())
	assert.Equal(t, dombatch.StatusSkipped, results[2].Status())
}

func TestIngestBatch_TooLarge(t *testing.T) {
	svc, sp, _, _ := newTestService(t)

	items := make([]Item, MaxBatchSize+1)
	for i := range items {
		items[i] = Item{PID: "MP-1", Text: "x"}
	}
	for _, r := range svc.IngestBatch(context.Background(), items) {
		assert.ErrorIs(t, r.Err(), domain.ErrInvalidRequest)
	}
	assert.Empty(t, sp.calls)
}

func TestIngestBatch_Cancelled(t *testing.T) {
	svc, sp, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := svc.IngestBatch(ctx, []Item{{PID: "MP-1", Text: "x"}})
	assert.ErrorIs(t, results[0].Err(), context.Canceled)
	assert.Empty(t, sp.calls)
}

func TestIngestRecords(t *testing.T) {
	svc, sp, text, face := newTestService(t)
	lister := &mockLister{records: map[record.Kind][]record.Record{
		record.MissingPerson: {
			{PID: "MP-1", Kind: record.MissingPerson, Gender: "Male", Age: intPtr(40), ProfilePhoto: "mp1.jpg"},
			{PID: "MP-2", Kind: record.MissingPerson},
			{PID: "MP-3", Kind: record.MissingPerson, Gender: "Female", ProfilePhoto: "missing.jpg"},
		},
		record.UnidentifiedBody: {
			{PID: "UIDB-1", Kind: record.UnidentifiedBody, Gender: "Male", HeightCM: intPtr(172)},
		},
	}}
	load := func(_ context.Context, ref string) ([]byte, error) {
		if ref == "missing.jpg" {
			return nil, errors.New("no such file")
		}
		return []byte(ref), nil
	}

	sum, err := svc.IngestRecords(context.Background(), lister, load, 2)
	require.NoError(t, err)

	assert.Equal(t, dombatch.Summary{OK: 3, Skipped: 1, Face: 1, Text: 3}, sum)
	assert.Equal(t, 1, face.calls)
	assert.Equal(t, []string{"Male. 40 years old.", "Female.", "Male. 172cm tall."}, text.texts)
	assert.Len(t, sp.calls, 4)
	// two pages of missing persons, one empty page each to stop, one page of bodies
	assert.Equal(t, 5, lister.pages)
}

func TestIngestRecords_ListError(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.IngestRecords(context.Background(), &mockLister{err: errors.New("locked")}, nil, 10)
	require.Error(t, err)
}

func TestItemFromRecord(t *testing.T) {
	r := record.Record{
		PID: "UIDB-9", Kind: record.UnidentifiedBody,
		Gender: "Male", Age: intPtr(60), Location: "Kurla", Description: "Found near tracks",
	}
	it := ItemFromRecord(&r)

	assert.Equal(t, "UIDB-9", it.PID)
	assert.Equal(t, "Male. 60 years old. Location: Kurla. Found near tracks.", it.Text)
	assert.Equal(t, 60, *it.Age)
}

func TestIngest_SkipExisting(t *testing.T) {
	svc, sp, text, face := newTestService(t)
	svc.WithSkipExisting(true)
	sp.existing = map[space.Space]map[string]bool{
		space.Face: {"MP-1": true},
	}

	written, err := svc.Ingest(context.Background(), Item{
		PID:   "MP-1",
		Photo: []byte("img"),
		Text:  "Female. 25 years old.",
	})
	require.NoError(t, err)

	assert.Equal(t, []space.Space{space.Text}, written)
	assert.Equal(t, 0, face.calls, "stored face vector must not be re-embedded")
	assert.Len(t, text.texts, 1)
}

func TestIngest_SkipExistingStillWritesGivenVectors(t *testing.T) {
	svc, sp, _, _ := newTestService(t)
	svc.WithSkipExisting(true)
	sp.existing = map[space.Space]map[string]bool{
		space.Face: {"MP-1": true},
		space.Text: {"MP-1": true},
	}

	written, err := svc.Ingest(context.Background(), Item{PID: "MP-1", FaceVector: []float32{1, 0}})
	require.NoError(t, err)
	assert.Equal(t, []space.Space{space.Face}, written)
}

func TestIngest_SkipExistingCheckFails(t *testing.T) {
	svc, sp, text, _ := newTestService(t)
	svc.WithSkipExisting(true)
	sp.hasErr = errors.New("connection refused")

	_, err := svc.Ingest(context.Background(), Item{PID: "MP-1", Text: "anything"})
	require.Error(t, err)
	assert.Empty(t, text.texts)
}

func TestRemove(t *testing.T) {
	svc, sp, _, _ := newTestService(t)

	require.NoError(t, svc.Remove(context.Background(), "UIDB-3"))
	assert.Equal(t, []string{"UIDB-3"}, sp.deleted)

	err := svc.Remove(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Len(t, sp.deleted, 1)

	sp.delErr = errors.New("READONLY")
	require.Error(t, svc.Remove(context.Background(), "UIDB-3"))
}
