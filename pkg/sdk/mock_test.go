package casematch

import (
	"context"

	dombatch "github.com/kailas-cloud/casematch/internal/domain/batch"
	domrecord "github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/search/candidate"
	"github.com/kailas-cloud/casematch/internal/domain/search/query"
	"github.com/kailas-cloud/casematch/internal/domain/space"
	healthuc "github.com/kailas-cloud/casematch/internal/usecase/health"
	"github.com/kailas-cloud/casematch/internal/usecase/ingest"
)

// --- retrievalUseCase mock ---

type mockRetrievalUC struct {
	searchFn func(ctx context.Context, q query.Query) ([]candidate.Candidate, error)
}

func (m *mockRetrievalUC) SearchAndCombine(ctx context.Context, q query.Query) ([]candidate.Candidate, error) {
	return m.searchFn(ctx, q)
}

// --- ingestUseCase mock ---

type mockIngestUC struct {
	ingestFn func(ctx context.Context, it ingest.Item) ([]space.Space, error)
	batchFn  func(ctx context.Context, items []ingest.Item) []dombatch.Result
	removeFn func(ctx context.Context, pid string) error
}

func (m *mockIngestUC) Ingest(ctx context.Context, it ingest.Item) ([]space.Space, error) {
	return m.ingestFn(ctx, it)
}

func (m *mockIngestUC) IngestBatch(ctx context.Context, items []ingest.Item) []dombatch.Result {
	return m.batchFn(ctx, items)
}

func (m *mockIngestUC) Remove(ctx context.Context, pid string) error {
	return m.removeFn(ctx, pid)
}

// --- spaceUseCase mock ---

type mockSpaceUC struct {
	ensureFn func(ctx context.Context, sp space.Space) (bool, error)
	countFn  func(ctx context.Context, sp space.Space) (int, error)
}

func (m *mockSpaceUC) EnsureIndex(ctx context.Context, sp space.Space) (bool, error) {
	return m.ensureFn(ctx, sp)
}

func (m *mockSpaceUC) Count(ctx context.Context, sp space.Space) (int, error) {
	return m.countFn(ctx, sp)
}

// --- recordStore mock ---

type mockRecordStore struct {
	counts domrecord.Counts
	err    error
	closed bool
}

func (m *mockRecordStore) Count(context.Context) (domrecord.Counts, error) { return m.counts, m.err }
func (m *mockRecordStore) Ping(context.Context) error { return m.err }
func (m *mockRecordStore) Close() error {
	m.closed = true
	return nil
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- embedders ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockFaceEmbedder struct {
	fn func(ctx context.Context, image []byte) ([]float32, error)
}

func (m *mockFaceEmbedder) EmbedFace(ctx context.Context, image []byte) ([]float32, error) {
	return m.fn(ctx, image)
}

// --- helpers ---

func testClient(retrieval retrievalUseCase, ing ingestUseCase, spaces spaceUseCase) *Client {
	return &Client{
		retrieval: retrieval,
		ingest:    ing,
		spaces:    spaces,
		defaults: searchDefaults{
			weightFace: 0.6,
			weightText: 0.4,
			topN:       10,
			poolLimit:  50,
			maxPool:    1000,
		},
	}
}

func intPtr(v int) *int { return &v }
