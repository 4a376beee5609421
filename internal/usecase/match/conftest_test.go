package match

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/search/candidate"
	"github.com/kailas-cloud/casematch/internal/domain/search/hit"
	"github.com/kailas-cloud/casematch/internal/domain/search/query"
	"github.com/kailas-cloud/casematch/internal/domain/space"
)

type mockRetriever struct {
	mu      sync.Mutex
	queries []query.Query
	result  []candidate.Candidate
	err     error
}

func (m *mockRetriever) SearchAndCombine(_ context.Context, q query.Query) ([]candidate.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	return m.result, m.err
}

type mockRecords struct {
	records map[string]record.Record
	err     error
}

func (m *mockRecords) Get(_ context.Context, pid string) (record.Record, error) {
	if m.err != nil {
		return record.Record{}, m.err
	}
	r, ok := m.records[pid]
	if !ok {
		return record.Record{}, domain.ErrRecordNotFound
	}
	return r, nil
}

type mockText struct {
	vec   []float32
	err   error
	texts []string
}

func (m *mockText) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockFace struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockFace) EmbedFace(_ context.Context, _ []byte) ([]float32, error) {
	m.calls++
	return m.vec, m.err
}

type fixture struct {
	svc       *Service
	retriever *mockRetriever
	records   *mockRecords
	text      *mockText
	face      *mockFace
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		retriever: &mockRetriever{},
		records:   &mockRecords{records: map[string]record.Record{}},
		text:      &mockText{vec: []float32{0.1, 0.2, 0.3}},
		face:      &mockFace{vec: []float32{0.6, 0.8}},
	}
	f.svc = New(f.retriever, f.records, f.text, f.face, DefaultOptions(), zap.NewNop())
	return f
}

func (f *fixture) lastQuery(t *testing.T) query.Query {
	t.Helper()
	if len(f.retriever.queries) == 0 {
		t.Fatal("retriever was not called")
	}
	return f.retriever.queries[len(f.retriever.queries)-1]
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func cand(pid string, combined float64) candidate.Candidate {
	return candidate.New(pid, combined, combined, combined, hit.Display{})
}

type mockVectors struct {
	vectors map[space.Space]map[string][]float32
	err     error
}

func (m *mockVectors) Vector(_ context.Context, sp space.Space, pid string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vectors[sp][pid], nil
}
