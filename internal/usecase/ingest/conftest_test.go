package ingest

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/space"
)

type upsertCall struct {
	space space.Space
	rec   space.Record
}

type mockSpaces struct {
	calls    []upsertCall
	upsertFn func(sp space.Space, rec space.Record) error
	existing map[space.Space]map[string]bool
	hasErr   error
	deleted  []string
	delErr   error
}

func (m *mockSpaces) Has(_ context.Context, sp space.Space, pid string) (bool, error) {
	if m.hasErr != nil {
		return false, m.hasErr
	}
	return m.existing[sp][pid], nil
}

func (m *mockSpaces) Delete(_ context.Context, pid string) error {
	m.deleted = append(m.deleted, pid)
	return m.delErr
}

func (m *mockSpaces) Upsert(_ context.Context, sp space.Space, rec space.Record) error {
	m.calls = append(m.calls, upsertCall{space: sp, rec: rec})
	if m.upsertFn != nil {
		return m.upsertFn(sp, rec)
	}
	return nil
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

type mockLister struct {
	records map[record.Kind][]record.Record
	err     error
	pages   int
}

func (m *mockLister) List(_ context.Context, k record.Kind, after string, limit int) ([]record.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.pages++
	var out []record.Record
	for _, r := range m.records[k] {
		if r.PID > after && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *mockSpaces, *mockText, *mockFace) {
	t.Helper()
	sp := &mockSpaces{}
	text := &mockText{vec: []float32{0.1, 0.2, 0.3}}
	face := &mockFace{vec: []float32{0.6, 0.8}}
	return New(sp, text, face, zap.NewNop()), sp, text, face
}

func intPtr(v int) *int { return &v }

func spacesOf(calls []upsertCall) []space.Space {
	out := make([]space.Space, len(calls))
	for i, c := range calls {
		out[i] = c.space
	}
	return out
}
