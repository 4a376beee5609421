package retrieval

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain/search/filter"
	"github.com/kailas-cloud/casematch/internal/domain/search/hit"
	"github.com/kailas-cloud/casematch/internal/domain/space"
)

type searchCall struct {
	space   space.Space
	vector  []float32
	filters filter.Expression
	limit   int
}

// mockSpaces implements SpaceSearcher for tests and records every call.
type mockSpaces struct {
	mu       sync.Mutex
	calls    []searchCall
	searchFn func(ctx context.Context, sp space.Space, vector []float32, filters filter.Expression, limit int) ([]hit.Hit, error)
}

func (m *mockSpaces) Search(
	ctx context.Context, sp space.Space, vector []float32, filters filter.Expression, limit int,
) ([]hit.Hit, error) {
	m.mu.Lock()
	m.calls = append(m.calls, searchCall{space: sp, vector: vector, filters: filters, limit: limit})
	m.mu.Unlock()

	if m.searchFn != nil {
		return m.searchFn(ctx, sp, vector, filters, limit)
	}
	return nil, nil
}

func (m *mockSpaces) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockSpaces) callFor(sp space.Space) (searchCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c.space == sp {
			return c, true
		}
	}
	return searchCall{}, false
}

// fixed returns per-space canned hit lists.
func fixed(face, text []hit.Hit) func(context.Context, space.Space, []float32, filter.Expression, int) ([]hit.Hit, error) {
	return func(_ context.Context, sp space.Space, _ []float32, _ filter.Expression, _ int) ([]hit.Hit, error) {
		if sp == space.Face {
			return face, nil
		}
		return text, nil
	}
}

func newTestService(t *testing.T) (*Service, *mockSpaces) {
	t.Helper()
	ms := &mockSpaces{}
	svc := New(NewDualSearcher(ms, zap.NewNop()), space.Dimensions{space.Face: 2, space.Text: 3})
	return svc, ms
}

func h(pid string, score float64) hit.Hit {
	return hit.New(pid, score, hit.Display{})
}

func faceVec() []float32 { return []float32{1, 0} }
func textVec() []float32 { return []float32{0, 1, 0} }
