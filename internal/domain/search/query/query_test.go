package query

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/casematch/internal/domain"
)

func TestValidate_NoVectors(t *testing.T) {
	err := Query{TopN: 10, WeightFace: 0.6, WeightText: 0.4}.Validate()
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestValidate_EmptySlicesCountAsAbsent(t *testing.T) {
	err := Query{FaceVector: []float32{}, TextVector: nil}.Validate()
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestValidate_SingleVector(t *testing.T) {
	tests := []struct {
		name string
		q    Query
	}{
		{"face only", Query{FaceVector: []float32{1}}},
		{"text only", Query{TextVector: []float32{1}}},
		{"zero weights", Query{FaceVector: []float32{1}, WeightFace: 0, WeightText: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.q.Validate(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_NegativeWeight(t *testing.T) {
	err := Query{TextVector: []float32{1}, WeightFace: -1}.Validate()
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestPoolSize(t *testing.T) {
	tests := []struct {
		topN, pool, want int
	}{
		{10, 50, 50},
		{10, 5, 10},
		{10, 0, 10},
		{0, 0, 0},
	}
	for _, tt := range tests {
		q := Query{TopN: tt.topN, PoolLimit: tt.pool}
		if got := q.PoolSize(); got != tt.want {
			t.Errorf("PoolSize(topN=%d, pool=%d) = %d, want %d", tt.topN, tt.pool, got, tt.want)
		}
	}
}
