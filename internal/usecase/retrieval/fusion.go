package retrieval

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/casematch/internal/domain/search/candidate"
	"github.com/kailas-cloud/casematch/internal/domain/search/hit"
)

// accumulator gathers what both spaces said about one PID.
// A space that did not return the PID leaves its score at 0.
type accumulator struct {
	faceScore  float64
	textScore  float64
	display    hit.Display
	hasDisplay bool
}

// NormalizeWeights scales the weights to sum to 1. A zero sum means equal weights.
func NormalizeWeights(wFace, wText float64) (float64, float64) {
	sum := wFace + wText
	if sum <= 0 {
		return 0.5, 0.5
	}
	return wFace / sum, wText / sum
}

// Fuse merges the face and text hit lists into at most n candidates ranked by
// weighted score. Every PID from either list is a candidate. Within one list only the
// first occurrence of a PID counts. Equal scores are ordered by ascending PID.
func Fuse(face, text []hit.Hit, wFace, wText float64, n int) []candidate.Candidate {
	if n <= 0 {
		return nil
	}

	wf, wt := NormalizeWeights(wFace, wText)

	acc := make(map[string]*accumulator, len(face)+len(text))
	order := make([]string, 0, len(face)+len(text))

	get := func(pid string) *accumulator {
		a, ok := acc[pid]
		if !ok {
			a = &accumulator{}
			acc[pid] = a
			order = append(order, pid)
		}
		return a
	}

	seen := make(map[string]bool, len(face))
	for _, h := range face {
		if seen[h.PID()] {
			continue
		}
		seen[h.PID()] = true
		a := get(h.PID())
		a.faceScore = h.Score()
		a.display, a.hasDisplay = h.Display(), true
	}

	clear(seen)
	for _, h := range text {
		if seen[h.PID()] {
			continue
		}
		seen[h.PID()] = true
		a := get(h.PID())
		a.textScore = h.Score()
		if !a.hasDisplay {
			a.display, a.hasDisplay = h.Display(), true
		}
	}

	out := make([]candidate.Candidate, 0, len(order))
	for _, pid := range order {
		a := acc[pid]
		combined := wf*a.faceScore + wt*a.textScore
		out = append(out, candidate.New(pid, a.faceScore, a.textScore, combined, a.display))
	}

	slices.SortFunc(out, func(x, y candidate.Candidate) int {
		if c := cmp.Compare(y.Combined(), x.Combined()); c != 0 {
			return c
		}
		return cmp.Compare(x.PID(), y.PID())
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}
