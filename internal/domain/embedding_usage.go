package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage tallies the embedding work done for one request.
// The handler installs it in the context, the instrumented embedders write to it
// and the handler reports it in response headers.
type EmbeddingUsage struct {
	TotalTokens int
	TextCalls   int // includes cache hits, which consume no tokens
	FaceCalls   int
}

// NewContextWithUsage returns a context carrying a fresh usage tally.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext returns the usage tally in ctx, or nil.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddText records one text embedding and the tokens it consumed. Safe on a nil tally.
func (u *EmbeddingUsage) AddText(tokens int) {
	if u == nil {
		return
	}
	u.TextCalls++
	u.TotalTokens += tokens
}

// AddFace records one face embedding. Safe on a nil tally.
func (u *EmbeddingUsage) AddFace() {
	if u != nil {
		u.FaceCalls++
	}
}

// Used reports whether any embedding was produced.
func (u *EmbeddingUsage) Used() bool {
	return u != nil && (u.TextCalls > 0 || u.FaceCalls > 0)
}
