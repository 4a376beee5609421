package space

import (
	"fmt"
	"strings"
)

// KeyPrefix namespaces every key casematch writes into the similarity index.
const KeyPrefix = "casematch:"

// Space is one of the two independent vector collections.
type Space string

// Vector space constants.
const (
	// Face holds embeddings produced by the face-recognition model.
	Face Space = "face"
	// Text holds embeddings produced by the text-embedding model.
	Text Space = "text"
)

// All lists the spaces in a fixed order.
func All() []Space { return []Space{Face, Text} }

// IsValid checks if the space is one of the supported values.
func (s Space) IsValid() bool {
	return s == Face || s == Text
}

// IndexName returns the FT index name of the space, e.g. "casematch:face:idx".
func (s Space) IndexName() string {
	return fmt.Sprintf("%s%s:idx", KeyPrefix, s)
}

// KeyPrefix returns the hash key prefix covered by the space index.
func (s Space) KeyPrefix() string {
	return fmt.Sprintf("%s%s:", KeyPrefix, s)
}

// Key returns the hash key holding the embedding record of pid.
func (s Space) Key(pid string) string {
	return s.KeyPrefix() + pid
}

// PIDFromKey strips the space prefix from a hash key.
func (s Space) PIDFromKey(key string) string {
	return strings.TrimPrefix(key, s.KeyPrefix())
}

// Dimensions maps each space to its configured vector width.
type Dimensions map[Space]int

// Check returns an error if vec does not match the configured width of s.
// A space without a configured width accepts any non-empty vector.
func (d Dimensions) Check(s Space, vec []float32) error {
	want, ok := d[s]
	if !ok || want <= 0 {
		return nil
	}
	if len(vec) != want {
		return fmt.Errorf("%s vector has %d dimensions, want %d", s, len(vec), want)
	}
	return nil
}
