// Package attribute compares the physical description of two case records.
// The result is advisory: it is shown next to a ranked candidate and never feeds the ranking.
package attribute

import (
	"math"
	"strings"
)

// Tolerances for numeric attributes, inclusive.
const (
	AgeToleranceYears = 5
	HeightToleranceCM = 5
)

// Set is the comparable physical description of one person. Nil or empty means unknown.
type Set struct {
	Age       *int
	Gender    string
	HeightCM  *int
	HairColor string
	EyeColor  string
}

// Comparison holds per-field outcomes. A nil flag means the field was not
// known on both sides and was left out of the percentage.
type Comparison struct {
	AgeMatch         *bool
	AgeDifference    *int
	GenderMatch      *bool
	HeightMatch      *bool
	HeightDifference *int
	HairColorMatch   *bool
	EyeColorMatch    *bool
	// MatchPercentage is matched/evaluated*100, or 0 when nothing was evaluated.
	MatchPercentage float64
}

// Evaluated returns how many fields were comparable.
func (c Comparison) Evaluated() int {
	n := 0
	for _, f := range c.flags() {
		if f != nil {
			n++
		}
	}
	return n
}

// Matched returns how many comparable fields matched.
func (c Comparison) Matched() int {
	n := 0
	for _, f := range c.flags() {
		if f != nil && *f {
			n++
		}
	}
	return n
}

func (c Comparison) flags() []*bool {
	return []*bool{c.AgeMatch, c.GenderMatch, c.HeightMatch, c.HairColorMatch, c.EyeColorMatch}
}

// Compare evaluates a against b field by field.
func Compare(a, b Set) Comparison {
	var c Comparison

	if a.Age != nil && b.Age != nil {
		d := absDiff(*a.Age, *b.Age)
		c.AgeDifference = &d
		c.AgeMatch = boolPtr(d <= AgeToleranceYears)
	}
	if a.HeightCM != nil && b.HeightCM != nil {
		d := absDiff(*a.HeightCM, *b.HeightCM)
		c.HeightDifference = &d
		c.HeightMatch = boolPtr(d <= HeightToleranceCM)
	}
	c.GenderMatch = equalFold(a.Gender, b.Gender)
	c.HairColorMatch = equalFold(a.HairColor, b.HairColor)
	c.EyeColorMatch = equalFold(a.EyeColor, b.EyeColor)

	if total := c.Evaluated(); total > 0 {
		c.MatchPercentage = float64(c.Matched()) / float64(total) * 100
	}
	return c
}

// RoundPercent rounds a percentage to two decimals for display.
func RoundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}

func equalFold(a, b string) *bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return nil
	}
	return boolPtr(strings.EqualFold(a, b))
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func boolPtr(v bool) *bool { return &v }
