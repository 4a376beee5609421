package filter

import "github.com/kailas-cloud/casematch/internal/domain/space"

// Constraints are the optional scalar limits of a retrieval query.
// A nil pointer or empty Gender means the constraint is absent.
type Constraints struct {
	Gender    string
	AgeMin    *int
	AgeMax    *int
	HeightMin *int
	HeightMax *int
}

// IsEmpty reports whether no constraint is set.
func (c Constraints) IsEmpty() bool {
	return c.Gender == "" && c.AgeMin == nil && c.AgeMax == nil && c.HeightMin == nil && c.HeightMax == nil
}

// FromConstraints translates scalar constraints into an index filter.
//
// Every present constraint adds one AND-ed clause. Ranges stay open on an omitted
// bound. Gender is matched exactly as given; normalizing it is up to the caller.
// An inverted range is passed through and simply matches nothing.
func FromConstraints(c Constraints) Expression {
	var must []Condition

	if c.Gender != "" {
		must = append(must, Condition{key: space.FieldGender, match: c.Gender})
	}
	if r, ok := intRange(c.AgeMin, c.AgeMax); ok {
		must = append(must, Condition{key: space.FieldAge, rangeExpr: &r})
	}
	if r, ok := intRange(c.HeightMin, c.HeightMax); ok {
		must = append(must, Condition{key: space.FieldHeightCM, rangeExpr: &r})
	}

	return Expression{must: must}
}

func intRange(lo, hi *int) (Range, bool) {
	if lo == nil && hi == nil {
		return Range{}, false
	}
	var r Range
	if lo != nil {
		v := float64(*lo)
		r.gte = &v
	}
	if hi != nil {
		v := float64(*hi)
		r.lte = &v
	}
	return r, true
}
