package record

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/casematch/internal/domain/attribute"
)

// maxDescribeParts caps how many attribute phrases go into one description.
const maxDescribeParts = 15

// Descriptor is the structured description of a person, on either side of a match.
type Descriptor struct {
	Gender     string
	Age        *int
	HeightCM   *int
	Build      string
	Complexion string
	FaceShape  string
	HairColor  string
	EyeColor   string
	Marks      string
	Features   string
	Clothing   string
	Location   string
	FreeText   string
}

// Attributes returns the comparable subset of d.
func (d Descriptor) Attributes() attribute.Set {
	return attribute.Set{
		Age:       d.Age,
		Gender:    d.Gender,
		HeightCM:  d.HeightCM,
		HairColor: d.HairColor,
		EyeColor:  d.EyeColor,
	}
}

// Describe renders d as the sentence-style text that is embedded into the text space.
// Both stored records and queries go through it so their texts share one shape.
// It returns "" when d carries nothing.
func Describe(d Descriptor) string {
	var parts []string
	add := func(format, v string) {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, fmt.Sprintf(format, v))
		}
	}

	add("%s", d.Gender)
	if d.Age != nil {
		parts = append(parts, fmt.Sprintf("%d years old", *d.Age))
	}
	if d.HeightCM != nil {
		parts = append(parts, fmt.Sprintf("%dcm tall", *d.HeightCM))
	}
	add("%s build", d.Build)
	add("%s complexion", d.Complexion)
	add("%s face", d.FaceShape)
	add("%s hair", d.HairColor)
	add("%s eyes", d.EyeColor)
	add("Marks: %s", d.Marks)
	add("%s", d.Features)
	add("Clothing: %s", d.Clothing)
	add("Location: %s", d.Location)
	add("%s", d.FreeText)

	if len(parts) == 0 {
		return ""
	}
	if len(parts) > maxDescribeParts {
		parts = parts[:maxDescribeParts]
	}
	return strings.Join(parts, ". ") + "."
}
