package record

import (
	"strings"

	"github.com/kailas-cloud/casematch/internal/domain/attribute"
)

// Kind tells which register a case record belongs to.
type Kind string

// Record kinds.
const (
	MissingPerson    Kind = "missing_person"
	UnidentifiedBody Kind = "unidentified_body"
)

// PID prefixes of each register.
const (
	MissingPersonPrefix    = "MP-"
	UnidentifiedBodyPrefix = "UIDB-"
)

// KindFromPID infers the register from the PID prefix.
func KindFromPID(pid string) (Kind, bool) {
	switch {
	case strings.HasPrefix(pid, UnidentifiedBodyPrefix):
		return UnidentifiedBody, true
	case strings.HasPrefix(pid, MissingPersonPrefix):
		return MissingPerson, true
	default:
		return "", false
	}
}

// StatusUnknown groups records that carry no case status.
const StatusUnknown = "unknown"

// Counts holds per-register record totals and their breakdown by case status.
type Counts struct {
	MissingPersons       int
	UnidentifiedBodies   int
	MissingByStatus      map[string]int
	UnidentifiedByStatus map[string]int
}

// Record is a read-only view of one case record.
// For a missing person Location and Date describe the last sighting;
// for an unidentified body they describe where and when it was found.
type Record struct {
	PID                 string
	Kind                Kind
	Name                string
	Age                 *int
	Gender              string
	HeightCM            *int
	Build               string
	HairColor           string
	EyeColor            string
	DistinguishingMarks string
	Clothing            string
	Description         string
	Location            string
	Date                string
	PoliceStation       string
	Status              string
	ProfilePhoto        string
}

// Attributes returns the comparable physical description.
func (r *Record) Attributes() attribute.Set {
	return attribute.Set{
		Age:       r.Age,
		Gender:    r.Gender,
		HeightCM:  r.HeightCM,
		HairColor: r.HairColor,
		EyeColor:  r.EyeColor,
	}
}

// Descriptor returns the fields used to build the searchable text of the record.
func (r *Record) Descriptor() Descriptor {
	return Descriptor{
		Gender:    r.Gender,
		Age:       r.Age,
		HeightCM:  r.HeightCM,
		Build:     r.Build,
		HairColor: r.HairColor,
		EyeColor:  r.EyeColor,
		Marks:     r.DistinguishingMarks,
		Clothing:  r.Clothing,
		Location:  r.Location,
		FreeText:  r.Description,
	}
}
