package candidate

import "github.com/kailas-cloud/casematch/internal/domain/search/hit"

// Candidate is one fused result over both spaces.
// A space that did not return the PID contributes a score of exactly 0.
type Candidate struct {
	pid       string
	faceScore float64
	textScore float64
	combined  float64
	display   hit.Display
}

// New creates a fused candidate.
func New(pid string, faceScore, textScore, combined float64, display hit.Display) Candidate {
	return Candidate{
		pid:       pid,
		faceScore: faceScore,
		textScore: textScore,
		combined:  combined,
		display:   display,
	}
}

// PID returns the person identifier.
func (c Candidate) PID() string { return c.pid }

// FaceScore returns the face-space similarity, 0 when absent from face results.
func (c Candidate) FaceScore() float64 { return c.faceScore }

// TextScore returns the text-space similarity, 0 when absent from text results.
func (c Candidate) TextScore() float64 { return c.textScore }

// Combined returns the weighted sum of both similarities.
func (c Candidate) Combined() float64 { return c.combined }

// Display returns the scalars taken from the face hit, or the text hit when there is no face hit.
func (c Candidate) Display() hit.Display { return c.display }
