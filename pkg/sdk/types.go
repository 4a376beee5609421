package casematch

// Space names.
const (
	SpaceFace = "face"
	SpaceText = "text"
)

// Filters are optional scalar constraints; nil bounds and an empty gender are ignored.
// Gender is matched exactly as given.
type Filters struct {
	Gender    string
	AgeMin    *int
	AgeMax    *int
	HeightMin *int
	HeightMax *int
}

// SearchRequest describes one retrieval. A vector wins over the input it would be computed from:
// FaceVector over Photo and TextVector over Text. Nil weights and a zero TopN or PoolLimit take
// client defaults; PoolLimit may not exceed the client's maximum (WithMaxPoolLimit).
type SearchRequest struct {
	FaceVector []float32
	Photo      []byte
	TextVector []float32
	Text       string
	Filters    Filters
	WeightFace *float64
	WeightText *float64
	TopN       int
	PoolLimit  int
}

// Candidate is one ranked match. A space that did not return the PID scores 0.
type Candidate struct {
	PID           string
	CombinedScore float64
	FaceScore     float64
	TextScore     float64
	Age           *int
	Gender        string
	HeightCM      *int
}

// Person is one case record to write into the spaces.
// Kind defaults to the register implied by the PID prefix.
type Person struct {
	PID        string
	Kind       string
	Name       string
	Age        *int
	Gender     string
	HeightCM   *int
	FaceVector []float32
	Photo      []byte
	TextVector []float32
	Text       string
}

// BatchResult is the outcome of one person in a batch upsert.
type BatchResult struct {
	PID    string
	Status string // "ok", "skipped" or "error"
	Spaces []string
	Err    error
}
