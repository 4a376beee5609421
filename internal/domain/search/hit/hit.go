package hit

// Display carries the scalar metadata returned with a hit for presentation.
// It never takes part in ranking.
type Display struct {
	Age      *int
	Gender   string
	HeightCM *int
}

// Hit is one nearest-neighbor match in a single vector space.
type Hit struct {
	pid     string
	score   float64
	display Display
}

// New creates a hit.
func New(pid string, score float64, display Display) Hit {
	return Hit{pid: pid, score: score, display: display}
}

// PID returns the person identifier.
func (h Hit) PID() string { return h.pid }

// Score returns the similarity score in the space's metric, higher is closer.
func (h Hit) Score() float64 { return h.score }

// Display returns the scalar metadata stored with the vector.
func (h Hit) Display() Display { return h.display }
