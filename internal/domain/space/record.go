package space

import "fmt"

// Metadata field names stored next to every vector.
const (
	FieldPID      = "pid"
	FieldAge      = "age"
	FieldGender   = "gender"
	FieldHeightCM = "height_cm"
	FieldVector   = "__vector"
)

// Record is one embedding as stored in a space: a PID, its vector, and scalar metadata.
// Age, Gender and HeightCM take part in filtering; Extra is kept for display only.
type Record struct {
	pid      string
	vector   []float32
	age      *int
	gender   string
	heightCM *int
	extra    map[string]string
}

// NewRecord validates and creates an embedding record.
func NewRecord(pid string, vector []float32, age *int, gender string, heightCM *int, extra map[string]string) (Record, error) {
	if pid == "" {
		return Record{}, fmt.Errorf("pid is required")
	}
	if len(vector) == 0 {
		return Record{}, fmt.Errorf("vector is required for %s", pid)
	}
	for k := range extra {
		switch k {
		case FieldPID, FieldAge, FieldGender, FieldHeightCM, FieldVector:
			return Record{}, fmt.Errorf("extra field %q is reserved", k)
		}
	}
	return Record{pid: pid, vector: vector, age: age, gender: gender, heightCM: heightCM, extra: extra}, nil
}

// PID returns the person identifier.
func (r *Record) PID() string { return r.pid }

// Vector returns the embedding.
func (r *Record) Vector() []float32 { return r.vector }

// Age returns the age in years, nil when unknown.
func (r *Record) Age() *int { return r.age }

// Gender returns the gender tag, empty when unknown.
func (r *Record) Gender() string { return r.gender }

// HeightCM returns the height in centimeters, nil when unknown.
func (r *Record) HeightCM() *int { return r.heightCM }

// Extra returns display-only descriptive fields.
func (r *Record) Extra() map[string]string { return r.extra }
