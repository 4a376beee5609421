package batch

import "github.com/kailas-cloud/casematch/internal/domain/space"

// ItemStatus is the ingestion outcome of a single record.
type ItemStatus string

// Item status values.
const (
	StatusOK      ItemStatus = "ok"
	StatusSkipped ItemStatus = "skipped"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of ingesting one record into the spaces.
type Result struct {
	pid    string
	status ItemStatus
	spaces []space.Space
	err    error
}

// NewOK creates a successful result listing the spaces written.
func NewOK(pid string, spaces []space.Space) Result {
	return Result{pid: pid, status: StatusOK, spaces: spaces}
}

// NewSkipped creates a result for a record that had nothing to embed.
func NewSkipped(pid string) Result { return Result{pid: pid, status: StatusSkipped} }

// NewError creates a failed result.
func NewError(pid string, err error) Result { return Result{pid: pid, status: StatusError, err: err} }

// PID returns the person identifier.
func (r Result) PID() string { return r.pid }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Spaces returns the spaces written.
func (r Result) Spaces() []space.Space { return r.spaces }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts results by outcome.
type Summary struct {
	OK      int
	Skipped int
	Failed  int
	Face    int
	Text    int
}

// Add accounts one result.
func (s *Summary) Add(r Result) {
	switch r.status {
	case StatusOK:
		s.OK++
	case StatusSkipped:
		s.Skipped++
	case StatusError:
		s.Failed++
	}
	for _, sp := range r.spaces {
		switch sp {
		case space.Face:
			s.Face++
		case space.Text:
			s.Text++
		}
	}
}
