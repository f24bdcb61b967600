package report

import (
	"errors"
	"time"
)

// ErrTestCompleted is returned when an outcome is recorded for a test that already has one.
var ErrTestCompleted = errors.New("test already completed")

// Status ...
type Status int

// Test statuses ...
const (
	StatusPending Status = iota
	StatusPassed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// ErrorRecord is a structured failure reported for a test case.
// Context holds the raw lines logged between the previous structured event and the error.
type ErrorRecord struct {
	Message  string
	Location string
	Context  []string
}

// Test ...
type Test struct {
	Name     string
	Status   Status
	Duration time.Duration
	Errors   []ErrorRecord
	// Output collects the raw lines logged since the last structured event of the test.
	Output []string
}

func newTest(name string) *Test {
	return &Test{Name: name}
}

// Passed ...
func (t *Test) Passed() bool {
	return t.Status == StatusPassed
}

// Failed ...
func (t *Test) Failed() bool {
	return t.Status == StatusFailed
}

// Pending ...
func (t *Test) Pending() bool {
	return t.Status == StatusPending
}

// AddError records a failure and moves the pending output lines into its context.
func (t *Test) AddError(message, location string) {
	t.Errors = append(t.Errors, ErrorRecord{
		Message:  message,
		Location: location,
		Context:  t.Output,
	})
	t.Output = nil
}

// AppendOutput ...
func (t *Test) AppendOutput(line string) {
	t.Output = append(t.Output, line)
}

func (t *Test) complete(status Status, duration time.Duration) error {
	if t.Status != StatusPending {
		return ErrTestCompleted
	}
	t.Status = status
	t.Duration = duration
	return nil
}
