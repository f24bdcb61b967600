package report

import (
	"errors"
	"time"
)

// ErrSuiteClosed is returned when a test is added to a finished suite.
var ErrSuiteClosed = errors.New("suite already finished")

// Suite is a named group of tests inside a Report.
type Suite struct {
	Name string
	// ID is unique for the lifetime of the parser that created the suite,
	// it tells apart suites with the same name.
	ID         int
	Properties []Property
	StartTime  time.Time
	EndTime    time.Time
	Tests      []*Test

	closed bool
}

func newSuite(name string, id int, properties []Property, start time.Time) *Suite {
	return &Suite{
		Name:       name,
		ID:         id,
		Properties: append([]Property(nil), properties...),
		StartTime:  start,
	}
}

// Closed ...
func (s *Suite) Closed() bool {
	return s.closed
}

// Duration returns the elapsed time between the suite start and end, or 0 if the suite is still open.
func (s *Suite) Duration() time.Duration {
	if !s.closed {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// TestCount ...
func (s *Suite) TestCount() int {
	return len(s.Tests)
}

// PassedCount ...
func (s *Suite) PassedCount() int {
	count := 0
	for _, test := range s.Tests {
		if test.Passed() {
			count++
		}
	}
	return count
}

// FailureCount returns the number of failed tests.
func (s *Suite) FailureCount() int {
	count := 0
	for _, test := range s.Tests {
		if test.Failed() {
			count++
		}
	}
	return count
}

// ErrorCount returns the number of tests with at least one error record.
func (s *Suite) ErrorCount() int {
	count := 0
	for _, test := range s.Tests {
		if len(test.Errors) > 0 {
			count++
		}
	}
	return count
}

// Failed ...
func (s *Suite) Failed() bool {
	return s.FailureCount() > 0
}

func (s *Suite) addTest(name string) (int, error) {
	if s.closed {
		return -1, ErrSuiteClosed
	}
	s.Tests = append(s.Tests, newTest(name))
	return len(s.Tests) - 1, nil
}

func (s *Suite) close(end time.Time) bool {
	if s.closed {
		return false
	}
	s.EndTime = end
	s.closed = true
	return true
}
