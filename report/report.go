package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrReportClosed is returned when a finished or aborted report is mutated.
var ErrReportClosed = errors.New("report already closed")

// State ...
type State int

// Report states ...
const (
	StateOpen State = iota
	StateStarted
	StateFinished
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateFinished:
		return "finished"
	case StateAborted:
		return "aborted"
	default:
		return "open"
	}
}

// Property is an ordered key/value metadata entry.
type Property struct {
	Name  string
	Value string
}

// FailedTest points to a failed test and the suite it belongs to.
type FailedTest struct {
	Suite *Suite
	Test  *Test
}

// Report is one partition of a test run (architecture and mode) with its suites.
type Report struct {
	Path       []string
	Properties []Property
	Suites     []*Suite
	StartTime  time.Time
	EndTime    time.Time

	state      State
	formatters []Formatter
}

// New creates an open report.
func New(path []string, properties []Property, start time.Time) *Report {
	return &Report{
		Path:       append([]string(nil), path...),
		Properties: append([]Property(nil), properties...),
		StartTime:  start,
	}
}

// AddFormatter attaches a formatter, it is notified about the events happening after the call.
func (r *Report) AddFormatter(formatter Formatter) {
	if formatter == nil {
		return
	}
	r.formatters = append(r.formatters, formatter)
}

// Formatters ...
func (r *Report) Formatters() []Formatter {
	return r.formatters
}

// State ...
func (r *Report) State() State {
	return r.state
}

// Closed returns true if the report is finished or aborted.
func (r *Report) Closed() bool {
	return r.state == StateFinished || r.state == StateAborted
}

// PathString returns the partition path joined with "/", empty for the default report.
func (r *Report) PathString() string {
	return strings.Join(r.Path, "/")
}

// Begin notifies the formatters implementing ReportStarter.
func (r *Report) Begin() error {
	if r.Closed() {
		return ErrReportClosed
	}
	for _, formatter := range r.formatters {
		starter, ok := formatter.(ReportStarter)
		if !ok {
			continue
		}
		if err := starter.StartReport(r); err != nil {
			return r.formatterError("", err)
		}
	}
	return nil
}

// Start marks the report as started, it is a no-op on a started report.
func (r *Report) Start() error {
	switch r.state {
	case StateOpen:
		r.state = StateStarted
		return nil
	case StateStarted:
		return nil
	default:
		return ErrReportClosed
	}
}

// Suite returns the suite at the given index.
func (r *Report) Suite(idx int) (*Suite, bool) {
	if idx < 0 || idx >= len(r.Suites) {
		return nil, false
	}
	return r.Suites[idx], true
}

// Test returns the test at the given indexes.
func (r *Report) Test(suiteIdx, testIdx int) (*Test, bool) {
	suite, ok := r.Suite(suiteIdx)
	if !ok || testIdx < 0 || testIdx >= len(suite.Tests) {
		return nil, false
	}
	return suite.Tests[testIdx], true
}

// AddSuite opens a new suite, the suite inherits the report's properties.
// The returned index stays valid for the lifetime of the report, even if a formatter fails.
func (r *Report) AddSuite(name string, id int, start time.Time) (int, error) {
	if r.Closed() {
		return -1, ErrReportClosed
	}

	suite := newSuite(name, id, r.Properties, start)
	r.Suites = append(r.Suites, suite)
	idx := len(r.Suites) - 1

	for _, formatter := range r.formatters {
		starter, ok := formatter.(SuiteStarter)
		if !ok {
			continue
		}
		if err := starter.StartSuite(r, suite); err != nil {
			return idx, r.formatterError(suite.Name, err)
		}
	}
	return idx, nil
}

// FinishSuite closes the suite and notifies the formatters.
// Closing an already closed suite is a no-op.
func (r *Report) FinishSuite(idx int, end time.Time) error {
	if r.Closed() {
		return ErrReportClosed
	}
	return r.finishSuite(idx, end)
}

// AddTest adds a pending test to the suite.
func (r *Report) AddTest(suiteIdx int, name string) (int, error) {
	if r.Closed() {
		return -1, ErrReportClosed
	}
	suite, ok := r.Suite(suiteIdx)
	if !ok {
		return -1, fmt.Errorf("suite index out of range: %d", suiteIdx)
	}
	return suite.addTest(name)
}

// CompleteTest records the outcome of a pending test and notifies the formatters.
func (r *Report) CompleteTest(suiteIdx, testIdx int, status Status, duration time.Duration) error {
	if r.Closed() {
		return ErrReportClosed
	}
	if status == StatusPending {
		return fmt.Errorf("invalid test outcome: %s", status)
	}
	suite, ok := r.Suite(suiteIdx)
	if !ok {
		return fmt.Errorf("suite index out of range: %d", suiteIdx)
	}
	test, ok := r.Test(suiteIdx, testIdx)
	if !ok {
		return fmt.Errorf("test index out of range: %d", testIdx)
	}

	if err := test.complete(status, duration); err != nil {
		return err
	}

	for _, formatter := range r.formatters {
		finisher, ok := formatter.(TestFinisher)
		if !ok {
			continue
		}
		if err := finisher.FinishTest(r, suite, test); err != nil {
			return r.formatterError(suite.Name, err)
		}
	}
	return nil
}

// Finish closes the open suites and moves the report into the finished state.
// Finishing a closed report is a no-op.
func (r *Report) Finish(end time.Time) error {
	return r.close(StateFinished, end)
}

// Abort closes the open suites and moves the report into the aborted state.
// Aborting a closed report is a no-op.
func (r *Report) Abort(end time.Time) error {
	return r.close(StateAborted, end)
}

// Duration returns the elapsed time of a closed report, or 0 if the report is still open.
func (r *Report) Duration() time.Duration {
	if !r.Closed() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// TestCount ...
func (r *Report) TestCount() int {
	count := 0
	for _, suite := range r.Suites {
		count += suite.TestCount()
	}
	return count
}

// FailedTests returns the failed tests in report order.
func (r *Report) FailedTests() []FailedTest {
	var failed []FailedTest
	for _, suite := range r.Suites {
		for _, test := range suite.Tests {
			if test.Failed() {
				failed = append(failed, FailedTest{Suite: suite, Test: test})
			}
		}
	}
	return failed
}

// Failed returns true if the report was aborted or any of its tests failed.
func (r *Report) Failed() bool {
	if r.state == StateAborted {
		return true
	}
	for _, suite := range r.Suites {
		if suite.Failed() {
			return true
		}
	}
	return false
}

func (r *Report) close(state State, end time.Time) error {
	if r.Closed() {
		return nil
	}

	// The report is closed even if a formatter fails, the first failure is returned.
	var firstErr error
	for idx, suite := range r.Suites {
		if suite.Closed() {
			continue
		}
		if err := r.finishSuite(idx, end); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	r.EndTime = end
	r.state = state

	for _, formatter := range r.formatters {
		finisher, ok := formatter.(ReportFinisher)
		if !ok {
			continue
		}
		if err := finisher.FinishReport(r); err != nil && firstErr == nil {
			firstErr = r.formatterError("", err)
		}
	}

	return firstErr
}

func (r *Report) finishSuite(idx int, end time.Time) error {
	suite, ok := r.Suite(idx)
	if !ok {
		return fmt.Errorf("suite index out of range: %d", idx)
	}
	if !suite.close(end) {
		return nil
	}

	for _, formatter := range r.formatters {
		if err := formatter.FinishSuite(r, suite); err != nil {
			return r.formatterError(suite.Name, err)
		}
	}
	return nil
}

func (r *Report) formatterError(suite string, err error) error {
	name := r.PathString()
	if name == "" {
		name = "default"
	}
	return &FormatterError{Report: name, Suite: suite, Err: err}
}
