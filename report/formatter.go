package report

import "fmt"

// Formatter is notified about every suite finished in the reports it is attached to.
// Notifications are synchronous: the parser waits for them before processing the next line.
type Formatter interface {
	FinishSuite(r *Report, s *Suite) error
}

// ReportStarter is implemented by formatters interested in new reports.
type ReportStarter interface {
	StartReport(r *Report) error
}

// ReportFinisher is implemented by formatters interested in finished or aborted reports.
type ReportFinisher interface {
	FinishReport(r *Report) error
}

// SuiteStarter ...
type SuiteStarter interface {
	StartSuite(r *Report, s *Suite) error
}

// TestFinisher ...
type TestFinisher interface {
	FinishTest(r *Report, s *Suite, t *Test) error
}

// FormatterError wraps a failure returned by a formatter.
type FormatterError struct {
	Report string
	Suite  string
	Err    error
}

func (e *FormatterError) Error() string {
	if e.Suite == "" {
		return fmt.Sprintf("formatter failed for report (%s): %s", e.Report, e.Err)
	}
	return fmt.Sprintf("formatter failed for suite (%s) of report (%s): %s", e.Suite, e.Report, e.Err)
}

func (e *FormatterError) Unwrap() error {
	return e.Err
}
