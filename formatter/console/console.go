package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/bitrise-steplib/steps-xcode-test-report/report"
	"github.com/charmbracelet/lipgloss"
)

// Formatter prints the live progress of the test run and a digest of the failures.
type Formatter struct {
	out io.Writer

	passStyle    lipgloss.Style
	failStyle    lipgloss.Style
	headingStyle lipgloss.Style
	dimStyle     lipgloss.Style
}

// NewFormatter ...
func NewFormatter(out io.Writer) *Formatter {
	renderer := lipgloss.NewRenderer(out)
	return &Formatter{
		out:          out,
		passStyle:    renderer.NewStyle().Foreground(lipgloss.Color("2")),
		failStyle:    renderer.NewStyle().Foreground(lipgloss.Color("1")),
		headingStyle: renderer.NewStyle().Bold(true),
		dimStyle:     renderer.NewStyle().Faint(true),
	}
}

// StartReport ...
func (f *Formatter) StartReport(r *report.Report) error {
	heading := "Begin tests"
	if pth := r.PathString(); pth != "" {
		heading += " (" + pth + ")"
	}
	_, err := fmt.Fprintln(f.out, f.headingStyle.Render(heading))
	return err
}

// StartSuite ...
func (f *Formatter) StartSuite(_ *report.Report, s *report.Suite) error {
	_, err := fmt.Fprintf(f.out, "%s: ", s.Name)
	return err
}

// FinishTest ...
func (f *Formatter) FinishTest(_ *report.Report, _ *report.Suite, t *report.Test) error {
	mark := f.passStyle.Render(".")
	if t.Failed() {
		mark = f.failStyle.Render("F")
	}
	_, err := fmt.Fprint(f.out, mark)
	return err
}

// FinishSuite ...
func (f *Formatter) FinishSuite(_ *report.Report, s *report.Suite) error {
	_, err := fmt.Fprintf(f.out, " [%d/%d]\n", s.PassedCount(), s.TestCount())
	return err
}

// FinishReport prints the failures of the report and its outcome.
func (f *Formatter) FinishReport(r *report.Report) error {
	for _, failed := range r.FailedTests() {
		if err := f.printFailure(failed.Suite, failed.Test); err != nil {
			return err
		}
	}

	status := f.passStyle.Render("PASSED")
	switch {
	case r.State() == report.StateAborted:
		status = f.failStyle.Render("ABORTED")
	case r.Failed():
		status = f.failStyle.Render("FAILED")
	}

	seconds := strconv.FormatFloat(r.Duration().Seconds(), 'f', -1, 64)
	_, err := fmt.Fprintf(f.out, "%s\n", f.headingStyle.Render(fmt.Sprintf("End tests (%s). Took %ss", status, seconds)))
	return err
}

const trailingOutputHeading = "There was this trailing output after the above failures:"

func (f *Formatter) printFailure(s *report.Suite, t *report.Test) error {
	lines := []string{"", f.failStyle.Render(fmt.Sprintf("[%s %s]", s.Name, t.Name))}
	for _, record := range t.Errors {
		lines = append(lines, record.Message, f.dimStyle.Render("at "+record.Location))
		if len(record.Context) > 0 {
			lines = append(lines, "Test Output:")
			for _, line := range record.Context {
				lines = append(lines, "> "+line)
			}
		}
	}
	if len(t.Output) > 0 {
		lines = append(lines, trailingOutputHeading)
		for _, line := range t.Output {
			lines = append(lines, "> "+line)
		}
	}
	lines = append(lines, "")

	for _, line := range lines {
		if _, err := fmt.Fprintln(f.out, line); err != nil {
			return err
		}
	}
	return nil
}
