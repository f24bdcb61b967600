package ocunit

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-xcode-test-report/report"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const maxLineSize = 1024 * 1024

type level int

const (
	levelIdle level = iota
	levelReport
	levelSuite
	levelTest
)

// cursor points to the open report, and the open suite and test in it by index.
type cursor struct {
	level  level
	report *report.Report
	suite  int
	test   int

	// provisional is set while the report start time comes from the wall clock.
	provisional bool
}

func (c *cursor) reset() {
	*c = cursor{suite: -1, test: -1}
}

// Option ...
type Option func(*Parser)

// WithFormatters attaches the formatters to every report the parser creates.
func WithFormatters(formatters ...report.Formatter) Option {
	return func(p *Parser) {
		p.formatters = append(p.formatters, formatters...)
	}
}

// WithReportHook registers a callback invoked once for every new report, before it receives any event.
func WithReportHook(hook func(*report.Report)) Option {
	return func(p *Parser) {
		p.reportHooks = append(p.reportHooks, hook)
	}
}

// WithClock sets the time source used when a report is opened or force-closed before any log timestamp was seen.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

// Parser builds test reports from OCUnit and XCTest console output, one line at a time.
// A Parser is not safe for concurrent use.
type Parser struct {
	logger      log.Logger
	formatters  []report.Formatter
	reportHooks []func(*report.Report)
	now         func() time.Time

	lastTimestamp time.Time
	cursor        cursor
	nextSuiteID   int
	reports       []*report.Report
}

// NewParser ...
func NewParser(logger log.Logger, opts ...Option) *Parser {
	p := &Parser{
		logger: logger,
		now:    time.Now,
	}
	p.cursor.reset()
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse processes a single line of output.
// The returned error is always a formatter failure; unrecognised or malformed lines never fail.
func (p *Parser) Parse(line string) error {
	line = strings.ToValidUTF8(strings.TrimRight(line, "\r\n"), "\uFFFD")
	e := classify(line)
	if err := p.apply(e); err != nil {
		return fmt.Errorf("failed to process %s line (%s): %w", e.kind, line, err)
	}
	return nil
}

// ParseReader processes every line of the reader. The parser is not flushed at the end of the input.
func (p *Parser) ParseReader(r io.Reader) error {
	scanner := bufio.NewScanner(transform.NewReader(r, unicode.UTF8.NewDecoder()))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := p.Parse(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read test output: %w", err)
	}
	return nil
}

// Flush finishes the open report and appends it to the results.
// Calling Flush on a parser without an open report is a no-op.
func (p *Parser) Flush() error {
	if err := p.closeReport(false, p.clock()); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}

// Reports returns the closed reports in completion order.
func (p *Parser) Reports() []*report.Report {
	return p.reports
}

// Failed returns true if any report, including the open one, has a failed test or was aborted.
func (p *Parser) Failed() bool {
	for _, r := range p.reports {
		if r.Failed() {
			return true
		}
	}
	return p.cursor.report != nil && p.cursor.report.Failed()
}

func (p *Parser) apply(e event) error {
	if !e.timestamp.IsZero() {
		p.lastTimestamp = e.timestamp
	}

	switch e.kind {
	case eventPartition:
		return p.startPartition(e)
	case eventSuiteStarted:
		if e.aggregate {
			return p.startRun(e)
		}
		return p.startSuite(e)
	case eventSuiteFinished:
		if e.aggregate {
			if p.cursor.level == levelIdle {
				p.logger.Debugf("Test run finished without an open report: %s", e.line)
				return nil
			}
			return p.closeReport(false, e.timestamp)
		}
		return p.finishSuite(e)
	case eventTestStarted:
		return p.startTest(e)
	case eventTestPassed:
		return p.completeTest(e, report.StatusPassed)
	case eventTestFailed:
		return p.completeTest(e, report.StatusFailed)
	case eventError:
		p.addError(e)
		return nil
	case eventBuildFailed:
		return p.interrupt(false)
	case eventCrash:
		return p.interrupt(true)
	case eventNoise:
		return nil
	default:
		p.appendOutput(e.line)
		return nil
	}
}

// clock returns the last timestamp seen in the log, or the wall clock if the log had none yet.
func (p *Parser) clock() time.Time {
	if !p.lastTimestamp.IsZero() {
		return p.lastTimestamp
	}
	return p.now()
}

// interrupt closes the open report after a build failure or crash.
// Without an open report an empty one is opened and aborted, so the failure is not lost.
func (p *Parser) interrupt(crashed bool) error {
	if p.cursor.level == levelIdle {
		p.logger.Debugf("Test run interrupted before any report was opened")
		if err := p.openReport(nil, nil, p.clock()); err != nil {
			return err
		}
		return p.closeReport(true, p.clock())
	}
	return p.closeReport(crashed, p.clock())
}

func (p *Parser) startPartition(e event) error {
	if err := p.closeReport(false, p.clock()); err != nil {
		return err
	}

	path := []string{e.architecture, e.mode}
	properties := []report.Property{
		{Name: "Architecture", Value: e.architecture},
		{Name: "Mode", Value: e.mode},
	}
	provisional := p.lastTimestamp.IsZero()
	if err := p.openReport(path, properties, p.clock()); err != nil {
		return err
	}
	p.cursor.provisional = provisional
	return nil
}

// anchor moves a provisional report start to the first log timestamp of the report.
func (p *Parser) anchor(start time.Time) {
	if !p.cursor.provisional || start.IsZero() {
		return
	}
	p.cursor.report.StartTime = start
	p.cursor.provisional = false
}

func (p *Parser) startRun(e event) error {
	if p.cursor.level == levelIdle {
		if err := p.openReport(nil, nil, e.timestamp); err != nil {
			return err
		}
	}
	p.anchor(e.timestamp)
	return p.cursor.report.Start()
}

func (p *Parser) startSuite(e event) error {
	if p.cursor.level == levelIdle {
		if err := p.openReport(nil, nil, e.timestamp); err != nil {
			return err
		}
	}

	p.anchor(e.timestamp)

	r := p.cursor.report
	if p.cursor.level >= levelSuite {
		p.logger.Debugf("Suite started before the previous suite finished, closing the previous suite")
		err := r.FinishSuite(p.cursor.suite, e.timestamp)
		p.cursor.level = levelReport
		p.cursor.suite, p.cursor.test = -1, -1
		if err != nil {
			return err
		}
	}

	id := p.nextSuiteID
	p.nextSuiteID++

	idx, err := r.AddSuite(e.name, id, e.timestamp)
	if idx >= 0 {
		p.cursor.level = levelSuite
		p.cursor.suite = idx
		p.cursor.test = -1
	}
	return err
}

func (p *Parser) finishSuite(e event) error {
	if p.cursor.level < levelSuite {
		p.logger.Debugf("Suite finished without an open suite: %s", e.line)
		return nil
	}

	err := p.cursor.report.FinishSuite(p.cursor.suite, e.timestamp)
	p.cursor.level = levelReport
	p.cursor.suite, p.cursor.test = -1, -1
	return err
}

func (p *Parser) startTest(e event) error {
	if p.cursor.level < levelSuite {
		p.logger.Debugf("Test started without an open suite: %s", e.line)
		return nil
	}

	idx, err := p.cursor.report.AddTest(p.cursor.suite, e.name)
	if err != nil {
		return err
	}
	p.cursor.level = levelTest
	p.cursor.test = idx
	return nil
}

func (p *Parser) completeTest(e event, status report.Status) error {
	test, ok := p.currentTest()
	if !ok {
		p.logger.Debugf("Test %s without an open test: %s", status, e.line)
		return nil
	}
	if test.Name != e.name {
		p.logger.Debugf("Test %s for %s while %s is open, ignoring", status, e.name, test.Name)
		return nil
	}

	err := p.cursor.report.CompleteTest(p.cursor.suite, p.cursor.test, status, e.duration)
	if errors.Is(err, report.ErrTestCompleted) {
		p.logger.Debugf("Test %s already completed, ignoring: %s", test.Name, e.line)
		return nil
	}
	return err
}

func (p *Parser) addError(e event) {
	test, ok := p.currentTest()
	if !ok {
		p.logger.Debugf("Error reported without an open test: %s", e.line)
		return
	}
	test.AddError(e.message, e.location)
}

func (p *Parser) appendOutput(line string) {
	test, ok := p.currentTest()
	if !ok {
		return
	}
	test.AppendOutput(line)
}

func (p *Parser) currentTest() (*report.Test, bool) {
	if p.cursor.level != levelTest {
		return nil, false
	}
	return p.cursor.report.Test(p.cursor.suite, p.cursor.test)
}

func (p *Parser) openReport(path []string, properties []report.Property, start time.Time) error {
	r := report.New(path, properties, start)
	for _, formatter := range p.formatters {
		r.AddFormatter(formatter)
	}
	for _, hook := range p.reportHooks {
		hook(r)
	}

	p.cursor.reset()
	p.cursor.level = levelReport
	p.cursor.report = r

	return r.Begin()
}

// closeReport finishes or aborts the open report, appends it to the results and detaches the cursor.
// The report is appended even if a formatter fails.
func (p *Parser) closeReport(abort bool, end time.Time) error {
	if p.cursor.level == levelIdle {
		return nil
	}

	r := p.cursor.report
	p.cursor.reset()

	var err error
	if abort {
		err = r.Abort(end)
	} else {
		err = r.Finish(end)
	}
	p.reports = append(p.reports, r)

	return err
}
