package junit

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-xcode-test-report/report"
)

const failureType = "Failure"

type testSuite struct {
	XMLName    xml.Name    `xml:"testsuite"`
	Errors     int         `xml:"errors,attr"`
	Failures   int         `xml:"failures,attr"`
	Hostname   string      `xml:"hostname,attr"`
	Name       string      `xml:"name,attr"`
	Tests      int         `xml:"tests,attr"`
	Time       string      `xml:"time,attr"`
	Timestamp  string      `xml:"timestamp,attr"`
	Properties properties  `xml:"properties"`
	TestCases  []testCase  `xml:"testcase"`
	SystemOut  systemOut   `xml:"system-out"`
	SystemErr  systemError `xml:"system-err"`
}

type properties struct {
	Properties []property `xml:"property"`
}

type property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type testCase struct {
	ClassName string    `xml:"classname,attr"`
	Name      string    `xml:"name,attr"`
	Time      string    `xml:"time,attr"`
	Failures  []failure `xml:"failure"`
}

type failure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Location string `xml:",chardata"`
}

type systemOut struct {
	Value string `xml:",chardata"`
}

type systemError struct {
	Value string `xml:",chardata"`
}

// Formatter writes a TEST-<suite>.xml JUnit document for every finished suite.
type Formatter struct {
	logger      log.Logger
	fileManager fileutil.FileManager
	outputDir   string
	hostname    string
	written     map[string]bool
}

// NewFormatter ...
func NewFormatter(logger log.Logger, fileManager fileutil.FileManager, outputDir string) *Formatter {
	hostname, err := os.Hostname()
	if err != nil {
		logger.Warnf("Failed to get hostname: %s", err)
		hostname = "localhost"
	}

	return &Formatter{
		logger:      logger,
		fileManager: fileManager,
		outputDir:   outputDir,
		hostname:    hostname,
		written:     map[string]bool{},
	}
}

// OutputDir ...
func (f *Formatter) OutputDir() string {
	return f.outputDir
}

// FinishSuite renders the suite and writes it into the report's partition directory.
func (f *Formatter) FinishSuite(r *report.Report, s *report.Suite) error {
	content, err := f.Render(s)
	if err != nil {
		return err
	}

	pth := f.suitePath(r, s)
	if err := f.fileManager.Write(pth, content, 0644); err != nil {
		return fmt.Errorf("failed to write JUnit report (%s): %w", pth, err)
	}
	f.written[pth] = true

	f.logger.Debugf("JUnit report written: %s", pth)
	return nil
}

// Render returns the JUnit XML document of a finished suite.
func (f *Formatter) Render(s *report.Suite) (string, error) {
	if !s.Closed() {
		return "", fmt.Errorf("suite (%s) is not finished yet", s.Name)
	}

	doc := testSuite{
		Errors:    s.ErrorCount(),
		Failures:  s.FailureCount(),
		Hostname:  f.hostname,
		Name:      s.Name,
		Tests:     s.TestCount(),
		Time:      formatSeconds(s.Duration()),
		Timestamp: s.EndTime.UTC().Format(time.RFC3339),
	}
	for _, p := range s.Properties {
		doc.Properties.Properties = append(doc.Properties.Properties, property{Name: p.Name, Value: p.Value})
	}
	for _, test := range s.Tests {
		tc := testCase{
			ClassName: s.Name,
			Name:      test.Name,
			Time:      formatSeconds(test.Duration),
		}
		for _, record := range test.Errors {
			tc.Failures = append(tc.Failures, failure{
				Message:  record.Message,
				Type:     failureType,
				Location: record.Location,
			})
		}
		doc.TestCases = append(doc.TestCases, tc)
	}

	b, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode JUnit report of suite (%s): %w", s.Name, err)
	}
	return xml.Header + string(b) + "\n", nil
}

// suitePath returns the report file path.
// Suites with an already written name get their id appended, counting up from it until the name is unused.
func (f *Formatter) suitePath(r *report.Report, s *report.Suite) string {
	elems := []string{f.outputDir}
	for _, component := range r.Path {
		elems = append(elems, sanitizeFileName(component))
	}
	dir := filepath.Join(elems...)

	name := sanitizeFileName(s.Name)
	pth := filepath.Join(dir, fmt.Sprintf("TEST-%s.xml", name))
	for suffix := s.ID; f.written[pth]; suffix++ {
		pth = filepath.Join(dir, fmt.Sprintf("TEST-%s-%d.xml", name, suffix))
	}
	return pth
}

func sanitizeFileName(name string) string {
	return strings.NewReplacer("/", "-", ":", "-").Replace(name)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
