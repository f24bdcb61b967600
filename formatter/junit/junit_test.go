package junit

import (
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-xcode-test-report/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2012, 4, 3, 9, 30, 0, 0, time.UTC)

type failingFileManager struct {
	fileutil.FileManager
	err error
}

func (m failingFileManager) Write(string, string, os.FileMode) error {
	return m.err
}

func newReportWithSuite(t *testing.T, path []string, properties []report.Property, formatter *Formatter, suiteName string) (*report.Report, int) {
	r := report.New(path, properties, start)
	r.AddFormatter(formatter)
	suiteIdx, err := r.AddSuite(suiteName, 7, start)
	require.NoError(t, err)
	return r, suiteIdx
}

func addTest(t *testing.T, r *report.Report, suiteIdx int, name string, status report.Status, duration time.Duration) *report.Test {
	testIdx, err := r.AddTest(suiteIdx, name)
	require.NoError(t, err)
	test, ok := r.Test(suiteIdx, testIdx)
	require.True(t, ok)
	if status == report.StatusFailed {
		test.AddError("'a' should be equal to 'b'", "/src/FooTests.m:12")
	}
	require.NoError(t, r.CompleteTest(suiteIdx, testIdx, status, duration))
	return test
}

func readSuite(t *testing.T, pth string) testSuite {
	b, err := os.ReadFile(pth)
	require.NoError(t, err)
	var doc testSuite
	require.NoError(t, xml.Unmarshal(b, &doc))
	return doc
}

func Test_GivenFinishedSuite_WhenFormatted_ThenJUnitFileIsWritten(t *testing.T) {
	// Given
	outputDir := t.TempDir()
	formatter := NewFormatter(log.NewLogger(), fileutil.NewFileManager(), outputDir)
	properties := []report.Property{{Name: "Architecture", Value: "i386"}, {Name: "Mode", Value: "OFF"}}
	r, suiteIdx := newReportWithSuite(t, []string{"i386", "OFF"}, properties, formatter, "FooTests")
	addTest(t, r, suiteIdx, "testA", report.StatusPassed, 10*time.Millisecond)
	addTest(t, r, suiteIdx, "testB", report.StatusFailed, 1500*time.Millisecond)
	addTest(t, r, suiteIdx, "testC", report.StatusPassed, time.Second)

	// When
	err := r.FinishSuite(suiteIdx, start.Add(2500*time.Millisecond))

	// Then
	require.NoError(t, err)
	doc := readSuite(t, filepath.Join(outputDir, "i386", "OFF", "TEST-FooTests.xml"))
	assert.Equal(t, "FooTests", doc.Name)
	assert.Equal(t, 3, doc.Tests)
	assert.Equal(t, 1, doc.Failures)
	assert.Equal(t, 1, doc.Errors)
	assert.Equal(t, "2.5", doc.Time)
	assert.Equal(t, "2012-04-03T09:30:02Z", doc.Timestamp)
	assert.Equal(t, []property{{Name: "Architecture", Value: "i386"}, {Name: "Mode", Value: "OFF"}}, doc.Properties.Properties)
	require.Len(t, doc.TestCases, 3)
	assert.Equal(t, testCase{ClassName: "FooTests", Name: "testA", Time: "0.01"}, doc.TestCases[0])
	assert.Equal(t, testCase{
		ClassName: "FooTests",
		Name:      "testB",
		Time:      "1.5",
		Failures: []failure{{
			Message:  "'a' should be equal to 'b'",
			Type:     "Failure",
			Location: "/src/FooTests.m:12",
		}},
	}, doc.TestCases[1])
}

func Test_GivenEmptySuite_WhenRendered_ThenOptionalElementsArePresent(t *testing.T) {
	// Given
	formatter := NewFormatter(log.NewLogger(), fileutil.NewFileManager(), t.TempDir())
	r := report.New(nil, nil, start)
	suiteIdx, err := r.AddSuite("EmptyTests", 0, start)
	require.NoError(t, err)
	require.NoError(t, r.FinishSuite(suiteIdx, start))

	// When
	content, err := formatter.Render(r.Suites[suiteIdx])

	// Then
	require.NoError(t, err)
	assert.Contains(t, content, xml.Header)
	assert.Contains(t, content, `<testsuite errors="0" failures="0" hostname="`)
	assert.Contains(t, content, `tests="0" time="0" timestamp="2012-04-03T09:30:00Z">`)
	assert.Contains(t, content, "<properties></properties>")
	assert.Contains(t, content, "<system-out></system-out>")
	assert.Contains(t, content, "<system-err></system-err>")
}

func Test_GivenOpenSuite_WhenRendered_ThenReturnsError(t *testing.T) {
	// Given
	formatter := NewFormatter(log.NewLogger(), fileutil.NewFileManager(), t.TempDir())
	r := report.New(nil, nil, start)
	suiteIdx, err := r.AddSuite("FooTests", 0, start)
	require.NoError(t, err)

	// When
	_, err = formatter.Render(r.Suites[suiteIdx])

	// Then
	assert.Error(t, err)
}

func Test_GivenSuiteNameCollision_WhenFormatted_ThenSecondFileNameContainsSuiteID(t *testing.T) {
	// Given
	outputDir := t.TempDir()
	formatter := NewFormatter(log.NewLogger(), fileutil.NewFileManager(), outputDir)
	r := report.New(nil, nil, start)
	r.AddFormatter(formatter)

	// When
	firstIdx, err := r.AddSuite("Foo/Tests", 0, start)
	require.NoError(t, err)
	require.NoError(t, r.FinishSuite(firstIdx, start.Add(time.Second)))
	secondIdx, err := r.AddSuite("Foo/Tests", 1, start.Add(time.Second))
	require.NoError(t, err)
	require.NoError(t, r.FinishSuite(secondIdx, start.Add(2*time.Second)))

	// Then
	assert.FileExists(t, filepath.Join(outputDir, "TEST-Foo-Tests.xml"))
	assert.FileExists(t, filepath.Join(outputDir, "TEST-Foo-Tests-1.xml"))
}

func Test_GivenSuiteNamedLikeAnIDSuffixedFile_WhenNamesCollide_ThenNoFileIsOverwritten(t *testing.T) {
	// Given
	outputDir := t.TempDir()
	formatter := NewFormatter(log.NewLogger(), fileutil.NewFileManager(), outputDir)
	r := report.New(nil, nil, start)
	r.AddFormatter(formatter)

	// When
	for id, name := range []string{"Foo-3", "Foo", "Bar", "Foo"} {
		idx, err := r.AddSuite(name, id, start)
		require.NoError(t, err)
		require.NoError(t, r.FinishSuite(idx, start.Add(time.Second)))
	}

	// Then
	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.FileExists(t, filepath.Join(outputDir, "TEST-Foo-3.xml"))
	assert.FileExists(t, filepath.Join(outputDir, "TEST-Foo.xml"))
	assert.FileExists(t, filepath.Join(outputDir, "TEST-Foo-4.xml"))

	content, err := os.ReadFile(filepath.Join(outputDir, "TEST-Foo-3.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `name="Foo-3"`)
}

func Test_GivenWriteFailure_WhenSuiteFinishes_ThenErrorIsPropagated(t *testing.T) {
	// Given
	writeErr := errors.New("no space left on device")
	formatter := NewFormatter(log.NewLogger(), failingFileManager{err: writeErr}, t.TempDir())
	r, suiteIdx := newReportWithSuite(t, nil, nil, formatter, "FooTests")

	// When
	err := r.FinishSuite(suiteIdx, start)

	// Then
	assert.ErrorIs(t, err, writeErr)
}
