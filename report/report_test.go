package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFormatter struct {
	events []string
	err    error
}

func (f *recordingFormatter) StartReport(r *Report) error {
	f.events = append(f.events, "start report "+r.PathString())
	return nil
}

func (f *recordingFormatter) StartSuite(_ *Report, s *Suite) error {
	f.events = append(f.events, "start suite "+s.Name)
	return nil
}

func (f *recordingFormatter) FinishTest(_ *Report, _ *Suite, t *Test) error {
	f.events = append(f.events, "finish test "+t.Name+" "+t.Status.String())
	return nil
}

func (f *recordingFormatter) FinishSuite(_ *Report, s *Suite) error {
	f.events = append(f.events, "finish suite "+s.Name)
	return f.err
}

func (f *recordingFormatter) FinishReport(r *Report) error {
	f.events = append(f.events, "finish report "+r.State().String())
	return nil
}

var baseTime = time.Date(2012, 4, 3, 9, 30, 0, 0, time.UTC)

func Test_GivenReportWithFormatter_WhenLifecycleRuns_ThenFormatterIsNotifiedInOrder(t *testing.T) {
	// Given
	formatter := &recordingFormatter{}
	r := New([]string{"i386", "OFF"}, []Property{{Name: "Architecture", Value: "i386"}}, baseTime)
	r.AddFormatter(formatter)
	require.NoError(t, r.Begin())
	require.NoError(t, r.Start())

	// When
	suiteIdx, err := r.AddSuite("FooTests", 0, baseTime)
	require.NoError(t, err)
	testIdx, err := r.AddTest(suiteIdx, "testA")
	require.NoError(t, err)
	require.NoError(t, r.CompleteTest(suiteIdx, testIdx, StatusPassed, 10*time.Millisecond))
	require.NoError(t, r.FinishSuite(suiteIdx, baseTime.Add(time.Second)))
	require.NoError(t, r.Finish(baseTime.Add(2*time.Second)))

	// Then
	assert.Equal(t, []string{
		"start report i386/OFF",
		"start suite FooTests",
		"finish test testA passed",
		"finish suite FooTests",
		"finish report finished",
	}, formatter.events)
	assert.Equal(t, StateFinished, r.State())
	assert.Equal(t, 2*time.Second, r.Duration())
	assert.Equal(t, time.Second, r.Suites[0].Duration())
	assert.Equal(t, []Property{{Name: "Architecture", Value: "i386"}}, r.Suites[0].Properties)
	assert.False(t, r.Failed())
}

func Test_GivenOpenSuite_WhenReportIsAborted_ThenSuiteIsForceClosedWithReportEndTime(t *testing.T) {
	// Given
	formatter := &recordingFormatter{}
	r := New(nil, nil, baseTime)
	r.AddFormatter(formatter)
	suiteIdx, err := r.AddSuite("FooTests", 0, baseTime)
	require.NoError(t, err)
	testIdx, err := r.AddTest(suiteIdx, "testA")
	require.NoError(t, err)
	end := baseTime.Add(3 * time.Second)

	// When
	err = r.Abort(end)

	// Then
	require.NoError(t, err)
	assert.Equal(t, StateAborted, r.State())
	assert.True(t, r.Suites[0].Closed())
	assert.Equal(t, end, r.Suites[0].EndTime)
	test, ok := r.Test(suiteIdx, testIdx)
	require.True(t, ok)
	assert.True(t, test.Pending())
	assert.True(t, r.Failed())
	assert.Contains(t, formatter.events, "finish suite FooTests")
}

func Test_GivenClosedReport_WhenFinishedAgain_ThenItIsANoOp(t *testing.T) {
	// Given
	formatter := &recordingFormatter{}
	r := New(nil, nil, baseTime)
	r.AddFormatter(formatter)
	require.NoError(t, r.Abort(baseTime.Add(time.Second)))
	eventCount := len(formatter.events)

	// When
	err := r.Finish(baseTime.Add(5 * time.Second))

	// Then
	require.NoError(t, err)
	assert.Equal(t, StateAborted, r.State())
	assert.Equal(t, baseTime.Add(time.Second), r.EndTime)
	assert.Len(t, formatter.events, eventCount)
}

func Test_GivenClosedReport_WhenMutated_ThenErrReportClosedIsReturned(t *testing.T) {
	// Given
	r := New(nil, nil, baseTime)
	suiteIdx, err := r.AddSuite("FooTests", 0, baseTime)
	require.NoError(t, err)
	require.NoError(t, r.Finish(baseTime))

	// When
	_, addSuiteErr := r.AddSuite("BarTests", 1, baseTime)
	_, addTestErr := r.AddTest(suiteIdx, "testA")
	startErr := r.Start()

	// Then
	assert.ErrorIs(t, addSuiteErr, ErrReportClosed)
	assert.ErrorIs(t, addTestErr, ErrReportClosed)
	assert.ErrorIs(t, startErr, ErrReportClosed)
}

func Test_GivenCompletedTest_WhenCompletedAgain_ThenOutcomeIsKept(t *testing.T) {
	// Given
	r := New(nil, nil, baseTime)
	suiteIdx, err := r.AddSuite("FooTests", 0, baseTime)
	require.NoError(t, err)
	testIdx, err := r.AddTest(suiteIdx, "testA")
	require.NoError(t, err)
	require.NoError(t, r.CompleteTest(suiteIdx, testIdx, StatusFailed, time.Second))

	// When
	err = r.CompleteTest(suiteIdx, testIdx, StatusPassed, 2*time.Second)

	// Then
	assert.ErrorIs(t, err, ErrTestCompleted)
	test, _ := r.Test(suiteIdx, testIdx)
	assert.Equal(t, StatusFailed, test.Status)
	assert.Equal(t, time.Second, test.Duration)
	assert.True(t, r.Failed())
	assert.Len(t, r.FailedTests(), 1)
}

func Test_GivenClosedSuite_WhenTestIsAdded_ThenErrSuiteClosedIsReturned(t *testing.T) {
	// Given
	r := New(nil, nil, baseTime)
	suiteIdx, err := r.AddSuite("FooTests", 0, baseTime)
	require.NoError(t, err)
	require.NoError(t, r.FinishSuite(suiteIdx, baseTime.Add(time.Second)))

	// When
	_, err = r.AddTest(suiteIdx, "testA")
	finishErr := r.FinishSuite(suiteIdx, baseTime.Add(time.Hour))

	// Then
	assert.ErrorIs(t, err, ErrSuiteClosed)
	assert.NoError(t, finishErr)
	assert.Equal(t, baseTime.Add(time.Second), r.Suites[0].EndTime)
}

func Test_GivenFailingFormatter_WhenSuiteFinishes_ThenFormatterErrorIsReturned(t *testing.T) {
	// Given
	writeErr := errors.New("disk full")
	r := New([]string{"x86_64", "OFF"}, nil, baseTime)
	r.AddFormatter(&recordingFormatter{err: writeErr})
	suiteIdx, err := r.AddSuite("FooTests", 0, baseTime)
	require.NoError(t, err)

	// When
	err = r.FinishSuite(suiteIdx, baseTime)

	// Then
	var formatterErr *FormatterError
	require.True(t, errors.As(err, &formatterErr))
	assert.Equal(t, "FooTests", formatterErr.Suite)
	assert.Equal(t, "x86_64/OFF", formatterErr.Report)
	assert.ErrorIs(t, err, writeErr)
}

func Test_GivenTestOutput_WhenErrorIsAdded_ThenOutputBecomesErrorContext(t *testing.T) {
	// Given
	test := newTest("testA")
	test.AppendOutput("line 1")
	test.AppendOutput("line 2")

	// When
	test.AddError("XCTAssertTrue failed", "FooTests.m:12")
	test.AppendOutput("trailing")

	// Then
	require.Len(t, test.Errors, 1)
	assert.Equal(t, ErrorRecord{
		Message:  "XCTAssertTrue failed",
		Location: "FooTests.m:12",
		Context:  []string{"line 1", "line 2"},
	}, test.Errors[0])
	assert.Equal(t, []string{"trailing"}, test.Output)
}

func TestSuite_Counts(t *testing.T) {
	suite := newSuite("FooTests", 0, nil, baseTime)
	for _, name := range []string{"testA", "testB", "testC", "testD"} {
		_, err := suite.addTest(name)
		require.NoError(t, err)
	}
	require.NoError(t, suite.Tests[0].complete(StatusPassed, 0))
	require.NoError(t, suite.Tests[1].complete(StatusFailed, 0))
	suite.Tests[1].AddError("failed", "FooTests.m:1")
	suite.Tests[2].AddError("failed", "FooTests.m:2")

	assert.Equal(t, 4, suite.TestCount())
	assert.Equal(t, 1, suite.PassedCount())
	assert.Equal(t, 1, suite.FailureCount())
	assert.Equal(t, 2, suite.ErrorCount())
	assert.True(t, suite.Failed())
	assert.Equal(t, time.Duration(0), suite.Duration())
}
