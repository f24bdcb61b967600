package step

import (
	"fmt"

	"github.com/bitrise-io/go-utils/colorstring"
	"github.com/bitrise-io/go-utils/stringutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-xcode-test-report/report"
)

// Utils ...
type Utils interface {
	PrintLastLinesOfXcodebuildTestLog(rawXcodebuildOutput string, isRunSuccess bool)
	PrintReportSummary(reports []*report.Report)
}

type utils struct {
	logger log.Logger
}

// NewUtils ...
func NewUtils(logger log.Logger) Utils {
	return &utils{logger: logger}
}

func (u utils) PrintLastLinesOfXcodebuildTestLog(rawXcodebuildOutput string, isRunSuccess bool) {
	const lastLines = "\nLast lines of the test log:"
	if !isRunSuccess {
		u.logger.Errorf("%s", lastLines)
	} else {
		u.logger.Infof("%s", lastLines)
	}

	u.logger.Printf("%s", stringutil.LastNLines(rawXcodebuildOutput, 20))

	if !isRunSuccess {
		u.logger.Warnf("If you can't find the reason of the error in the log, please check the xcodebuild_test.log.")
	}

	u.logger.Infof("%s", colorstring.Magenta(`
The log file is stored in $BITRISE_DEPLOY_DIR, and its full path
is available in the $BITRISE_XCODEBUILD_TEST_LOG_PATH environment variable.

If you have the Deploy to Bitrise.io step (after this step),
that will attach the file to your build as an artifact!`))
}

// PrintReportSummary prints one line per report and the failed tests of the failed ones.
func (u utils) PrintReportSummary(reports []*report.Report) {
	u.logger.Println()
	u.logger.Infof("Test reports:")

	if len(reports) == 0 {
		u.logger.Warnf("No test report found in the xcodebuild output")
		return
	}

	for _, r := range reports {
		name := r.PathString()
		if name == "" {
			name = "default"
		}

		failedTests := r.FailedTests()
		line := fmt.Sprintf("- %s: %d tests, %d failed, %d suites, took %s (%s)", name, r.TestCount(), len(failedTests), len(r.Suites), r.Duration(), r.State())
		if !r.Failed() {
			u.logger.Donef("%s", line)
			continue
		}

		u.logger.Errorf("%s", line)
		for _, failed := range failedTests {
			u.logger.Printf("  %s/%s", failed.Suite.Name, failed.Test.Name)
		}
	}
}
