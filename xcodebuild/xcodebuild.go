package xcodebuild

import (
	"io"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-xcode-test-report/xcconfig"
	"github.com/bitrise-steplib/steps-xcode-test-report/xcodecommand"
)

// Log formatters ...
const (
	XcodebuildTool = "xcodebuild"
	XcprettyTool   = "xcpretty"
	XcbeautifyTool = "xcbeautify"
)

// PathChecker ...
type PathChecker interface {
	IsPathExists(pth string) (bool, error)
}

// FileRemover ...
type FileRemover interface {
	Remove(path string) error
}

// Xcodebuild ....
type Xcodebuild interface {
	RunTest(params TestRunParams, sink io.Writer) (string, int, error)
}

type xcodebuild struct {
	logger             log.Logger
	pathChecker        PathChecker
	fileRemover        FileRemover
	xcconfigWriter     xcconfig.Writer
	xcodeCommandRunner xcodecommand.Runner
}

// NewXcodebuild ...
func NewXcodebuild(logger log.Logger, pathChecker PathChecker, fileRemover FileRemover, xcconfigWriter xcconfig.Writer, xcodeCommandRunner xcodecommand.Runner) Xcodebuild {
	return &xcodebuild{
		logger:             logger,
		pathChecker:        pathChecker,
		fileRemover:        fileRemover,
		xcconfigWriter:     xcconfigWriter,
		xcodeCommandRunner: xcodeCommandRunner,
	}
}

// TestParams ...
type TestParams struct {
	ProjectPath        string
	Scheme             string
	Destination        string
	TestPlan           string
	XCConfigContent    string
	PerformCleanAction bool
	AdditionalOptions  []string
}

// TestRunParams ...
type TestRunParams struct {
	TestParams          TestParams
	LogFormatter        string
	LogFormatterOptions []string
}

// RunTest runs the tests once, the raw output is streamed into the sink and returned as a string.
func (b *xcodebuild) RunTest(params TestRunParams, sink io.Writer) (string, int, error) {
	return b.runTest(params, sink)
}
