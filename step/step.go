package step

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-xcode-test-report/formatter/console"
	"github.com/bitrise-steplib/steps-xcode-test-report/formatter/junit"
	"github.com/bitrise-steplib/steps-xcode-test-report/ocunit"
	"github.com/bitrise-steplib/steps-xcode-test-report/output"
	"github.com/bitrise-steplib/steps-xcode-test-report/report"
	"github.com/bitrise-steplib/steps-xcode-test-report/xcodebuild"
	"github.com/bitrise-steplib/steps-xcode-test-report/xcodeversion"
	"github.com/hashicorp/go-version"
	"github.com/kballard/go-shellquote"
)

const (
	minSupportedXcodeMajorVersion = 6
	minTestPlanXcodeMajorVersion  = 11

	defaultJUnitReportDirName = "junit"
)

// ErrTestsFailed is returned when xcodebuild succeeded but the parsed output contains failures.
var ErrTestsFailed = errors.New("the test output contains failed tests")

// Input ...
type Input struct {
	// Project Parameters
	ProjectPath string `env:"project_path,required"`
	Scheme      string `env:"scheme,required"`
	Destination string `env:"destination,required"`
	TestPlan    string `env:"test_plan"`

	// xcodebuild configuration
	XCConfigContent    string `env:"xcconfig_content"`
	PerformCleanAction bool   `env:"perform_clean_action,opt[yes,no]"`
	XcodebuildOptions  string `env:"xcodebuild_options"`

	// xcodebuild log formatting
	LogFormatter      string `env:"log_formatter,opt[xcodebuild,xcpretty,xcbeautify]"`
	XcprettyOptions   string `env:"xcpretty_options"`
	XcbeautifyOptions string `env:"xcbeautify_options"`

	// Test reports
	JUnitReportDir string `env:"junit_report_dir"`
	DeployDir      string `env:"BITRISE_DEPLOY_DIR"`

	// Debug
	VerboseLog bool `env:"verbose_log,opt[yes,no]"`
}

// Config ...
type Config struct {
	ProjectPath string
	Scheme      string
	Destination string
	TestPlan    string

	XcodeMajorVersion int

	XCConfigContent    string
	PerformCleanAction bool
	XcodebuildOptions  []string

	LogFormatter        string
	LogFormatterOptions []string

	JUnitReportDir string
	DeployDir      string
}

// PathModifier ...
type PathModifier interface {
	AbsPath(pth string) (string, error)
}

// RunnerDependencyInstaller ...
type RunnerDependencyInstaller interface {
	CheckInstall() (*version.Version, error)
	UsesFallback() bool
}

// XcodeTestConfigParser ...
type XcodeTestConfigParser struct {
	inputParser  stepconf.InputParser
	logger       log.Logger
	xcodeVersion xcodeversion.Version
	pathModifier PathModifier
}

// NewXcodeTestConfigParser ...
func NewXcodeTestConfigParser(inputParser stepconf.InputParser, logger log.Logger, xcodeVersion xcodeversion.Version, pathModifier PathModifier) XcodeTestConfigParser {
	return XcodeTestConfigParser{
		inputParser:  inputParser,
		logger:       logger,
		xcodeVersion: xcodeVersion,
		pathModifier: pathModifier,
	}
}

// ProcessConfig ...
func (s XcodeTestConfigParser) ProcessConfig() (Config, error) {
	var input Input
	if err := s.inputParser.Parse(&input); err != nil {
		return Config{}, err
	}

	stepconf.Print(input)
	s.logger.Println()

	s.logger.EnableDebugLog(input.VerboseLog)

	xcodeMajorVersion := s.xcodeVersion.MajorVersion
	s.logger.Printf("- xcodebuildVersion: %s (%s)", s.xcodeVersion.Version, s.xcodeVersion.BuildVersion)
	if xcodeMajorVersion < minSupportedXcodeMajorVersion {
		return Config{}, fmt.Errorf("invalid Xcode major version (%d), should not be less than min supported: %d", xcodeMajorVersion, minSupportedXcodeMajorVersion)
	}
	if input.TestPlan != "" && xcodeMajorVersion < minTestPlanXcodeMajorVersion {
		return Config{}, fmt.Errorf("test plans require Xcode %d or newer, current major version: %d", minTestPlanXcodeMajorVersion, xcodeMajorVersion)
	}

	projectPath, err := s.validateProjectPath(input.ProjectPath)
	if err != nil {
		return Config{}, err
	}

	xcodebuildOptions, err := shellquote.Split(input.XcodebuildOptions)
	if err != nil {
		return Config{}, fmt.Errorf("provided xcodebuild_options (%s) are not valid CLI parameters: %w", input.XcodebuildOptions, err)
	}

	if input.LogFormatter == "" {
		input.LogFormatter = xcodebuild.XcodebuildTool
	}
	logFormatterOptions, err := parseLogFormatterOptions(input)
	if err != nil {
		return Config{}, err
	}

	junitReportDir, err := s.junitReportDir(input)
	if err != nil {
		return Config{}, err
	}

	return Config{
		ProjectPath: projectPath,
		Scheme:      input.Scheme,
		Destination: input.Destination,
		TestPlan:    input.TestPlan,

		XcodeMajorVersion: int(xcodeMajorVersion),

		XCConfigContent:    input.XCConfigContent,
		PerformCleanAction: input.PerformCleanAction,
		XcodebuildOptions:  xcodebuildOptions,

		LogFormatter:        input.LogFormatter,
		LogFormatterOptions: logFormatterOptions,

		JUnitReportDir: junitReportDir,
		DeployDir:      input.DeployDir,
	}, nil
}

func (s XcodeTestConfigParser) validateProjectPath(projectPath string) (string, error) {
	switch {
	case strings.HasSuffix(projectPath, ".xcodeproj"), strings.HasSuffix(projectPath, ".xcworkspace"), filepath.Base(projectPath) == "Package.swift":
	default:
		return "", fmt.Errorf("invalid project file (%s), extension should be (.xcodeproj/.xcworkspace) or a Package.swift file", projectPath)
	}

	absProjectPath, err := s.pathModifier.AbsPath(projectPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute project path: %w", err)
	}
	return absProjectPath, nil
}

func (s XcodeTestConfigParser) junitReportDir(input Input) (string, error) {
	dir := input.JUnitReportDir
	if dir == "" {
		if input.DeployDir == "" {
			return "", errors.New("either junit_report_dir or BITRISE_DEPLOY_DIR has to be set")
		}
		dir = filepath.Join(input.DeployDir, defaultJUnitReportDirName)
	}

	absDir, err := s.pathModifier.AbsPath(dir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute JUnit report directory path: %w", err)
	}
	return absDir, nil
}

func parseLogFormatterOptions(input Input) ([]string, error) {
	var options string
	switch input.LogFormatter {
	case xcodebuild.XcprettyTool:
		options = input.XcprettyOptions
	case xcodebuild.XcbeautifyTool:
		options = input.XcbeautifyOptions
	default:
		return nil, nil
	}

	args, err := shellquote.Split(options)
	if err != nil {
		return nil, fmt.Errorf("provided %s options (%s) are not valid CLI parameters: %w", input.LogFormatter, options, err)
	}
	return args, nil
}

// XcodeTestRunner ...
type XcodeTestRunner struct {
	logger         log.Logger
	installer      RunnerDependencyInstaller
	xcodebuild     xcodebuild.Xcodebuild
	outputExporter output.Exporter
	fileManager    fileutil.FileManager
	console        io.Writer
	utils          Utils
}

// NewXcodeTestRunner ...
func NewXcodeTestRunner(logger log.Logger, installer RunnerDependencyInstaller, xcodebuild xcodebuild.Xcodebuild, outputExporter output.Exporter, fileManager fileutil.FileManager, console io.Writer, utils Utils) XcodeTestRunner {
	return XcodeTestRunner{
		logger:         logger,
		installer:      installer,
		xcodebuild:     xcodebuild,
		outputExporter: outputExporter,
		fileManager:    fileManager,
		console:        console,
		utils:          utils,
	}
}

// InstallDeps ...
func (s XcodeTestRunner) InstallDeps() error {
	logFormatterVersion, err := s.installer.CheckInstall()
	if err != nil {
		return fmt.Errorf("failed to install log formatter: %w", err)
	}

	if logFormatterVersion != nil {
		s.logger.Printf("- log formatter version: %s", logFormatterVersion.String())
		s.logger.Println()
	}

	return nil
}

// Result ...
type Result struct {
	Scheme    string
	DeployDir string

	XcodebuildTestLog string
	JUnitReportDir    string
	Reports           []*report.Report
}

// Run runs the tests and converts the xcodebuild output into JUnit reports while it is being produced.
// The collected reports are returned even if the test command or the report generation failed.
func (s XcodeTestRunner) Run(cfg Config) (Result, error) {
	result := Result{
		Scheme:         cfg.Scheme,
		DeployDir:      cfg.DeployDir,
		JUnitReportDir: cfg.JUnitReportDir,
	}

	usesFallback := s.installer.UsesFallback()
	formatters := []report.Formatter{junit.NewFormatter(s.logger, s.fileManager, cfg.JUnitReportDir)}
	if cfg.LogFormatter == xcodebuild.XcodebuildTool || usesFallback {
		formatters = append(formatters, console.NewFormatter(s.console))
	}
	parser := ocunit.NewParser(s.logger, ocunit.WithFormatters(formatters...))
	lineWriter := ocunit.NewLineWriter(parser)

	params := xcodebuild.TestRunParams{
		TestParams: xcodebuild.TestParams{
			ProjectPath:        cfg.ProjectPath,
			Scheme:             cfg.Scheme,
			Destination:        cfg.Destination,
			TestPlan:           cfg.TestPlan,
			XCConfigContent:    cfg.XCConfigContent,
			PerformCleanAction: cfg.PerformCleanAction,
			AdditionalOptions:  cfg.XcodebuildOptions,
		},
		LogFormatter:        cfg.LogFormatter,
		LogFormatterOptions: cfg.LogFormatterOptions,
	}

	testLog, exitCode, testErr := s.xcodebuild.RunTest(params, lineWriter)
	result.XcodebuildTestLog = testLog

	// The parser is flushed after a failed command too: a crashed or interrupted run still has a partial report.
	reportErr := lineWriter.Close()
	if err := parser.Flush(); err != nil && reportErr == nil {
		reportErr = err
	}
	result.Reports = parser.Reports()

	s.utils.PrintReportSummary(result.Reports)

	if testErr != nil {
		s.utils.PrintLastLinesOfXcodebuildTestLog(testLog, false)
	}

	if reportErr != nil {
		s.logger.Println()
		s.logger.Errorf("Failed to generate test reports: %s", reportErr)
		return result, fmt.Errorf("failed to generate test reports: %w", reportErr)
	}

	if testErr != nil {
		s.logger.Println()
		s.logger.Warnf("Xcode Test command exit code: %d", exitCode)
		s.logger.Errorf("Xcode Test command failed: %s", testErr)
		return result, testErr
	}

	if parser.Failed() {
		s.logger.Println()
		s.logger.Errorf("Xcode Test command succeeded, but the test output contains failures")
		return result, ErrTestsFailed
	}

	s.logger.Println()
	s.logger.Infof("Xcode Test command succeeded.")

	return result, nil
}

// Export ...
func (s XcodeTestRunner) Export(result Result, testFailed bool) error {
	s.outputExporter.ExportTestRunResult(testFailed)

	if result.XcodebuildTestLog != "" {
		if err := s.outputExporter.ExportXcodebuildTestLog(result.DeployDir, result.XcodebuildTestLog); err != nil {
			s.logger.Warnf("Failed to export xcodebuild test log: %s", err)
		}
	}

	if result.JUnitReportDir != "" && hasSuites(result.Reports) {
		if err := s.outputExporter.ExportJUnitReports(result.DeployDir, result.JUnitReportDir, result.Scheme); err != nil {
			return fmt.Errorf("failed to export JUnit reports: %w", err)
		}
	}

	return nil
}

func hasSuites(reports []*report.Report) bool {
	for _, r := range reports {
		if len(r.Suites) > 0 {
			return true
		}
	}
	return false
}
