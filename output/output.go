package output

import (
	"fmt"
	"path/filepath"

	"github.com/bitrise-io/bitrise/configs"
	"github.com/bitrise-io/go-utils/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-xcode-test-report/testaddon"
)

// Exported environment variables
const (
	XcodeTestResultKey       = "BITRISE_XCODE_TEST_RESULT"
	XcodebuildTestLogPathKey = "BITRISE_XCODEBUILD_TEST_LOG_PATH"
	JUnitReportDirKey        = "BITRISE_JUNIT_REPORT_DIR"
	JUnitReportZipPathKey    = "BITRISE_JUNIT_REPORT_ZIP_PATH"
)

const (
	xcodebuildTestLogName = "xcodebuild_test.log"
	junitReportsZipName   = "junit_reports.zip"
)

// OutputExporter ...
type OutputExporter interface {
	ExportOutputFilesZip(key string, sourcePaths []string, zipPath string) error
}

// Exporter ...
type Exporter interface {
	ExportTestRunResult(failed bool)
	ExportXcodebuildTestLog(deployDir, xcodebuildTestLog string) error
	ExportJUnitReports(deployDir, junitDir, scheme string) error
}

type exporter struct {
	envRepository     env.Repository
	logger            log.Logger
	outputExporter    OutputExporter
	testAddonExporter testaddon.Exporter
}

// NewExporter ...
func NewExporter(envRepository env.Repository, logger log.Logger, outputExporter OutputExporter, testAddonExporter testaddon.Exporter) Exporter {
	return &exporter{
		envRepository:     envRepository,
		logger:            logger,
		outputExporter:    outputExporter,
		testAddonExporter: testAddonExporter,
	}
}

func (e exporter) ExportTestRunResult(failed bool) {
	status := "succeeded"
	if failed {
		status = "failed"
	}
	if err := e.envRepository.Set(XcodeTestResultKey, status); err != nil {
		e.logger.Warnf("Failed to export: %s: %s", XcodeTestResultKey, err)
	}
}

func (e exporter) ExportXcodebuildTestLog(deployDir, xcodebuildTestLog string) error {
	pth, err := saveRawOutputToLogFile(xcodebuildTestLog)
	if err != nil {
		return fmt.Errorf("failed to save the raw output: %w", err)
	}

	deployPth := filepath.Join(deployDir, xcodebuildTestLogName)
	if err := command.CopyFile(pth, deployPth); err != nil {
		return fmt.Errorf("failed to copy xcodebuild output log file from (%s) to (%s): %w", pth, deployPth, err)
	}

	if err := e.envRepository.Set(XcodebuildTestLogPathKey, deployPth); err != nil {
		e.logger.Warnf("Failed to export: %s: %s", XcodebuildTestLogPathKey, err)
	}

	return nil
}

// ExportJUnitReports exports the JUnit report directory, a zip of it into the deploy dir
// and a copy of it for the test addon when the per-step test result directory is set.
func (e exporter) ExportJUnitReports(deployDir, junitDir, scheme string) error {
	if err := e.envRepository.Set(JUnitReportDirKey, junitDir); err != nil {
		e.logger.Warnf("Failed to export: %s: %s", JUnitReportDirKey, err)
	}

	zipPath := filepath.Join(deployDir, junitReportsZipName)
	if err := e.outputExporter.ExportOutputFilesZip(JUnitReportZipPathKey, []string{junitDir}, zipPath); err != nil {
		return fmt.Errorf("failed to export %s: %w", JUnitReportZipPathKey, err)
	}

	addonResultPath := e.envRepository.Get(configs.BitrisePerStepTestResultDirEnvKey)
	if addonResultPath == "" {
		return nil
	}

	e.logger.Println()
	e.logger.Infof("Exporting test results")

	if err := e.testAddonExporter.CopyAndSaveMetadata(testaddon.AddonCopy{
		SourceTestOutputDir:   junitDir,
		TargetAddonPath:       addonResultPath,
		TargetAddonBundleName: scheme,
	}); err != nil {
		e.logger.Warnf("Failed to export test results: %s", err)
	}

	return nil
}
