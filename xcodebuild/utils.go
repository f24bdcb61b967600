package xcodebuild

import (
	"fmt"
	"io"
	"path/filepath"
)

const swiftPackageManifest = "Package.swift"

func (b *xcodebuild) createXcodebuildTestArgs(params TestParams) ([]string, string, error) {
	var xcodebuildArgs []string
	workDir := ""

	switch {
	case filepath.Base(params.ProjectPath) == swiftPackageManifest:
		workDir = filepath.Dir(params.ProjectPath)
	case filepath.Ext(params.ProjectPath) == ".xcworkspace":
		xcodebuildArgs = append(xcodebuildArgs, "-workspace", params.ProjectPath)
	default:
		xcodebuildArgs = append(xcodebuildArgs, "-project", params.ProjectPath)
	}

	xcodebuildArgs = append(xcodebuildArgs, "-scheme", params.Scheme)
	if params.PerformCleanAction {
		xcodebuildArgs = append(xcodebuildArgs, "clean")
	}

	xcodebuildArgs = append(xcodebuildArgs, "test", "-destination", params.Destination)
	if params.TestPlan != "" {
		xcodebuildArgs = append(xcodebuildArgs, "-testPlan", params.TestPlan)
	}

	if params.XCConfigContent != "" {
		xcconfigPath, err := b.xcconfigWriter.Write(params.XCConfigContent)
		if err != nil {
			return nil, "", err
		}
		xcodebuildArgs = append(xcodebuildArgs, "-xcconfig", xcconfigPath)
	}

	xcodebuildArgs = append(xcodebuildArgs, params.AdditionalOptions...)

	return xcodebuildArgs, workDir, nil
}

// removeXcprettyOutput deletes the report file of a previous xcpretty run, given with the --output option.
func (b *xcodebuild) removeXcprettyOutput(options []string) {
	xcprettyOutputFilePath := ""
	for i, opt := range options {
		if opt == "--output" && i+1 < len(options) {
			xcprettyOutputFilePath = options[i+1]
			break
		}
	}
	if xcprettyOutputFilePath == "" {
		return
	}

	if isExist, err := b.pathChecker.IsPathExists(xcprettyOutputFilePath); err != nil {
		b.logger.Errorf("Failed to check xcpretty output file status (path: %s): %s", xcprettyOutputFilePath, err)
	} else if isExist {
		b.logger.Warnf("=> Deleting existing xcpretty output: %s", xcprettyOutputFilePath)
		if err := b.fileRemover.Remove(xcprettyOutputFilePath); err != nil {
			b.logger.Errorf("Failed to delete xcpretty output file (path: %s): %s", xcprettyOutputFilePath, err)
		}
	}
}

func (b *xcodebuild) runTest(params TestRunParams, sink io.Writer) (string, int, error) {
	xcodebuildArgs, workDir, err := b.createXcodebuildTestArgs(params.TestParams)
	if err != nil {
		return "", 1, fmt.Errorf("failed to create xcodebuild arguments: %w", err)
	}

	if params.LogFormatter == XcprettyTool {
		b.removeXcprettyOutput(params.LogFormatterOptions)
	}

	b.logger.Println()
	b.logger.Infof("Running the tests...")

	output, testErr := b.xcodeCommandRunner.Run(workDir, xcodebuildArgs, params.LogFormatterOptions, sink)
	return string(output.RawOut), output.ExitCode, testErr
}
