package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bitrise-io/go-steputils/v2/export"
	"github.com/bitrise-io/go-steputils/v2/ruby"
	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-steputils/v2/stepenv"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-xcode-test-report/output"
	"github.com/bitrise-steplib/steps-xcode-test-report/step"
	"github.com/bitrise-steplib/steps-xcode-test-report/testaddon"
	"github.com/bitrise-steplib/steps-xcode-test-report/xcconfig"
	"github.com/bitrise-steplib/steps-xcode-test-report/xcodebuild"
	"github.com/bitrise-steplib/steps-xcode-test-report/xcodecommand"
	"github.com/bitrise-steplib/steps-xcode-test-report/xcodeversion"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := log.NewLogger()

	envRepository := stepenv.NewRepository(env.NewRepository())
	inputParser := stepconf.NewInputParser(envRepository)
	commandFactory := command.NewFactory(envRepository)
	pathModifier := pathutil.NewPathModifier()

	xcodeVersion, err := xcodeversion.NewXcodeVersionReader(commandFactory).Version()
	if err != nil {
		logger.Errorf("Failed to read Xcode version: %s", err)
		return 1
	}

	configParser := step.NewXcodeTestConfigParser(inputParser, logger, xcodeVersion, pathModifier)
	config, err := configParser.ProcessConfig()
	if err != nil {
		logger.Errorf("Failed to process Step inputs: %s", err)
		return 1
	}

	xcodeTestRunner, err := createStep(logger, envRepository, commandFactory, config.LogFormatter)
	if err != nil {
		logger.Errorf("Failed to create step: %s", err)
		return 1
	}

	if err := xcodeTestRunner.InstallDeps(); err != nil {
		logger.Errorf("Failed to install Step dependencies: %s", err)
		return 1
	}

	result, runErr := xcodeTestRunner.Run(config)
	if runErr != nil && !errors.Is(runErr, step.ErrTestsFailed) {
		logger.Errorf("Failed to run tests: %s", runErr)
	}

	if err := xcodeTestRunner.Export(result, runErr != nil); err != nil {
		logger.Errorf("Failed to export Step outputs: %s", err)
		return 1
	}

	if runErr != nil {
		return 1
	}
	return 0
}

func createStep(logger log.Logger, envRepository env.Repository, commandFactory command.Factory, logFormatter string) (step.XcodeTestRunner, error) {
	fileManager := fileutil.NewFileManager()
	pathChecker := pathutil.NewPathChecker()

	commandRunner, err := createCommandRunner(logger, commandFactory, logFormatter)
	if err != nil {
		return step.XcodeTestRunner{}, err
	}

	xcconfigWriter := xcconfig.NewWriter(pathutil.NewPathProvider(), pathChecker, fileManager)
	xcodebuilder := xcodebuild.NewXcodebuild(logger, pathChecker, fileManager, xcconfigWriter, commandRunner)

	testAddonExporter := testaddon.NewExporter(testaddon.NewTestAddon(logger, commandFactory, fileManager))
	outputExporter := export.NewExporter(commandFactory, fileManager)
	exporter := output.NewExporter(envRepository, logger, &outputExporter, testAddonExporter)

	return step.NewXcodeTestRunner(logger, commandRunner, xcodebuilder, exporter, fileManager, os.Stdout, step.NewUtils(logger)), nil
}

func createCommandRunner(logger log.Logger, commandFactory command.Factory, logFormatter string) (*xcodecommand.FallbackRunner, error) {
	switch logFormatter {
	case xcodebuild.XcodebuildTool:
		return xcodecommand.NewFallbackRunner(xcodecommand.NewRawCommandRunner(logger, commandFactory), nil, logger, commandFactory), nil
	case xcodebuild.XcprettyTool:
		commandLocator := env.NewCommandLocator()
		rubyCommandFactory, err := ruby.NewCommandFactory(commandFactory, commandLocator)
		if err != nil {
			return nil, fmt.Errorf("failed to create ruby command factory: %w", err)
		}
		rubyEnv := ruby.NewEnvironment(rubyCommandFactory, commandLocator, logger)

		installer := xcodecommand.NewXcprettyDependencyManager(logger, commandFactory, rubyCommandFactory, rubyEnv)
		return xcodecommand.NewFallbackRunner(xcodecommand.NewXcprettyCommandRunner(logger, commandFactory), installer, logger, commandFactory), nil
	case xcodebuild.XcbeautifyTool:
		installer := xcodecommand.NewXcbeautifyDependencyChecker(logger, commandFactory)
		return xcodecommand.NewFallbackRunner(xcodecommand.NewXcbeautifyRunner(logger, commandFactory), installer, logger, commandFactory), nil
	default:
		return nil, fmt.Errorf("unknown log formatter: %s", logFormatter)
	}
}
