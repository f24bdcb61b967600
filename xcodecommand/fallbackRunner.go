package xcodecommand

import (
	"io"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
	version "github.com/hashicorp/go-version"
)

type xcodecommandRunner struct {
	installer DependencyInstaller
	runner    Runner
}

// FallbackRunner switches to the raw xcodebuild runner if the log formatter tool is not available.
type FallbackRunner struct {
	runner         xcodecommandRunner
	fallbackRunner xcodecommandRunner
	usesFallback   bool
	logger         log.Logger
}

// NewFallbackRunner ...
func NewFallbackRunner(runner Runner, installer DependencyInstaller, logger log.Logger, commandFactory command.Factory) *FallbackRunner {
	return &FallbackRunner{
		runner: xcodecommandRunner{
			runner:    runner,
			installer: installer,
		},
		fallbackRunner: xcodecommandRunner{
			runner:    NewRawCommandRunner(logger, commandFactory),
			installer: nil,
		},
		logger: logger,
	}
}

// CheckInstall ...
func (sel *FallbackRunner) CheckInstall() (*version.Version, error) {
	if sel.runner.installer == nil {
		return nil, nil
	}

	ver, err := sel.runner.installer.CheckInstall()
	if err == nil {
		return ver, nil
	}

	sel.logger.Errorf("Checking log formatter failed: %s", err)
	sel.logger.Infof("Falling back to xcodebuild log formatter")
	sel.runner = sel.fallbackRunner
	sel.usesFallback = true

	if sel.runner.installer == nil {
		return nil, nil
	}
	return sel.runner.installer.CheckInstall()
}

// Run ...
func (sel *FallbackRunner) Run(workDir string, xcodebuildArgs []string, toolArgs []string, sink io.Writer) (Output, error) {
	return sel.runner.runner.Run(workDir, xcodebuildArgs, toolArgs, sink)
}

// UsesFallback returns true if the log formatter tool check failed.
func (sel *FallbackRunner) UsesFallback() bool {
	return sel.usesFallback
}
