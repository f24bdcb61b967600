package xcodecommand

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/bitrise-io/go-steputils/v2/ruby"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/hashicorp/go-version"
)

const xcprettyGem = "xcpretty"

type xcprettyManager interface {
	isDepInstalled() (bool, error)
	installDep() []command.Command
	depVersion() (*version.Version, error)
}

type xcpretty struct {
	commandFactory     command.Factory
	rubyEnv            ruby.Environment
	rubyCommandFactory ruby.CommandFactory
}

func (x *xcpretty) isDepInstalled() (bool, error) {
	return x.rubyEnv.IsGemInstalled(xcprettyGem, "")
}

func (x *xcpretty) installDep() []command.Command {
	return x.rubyCommandFactory.CreateGemInstall(xcprettyGem, "", false, false, nil)
}

func (x *xcpretty) depVersion() (*version.Version, error) {
	cmd := x.commandFactory.Create(xcprettyGem, []string{"--version"}, nil)

	versionOut, err := cmd.RunAndReturnTrimmedCombinedOutput()
	if err != nil {
		return nil, err
	}

	return version.NewVersion(versionOut)
}

type xcprettyDependencyManager struct {
	logger   log.Logger
	xcpretty xcprettyManager
}

// NewXcprettyDependencyManager ...
func NewXcprettyDependencyManager(logger log.Logger, commandFactory command.Factory, rubyCommandFactory ruby.CommandFactory, rubyEnv ruby.Environment) DependencyInstaller {
	return &xcprettyDependencyManager{
		logger: logger,
		xcpretty: &xcpretty{
			commandFactory:     commandFactory,
			rubyEnv:            rubyEnv,
			rubyCommandFactory: rubyCommandFactory,
		},
	}
}

// CheckInstall installs xcpretty if it is missing and returns its version.
func (c *xcprettyDependencyManager) CheckInstall() (*version.Version, error) {
	c.logger.Println()
	c.logger.Infof("Checking if output tool (xcpretty) is installed")

	installed, err := c.xcpretty.isDepInstalled()
	if err != nil {
		return nil, err
	} else if !installed {
		c.logger.Warnf(`xcpretty is not installed`)
		c.logger.Println()
		c.logger.Printf("Installing xcpretty")

		for _, cmd := range c.xcpretty.installDep() {
			if err := cmd.Run(); err != nil {
				return nil, fmt.Errorf("failed to run xcpretty install command (%s): %w", cmd.PrintableCommandArgs(), err)
			}
		}
	}

	xcprettyVersion, err := c.xcpretty.depVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get xcpretty version: %w", err)
	}

	return xcprettyVersion, nil
}

type xcprettyCommandRunner struct {
	logger         log.Logger
	commandFactory command.Factory
}

// NewXcprettyCommandRunner ...
func NewXcprettyCommandRunner(logger log.Logger, commandFactory command.Factory) Runner {
	return &xcprettyCommandRunner{
		logger:         logger,
		commandFactory: commandFactory,
	}
}

func (c *xcprettyCommandRunner) Run(workDir string, xcodebuildArgs []string, xcprettyArgs []string, sink io.Writer) (Output, error) {
	var (
		buildOutBuffer         bytes.Buffer
		pipeReader, pipeWriter = io.Pipe()
		buildOutWriter         = buildOutputWriter(&buildOutBuffer, sink, pipeWriter)
		prettyOutWriter        = os.Stdout
	)

	buildCmd := c.commandFactory.Create("xcodebuild", xcodebuildArgs, &command.Opts{
		Stdout: buildOutWriter,
		Stderr: buildOutWriter,
		Env:    xcodeCommandEnvs,
		Dir:    workDir,
	})

	prettyCmd := c.commandFactory.Create(xcprettyGem, xcprettyArgs, &command.Opts{
		Stdin:  pipeReader,
		Stdout: prettyOutWriter,
		Stderr: prettyOutWriter,
	})

	c.logger.Println()
	c.logger.TInfof("$ set -o pipefail && %s | %v", buildCmd.PrintableCommandArgs(), prettyCmd.PrintableCommandArgs())

	if err := buildCmd.Start(); err != nil {
		return Output{
			RawOut:   buildOutBuffer.Bytes(),
			ExitCode: 1,
		}, err
	}
	if err := prettyCmd.Start(); err != nil {
		return Output{
			RawOut:   buildOutBuffer.Bytes(),
			ExitCode: 1,
		}, err
	}

	defer func() {
		if err := pipeWriter.Close(); err != nil {
			c.logger.Warnf("Failed to close xcodebuild-xcpretty pipe: %s", err)
		}

		if err := prettyCmd.Wait(); err != nil {
			c.logger.Warnf("xcpretty command failed: %s", err)
		}
	}()

	err := buildCmd.Wait()
	return Output{
		RawOut:   buildOutBuffer.Bytes(),
		ExitCode: exitCodeOf(err),
	}, err
}
