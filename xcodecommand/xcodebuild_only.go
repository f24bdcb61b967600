package xcodecommand

import (
	"bytes"
	"io"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-xcode/v2/errorfinder"
	version "github.com/hashicorp/go-version"
)

type rawXcodeCommand struct {
	logger         log.Logger
	commandFactory command.Factory
}

// NewRawCommandRunner returns a Runner which does not print the xcodebuild output,
// progress is reported by the formatters listening on the sink.
func NewRawCommandRunner(logger log.Logger, commandFactory command.Factory) Runner {
	return &rawXcodeCommand{
		logger:         logger,
		commandFactory: commandFactory,
	}
}

func (c *rawXcodeCommand) Run(workDir string, args []string, _ []string, sink io.Writer) (Output, error) {
	var outBuffer bytes.Buffer
	outWriter := buildOutputWriter(&outBuffer, sink)

	cmd := c.commandFactory.Create("xcodebuild", args, &command.Opts{
		Stdout:      outWriter,
		Stderr:      outWriter,
		Env:         xcodeCommandEnvs,
		Dir:         workDir,
		ErrorFinder: errorfinder.FindXcodebuildErrors,
	})

	c.logger.TPrintf("$ %s", cmd.PrintableCommandArgs())
	c.logger.Println()

	exitCode, err := cmd.RunAndReturnExitCode()

	return Output{
		RawOut:   outBuffer.Bytes(),
		ExitCode: exitCode,
	}, err
}

func (c *rawXcodeCommand) CheckInstall() (*version.Version, error) {
	return nil, nil
}
