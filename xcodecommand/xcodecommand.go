package xcodecommand

import (
	"bytes"
	"errors"
	"io"
	"os/exec"

	"github.com/hashicorp/go-version"
)

var xcodeCommandEnvs = []string{"NSUnbufferedIO=YES"}

// Output ...
type Output struct {
	RawOut   []byte
	ExitCode int
}

// DependencyInstaller checks (and installs if needed) the log formatter tool of a Runner.
type DependencyInstaller interface {
	CheckInstall() (*version.Version, error)
}

// Runner runs xcodebuild. Every byte xcodebuild writes to stdout or stderr is also written to the sink.
type Runner interface {
	Run(workDir string, xcodebuildArgs []string, toolArgs []string, sink io.Writer) (Output, error)
}

func buildOutputWriter(buffer *bytes.Buffer, sink io.Writer, others ...io.Writer) io.Writer {
	writers := []io.Writer{buffer}
	if sink != nil {
		writers = append(writers, sink)
	}
	writers = append(writers, others...)
	return io.MultiWriter(writers...)
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}

	var exerr *exec.ExitError
	if errors.As(err, &exerr) {
		return exerr.ExitCode()
	}
	return -1
}
