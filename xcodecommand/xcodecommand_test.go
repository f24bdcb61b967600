package xcodecommand

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/hashicorp/go-version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommand struct {
	command.Command
	runErr error
	runs   int
}

func (c *fakeCommand) Run() error {
	c.runs++
	return c.runErr
}

func (c *fakeCommand) PrintableCommandArgs() string {
	return "gem install xcpretty"
}

type fakeXcpretty struct {
	installed   bool
	installCmds []command.Command
	version     *version.Version
}

func (x *fakeXcpretty) isDepInstalled() (bool, error) {
	return x.installed, nil
}

func (x *fakeXcpretty) installDep() []command.Command {
	return x.installCmds
}

func (x *fakeXcpretty) depVersion() (*version.Version, error) {
	return x.version, nil
}

type fakeInstaller struct {
	err error
}

func (i fakeInstaller) CheckInstall() (*version.Version, error) {
	if i.err != nil {
		return nil, i.err
	}
	return version.NewVersion("0.4.0")
}

type recordingRunner struct {
	calls int
}

func (r *recordingRunner) Run(_ string, _ []string, _ []string, sink io.Writer) (Output, error) {
	r.calls++
	if sink != nil {
		_, _ = sink.Write([]byte("output"))
	}
	return Output{RawOut: []byte("output")}, nil
}

func Test_GivenNotInstalled_WhenCheckInstall_ThenInstallsIt(t *testing.T) {
	// Given
	ver, err := version.NewVersion("0.3.0")
	require.NoError(t, err)
	installCmd := &fakeCommand{}
	installer := &xcprettyDependencyManager{
		logger:   log.NewLogger(),
		xcpretty: &fakeXcpretty{installed: false, installCmds: []command.Command{installCmd}, version: ver},
	}

	// When
	installedVersion, err := installer.CheckInstall()

	// Then
	require.NoError(t, err)
	assert.Equal(t, ver, installedVersion)
	assert.Equal(t, 1, installCmd.runs)
}

func Test_GivenInstalled_WhenCheckInstall_OnlyReturnsVersion(t *testing.T) {
	// Given
	ver, err := version.NewVersion("0.3.0")
	require.NoError(t, err)
	installCmd := &fakeCommand{}
	installer := &xcprettyDependencyManager{
		logger:   log.NewLogger(),
		xcpretty: &fakeXcpretty{installed: true, installCmds: []command.Command{installCmd}, version: ver},
	}

	// When
	installedVersion, err := installer.CheckInstall()

	// Then
	require.NoError(t, err)
	assert.Equal(t, ver, installedVersion)
	assert.Equal(t, 0, installCmd.runs)
}

func Test_GivenInstallFails_WhenCheckInstall_ThenReturnsError(t *testing.T) {
	// Given
	installer := &xcprettyDependencyManager{
		logger: log.NewLogger(),
		xcpretty: &fakeXcpretty{
			installed:   false,
			installCmds: []command.Command{&fakeCommand{runErr: errors.New("gem not found")}},
		},
	}

	// When
	_, err := installer.CheckInstall()

	// Then
	assert.Error(t, err)
}

func Test_GivenToolIsAvailable_WhenRun_ThenSelectedRunnerIsUsed(t *testing.T) {
	// Given
	runner := &recordingRunner{}
	fallbackRunner := NewFallbackRunner(runner, fakeInstaller{}, log.NewLogger(), nil)

	// When
	ver, err := fallbackRunner.CheckInstall()
	require.NoError(t, err)
	var sink bytes.Buffer
	out, err := fallbackRunner.Run("", []string{"test"}, nil, &sink)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "0.4.0", ver.String())
	assert.False(t, fallbackRunner.UsesFallback())
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "output", string(out.RawOut))
	assert.Equal(t, "output", sink.String())
}

func Test_GivenToolIsMissing_WhenCheckInstall_ThenFallsBackToXcodebuild(t *testing.T) {
	// Given
	runner := &recordingRunner{}
	fallbackRunner := NewFallbackRunner(runner, fakeInstaller{err: errors.New("xcbeautify: command not found")}, log.NewLogger(), nil)

	// When
	ver, err := fallbackRunner.CheckInstall()

	// Then
	require.NoError(t, err)
	assert.Nil(t, ver)
	assert.True(t, fallbackRunner.UsesFallback())
}

func Test_GivenExitError_WhenExitCodeIsRead_ThenNonExitErrorsAreNegative(t *testing.T) {
	assert.Equal(t, 0, exitCodeOf(nil))
	assert.Equal(t, -1, exitCodeOf(errors.New("executable file not found")))
}
