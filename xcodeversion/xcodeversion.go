package xcodeversion

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/hashicorp/go-version"
)

// Version ...
type Version struct {
	Version      string
	BuildVersion string
	MajorVersion int64
}

// Reader ...
type Reader interface {
	Version() (Version, error)
}

type reader struct {
	commandFactory command.Factory
}

// NewXcodeVersionReader ...
func NewXcodeVersionReader(commandFactory command.Factory) Reader {
	return &reader{commandFactory: commandFactory}
}

// Version runs `xcodebuild -version` and parses its output.
func (r *reader) Version() (Version, error) {
	cmd := r.commandFactory.Create("xcodebuild", []string{"-version"}, nil)

	out, err := cmd.RunAndReturnTrimmedCombinedOutput()
	if err != nil {
		return Version{}, fmt.Errorf("%s failed: %w, output: %s", cmd.PrintableCommandArgs(), err, out)
	}

	return parseVersionOutput(out)
}

// parseVersionOutput parses the output of `xcodebuild -version`:
//
//	Xcode 15.2
//	Build version 15C500b
func parseVersionOutput(out string) (Version, error) {
	var xcodeVersion Version

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "Xcode "):
			xcodeVersion.Version = line
		case strings.HasPrefix(line, "Build version "):
			xcodeVersion.BuildVersion = strings.TrimPrefix(line, "Build version ")
		}
	}

	if xcodeVersion.Version == "" || xcodeVersion.BuildVersion == "" {
		return Version{}, fmt.Errorf("failed to parse xcodebuild version output: %s", out)
	}

	ver, err := version.NewVersion(strings.TrimPrefix(xcodeVersion.Version, "Xcode "))
	if err != nil {
		return Version{}, fmt.Errorf("failed to parse Xcode version (%s): %w", xcodeVersion.Version, err)
	}
	xcodeVersion.MajorVersion = ver.Segments64()[0]

	return xcodeVersion, nil
}
