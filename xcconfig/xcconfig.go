package xcconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const xcconfigExtension = ".xcconfig"

// Writer ...
type Writer interface {
	Write(input string) (string, error)
}

// PathProvider ...
type PathProvider interface {
	CreateTempDir(prefix string) (string, error)
}

// PathChecker ...
type PathChecker interface {
	IsPathExists(pth string) (bool, error)
}

// FileWriter ...
type FileWriter interface {
	Write(path string, value string, perm os.FileMode) error
}

type writer struct {
	pathProvider PathProvider
	pathChecker  PathChecker
	fileWriter   FileWriter
}

// NewWriter ...
func NewWriter(pathProvider PathProvider, pathChecker PathChecker, fileWriter FileWriter) Writer {
	return &writer{pathProvider: pathProvider, pathChecker: pathChecker, fileWriter: fileWriter}
}

// Write returns the input if it is the path of an existing xcconfig file,
// otherwise writes the input into a temporary xcconfig file and returns its path.
func (w writer) Write(input string) (string, error) {
	if strings.HasSuffix(strings.TrimSpace(input), xcconfigExtension) {
		pth := strings.TrimSpace(input)
		exists, err := w.pathChecker.IsPathExists(pth)
		if err != nil {
			return "", fmt.Errorf("failed to check if xcconfig exists at %s: %w", pth, err)
		}
		if !exists {
			return "", fmt.Errorf("xcconfig file does not exist: %s", pth)
		}
		return pth, nil
	}

	dir, err := w.pathProvider.CreateTempDir("xcconfig")
	if err != nil {
		return "", fmt.Errorf("unable to create temp dir for writing XCConfig: %w", err)
	}
	xcconfigPath := filepath.Join(dir, "temp"+xcconfigExtension)
	if err = w.fileWriter.Write(xcconfigPath, input, 0644); err != nil {
		return "", fmt.Errorf("unable to write XCConfig content into file: %w", err)
	}
	return xcconfigPath, nil
}
