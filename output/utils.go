package output

import (
	"fmt"
	"path/filepath"

	"github.com/bitrise-io/go-utils/fileutil"
	"github.com/bitrise-io/go-utils/pathutil"
)

func saveRawOutputToLogFile(rawXcodebuildOutput string) (string, error) {
	tmpDir, err := pathutil.NormalizedOSTempDirPath("xcodebuild-test-output")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	logPth := filepath.Join(tmpDir, "raw-xcodebuild-test-output.log")
	if err := fileutil.WriteStringToFile(logPth, rawXcodebuildOutput); err != nil {
		return "", fmt.Errorf("failed to write xcodebuild output to file: %w", err)
	}

	return logPth, nil
}
