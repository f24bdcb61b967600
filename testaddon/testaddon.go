package testaddon

import (
	"fmt"
	"path/filepath"
)

// Exporter ...
type Exporter interface {
	CopyAndSaveMetadata(info AddonCopy) error
}

type exporter struct {
	testAddon TestAddon
}

// NewExporter ...
func NewExporter(testAddon TestAddon) Exporter {
	return &exporter{testAddon: testAddon}
}

// AddonCopy describes a test result directory to be copied into the per-step test result directory.
type AddonCopy struct {
	SourceTestOutputDir   string
	TargetAddonPath       string
	TargetAddonBundleName string
}

// CopyAndSaveMetadata copies the test results into <TargetAddonPath>/<bundle name>
// and writes the bundle name into test-info.json next to them.
func (e exporter) CopyAndSaveMetadata(info AddonCopy) error {
	if info.SourceTestOutputDir == "" || info.TargetAddonPath == "" {
		return fmt.Errorf("missing test result source (%s) or target (%s) directory", info.SourceTestOutputDir, info.TargetAddonPath)
	}

	info.TargetAddonBundleName = e.testAddon.ReplaceUnsupportedFilenameCharacters(info.TargetAddonBundleName)
	addonPerStepOutputDir := filepath.Join(info.TargetAddonPath, info.TargetAddonBundleName)

	if err := e.testAddon.CopyDirectory(info.SourceTestOutputDir, addonPerStepOutputDir); err != nil {
		return err
	}
	if err := e.testAddon.SaveBundleMetadata(addonPerStepOutputDir, info.TargetAddonBundleName); err != nil {
		return err
	}
	return nil
}
