package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// snapshotPrefix is the filename prefix for snapshot files.
const snapshotPrefix = "delphi-cli-snapshot-"

// SnapshotDir is where flat control reads are kept between invocations.
var SnapshotDir = os.TempDir()

func snapshotName(form string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")
	return snapshotPrefix + r.Replace(form) + "-"
}

func snapshotPath(form string, ts int64) string {
	return filepath.Join(SnapshotDir, fmt.Sprintf("%s%d.json", snapshotName(form), ts))
}

// SaveSnapshot writes a flat control list so a later read of the same
// form can be diffed against it.
func SaveSnapshot(form string, ts int64, controls []FlatControl) error {
	data, err := json.Marshal(controls)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return os.WriteFile(snapshotPath(form, ts), data, 0o644)
}

// LoadSnapshot reads the snapshot SaveSnapshot wrote for form at ts.
func LoadSnapshot(form string, ts int64) ([]FlatControl, error) {
	data, err := os.ReadFile(snapshotPath(form, ts))
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	var controls []FlatControl
	if err := json.Unmarshal(data, &controls); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return controls, nil
}

// CleanSnapshots removes snapshot files for form older than maxAge.
func CleanSnapshots(form string, maxAge time.Duration) {
	prefix := snapshotName(form)
	entries, err := os.ReadDir(SnapshotDir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(SnapshotDir, entry.Name()))
		}
	}
}
