package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func withSnapshotDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	saved := SnapshotDir
	SnapshotDir = dir
	t.Cleanup(func() { SnapshotDir = saved })
	return dir
}

func TestSnapshot_RoundTrip(t *testing.T) {
	withSnapshotDir(t)
	controls := []FlatControl{
		{AutomationID: "TE_Username", ClassName: "TcxTextEdit", Text: "admin", Path: "frmLogin"},
		{AutomationID: "Btn_Login", ClassName: "TcxButton", Enabled: boolPtr(false), Path: "frmLogin"},
	}
	if err := SaveSnapshot("active", 1700000000, controls); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	got, err := LoadSnapshot("active", 1700000000)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if diff := cmp.Diff(controls, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSnapshot_Missing(t *testing.T) {
	withSnapshotDir(t)
	if _, err := LoadSnapshot("active", 42); err == nil {
		t.Error("expected error for missing snapshot")
	}
}

func TestSnapshot_FormNameIsSanitized(t *testing.T) {
	dir := withSnapshotDir(t)
	if err := SaveSnapshot("class T:x/y z", 1, nil); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "delphi-cli-snapshot-class_T_x_y_z-1.json")); err != nil {
		t.Errorf("expected sanitized file name: %v", err)
	}
}

func TestCleanSnapshots(t *testing.T) {
	dir := withSnapshotDir(t)
	if err := SaveSnapshot("active", 1, nil); err != nil {
		t.Fatal(err)
	}
	if err := SaveSnapshot("active", 2, nil); err != nil {
		t.Fatal(err)
	}
	if err := SaveSnapshot("main", 3, nil); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "delphi-cli-snapshot-active-1.json"), old, old); err != nil {
		t.Fatal(err)
	}

	CleanSnapshots("active", time.Hour)

	if _, err := LoadSnapshot("active", 1); err == nil {
		t.Error("old snapshot should be removed")
	}
	if _, err := LoadSnapshot("active", 2); err != nil {
		t.Errorf("recent snapshot should survive: %v", err)
	}
	if _, err := LoadSnapshot("main", 3); err != nil {
		t.Errorf("other form's snapshot should survive: %v", err)
	}
}
