package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanGroupsByFolder(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Saga (2012)", "Saga 002.cbz"))
	touch(t, filepath.Join(root, "Saga (2012)", "Saga 001.cbz"))
	touch(t, filepath.Join(root, "Saga (2012)", "cover.jpg"))
	touch(t, filepath.Join(root, "Hellboy", "Hellboy 05.cbr"))
	touch(t, filepath.Join(root, "notes.txt"))

	groups, err := Scan(root, "")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if filepath.Base(groups[0].Folder) != "Hellboy" {
		t.Errorf("first group = %q, want Hellboy (sorted by folder)", groups[0].Folder)
	}
	saga := groups[1]
	if len(saga.Files) != 2 {
		t.Fatalf("saga files = %d, want 2 (non-archives excluded)", len(saga.Files))
	}
	if filepath.Base(saga.Files[0]) != "Saga 001.cbz" {
		t.Errorf("first saga file = %q, want name-sorted order", saga.Files[0])
	}
	if Count(groups) != 3 {
		t.Errorf("Count = %d, want 3", Count(groups))
	}
}

func TestScanSeriesFolderFilter(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Saga (2012)", "Saga 001.cbz"))
	touch(t, filepath.Join(root, "Hellboy", "Hellboy 05.cbz"))

	groups, err := Scan(root, "saga (2012)")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(groups) != 1 || filepath.Base(groups[0].Folder) != "Saga (2012)" {
		t.Fatalf("groups = %+v, want only the case-folded match", groups)
	}
}

func TestScanMissingRoot(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "absent"), ""); err == nil {
		t.Fatal("scanning a missing root should fail")
	}
}
