package organizer

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"runarr/internal/archive"
	"runarr/internal/comicinfo"
	"runarr/internal/comicvine"
	"runarr/internal/logging"
)

func sagaIssue(number string) *comicvine.Issue {
	return &comicvine.Issue{
		ID:          335927,
		Name:        "Chapter One",
		IssueNumber: number,
		CoverDate:   "2012-03-01",
		Volume: &comicvine.Volume{
			ID:        49018,
			Name:      "Saga",
			StartYear: "2012",
			Publisher: &comicvine.NamedRef{Name: "Image"},
		},
	}
}

func writeCBZ(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, err := writer.Create("page-001.jpg")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := entry.Write([]byte("cover")); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write cbz: %v", err)
	}
}

func TestFileNameFormatting(t *testing.T) {
	cases := []struct {
		number   string
		original string
		want     string
	}{
		{"1", "Saga 001.cbz", "Saga V2012 #001 (March 2012).cbz"},
		{"12", "Saga 012.CBZ", "Saga V2012 #012 (March 2012).cbz"},
		{"100", "Saga 100.cbz", "Saga V2012 #100 (March 2012).cbz"},
		{"1", "Saga Annual 1.cbz", "Saga V2012 Annual #001 (March 2012).cbz"},
		{"5", "Hellboy 05.cbr", "Saga V2012 #005 (March 2012).cbr"},
	}
	for _, tc := range cases {
		got, err := FileName(sagaIssue(tc.number), tc.original)
		if err != nil {
			t.Fatalf("FileName(%q): %v", tc.original, err)
		}
		if got != tc.want {
			t.Errorf("FileName(%q) = %q, want %q", tc.original, got, tc.want)
		}
	}
}

func TestFileNameUnknownDate(t *testing.T) {
	issue := sagaIssue("1")
	issue.CoverDate = ""
	got, err := FileName(issue, "Saga 001.cbz")
	if err != nil {
		t.Fatalf("FileName: %v", err)
	}
	if got != "Saga V2012 #001 (Unknown Date).cbz" {
		t.Errorf("FileName = %q", got)
	}
}

func TestFileNameSanitizesSeries(t *testing.T) {
	issue := sagaIssue("1")
	issue.Volume.Name = "Batman/Superman: World's Finest"
	got, err := FileName(issue, "ws 001.cbz")
	if err != nil {
		t.Fatalf("FileName: %v", err)
	}
	if got != "Batman - Superman - World's Finest V2012 #001 (March 2012).cbz" {
		t.Errorf("FileName = %q", got)
	}
}

func TestFileNameMissingDetails(t *testing.T) {
	issue := sagaIssue("1")
	issue.Volume.StartYear = ""
	if _, err := FileName(issue, "Saga 001.cbz"); err == nil {
		t.Fatal("missing start year should fail")
	}
}

func TestPlaceMovesAndEmbeds(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "incoming", "Saga (2012)", "Saga 001.cbz")
	writeCBZ(t, source)

	org := New(filepath.Join(root, "library"), "Extras", false, logging.NewNop())
	result, err := org.Place(source, sagaIssue("1"))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	wantPath := filepath.Join(root, "library", "Saga (2012)", "Saga V2012 #001 (March 2012).cbz")
	if result.NewPath != wantPath {
		t.Errorf("new path = %q, want %q", result.NewPath, wantPath)
	}
	if !result.Moved || !result.Embedded {
		t.Errorf("result = %+v, want moved and embedded", result)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Error("source file should be gone after the move")
	}
	has, err := archive.HasEntry(wantPath, comicinfo.FileName)
	if err != nil {
		t.Fatalf("HasEntry: %v", err)
	}
	if !has {
		t.Error("ComicInfo.xml missing from organized archive")
	}
}

func TestPlaceSecondRunIsIdempotent(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "Saga (2012)", "Saga 001.cbz")
	writeCBZ(t, source)

	org := New(root, "Extras", false, logging.NewNop())
	first, err := org.Place(source, sagaIssue("1"))
	if err != nil {
		t.Fatalf("first Place: %v", err)
	}

	second, err := org.Place(first.NewPath, sagaIssue("1"))
	if err != nil {
		t.Fatalf("second Place: %v", err)
	}
	if second.Moved {
		t.Error("already organized file must not move again")
	}
	if second.Embedded {
		t.Error("existing ComicInfo.xml must not be embedded twice")
	}
}

func TestPlaceDryRun(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "incoming", "Saga 001.cbz")
	writeCBZ(t, source)

	org := New(filepath.Join(root, "library"), "Extras", true, logging.NewNop())
	result, err := org.Place(source, sagaIssue("1"))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if result.Moved || result.Embedded {
		t.Errorf("result = %+v, want nothing done in dry run", result)
	}
	if _, err := os.Stat(source); err != nil {
		t.Error("dry run must leave the source in place")
	}
	if _, err := os.Stat(filepath.Join(root, "library")); !os.IsNotExist(err) {
		t.Error("dry run must not create the library folder")
	}
}

func TestSweepExtrasAndCleanup(t *testing.T) {
	root := t.TempDir()
	sourceFolder := filepath.Join(root, "incoming", "Saga (2012)")
	comic := filepath.Join(sourceFolder, "Saga 001.cbz")
	writeCBZ(t, comic)
	if err := os.WriteFile(filepath.Join(sourceFolder, "cover-art.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write extra: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sourceFolder, "series.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}

	org := New(filepath.Join(root, "library"), "Extras", false, logging.NewNop())
	result, err := org.Place(comic, sagaIssue("1"))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	seriesFolder := filepath.Dir(result.NewPath)

	moved, err := org.SweepExtras(sourceFolder, seriesFolder)
	if err != nil {
		t.Fatalf("SweepExtras: %v", err)
	}
	if moved != 1 {
		t.Fatalf("moved = %d, want 1 (sidecar stays put)", moved)
	}
	if _, err := os.Stat(filepath.Join(seriesFolder, "Extras", "cover-art.jpg")); err != nil {
		t.Errorf("extra not moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(sourceFolder, "series.json")); err != nil {
		t.Errorf("sidecar should remain: %v", err)
	}

	// Folder still holds the sidecar, so cleanup declines.
	removed, err := org.RemoveIfEmpty(sourceFolder, seriesFolder)
	if err != nil {
		t.Fatalf("RemoveIfEmpty: %v", err)
	}
	if removed {
		t.Fatal("non-empty folder must not be removed")
	}

	if err := os.Remove(filepath.Join(sourceFolder, "series.json")); err != nil {
		t.Fatalf("remove sidecar: %v", err)
	}
	removed, err = org.RemoveIfEmpty(sourceFolder, seriesFolder)
	if err != nil {
		t.Fatalf("RemoveIfEmpty: %v", err)
	}
	if !removed {
		t.Fatal("emptied folder should be removed")
	}
}

func TestRemoveIfEmptyNeverRemovesSeriesFolder(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "Saga (2012)")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	org := New(root, "Extras", false, logging.NewNop())
	removed, err := org.RemoveIfEmpty(folder, folder)
	if err != nil {
		t.Fatalf("RemoveIfEmpty: %v", err)
	}
	if removed {
		t.Fatal("the series folder itself must never be removed")
	}
}
