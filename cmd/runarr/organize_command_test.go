package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"runarr/internal/archive"
	"runarr/internal/comicinfo"
	"runarr/internal/comicvine"
	"runarr/internal/issuestore"
	"runarr/internal/logging"
	"runarr/internal/sidecar"
	"runarr/internal/testsupport"
)

func writeTestCBZ(t *testing.T, path string) {
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

func writeTestConfig(t *testing.T, baseURL, cachePath, outputDir string) string {
	t.Helper()
	cfg := testsupport.NewConfig(t,
		testsupport.WithBaseURL(baseURL),
		testsupport.WithCachePath(cachePath),
		testsupport.WithOutputDir(outputDir),
	)
	return testsupport.WriteConfig(t, cfg)
}

// catalogHandler serves the two volume views (detail and issue list) and the
// issue detail endpoint with the Comic Vine envelope.
func catalogHandler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/volume/4050-49018/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("field_list"), "issues") &&
			!strings.Contains(r.URL.Query().Get("field_list"), "count_of_issues") {
			writeEnvelope(t, w, map[string]any{
				"issues": []map[string]any{
					{"id": 335927, "issue_number": "1"},
				},
			})
			return
		}
		writeEnvelope(t, w, map[string]any{
			"id": 49018, "name": "Saga", "start_year": "2012",
			"publisher": map[string]any{"name": "Image"},
		})
	})
	mux.HandleFunc("/issue/4000-335927/", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, map[string]any{
			"id": 335927, "name": "Chapter One", "issue_number": "1",
			"cover_date": "2012-03-01",
		})
	})
	return mux
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, results any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status_code": 1,
		"error":       "OK",
		"results":     results,
	}); err != nil {
		t.Errorf("encode envelope: %v", err)
	}
}

// seedIssueCache pre-populates the persistent store so resolving needs no
// issue detail fetch, keeping the test clear of the 4s pacing interval.
func seedIssueCache(t *testing.T, cachePath string, volume *comicvine.Volume) {
	t.Helper()
	store, err := issuestore.Open(cachePath, logging.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	seedErr := store.Flush(context.Background(), map[string]*comicvine.Issue{
		"49018-1": {
			ID: 335927, Name: "Chapter One", IssueNumber: "1",
			CoverDate: "2012-03-01", Volume: volume,
		},
	})
	if cerr := store.Close(); cerr != nil {
		t.Fatalf("close store: %v", cerr)
	}
	if seedErr != nil {
		t.Fatalf("seed store: %v", seedErr)
	}
}

func TestOrganizeEndToEndWithSidecarAndSeededCache(t *testing.T) {
	server := httptest.NewServer(catalogHandler(t))
	defer server.Close()

	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "library")
	cachePath := filepath.Join(t.TempDir(), "cache", "issues.db")

	sourceFolder := filepath.Join(inputDir, "Saga (2012)")
	comic := filepath.Join(sourceFolder, "Saga 001.cbz")
	writeTestCBZ(t, comic)

	// Sidecar satisfies the volume step without a search or a prompt.
	volume := &comicvine.Volume{
		ID:        49018,
		Name:      "Saga",
		StartYear: "2012",
		Publisher: &comicvine.NamedRef{Name: "Image"},
	}
	if err := sidecar.WriteVolume(sourceFolder, volume, time.Now()); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}

	seedIssueCache(t, cachePath, volume)

	cfgPath := writeTestConfig(t, server.URL, cachePath, outputDir)
	out, err := runCommand(t, "--config", cfgPath, "organize", inputDir, "--yes")
	if err != nil {
		t.Fatalf("organize: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Organized 1 file(s); 0 unresolved.") {
		t.Errorf("summary missing:\n%s", out)
	}

	organized := filepath.Join(outputDir, "Saga (2012)", "Saga V2012 #001 (March 2012).cbz")
	if _, err := os.Stat(organized); err != nil {
		t.Fatalf("organized file missing: %v", err)
	}
	has, err := archive.HasEntry(organized, comicinfo.FileName)
	if err != nil {
		t.Fatalf("HasEntry: %v", err)
	}
	if !has {
		t.Error("ComicInfo.xml not embedded")
	}
	if _, err := os.Stat(comic); !os.IsNotExist(err) {
		t.Error("source file should be gone")
	}
}

func TestOrganizeDryRunTouchesNothing(t *testing.T) {
	server := httptest.NewServer(catalogHandler(t))
	defer server.Close()

	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "library")
	cachePath := filepath.Join(t.TempDir(), "cache", "issues.db")

	sourceFolder := filepath.Join(inputDir, "Saga (2012)")
	comic := filepath.Join(sourceFolder, "Saga 001.cbz")
	writeTestCBZ(t, comic)
	volume := &comicvine.Volume{ID: 49018, Name: "Saga", StartYear: "2012"}
	if err := sidecar.WriteVolume(sourceFolder, volume, time.Now()); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
	seedIssueCache(t, cachePath, volume)

	cfgPath := writeTestConfig(t, server.URL, cachePath, outputDir)
	out, err := runCommand(t, "--config", cfgPath, "organize", inputDir, "--yes", "--dry-run")
	if err != nil {
		t.Fatalf("organize --dry-run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Would organize 1 file(s)") {
		t.Errorf("summary missing:\n%s", out)
	}
	if _, err := os.Stat(comic); err != nil {
		t.Error("dry run must not move the source file")
	}
	if _, err := os.Stat(outputDir); !os.IsNotExist(err) {
		t.Error("dry run must not create the library")
	}
}

func TestOrganizeEmptyInput(t *testing.T) {
	server := httptest.NewServer(catalogHandler(t))
	defer server.Close()
	cfgPath := writeTestConfig(t, server.URL, filepath.Join(t.TempDir(), "issues.db"), t.TempDir())

	out, err := runCommand(t, "--config", cfgPath, "organize", t.TempDir())
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	if !strings.Contains(out, "No comic archives found") {
		t.Errorf("expected empty-scan notice:\n%s", out)
	}
}
