package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"runarr/internal/comicvine"
	"runarr/internal/textutil"
)

// FileName is the sidecar file written into each series folder.
const FileName = "series.json"

// documentVersion matches the series.json format readers like Kavita and
// Komga understand.
const documentVersion = "1.0.3"

// continuingWindow is how recently the last issue must have shipped for a
// series to count as still running.
const continuingWindow = 90 * 24 * time.Hour

// Document is the on-disk series.json structure.
type Document struct {
	Version  string   `json:"version"`
	Metadata Metadata `json:"metadata"`
}

// Metadata is the series description block. Pointer fields are emitted as
// JSON null when absent; downstream readers expect the keys to be present.
type Metadata struct {
	Type                 string   `json:"type"`
	Publisher            string   `json:"publisher"`
	Imprint              string   `json:"imprint"`
	Name                 string   `json:"name"`
	ComicID              int64    `json:"comicid"`
	Year                 *int     `json:"year"`
	DescriptionText      string   `json:"description_text"`
	DescriptionFormatted string   `json:"description_formatted"`
	Volume               *int     `json:"volume"`
	BookType             string   `json:"booktype"`
	AgeRating            *string  `json:"age_rating"`
	Collects             *string  `json:"collects"`
	ComicImage           string   `json:"comic_image"`
	TotalIssues          int      `json:"total_issues"`
	PublicationRun       string   `json:"publication_run"`
	Status               string   `json:"status"`
	Characters           []string `json:"characters"`
	Teams                []string `json:"teams"`
	Locations            []string `json:"locations"`
	Concepts             []string `json:"concepts"`
}

// Generate builds the series.json document for a resolved volume. now anchors
// the Ended/Continuing decision.
func Generate(volume *comicvine.Volume, now time.Time) *Document {
	if volume == nil {
		return nil
	}

	status := "Ended"
	if last := lastCoverDate(volume); !last.IsZero() {
		if now.Sub(last) < continuingWindow {
			status = "Continuing"
		}
	} else if volume.CountOfIssues == 0 {
		status = "Continuing"
	}

	run := volume.StartYear
	if last := lastCoverDate(volume); !last.IsZero() {
		lastYear := strconv.Itoa(last.Year())
		if lastYear != run {
			run += " - " + lastYear
		}
	}

	bookType := "Standard"
	if volume.CountOfIssues == 1 {
		bookType = "One-Shot"
	}

	var year *int
	if n, err := strconv.Atoi(volume.StartYear); err == nil {
		year = &n
	}

	return &Document{
		Version: documentVersion,
		Metadata: Metadata{
			Type:                 "comicSeries",
			Publisher:            volume.PublisherName(),
			Imprint:              volume.PublisherName(),
			Name:                 volume.Name,
			ComicID:              volume.ID,
			Year:                 year,
			DescriptionText:      textutil.StripTags(volume.Description),
			DescriptionFormatted: volume.Description,
			BookType:             bookType,
			ComicImage:           volume.ImageURL(),
			TotalIssues:          volume.CountOfIssues,
			PublicationRun:       run,
			Status:               status,
			Characters:           sortedNames(volume.Characters),
			Teams:                sortedNames(volume.Teams),
			Locations:            sortedNames(volume.Locations),
			Concepts:             sortedNames(volume.Concepts),
		},
	}
}

func lastCoverDate(volume *comicvine.Volume) time.Time {
	if volume.LastIssue == nil || volume.LastIssue.CoverDate == "" {
		return time.Time{}
	}
	parsed, err := time.Parse("2006-01-02", volume.LastIssue.CoverDate)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func sortedNames(refs []comicvine.NamedRef) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Name != "" {
			names = append(names, ref.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Write persists the document into folder, creating the folder if needed.
func Write(folder string, doc *Document) error {
	if doc == nil {
		return errors.New("sidecar: nil document")
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("sidecar: create series folder: %w", err)
	}
	payload, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("sidecar: encode %s: %w", FileName, err)
	}
	payload = append(payload, '\n')
	path := filepath.Join(folder, FileName)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("sidecar: write %s: %w", path, err)
	}
	return nil
}

// WriteVolume generates and persists the sidecar for a volume in one step.
func WriteVolume(folder string, volume *comicvine.Volume, now time.Time) error {
	return Write(folder, Generate(volume, now))
}

// Reader loads volume records from series.json sidecars. It satisfies the
// resolver's sidecar dependency.
type Reader struct{}

// ReadVolume reconstructs a catalog volume from folder's sidecar. A missing
// sidecar is (nil, nil); an unreadable one is an error so the caller falls
// back to remote search.
func (Reader) ReadVolume(folder string) (*comicvine.Volume, error) {
	payload, err := os.ReadFile(filepath.Join(folder, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("sidecar: read %s: %w", FileName, err)
	}

	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("sidecar: decode %s: %w", FileName, err)
	}
	if doc.Metadata.ComicID <= 0 || doc.Metadata.Name == "" {
		return nil, fmt.Errorf("sidecar: %s missing series identity", FileName)
	}

	meta := doc.Metadata
	volume := &comicvine.Volume{
		ID:            meta.ComicID,
		Name:          meta.Name,
		Description:   meta.DescriptionFormatted,
		CountOfIssues: meta.TotalIssues,
		Characters:    toNamedRefs(meta.Characters),
		Teams:         toNamedRefs(meta.Teams),
		Locations:     toNamedRefs(meta.Locations),
		Concepts:      toNamedRefs(meta.Concepts),
	}
	if meta.Year != nil {
		volume.StartYear = strconv.Itoa(*meta.Year)
	}
	if meta.Publisher != "" {
		volume.Publisher = &comicvine.NamedRef{Name: meta.Publisher}
	}
	if meta.ComicImage != "" {
		volume.Image = &comicvine.Image{OriginalURL: meta.ComicImage}
	}
	return volume, nil
}

func toNamedRefs(names []string) []comicvine.NamedRef {
	if len(names) == 0 {
		return nil
	}
	refs := make([]comicvine.NamedRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, comicvine.NamedRef{Name: name})
	}
	return refs
}
