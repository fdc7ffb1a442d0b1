package organizer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"runarr/internal/archive"
	"runarr/internal/comicinfo"
	"runarr/internal/comicvine"
	"runarr/internal/logging"
	"runarr/internal/sidecar"
	"runarr/internal/textutil"
)

// Organizer renames resolved comics into the library layout and embeds
// metadata. With dryRun set it only reports what it would do.
type Organizer struct {
	outputDir string
	extrasDir string
	dryRun    bool
	logger    *slog.Logger
}

// Result describes what happened to one file.
type Result struct {
	OriginalPath string
	NewPath      string
	Moved        bool
	Embedded     bool
}

// New constructs an organizer targeting outputDir. extrasDirName is the
// folder non-comic files are swept into inside each series folder.
func New(outputDir, extrasDirName string, dryRun bool, logger *slog.Logger) *Organizer {
	if extrasDirName == "" {
		extrasDirName = "Extras"
	}
	return &Organizer{
		outputDir: outputDir,
		extrasDir: extrasDirName,
		dryRun:    dryRun,
		logger:    logging.NewComponentLogger(logger, "organizer"),
	}
}

// FileName builds the library file name for a resolved issue:
// "<Series> V<year>[ Annual] #NNN (<Month Year>)<ext>". The original
// extension is preserved so CBR files keep their format.
func FileName(issue *comicvine.Issue, originalPath string) (string, error) {
	if issue == nil || issue.Volume == nil {
		return "", errors.New("organizer: issue has no volume")
	}
	series := textutil.SanitizeFileName(issue.Volume.Name)
	year := strings.TrimSpace(issue.Volume.StartYear)
	number := strings.TrimSpace(issue.IssueNumber)
	if series == "" || year == "" || number == "" {
		return "", fmt.Errorf("organizer: missing naming details for %s", filepath.Base(originalPath))
	}

	annual := ""
	if strings.Contains(strings.ToLower(filepath.Base(originalPath)), "annual") {
		annual = " Annual"
	}

	date := "Unknown Date"
	if issue.CoverDate != "" {
		if parsed, err := time.Parse("2006-01-02", issue.CoverDate); err == nil {
			date = parsed.Format("January 2006")
		}
	}

	ext := strings.ToLower(filepath.Ext(originalPath))
	return fmt.Sprintf("%s V%s%s #%s (%s)%s", series, year, annual, padIssueNumber(number), date, ext), nil
}

// padIssueNumber left-pads to three characters, so plain numbers sort
// naturally ("1" -> "001") while longer identifiers pass through untouched.
func padIssueNumber(number string) string {
	for len(number) < 3 {
		number = "0" + number
	}
	return number
}

// SeriesFolder returns the absolute series folder for an issue's volume.
func (o *Organizer) SeriesFolder(volume *comicvine.Volume) (string, error) {
	if volume == nil {
		return "", errors.New("organizer: nil volume")
	}
	series := textutil.SanitizeFileName(volume.Name)
	year := strings.TrimSpace(volume.StartYear)
	if series == "" || year == "" {
		return "", fmt.Errorf("organizer: volume %d missing name or start year", volume.ID)
	}
	return filepath.Join(o.outputDir, fmt.Sprintf("%s (%s)", series, year)), nil
}

// Place moves a resolved file into its series folder under the library name
// and embeds ComicInfo.xml into CBZ archives that lack one.
func (o *Organizer) Place(path string, issue *comicvine.Issue) (*Result, error) {
	folder, err := o.SeriesFolder(issue.Volume)
	if err != nil {
		return nil, err
	}
	name, err := FileName(issue, path)
	if err != nil {
		return nil, err
	}
	target := filepath.Join(folder, name)
	result := &Result{OriginalPath: path, NewPath: target}

	if o.dryRun {
		o.logger.Info("dry run: would move",
			logging.String(logging.FieldFile, filepath.Base(path)),
			logging.String("target", target))
		return result, nil
	}

	if path != target {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return nil, fmt.Errorf("organizer: create series folder: %w", err)
		}
		if err := moveFile(path, target); err != nil {
			return nil, fmt.Errorf("organizer: move %s: %w", filepath.Base(path), err)
		}
		result.Moved = true
		o.logger.Info("moved",
			logging.String(logging.FieldFile, filepath.Base(path)),
			logging.String("target", target))
	} else {
		o.logger.Info("already organized", logging.String(logging.FieldFile, filepath.Base(path)))
	}

	if archive.IsWritable(target) {
		embedded, err := o.embedComicInfo(target, issue)
		if err != nil {
			// The file is in place; a failed embed is not worth aborting over.
			o.logger.Warn("comicinfo embed failed",
				logging.String(logging.FieldFile, filepath.Base(target)),
				logging.Error(err))
		} else {
			result.Embedded = embedded
		}
	}

	return result, nil
}

func (o *Organizer) embedComicInfo(path string, issue *comicvine.Issue) (bool, error) {
	payload, err := comicinfo.FromIssue(issue).Marshal()
	if err != nil {
		return false, err
	}
	ok, err := archive.EmbedFile(path, comicinfo.FileName, payload)
	if err != nil {
		return false, err
	}
	if !ok {
		o.logger.Info("comicinfo already present", logging.String(logging.FieldFile, filepath.Base(path)))
	}
	return ok, nil
}

// moveFile renames, falling back to copy-and-delete across filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

// SweepExtras moves the remaining non-comic files from the source folder into
// the series folder's extras directory. Sidecar files stay where they are.
func (o *Organizer) SweepExtras(sourceFolder, seriesFolder string) (int, error) {
	entries, err := os.ReadDir(sourceFolder)
	if err != nil {
		return 0, fmt.Errorf("organizer: read %s: %w", sourceFolder, err)
	}

	var extras []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if archive.IsComicArchive(name) || name == sidecar.FileName {
			continue
		}
		extras = append(extras, name)
	}
	if len(extras) == 0 {
		return 0, nil
	}

	extrasFolder := filepath.Join(seriesFolder, o.extrasDir)
	if o.dryRun {
		o.logger.Info("dry run: would move extras",
			logging.Int("count", len(extras)),
			logging.String("target", extrasFolder))
		return 0, nil
	}

	if err := os.MkdirAll(extrasFolder, 0o755); err != nil {
		return 0, fmt.Errorf("organizer: create extras folder: %w", err)
	}
	moved := 0
	for _, name := range extras {
		if err := moveFile(filepath.Join(sourceFolder, name), filepath.Join(extrasFolder, name)); err != nil {
			return moved, fmt.Errorf("organizer: move extra %s: %w", name, err)
		}
		moved++
	}
	o.logger.Info("extras moved",
		logging.Int("count", moved),
		logging.String("target", extrasFolder))
	return moved, nil
}

// RemoveIfEmpty deletes the source folder once everything has been moved out,
// unless it is the series folder itself.
func (o *Organizer) RemoveIfEmpty(sourceFolder, seriesFolder string) (bool, error) {
	if o.dryRun || sourceFolder == seriesFolder {
		return false, nil
	}
	entries, err := os.ReadDir(sourceFolder)
	if err != nil {
		return false, fmt.Errorf("organizer: read %s: %w", sourceFolder, err)
	}
	if len(entries) > 0 {
		return false, nil
	}
	if err := os.Remove(sourceFolder); err != nil {
		return false, fmt.Errorf("organizer: remove %s: %w", sourceFolder, err)
	}
	o.logger.Info("removed empty folder", logging.String(logging.FieldFolder, sourceFolder))
	return true, nil
}
