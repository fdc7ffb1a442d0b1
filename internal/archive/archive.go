package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Comic archive extensions. CBR archives are RAR-compressed and handled
// read-only for detection; they are organized but never rewritten.
const (
	ExtCBZ = ".cbz"
	ExtCBR = ".cbr"
)

// ErrNoCover is returned when an archive contains no image entries.
var ErrNoCover = errors.New("archive contains no image pages")

// IsComicArchive reports whether path has a recognized comic extension.
func IsComicArchive(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtCBZ, ExtCBR:
		return true
	}
	return false
}

// IsWritable reports whether the archive format supports embedding metadata.
func IsWritable(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ExtCBZ
}

func isImageEntry(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// ExtractCover returns the bytes of the first image page in name-sorted
// order, which in practice is the cover scan. Only CBZ archives can be
// opened; a CBR returns ErrNoCover since the pages are unreachable without a
// RAR decoder.
func ExtractCover(path string) ([]byte, error) {
	if !IsWritable(path) {
		return nil, ErrNoCover
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", filepath.Base(path), err)
	}
	defer reader.Close()

	var images []string
	for _, file := range reader.File {
		if isImageEntry(file.Name) {
			images = append(images, file.Name)
		}
	}
	if len(images) == 0 {
		return nil, ErrNoCover
	}
	sort.Strings(images)

	entry, err := reader.Open(images[0])
	if err != nil {
		return nil, fmt.Errorf("open cover entry %s: %w", images[0], err)
	}
	defer entry.Close()

	data, err := io.ReadAll(entry)
	if err != nil {
		return nil, fmt.Errorf("read cover entry %s: %w", images[0], err)
	}
	return data, nil
}

// HasEntry reports whether the CBZ contains an entry with the given name at
// any depth-zero path.
func HasEntry(path, name string) (bool, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return false, fmt.Errorf("open archive %s: %w", filepath.Base(path), err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// EmbedFile adds a file entry to an existing CBZ. The archive is rewritten to
// a temporary sibling and renamed into place; zip files cannot be appended to
// safely. If an entry with that name already exists the archive is left
// untouched and ok is false.
func EmbedFile(path, name string, payload []byte) (ok bool, err error) {
	if !IsWritable(path) {
		return false, fmt.Errorf("archive %s is not writable", filepath.Base(path))
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return false, fmt.Errorf("open archive %s: %w", filepath.Base(path), err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name == name {
			return false, nil
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".runarr-embed-*")
	if err != nil {
		return false, fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	writer := zip.NewWriter(tmp)
	for _, file := range reader.File {
		if err = copyEntry(writer, file); err != nil {
			_ = writer.Close()
			_ = tmp.Close()
			return false, err
		}
	}

	entry, err := writer.Create(name)
	if err != nil {
		_ = writer.Close()
		_ = tmp.Close()
		return false, fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err = entry.Write(payload); err != nil {
		_ = writer.Close()
		_ = tmp.Close()
		return false, fmt.Errorf("write entry %s: %w", name, err)
	}

	if err = writer.Close(); err != nil {
		_ = tmp.Close()
		return false, fmt.Errorf("finalize archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return false, fmt.Errorf("close temp archive: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return false, fmt.Errorf("replace archive: %w", err)
	}
	return true, nil
}

func copyEntry(writer *zip.Writer, file *zip.File) error {
	header := file.FileHeader
	dst, err := writer.CreateHeader(&header)
	if err != nil {
		return fmt.Errorf("copy entry %s: %w", file.Name, err)
	}
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", file.Name, err)
	}
	defer src.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy entry %s: %w", file.Name, err)
	}
	return nil
}

// Validate checks that a CBZ opens and contains at least one page. CBR
// archives pass validation on extension alone.
func Validate(path string) error {
	if !IsComicArchive(path) {
		return fmt.Errorf("%s is not a comic archive", filepath.Base(path))
	}
	if !IsWritable(path) {
		return nil
	}
	reader, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", filepath.Base(path), err)
	}
	defer reader.Close()
	for _, file := range reader.File {
		if isImageEntry(file.Name) {
			return nil
		}
	}
	return ErrNoCover
}
