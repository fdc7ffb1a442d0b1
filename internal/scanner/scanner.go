package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"runarr/internal/archive"
	"runarr/internal/textutil"
)

// Group is the set of comic files found directly inside one folder. Files are
// sorted by name so issue order matches processing order.
type Group struct {
	Folder string
	Files  []string
}

// Scan walks root for comic archives and groups them by containing folder.
// seriesFolder, when non-empty, restricts the result to folders whose base
// name matches it under case folding. Groups come back sorted by folder path.
func Scan(root, seriesFolder string) ([]Group, error) {
	byFolder := make(map[string][]string)

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !archive.IsComicArchive(path) {
			return nil
		}
		folder := filepath.Dir(path)
		byFolder[folder] = append(byFolder[folder], path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	groups := make([]Group, 0, len(byFolder))
	for folder, files := range byFolder {
		if seriesFolder != "" && !textutil.EqualFold(filepath.Base(folder), seriesFolder) {
			continue
		}
		sort.Strings(files)
		groups = append(groups, Group{Folder: folder, Files: files})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Folder < groups[j].Folder })
	return groups, nil
}

// Count returns the total file count across groups.
func Count(groups []Group) int {
	total := 0
	for _, group := range groups {
		total += len(group.Files)
	}
	return total
}
