package identify

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Identity is the series/issue guess derived from a file path. It is
// recomputed per file and never persisted.
type Identity struct {
	SeriesTitle string
	SeriesYear  string // 4 digits, "" when the folder name carries no year
	IssueNumber string // "" when nothing derivable
}

// Complete reports whether the identity is usable for resolution: both a
// series title and an issue number are required.
func (id Identity) Complete() bool {
	return id.SeriesTitle != "" && id.IssueNumber != ""
}

var (
	folderPattern   = regexp.MustCompile(`^(.*?)\s*\((\d{4})\)`)
	parenPattern    = regexp.MustCompile(`\([^)]*\)`)
	hashPattern     = regexp.MustCompile(`#(\d+)`)
	digitRunPattern = regexp.MustCompile(`\b\d+\b`)
)

// ParseIdentity derives a candidate series title, series year, and issue
// number from a comic file path and its parent folder name. Pure string work,
// no I/O.
func ParseIdentity(path string) Identity {
	fileName := filepath.Base(path)
	folderName := filepath.Base(filepath.Dir(path))

	id := Identity{SeriesTitle: strings.TrimSpace(folderName)}
	if m := folderPattern.FindStringSubmatch(folderName); m != nil {
		id.SeriesTitle = strings.TrimSpace(m[1])
		id.SeriesYear = m[2]
	}
	id.IssueNumber = extractIssueNumber(fileName, id.SeriesYear)
	return id
}

// extractIssueNumber applies the issue-number heuristics to a filename:
// parenthesized substrings are stripped first so "(2021)" never competes, a
// "#<digits>" token wins outright, otherwise the last standalone digit run
// that does not look like a year survives. Failing all that, the generic
// filename guesser has a go.
func extractIssueNumber(fileName, seriesYear string) string {
	clean := parenPattern.ReplaceAllString(fileName, "")

	if m := hashPattern.FindStringSubmatch(clean); m != nil {
		return m[1]
	}

	var last string
	for _, run := range digitRunPattern.FindAllString(clean, -1) {
		if looksLikeYear(run) || (seriesYear != "" && run == seriesYear) {
			continue
		}
		last = run
	}
	if last != "" {
		return last
	}

	return guessIssueNumber(fileName, seriesYear)
}

func looksLikeYear(run string) bool {
	return len(run) == 4 && (strings.HasPrefix(run, "19") || strings.HasPrefix(run, "20"))
}
