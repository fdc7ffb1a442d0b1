package identify

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Patterns for the general-purpose filename guesser, tried in order. The
// word-bounded digit-run pass has already failed by the time these run, so
// they target the shapes that pass cannot see: keyword prefixes and digits
// glued to the series name.
var (
	keywordNumberPattern = regexp.MustCompile(`(?i)\b(?:issue|iss|number|num|no|ch(?:apter)?|ep(?:isode)?)[\s._#-]*(\d+)`)
	ofTotalPattern       = regexp.MustCompile(`(?i)\b(\d+)\s*(?:of|/)\s*\d+\b`)
	gluedDigitsPattern   = regexp.MustCompile(`(?i)[a-z](\d{1,3})\s*$`)
)

// guessIssueNumber is the fallback for filenames the primary heuristics could
// not crack, e.g. "Saga Chapter 12.cbz" or "Batman012.cbz". Returns "" when
// nothing plausible is found.
func guessIssueNumber(fileName, seriesYear string) string {
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	stem = parenPattern.ReplaceAllString(stem, "")
	stem = strings.TrimSpace(stem)
	if stem == "" {
		return ""
	}

	for _, pattern := range []*regexp.Regexp{keywordNumberPattern, ofTotalPattern, gluedDigitsPattern} {
		if m := pattern.FindStringSubmatch(stem); m != nil {
			candidate := m[1]
			if looksLikeYear(candidate) || (seriesYear != "" && candidate == seriesYear) {
				continue
			}
			return candidate
		}
	}
	return ""
}
