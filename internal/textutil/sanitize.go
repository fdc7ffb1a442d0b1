package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// pathSeparatorReplacer turns path separators and colons into a spaced hyphen
// so "Batman/Superman" becomes "Batman - Superman" instead of losing a word.
var pathSeparatorReplacer = strings.NewReplacer(
	"/", " - ",
	"\\", " - ",
	":", " - ",
)

// invalidCharReplacer removes the remaining characters that are unsafe in
// file and directory names.
var invalidCharReplacer = strings.NewReplacer(
	"<", "",
	">", "",
	"\"", "",
	"|", "",
	"?", "",
	"*", "",
)

// SanitizeFileName makes a series or issue name safe for use in file paths.
// Separators and colons become " - ", other unsafe characters are dropped,
// and runs of spaces collapse to one.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = pathSeparatorReplacer.Replace(name)
	name = invalidCharReplacer.Replace(name)
	for strings.Contains(name, "  ") {
		name = strings.ReplaceAll(name, "  ", " ")
	}
	return strings.TrimSpace(name)
}

var titleFolder = cases.Fold()

// EqualFold reports whether two titles are equal under Unicode case folding,
// ignoring surrounding whitespace.
func EqualFold(a, b string) bool {
	return titleFolder.String(strings.TrimSpace(a)) == titleFolder.String(strings.TrimSpace(b))
}

// StripTags removes anything that looks like an HTML/XML tag. Catalog
// descriptions arrive as HTML fragments; sidecar files store a plain-text copy
// alongside the formatted one.
func StripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
