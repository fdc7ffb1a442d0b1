package comicinfo

import (
	"strings"
	"testing"

	"runarr/internal/comicvine"
)

func resolvedIssue() *comicvine.Issue {
	return &comicvine.Issue{
		ID:            335927,
		Name:          "Chapter One",
		IssueNumber:   "1",
		Description:   "<p>War is hell.</p>",
		CoverDate:     "2012-05-01",
		ReleaseDate:   "2012-03-14",
		SiteDetailURL: "https://comicvine.gamespot.com/saga-1/4000-335927/",
		Volume: &comicvine.Volume{
			ID:        49018,
			Name:      "Saga",
			StartYear: "2012",
			Publisher: &comicvine.NamedRef{Name: "Image"},
		},
		PersonCredits: []comicvine.Credit{
			{Name: "Fiona Staples", Role: "artist, cover"},
			{Name: "Brian K. Vaughan", Role: "writer"},
			{Name: "Fonografiks", Role: "letterer"},
		},
		CharacterCredits: []comicvine.NamedRef{{Name: "Marko"}, {Name: "Alana"}},
		ConceptCredits:   []comicvine.NamedRef{{Name: "Space Opera"}},
		StoryArcCredits:  []comicvine.NamedRef{{Name: "Saga Volume 1"}},
	}
}

func TestFromIssueFields(t *testing.T) {
	info := FromIssue(resolvedIssue())

	if info.Title != "Chapter One" || info.Series != "Saga" || info.Number != "1" {
		t.Errorf("identity = %q/%q/%q", info.Title, info.Series, info.Number)
	}
	if info.Volume != "2012" {
		t.Errorf("volume = %q, want start year 2012", info.Volume)
	}
	if info.Publisher != "Image" {
		t.Errorf("publisher = %q", info.Publisher)
	}
	if info.Writer != "Brian K. Vaughan" {
		t.Errorf("writer = %q", info.Writer)
	}
	if info.CoverArtist != "Fiona Staples" {
		t.Errorf("cover artist = %q", info.CoverArtist)
	}
	if info.Letterer != "Fonografiks" {
		t.Errorf("letterer = %q", info.Letterer)
	}
	if info.Characters != "Alana, Marko" {
		t.Errorf("characters = %q, want sorted join", info.Characters)
	}
	if info.Genre != "Space Opera" {
		t.Errorf("genre = %q", info.Genre)
	}
	if info.StoryArc != "Saga Volume 1" {
		t.Errorf("story arc = %q", info.StoryArc)
	}
}

func TestFromIssuePrefersReleaseDate(t *testing.T) {
	info := FromIssue(resolvedIssue())
	if info.Year != 2012 || info.Month != 3 || info.Day != 14 {
		t.Errorf("date = %d-%d-%d, want store date 2012-3-14", info.Year, info.Month, info.Day)
	}

	issue := resolvedIssue()
	issue.ReleaseDate = ""
	info = FromIssue(issue)
	if info.Month != 5 {
		t.Errorf("month = %d, want cover date fallback", info.Month)
	}

	issue.CoverDate = "not a date"
	info = FromIssue(issue)
	if info.Year != 0 || info.Month != 0 || info.Day != 0 {
		t.Errorf("date = %d-%d-%d, want unset for invalid input", info.Year, info.Month, info.Day)
	}
}

func TestMarshalOutput(t *testing.T) {
	payload, err := FromIssue(resolvedIssue()).Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := string(payload)
	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("output must start with the XML declaration")
	}
	if !strings.Contains(out, `xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`) {
		t.Error("missing xsi namespace attribute")
	}
	if !strings.Contains(out, "<Summary>&lt;p&gt;War is hell.&lt;/p&gt;</Summary>") {
		t.Error("summary HTML must be escaped, not stripped")
	}
	if strings.Contains(out, "<Inker>") {
		t.Error("empty credit elements must be omitted")
	}
}
