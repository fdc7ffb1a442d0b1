package comicvine

import (
	"strconv"
	"strings"
)

// NamedRef is a minimal id/name pair used for publishers, characters, teams,
// locations, story arcs, and concepts.
type NamedRef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// Image carries the subset of catalog image URLs the organizer uses.
type Image struct {
	OriginalURL string `json:"original_url"`
}

// IssueStub is the truncated issue reference embedded in volume payloads.
type IssueStub struct {
	ID          int64  `json:"id"`
	IssueNumber string `json:"issue_number"`
	CoverDate   string `json:"cover_date,omitempty"`
}

// Volume represents a series in the catalog. Search results carry only the
// identity fields; GetVolume fills in description, counts, and the first/last
// issue stubs used to derive publication status.
type Volume struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	StartYear     string     `json:"start_year"`
	Publisher     *NamedRef  `json:"publisher,omitempty"`
	Description   string     `json:"description,omitempty"`
	CountOfIssues int        `json:"count_of_issues,omitempty"`
	Image         *Image     `json:"image,omitempty"`
	SiteDetailURL string     `json:"site_detail_url,omitempty"`
	FirstIssue    *IssueStub `json:"first_issue,omitempty"`
	LastIssue     *IssueStub `json:"last_issue,omitempty"`
	Characters    []NamedRef `json:"characters,omitempty"`
	Teams         []NamedRef `json:"teams,omitempty"`
	Locations     []NamedRef `json:"locations,omitempty"`
	Concepts      []NamedRef `json:"concepts,omitempty"`
}

// PublisherName returns the publisher's name or "".
func (v *Volume) PublisherName() string {
	if v == nil || v.Publisher == nil {
		return ""
	}
	return v.Publisher.Name
}

// ImageURL returns the cover image URL or "".
func (v *Volume) ImageURL() string {
	if v == nil || v.Image == nil {
		return ""
	}
	return v.Image.OriginalURL
}

// IssueRef is a lightweight entry in a volume's issue list.
type IssueRef struct {
	ID          int64  `json:"id"`
	IssueNumber string `json:"issue_number"`
}

// Credit is a person credit with their catalog role string (e.g. "writer,
// cover" — roles arrive comma-joined and are matched by substring).
type Credit struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Issue is the canonical resolved record for a single comic issue. Volume is
// injected by the client after fetch; the remote detail payload only embeds a
// truncated volume reference.
type Issue struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	IssueNumber      string     `json:"issue_number"`
	Description      string     `json:"description,omitempty"`
	CoverDate        string     `json:"cover_date,omitempty"`
	ReleaseDate      string     `json:"store_date,omitempty"`
	SiteDetailURL    string     `json:"site_detail_url,omitempty"`
	Volume           *Volume    `json:"volume,omitempty"`
	PersonCredits    []Credit   `json:"person_credits,omitempty"`
	CharacterCredits []NamedRef `json:"character_credits,omitempty"`
	TeamCredits      []NamedRef `json:"team_credits,omitempty"`
	LocationCredits  []NamedRef `json:"location_credits,omitempty"`
	StoryArcCredits  []NamedRef `json:"story_arc_credits,omitempty"`
	ConceptCredits   []NamedRef `json:"concept_credits,omitempty"`
}

// CacheKey derives the stable cross-run cache key for an issue of a volume.
func CacheKey(volumeID int64, issueNumber string) string {
	return strconv.FormatInt(volumeID, 10) + "-" + strings.TrimSpace(issueNumber)
}

// NormalizeIssueNumber strips leading zeros and whitespace from numeric issue
// numbers ("001" -> "1"). Non-numeric identifiers ("Annual 1", "½") are kept
// as opaque trimmed strings; both the issue-list keys and lookups use this
// same function so the two sides always agree.
func NormalizeIssueNumber(number string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		return ""
	}
	if n, err := strconv.Atoi(number); err == nil {
		return strconv.Itoa(n)
	}
	return number
}
