package comicinfo

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"runarr/internal/comicvine"
)

// FileName is the metadata file embedded at the root of comic archives.
const FileName = "ComicInfo.xml"

// ComicInfo models the ComicInfo.xml schema subset the catalog can fill.
// Field order matches the schema's canonical element order.
type ComicInfo struct {
	XMLName      xml.Name `xml:"ComicInfo"`
	XSINamespace string   `xml:"xmlns:xsi,attr"`
	XSDNamespace string   `xml:"xmlns:xsd,attr"`

	Title       string `xml:"Title,omitempty"`
	Series      string `xml:"Series,omitempty"`
	Number      string `xml:"Number,omitempty"`
	Volume      string `xml:"Volume,omitempty"`
	Summary     string `xml:"Summary,omitempty"`
	Year        int    `xml:"Year,omitempty"`
	Month       int    `xml:"Month,omitempty"`
	Day         int    `xml:"Day,omitempty"`
	Writer      string `xml:"Writer,omitempty"`
	Penciller   string `xml:"Penciller,omitempty"`
	Inker       string `xml:"Inker,omitempty"`
	Colorist    string `xml:"Colorist,omitempty"`
	Letterer    string `xml:"Letterer,omitempty"`
	CoverArtist string `xml:"CoverArtist,omitempty"`
	Editor      string `xml:"Editor,omitempty"`
	Publisher   string `xml:"Publisher,omitempty"`
	Genre       string `xml:"Genre,omitempty"`
	Web         string `xml:"Web,omitempty"`
	Characters  string `xml:"Characters,omitempty"`
	Teams       string `xml:"Teams,omitempty"`
	Locations   string `xml:"Locations,omitempty"`
	StoryArc    string `xml:"StoryArc,omitempty"`
}

// FromIssue builds the ComicInfo document for a resolved issue. The series
// start year goes into Volume, which several readers use for grouping.
func FromIssue(issue *comicvine.Issue) *ComicInfo {
	if issue == nil {
		return nil
	}

	info := &ComicInfo{
		XSINamespace: "http://www.w3.org/2001/XMLSchema-instance",
		XSDNamespace: "http://www.w3.org/2001/XMLSchema",
		Title:        issue.Name,
		Number:       issue.IssueNumber,
		Summary:      issue.Description,
		Web:          issue.SiteDetailURL,
		Writer:       creditsForRole(issue.PersonCredits, "writer"),
		Penciller:    creditsForRole(issue.PersonCredits, "penciller"),
		Inker:        creditsForRole(issue.PersonCredits, "inker"),
		Colorist:     creditsForRole(issue.PersonCredits, "colorist"),
		Letterer:     creditsForRole(issue.PersonCredits, "letterer"),
		CoverArtist:  creditsForRole(issue.PersonCredits, "cover"),
		Editor:       creditsForRole(issue.PersonCredits, "editor"),
		Genre:        joinNames(issue.ConceptCredits),
		Characters:   joinNames(issue.CharacterCredits),
		Teams:        joinNames(issue.TeamCredits),
		Locations:    joinNames(issue.LocationCredits),
		StoryArc:     joinNames(issue.StoryArcCredits),
	}

	if issue.Volume != nil {
		info.Series = issue.Volume.Name
		info.Volume = issue.Volume.StartYear
		info.Publisher = issue.Volume.PublisherName()
	}

	// Store date is the actual shipping date; cover dates run months ahead.
	dateStr := issue.ReleaseDate
	if dateStr == "" {
		dateStr = issue.CoverDate
	}
	if dateStr != "" {
		if parsed, err := time.Parse("2006-01-02", dateStr); err == nil {
			info.Year = parsed.Year()
			info.Month = int(parsed.Month())
			info.Day = parsed.Day()
		}
	}

	return info
}

// creditsForRole joins the sorted names of every person whose comma-joined
// role string contains role.
func creditsForRole(credits []comicvine.Credit, role string) string {
	var names []string
	for _, credit := range credits {
		if strings.Contains(strings.ToLower(credit.Role), role) {
			names = append(names, credit.Name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func joinNames(refs []comicvine.NamedRef) string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Name != "" {
			names = append(names, ref.Name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Marshal renders the document with the XML declaration readers expect.
func (c *ComicInfo) Marshal() ([]byte, error) {
	body, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("comicinfo: encode: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}
