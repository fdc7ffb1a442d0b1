package identify

import "testing"

func TestParseIdentityFolderTitleAndYear(t *testing.T) {
	id := ParseIdentity("/comics/Saga (2012)/Saga 001 (2012).cbz")
	if id.SeriesTitle != "Saga" {
		t.Errorf("title = %q, want Saga", id.SeriesTitle)
	}
	if id.SeriesYear != "2012" {
		t.Errorf("year = %q, want 2012", id.SeriesYear)
	}
	if id.IssueNumber != "001" {
		t.Errorf("issue = %q, want 001", id.IssueNumber)
	}
}

func TestParseIdentityFolderWithoutYear(t *testing.T) {
	id := ParseIdentity("/comics/Hellboy/Hellboy 05.cbz")
	if id.SeriesTitle != "Hellboy" || id.SeriesYear != "" {
		t.Errorf("identity = %+v", id)
	}
	if id.IssueNumber != "05" {
		t.Errorf("issue = %q, want 05", id.IssueNumber)
	}
}

func TestHashTokenWinsOutright(t *testing.T) {
	cases := []struct {
		file string
		want string
	}{
		{"Batman #23 v2 1989.cbz", "23"},
		{"Saga #1.cbz", "1"},
		{"2000AD #57 (1985).cbz", "57"},
	}
	for _, tc := range cases {
		id := ParseIdentity("/comics/Batman (1989)/" + tc.file)
		if id.IssueNumber != tc.want {
			t.Errorf("%q: issue = %q, want %q", tc.file, id.IssueNumber, tc.want)
		}
	}
}

func TestParenthesizedTokensNeverCompete(t *testing.T) {
	id := ParseIdentity("/comics/Saga (2012)/Saga 007 (2021) (digital).cbz")
	if id.IssueNumber != "007" {
		t.Errorf("issue = %q, want 007", id.IssueNumber)
	}
	// A # token inside parentheses must not win either.
	id = ParseIdentity("/comics/Saga (2012)/Saga 003 (scan #99).cbz")
	if id.IssueNumber != "003" {
		t.Errorf("issue = %q, want 003", id.IssueNumber)
	}
}

func TestYearRunsAreDiscarded(t *testing.T) {
	// The only digit run equals the series year: extraction falls through to
	// the guesser, which also finds nothing.
	id := ParseIdentity("/comics/Batman (1989)/Batman 1989.cbz")
	if id.IssueNumber != "" {
		t.Errorf("issue = %q, want absent", id.IssueNumber)
	}
	// Likely-year runs (19xx/20xx) are discarded even without a folder year.
	id = ParseIdentity("/comics/Watchmen/Watchmen 1986 04.cbz")
	if id.IssueNumber != "04" {
		t.Errorf("issue = %q, want 04", id.IssueNumber)
	}
}

func TestLastSurvivingRunWins(t *testing.T) {
	id := ParseIdentity("/comics/2000AD/2000AD 334 12.cbz")
	if id.IssueNumber != "12" {
		t.Errorf("issue = %q, want 12 (issue numbers trail other descriptors)", id.IssueNumber)
	}
}

func TestGuesserFallback(t *testing.T) {
	cases := []struct {
		file string
		want string
	}{
		{"Saga Chapter Twelve.cbz", ""},
		{"Saga chapter 12.cbz", "12"},
		{"Batman012.cbz", "012"}, // glued digits, later normalized
		{"East of West 3 of 10.cbz", "3"},
		{"Saga.cbz", ""},
	}
	for _, tc := range cases {
		if got := guessIssueNumber(tc.file, ""); got != tc.want {
			t.Errorf("guessIssueNumber(%q) = %q, want %q", tc.file, got, tc.want)
		}
	}
}

func TestCompleteRequiresTitleAndIssue(t *testing.T) {
	if (Identity{SeriesTitle: "Saga"}).Complete() {
		t.Fatal("missing issue number should be incomplete")
	}
	if (Identity{IssueNumber: "1"}).Complete() {
		t.Fatal("missing title should be incomplete")
	}
	if !(Identity{SeriesTitle: "Saga", IssueNumber: "1"}).Complete() {
		t.Fatal("full identity should be complete")
	}
}
