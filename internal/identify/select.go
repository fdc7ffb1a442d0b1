package identify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"runarr/internal/comicvine"
	"runarr/internal/textutil"
)

// Choice is the outcome of a disambiguation prompt.
type Choice struct {
	// Volume is the selected search candidate, nil unless one was picked.
	Volume *comicvine.Volume
	// DirectID is a volume id pasted as a catalog URL; when non-zero the
	// caller fetches it directly, bypassing search entirely.
	DirectID int64
	// Skip abandons the series for this run.
	Skip bool
}

// VolumeSelector decides which search candidate, if any, matches a series.
// Implementations may block on operator input; the resolver never needs to
// know whether a human is present.
type VolumeSelector interface {
	SelectVolume(ctx context.Context, query string, candidates []comicvine.Volume) (Choice, error)
}

// AutoSkipSelector always skips. Used in non-interactive runs where prompting
// would hang forever.
type AutoSkipSelector struct{}

func (AutoSkipSelector) SelectVolume(context.Context, string, []comicvine.Volume) (Choice, error) {
	return Choice{Skip: true}, nil
}

// volumeURLPattern extracts the numeric volume id from a pasted Comic Vine
// volume URL such as https://comicvine.gamespot.com/saga/4050-49018/.
var volumeURLPattern = regexp.MustCompile(`4050-(\d+)`)

// ConsoleSelector prompts the operator to choose among candidates. The loop
// has no retry limit: it blocks until a valid index, a skip, or a pasted
// catalog URL. It always prompts, even for a single candidate; auto-picking
// the lone result is how the wrong 1997 reboot ends up in the library.
type ConsoleSelector struct {
	In  io.Reader
	Out io.Writer
}

func (s ConsoleSelector) SelectVolume(ctx context.Context, query string, candidates []comicvine.Volume) (Choice, error) {
	if len(candidates) == 0 {
		return Choice{Skip: true}, nil
	}

	fmt.Fprintf(s.Out, "\nCandidates for %q:\n%s\n", query, renderCandidates(query, candidates))

	scanner := bufio.NewScanner(s.In)
	for {
		if err := ctx.Err(); err != nil {
			return Choice{}, err
		}
		fmt.Fprintf(s.Out, "Select volume [1-%d], 's' to skip, or paste a Comic Vine volume URL: ", len(candidates))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return Choice{}, fmt.Errorf("read selection: %w", err)
			}
			// EOF on stdin: treat like an explicit skip.
			return Choice{Skip: true}, nil
		}
		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case strings.EqualFold(input, "s") || strings.EqualFold(input, "skip"):
			return Choice{Skip: true}, nil
		}
		if m := volumeURLPattern.FindStringSubmatch(input); m != nil {
			id, err := strconv.ParseInt(m[1], 10, 64)
			if err == nil && id > 0 {
				return Choice{DirectID: id}, nil
			}
		}
		if index, err := strconv.Atoi(input); err == nil && index >= 1 && index <= len(candidates) {
			chosen := candidates[index-1]
			return Choice{Volume: &chosen}, nil
		}
		fmt.Fprintf(s.Out, "Invalid choice %q.\n", input)
	}
}

func renderCandidates(query string, candidates []comicvine.Volume) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Name", "Year", "Publisher", "URL"})
	for i, candidate := range candidates {
		name := candidate.Name
		if textutil.EqualFold(name, query) {
			name += " *"
		}
		tw.AppendRow(table.Row{i + 1, name, candidate.StartYear, candidate.PublisherName(), candidate.SiteDetailURL})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
	})
	return tw.Render()
}
