package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"runarr/internal/archive"
	"runarr/internal/identify"
	"runarr/internal/phash"
)

// newIdentifyCommand inspects what the heuristics make of a single file
// without touching the catalog. Useful for debugging badly named scans.
func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "identify <file>",
		Short:       "Show the identity derived from a file path, offline",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			identity := identify.ParseIdentity(path)
			out := cmd.OutOrStdout()

			rows := [][]string{
				{"Series", orAbsent(identity.SeriesTitle)},
				{"Year", orAbsent(identity.SeriesYear)},
				{"Issue", orAbsent(identity.IssueNumber)},
			}
			if cover, err := archive.ExtractCover(path); err == nil {
				if hash, err := phash.Hash(cover); err == nil {
					rows = append(rows, []string{"Cover phash", phash.Format(hash)})
				}
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))

			if !identity.Complete() {
				fmt.Fprintln(out, "Identity is incomplete; this file would be skipped.")
			}
			return nil
		},
	}
}

func orAbsent(value string) string {
	if value == "" {
		return "(absent)"
	}
	return value
}
