package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"runarr/internal/issuestore"
	"runarr/internal/logging"
	"runarr/internal/services"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the persistent issue cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func (c *commandContext) openStore() (*issuestore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return nil, services.Wrap(services.ErrConfiguration, "cache", "open", "issue cache is disabled in the configuration", nil)
	}
	logger, err := c.buildLogger()
	if err != nil {
		return nil, err
	}
	return issuestore.Open(cfg.Cache.Path, logging.NewComponentLogger(logger, "cache"))
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached issue details",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Entries(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				updated := ""
				if !entry.UpdatedAt.IsZero() {
					updated = entry.UpdatedAt.Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{entry.SeriesName, entry.IssueNumber, entry.CacheKey, updated})
			}
			fmt.Fprintln(out, renderTable([]string{"Series", "Issue", "Key", "Updated"}, rows))
			fmt.Fprintf(out, "%s entries at %s\n", strconv.Itoa(len(entries)), store.Path())
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached issue detail",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached issue(s)\n", deleted)
			return nil
		},
	}
}
