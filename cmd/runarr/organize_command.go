package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"runarr/internal/archive"
	"runarr/internal/comicvine"
	"runarr/internal/config"
	"runarr/internal/identify"
	"runarr/internal/issuestore"
	"runarr/internal/logging"
	"runarr/internal/organizer"
	"runarr/internal/phash"
	"runarr/internal/scanner"
	"runarr/internal/sidecar"
)

type organizeOptions struct {
	seriesFolder string
	outputDir    string
	dryRun       bool
	forceRefresh bool
	assumeYes    bool
	autoSkip     bool
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	opts := organizeOptions{}

	cmd := &cobra.Command{
		Use:   "organize [input-dir]",
		Short: "Identify comics and move them into the library layout",
		Long: "Scans the input directory for CBZ/CBR archives, resolves each file against " +
			"Comic Vine, renames it into '<Series> (<year>)/<Series> V<year> #NNN (<Month Year>)', " +
			"embeds ComicInfo.xml, and writes a series.json sidecar per series folder.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			inputDir := "."
			if len(args) == 1 {
				inputDir = args[0]
			}
			inputDir, err = filepath.Abs(inputDir)
			if err != nil {
				return fmt.Errorf("resolve input directory: %w", err)
			}
			return runOrganize(cmd, ctx, cfg, inputDir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.seriesFolder, "series-folder", "", "Only process this series folder inside the input directory")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Library destination (defaults to the configured output dir, then in place)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Report actions without moving or rewriting files")
	cmd.Flags().BoolVar(&opts.forceRefresh, "force-refresh", false, "Ignore sidecars and refetch cached issue details")
	cmd.Flags().BoolVarP(&opts.assumeYes, "yes", "y", false, "Process every folder without confirmation")
	cmd.Flags().BoolVar(&opts.autoSkip, "auto-skip", false, "Never prompt; skip ambiguous series and wait out throttles")

	return cmd
}

// unresolvedFile is a summary row for files the run could not place.
type unresolvedFile struct {
	path   string
	reason identify.Reason
}

func runOrganize(cmd *cobra.Command, cmdCtx *commandContext, cfg *config.Config, inputDir string, opts organizeOptions) error {
	logger, err := cmdCtx.buildLogger()
	if err != nil {
		return err
	}
	logger = logger.With(logging.String(logging.FieldRunID, uuid.NewString()))

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outputDir := strings.TrimSpace(opts.outputDir)
	if outputDir == "" {
		outputDir = cfg.Library.OutputDir
	}
	if outputDir == "" {
		outputDir = inputDir
	}

	groups, err := scanner.Scan(inputDir, opts.seriesFolder)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(groups) == 0 {
		fmt.Fprintf(out, "No comic archives found under %s\n", inputDir)
		return nil
	}
	logger.Info("scan complete",
		logging.Int("folders", len(groups)),
		logging.Int("files", scanner.Count(groups)))

	prompts := !opts.autoSkip && !cfg.Prompts.AutoSkip && interactive()

	var store *issuestore.Store
	var seeded map[string]*comicvine.Issue
	if cfg.Cache.Enabled {
		store, err = issuestore.Open(cfg.Cache.Path, logger)
		if err != nil {
			logger.Warn("issue cache unavailable, running without persistence", logging.Error(err))
		} else {
			defer store.Close()
			if seeded, err = store.Load(runCtx); err != nil {
				logger.Warn("issue cache unreadable, starting empty", logging.Error(err))
				seeded = nil
			}
		}
	}
	cache := identify.NewRunCache(seeded)

	var waiter comicvine.Waiter = comicvine.FullWaiter{}
	if prompts {
		waiter = comicvine.ConsoleWaiter{In: os.Stdin, Out: cmd.ErrOrStderr()}
	}
	throttle := comicvine.NewThrottle(&http.Client{Timeout: 30 * time.Second}, waiter, logger)
	client, err := comicvine.New(cfg.ComicVine.APIKey, cfg.ComicVine.BaseURL, cfg.ComicVine.UserAgent, comicvine.WithDoer(throttle))
	if err != nil {
		return err
	}

	var selector identify.VolumeSelector = identify.AutoSkipSelector{}
	if prompts {
		selector = identify.ConsoleSelector{In: os.Stdin, Out: out}
	}

	org := organizer.New(outputDir, cfg.Library.ExtrasDirName, opts.dryRun, logger)

	resolver := identify.NewResolver(client, cache, selector, logger, identify.Options{
		ForceRefresh: opts.forceRefresh,
		Sidecars:     sidecar.Reader{},
		OnVolumeResolved: func(volume *comicvine.Volume) {
			if opts.dryRun {
				return
			}
			folder, err := org.SeriesFolder(volume)
			if err != nil {
				logger.Warn("cannot derive series folder for sidecar", logging.Error(err))
				return
			}
			if err := sidecar.WriteVolume(folder, volume, time.Now()); err != nil {
				logger.Warn("series.json write failed",
					logging.String(logging.FieldFolder, folder),
					logging.Error(err))
			}
		},
	})

	confirm := bufio.NewScanner(os.Stdin)
	askFolders := prompts && !opts.assumeYes && !cfg.Prompts.AssumeYes

	organized := 0
	var unresolved []unresolvedFile
	var runErr error

folders:
	for _, group := range groups {
		if err := runCtx.Err(); err != nil {
			runErr = err
			break
		}
		if askFolders && !confirmFolder(confirm, out, group.Folder) {
			logger.Info("folder skipped by operator", logging.String(logging.FieldFolder, group.Folder))
			continue
		}

		var seriesFolder string
		placed := 0
		for _, file := range group.Files {
			logCoverHash(logger, file)

			resolution, err := resolver.Resolve(runCtx, file)
			if err != nil {
				runErr = err
				break folders
			}
			if !resolution.Resolved() {
				unresolved = append(unresolved, unresolvedFile{path: file, reason: resolution.Reason})
				continue
			}

			result, err := org.Place(file, resolution.Issue)
			if err != nil {
				logger.Warn("organize failed",
					logging.String(logging.FieldFile, filepath.Base(file)),
					logging.Error(err))
				unresolved = append(unresolved, unresolvedFile{path: file, reason: "organize_failed"})
				continue
			}
			organized++
			placed++
			if seriesFolder == "" {
				seriesFolder = filepath.Dir(result.NewPath)
			}
		}

		if placed > 0 && seriesFolder != "" {
			if _, err := org.SweepExtras(group.Folder, seriesFolder); err != nil {
				logger.Warn("extras sweep failed", logging.Error(err))
			}
			if _, err := org.RemoveIfEmpty(group.Folder, seriesFolder); err != nil {
				logger.Warn("folder cleanup failed", logging.Error(err))
			}
		}
	}

	// Flush survives cancellation: whatever resolved before the interrupt is
	// worth keeping.
	if store != nil {
		if err := store.Flush(context.Background(), cache.Dirty()); err != nil {
			logger.Error("issue cache flush failed, resolved details will be refetched next run", logging.Error(err))
		}
	}

	printOrganizeSummary(out, organized, unresolved, opts.dryRun)
	return runErr
}

func confirmFolder(in *bufio.Scanner, out io.Writer, folder string) bool {
	fmt.Fprintf(out, "\nProcess folder %s? [y/N]: ", folder)
	if !in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(in.Text()))
	return answer == "y" || answer == "yes"
}

// logCoverHash records the perceptual hash of the first page. Identification
// does not depend on it; the hash makes duplicate scans findable in the logs.
func logCoverHash(logger *slog.Logger, file string) {
	cover, err := archive.ExtractCover(file)
	if err != nil {
		logger.Debug("no cover extracted",
			logging.String(logging.FieldFile, filepath.Base(file)),
			logging.Error(err))
		return
	}
	hash, err := phash.Hash(cover)
	if err != nil {
		logger.Debug("cover hash failed",
			logging.String(logging.FieldFile, filepath.Base(file)),
			logging.Error(err))
		return
	}
	logger.Info("cover hashed",
		logging.String(logging.FieldFile, filepath.Base(file)),
		logging.String("phash", phash.Format(hash)))
}

func printOrganizeSummary(out io.Writer, organized int, unresolved []unresolvedFile, dryRun bool) {
	verb := "Organized"
	if dryRun {
		verb = "Would organize"
	}
	fmt.Fprintf(out, "\n%s %d file(s); %d unresolved.\n", verb, organized, len(unresolved))
	if len(unresolved) == 0 {
		return
	}
	rows := make([][]string, 0, len(unresolved))
	for _, item := range unresolved {
		rows = append(rows, []string{filepath.Base(item.path), string(item.reason)})
	}
	fmt.Fprintln(out, renderTable([]string{"File", "Reason"}, rows))
}
