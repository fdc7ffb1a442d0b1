package identify

import (
	"context"
	"log/slog"
	"path/filepath"

	"runarr/internal/comicvine"
	"runarr/internal/logging"
)

// Reason classifies a resolution outcome. Every value except ReasonResolved
// is a terminal non-fatal failure: the file is skipped and the run continues.
type Reason string

const (
	ReasonResolved          Reason = "resolved"
	ReasonNoIdentity        Reason = "no_identity"
	ReasonNoVolume          Reason = "no_volume"
	ReasonSkipped           Reason = "operator_skip"
	ReasonNoIssueList       Reason = "no_issue_list"
	ReasonIssueNotFound     Reason = "issue_not_found"
	ReasonDetailUnavailable Reason = "detail_unavailable"
)

// Resolution is the terminal result of carrying one file through the
// pipeline. Issue is non-nil exactly when Reason is ReasonResolved, and its
// Volume is always populated.
type Resolution struct {
	Identity Identity
	Issue    *comicvine.Issue
	Reason   Reason
}

// Resolved reports terminal success.
func (r *Resolution) Resolved() bool {
	return r != nil && r.Reason == ReasonResolved
}

// SidecarReader loads a previously persisted volume record for a folder.
// A (nil, nil) return means no sidecar exists.
type SidecarReader interface {
	ReadVolume(folder string) (*comicvine.Volume, error)
}

// Options adjusts resolver behavior.
type Options struct {
	// ForceRefresh is the override mode: volume sidecars are ignored and
	// persistent issue-detail lookups behave as misses. Successful
	// re-resolution overwrites old entries; failures leave them untouched.
	ForceRefresh bool
	// Sidecars, when set, is consulted before remote search for a folder's
	// volume record.
	Sidecars SidecarReader
	// OnVolumeResolved is invoked after a volume is fetched remotely, so the
	// caller can persist a sidecar for the next run. Optional.
	OnVolumeResolved func(volume *comicvine.Volume)
}

// Resolver carries comic files through the resolution state machine:
// parse -> volume -> issue list -> issue match -> detail. Each step consults
// the caches before the catalog, and every failure is terminal for the file
// only.
type Resolver struct {
	catalog  comicvine.Catalog
	cache    *RunCache
	selector VolumeSelector
	logger   *slog.Logger
	opts     Options
}

// NewResolver constructs a resolver. A nil selector skips every ambiguous
// series; a nil logger discards logs.
func NewResolver(catalog comicvine.Catalog, cache *RunCache, selector VolumeSelector, logger *slog.Logger, opts Options) *Resolver {
	if selector == nil {
		selector = AutoSkipSelector{}
	}
	return &Resolver{
		catalog:  catalog,
		cache:    cache,
		selector: selector,
		logger:   logging.NewComponentLogger(logger, "resolver"),
		opts:     opts,
	}
}

// Resolve runs one file through the pipeline. The error return is reserved
// for cancellation; every domain failure comes back as a Resolution with a
// non-resolved Reason so the caller can keep going.
func (r *Resolver) Resolve(ctx context.Context, path string) (*Resolution, error) {
	identity := ParseIdentity(path)
	res := &Resolution{Identity: identity}

	if !identity.Complete() {
		r.logger.Warn("could not derive identity, skipping",
			logging.String(logging.FieldFile, filepath.Base(path)),
			logging.String(logging.FieldSeries, identity.SeriesTitle),
			logging.String(logging.FieldIssue, identity.IssueNumber))
		res.Reason = ReasonNoIdentity
		return res, nil
	}

	r.logger.Info("identified candidate",
		logging.String(logging.FieldSeries, identity.SeriesTitle),
		logging.String(logging.FieldIssue, identity.IssueNumber),
		logging.String("year", identity.SeriesYear))

	folder := filepath.Dir(path)

	volume, reason, err := r.resolveVolume(ctx, folder, identity)
	if err != nil {
		return nil, err
	}
	if volume == nil {
		res.Reason = reason
		return res, nil
	}

	issues, err := r.resolveIssueList(ctx, folder, volume)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		res.Reason = ReasonNoIssueList
		return res, nil
	}

	key := comicvine.NormalizeIssueNumber(identity.IssueNumber)
	ref, ok := issues[key]
	if !ok {
		r.logger.Warn("issue not present in volume's issue list",
			logging.String(logging.FieldSeries, volume.Name),
			logging.String(logging.FieldIssue, key))
		res.Reason = ReasonIssueNotFound
		return res, nil
	}

	issue, err := r.resolveDetail(ctx, ref, volume)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		res.Reason = ReasonDetailUnavailable
		return res, nil
	}

	res.Issue = issue
	res.Reason = ReasonResolved
	return res, nil
}

// resolveVolume settles which catalog volume a folder maps to: run cache
// first, then sidecar, then remote search plus disambiguation. Any failure
// caches a negative entry so sibling files do not re-prompt.
func (r *Resolver) resolveVolume(ctx context.Context, folder string, identity Identity) (*comicvine.Volume, Reason, error) {
	if volume, cached := r.cache.Volume(folder); cached {
		if volume == nil {
			return nil, ReasonNoVolume, nil
		}
		return volume, ReasonResolved, nil
	}

	if r.opts.Sidecars != nil && !r.opts.ForceRefresh {
		volume, err := r.opts.Sidecars.ReadVolume(folder)
		if err != nil {
			r.logger.Warn("unreadable volume sidecar, falling back to search",
				logging.String(logging.FieldFolder, folder),
				logging.Error(err))
		} else if volume != nil {
			r.logger.Info("volume loaded from sidecar",
				logging.String(logging.FieldSeries, volume.Name),
				logging.Int64(logging.FieldVolumeID, volume.ID))
			r.cache.PutVolume(folder, volume)
			return volume, ReasonResolved, nil
		}
	}

	candidates, err := r.catalog.SearchVolumes(ctx, identity.SeriesTitle)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ReasonNoVolume, ctx.Err()
		}
		r.logger.Warn("volume search failed",
			logging.String(logging.FieldSeries, identity.SeriesTitle),
			logging.Error(err))
		r.cache.PutVolume(folder, nil)
		return nil, ReasonNoVolume, nil
	}
	if len(candidates) == 0 {
		r.logger.Info("no volumes found",
			logging.String(logging.FieldSeries, identity.SeriesTitle))
		r.cache.PutVolume(folder, nil)
		return nil, ReasonNoVolume, nil
	}

	choice, err := r.selector.SelectVolume(ctx, identity.SeriesTitle, candidates)
	if err != nil {
		return nil, ReasonNoVolume, err
	}
	if choice.Skip {
		r.logger.Info("series skipped",
			logging.String(logging.FieldSeries, identity.SeriesTitle))
		r.cache.PutVolume(folder, nil)
		return nil, ReasonSkipped, nil
	}

	volumeID := choice.DirectID
	if volumeID == 0 && choice.Volume != nil {
		volumeID = choice.Volume.ID
	}

	// Search results are shallow; fetch the full record either way.
	volume, err := r.catalog.GetVolume(ctx, volumeID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ReasonNoVolume, ctx.Err()
		}
		r.logger.Warn("volume detail fetch failed",
			logging.Int64(logging.FieldVolumeID, volumeID),
			logging.Error(err))
		r.cache.PutVolume(folder, nil)
		return nil, ReasonNoVolume, nil
	}

	r.cache.PutVolume(folder, volume)
	if r.opts.OnVolumeResolved != nil {
		r.opts.OnVolumeResolved(volume)
	}
	return volume, ReasonResolved, nil
}

func (r *Resolver) resolveIssueList(ctx context.Context, folder string, volume *comicvine.Volume) (map[string]comicvine.IssueRef, error) {
	if issues, cached := r.cache.Issues(folder); cached {
		return issues, nil
	}
	issues, err := r.catalog.ListIssues(ctx, volume.ID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("issue list fetch failed",
			logging.Int64(logging.FieldVolumeID, volume.ID),
			logging.Error(err))
		issues = nil
	} else {
		r.logger.Info("issue list fetched",
			logging.String(logging.FieldSeries, volume.Name),
			logging.Int("issues", len(issues)))
	}
	// Empty lists are cached too: a volume with no issues stays unresolved
	// for every file in the folder without refetching.
	r.cache.PutIssues(folder, issues)
	return issues, nil
}

func (r *Resolver) resolveDetail(ctx context.Context, ref comicvine.IssueRef, volume *comicvine.Volume) (*comicvine.Issue, error) {
	key := comicvine.CacheKey(volume.ID, ref.IssueNumber)

	if issue, cached := r.cache.Detail(key, r.opts.ForceRefresh); cached {
		if issue.Volume == nil {
			issue.Volume = volume
		}
		r.logger.Info("issue detail served from cache",
			logging.String("cache_key", key))
		return issue, nil
	}

	issue, err := r.catalog.GetIssue(ctx, ref, volume)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("issue detail fetch failed",
			logging.String("cache_key", key),
			logging.Error(err))
		return nil, nil
	}

	r.cache.PutDetail(key, issue)
	r.logger.Info("issue detail resolved",
		logging.String(logging.FieldSeries, volume.Name),
		logging.String(logging.FieldIssue, issue.IssueNumber),
		logging.String("cache_key", key))
	return issue, nil
}
