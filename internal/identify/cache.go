package identify

import (
	"runarr/internal/comicvine"
)

// RunCache holds the three resolution cache scopes. The folder-keyed scopes
// (chosen volume, issue list) live for one run; the detail scope is seeded
// from the persistent store at startup and its additions are flushed back at
// shutdown. The cache never evicts: resolve once, reuse forever, unless the
// caller forces an override lookup miss.
type RunCache struct {
	volumes    map[string]*volumeEntry
	issueLists map[string]map[string]comicvine.IssueRef
	details    map[string]*comicvine.Issue
	dirty      map[string]*comicvine.Issue
}

// volumeEntry distinguishes "never asked" from "asked and failed": a cached
// nil volume is a negative result that suppresses re-prompting for the rest
// of the run.
type volumeEntry struct {
	volume *comicvine.Volume
}

// NewRunCache creates a run cache seeded with persisted issue details. A nil
// seed starts empty (fresh run or corrupt store).
func NewRunCache(details map[string]*comicvine.Issue) *RunCache {
	if details == nil {
		details = make(map[string]*comicvine.Issue)
	}
	return &RunCache{
		volumes:    make(map[string]*volumeEntry),
		issueLists: make(map[string]map[string]comicvine.IssueRef),
		details:    details,
		dirty:      make(map[string]*comicvine.Issue),
	}
}

// Volume returns the cached volume choice for a folder. cached is true even
// for negative entries, whose volume is nil.
func (c *RunCache) Volume(folder string) (volume *comicvine.Volume, cached bool) {
	entry, ok := c.volumes[folder]
	if !ok {
		return nil, false
	}
	return entry.volume, true
}

// PutVolume records the volume choice for a folder. A nil volume caches a
// negative result so later files in the folder do not re-prompt.
func (c *RunCache) PutVolume(folder string, volume *comicvine.Volume) {
	c.volumes[folder] = &volumeEntry{volume: volume}
}

// Issues returns the cached issue list for a folder.
func (c *RunCache) Issues(folder string) (map[string]comicvine.IssueRef, bool) {
	issues, ok := c.issueLists[folder]
	return issues, ok
}

// PutIssues records a folder's issue list. An empty (or nil) map is cached
// too, so a failed listing is not retried for sibling files.
func (c *RunCache) PutIssues(folder string, issues map[string]comicvine.IssueRef) {
	if issues == nil {
		issues = make(map[string]comicvine.IssueRef)
	}
	c.issueLists[folder] = issues
}

// Detail returns the persisted issue detail for a cache key. With override
// set the lookup behaves as a miss even when an entry exists, forcing
// re-resolution; the entry itself is left in place until a successful
// refetch overwrites it.
func (c *RunCache) Detail(key string, override bool) (*comicvine.Issue, bool) {
	if override {
		return nil, false
	}
	issue, ok := c.details[key]
	return issue, ok
}

// PutDetail stores a resolved issue detail and marks it for flush.
func (c *RunCache) PutDetail(key string, issue *comicvine.Issue) {
	c.details[key] = issue
	c.dirty[key] = issue
}

// Details returns the full detail map, for a whole-state flush.
func (c *RunCache) Details() map[string]*comicvine.Issue {
	return c.details
}

// Dirty returns only the entries added or overwritten during this run.
func (c *RunCache) Dirty() map[string]*comicvine.Issue {
	return c.dirty
}
