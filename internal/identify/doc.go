// Package identify derives a series/issue identity from comic file paths and
// resolves it to a catalog issue record through a layered cache: per-run
// volume and issue-list scopes keyed by folder, and a persistent issue-detail
// scope seeded from the store at startup.
package identify
