// Package issuestore persists resolved issue details across runs in a SQLite
// database. Records are keyed by the volume-id/issue-number cache key and
// stored as JSON payloads, so catalog schema drift never requires a
// migration. A corrupt database is treated as empty and rebuilt by the next
// flush rather than aborting the run.
package issuestore
