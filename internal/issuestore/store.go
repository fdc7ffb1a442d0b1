package issuestore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"runarr/internal/comicvine"
	"runarr/internal/logging"
	"runarr/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the table layout changes. Because payloads are
// opaque JSON the store never migrates: a version mismatch resets the
// database and the next run refetches.
const schemaVersion = 1

// Store is the persistent issue-detail cache backing the in-memory run cache.
type Store struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// Entry is a summary row for cache inspection.
type Entry struct {
	CacheKey    string
	SeriesName  string
	IssueNumber string
	UpdatedAt   time.Time
}

// Open connects to the store at path, creating it if needed. The store holds
// an exclusive file lock for its lifetime so concurrent runs cannot clobber
// each other's flush. An unreadable database is reset in place.
func Open(path string, logger *slog.Logger) (*Store, error) {
	logger = logging.NewComponentLogger(logger, "issuestore")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("issuestore: create cache directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("issuestore: acquire cache lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("issuestore: cache at %s is locked by another process", path)
	}

	db, err := openDatabase(path)
	if err != nil {
		logger.Warn("cache database unreadable, resetting",
			logging.String("path", path),
			logging.Error(err))
		removeDatabase(path)
		db, err = openDatabase(path)
		if err != nil {
			_ = lock.Unlock()
			return nil, services.Wrap(services.ErrCacheCorrupt, "issuestore", "open", "reinitialize cache database", err)
		}
	}

	return &Store{db: db, path: path, lock: lock, logger: logger}, nil
}

func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("schema version %d, expected %d", version, schemaVersion)
	}
	return nil
}

func removeDatabase(path string) {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
}

// Close releases the database and the file lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var closeErr error
	if s.db != nil {
		closeErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads every persisted issue detail into a cache-key map. Rows whose
// payload no longer decodes are skipped with a warning; a successful later
// flush overwrites them.
func (s *Store) Load(ctx context.Context) (map[string]*comicvine.Issue, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT cache_key, payload FROM issues")
	if err != nil {
		return nil, services.Wrap(services.ErrCacheCorrupt, "issuestore", "load", "query issues", err)
	}
	defer rows.Close()

	details := make(map[string]*comicvine.Issue)
	skipped := 0
	for rows.Next() {
		var key, payload string
		if err := rows.Scan(&key, &payload); err != nil {
			return nil, services.Wrap(services.ErrCacheCorrupt, "issuestore", "load", "scan issue row", err)
		}
		issue := &comicvine.Issue{}
		if err := json.Unmarshal([]byte(payload), issue); err != nil || issue.ID == 0 {
			s.logger.Warn("skipping undecodable cache entry",
				logging.String("cache_key", key),
				logging.Error(err))
			skipped++
			continue
		}
		details[key] = issue
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrCacheCorrupt, "issuestore", "load", "iterate issue rows", err)
	}

	s.logger.Info("issue cache loaded",
		logging.Int("entries", len(details)),
		logging.Int("skipped", skipped))
	return details, nil
}

// Flush upserts the given entries in one transaction. Called at the end of a
// run with the run cache's dirty set; entries untouched this run are left as
// they are.
func (s *Store) Flush(ctx context.Context, entries map[string]*comicvine.Issue) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrCacheCorrupt, "issuestore", "flush", "begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO issues (cache_key, volume_id, issue_number, series_name, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			volume_id = excluded.volume_id,
			issue_number = excluded.issue_number,
			series_name = excluded.series_name,
			payload = excluded.payload,
			updated_at = excluded.updated_at`)
	if err != nil {
		return services.Wrap(services.ErrCacheCorrupt, "issuestore", "flush", "prepare upsert", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for key, issue := range entries {
		if issue == nil {
			continue
		}
		payload, err := json.Marshal(issue)
		if err != nil {
			return services.Wrap(services.ErrCacheCorrupt, "issuestore", "flush", "encode issue "+key, err)
		}
		var volumeID int64
		var seriesName string
		if issue.Volume != nil {
			volumeID = issue.Volume.ID
			seriesName = issue.Volume.Name
		}
		if _, err := stmt.ExecContext(ctx, key, volumeID, issue.IssueNumber, seriesName, string(payload), now); err != nil {
			return services.Wrap(services.ErrCacheCorrupt, "issuestore", "flush", "upsert issue "+key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrCacheCorrupt, "issuestore", "flush", "commit", err)
	}

	s.logger.Info("issue cache flushed", logging.Int("entries", len(entries)))
	return nil
}

// Entries lists summary rows ordered by series then issue number, for cache
// inspection commands.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cache_key, series_name, issue_number, updated_at
		FROM issues
		ORDER BY series_name, length(issue_number), issue_number`)
	if err != nil {
		return nil, services.Wrap(services.ErrCacheCorrupt, "issuestore", "entries", "query issues", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var updated string
		if err := rows.Scan(&entry.CacheKey, &entry.SeriesName, &entry.IssueNumber, &updated); err != nil {
			return nil, services.Wrap(services.ErrCacheCorrupt, "issuestore", "entries", "scan row", err)
		}
		entry.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrCacheCorrupt, "issuestore", "entries", "iterate rows", err)
	}
	return entries, nil
}

// Clear deletes every cached entry.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM issues")
	if err != nil {
		return 0, services.Wrap(services.ErrCacheCorrupt, "issuestore", "clear", "delete issues", err)
	}
	deleted, _ := res.RowsAffected()
	s.logger.Info("issue cache cleared", logging.Int64("entries", deleted))
	return deleted, nil
}
