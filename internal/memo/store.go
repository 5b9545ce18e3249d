package memo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"dionysia/internal/logging"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS memo (
	name       TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	value      BLOB    NOT NULL,
	expires_at INTEGER NOT NULL,
	PRIMARY KEY (name, key)
);
CREATE INDEX IF NOT EXISTS idx_memo_expires ON memo(expires_at);
`

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	lockRetryDelay          = 50 * time.Millisecond
)

// Store is a file-backed memoization table.
type Store struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	logger *slog.Logger
	now    func() time.Time
}

// NameStats summarizes the entries cached for one function name.
type NameStats struct {
	Name    string
	Entries int
	Expired int
}

// Stats summarizes the store contents.
type Stats struct {
	Path    string
	Entries int
	Expired int
	Names   []NameStats
}

// Open creates or connects to the memo database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("memo: cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

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
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{
		db:     db,
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "memo"),
		now:    time.Now,
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Get returns the stored value for (name, key) if it has not expired.
func (s *Store) Get(ctx context.Context, name, key string) ([]byte, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM memo WHERE name = ? AND key = ? AND expires_at > ?",
		name, key, s.now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read memo %s: %w", name, err)
	}
	return value, true, nil
}

// Put stores value for (name, key) until ttl elapses.
func (s *Store) Put(ctx context.Context, name, key string, value []byte, ttl time.Duration) error {
	if s == nil {
		return nil
	}
	expires := s.now().Add(ttl).UnixMilli()
	return s.withWriteLock(ctx, func() error {
		return s.exec(ctx,
			`INSERT INTO memo (name, key, value, expires_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(name, key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
			name, key, value, expires,
		)
	})
}

// Purge deletes expired entries and returns how many were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, nil
	}
	return s.deleteWhere(ctx, "DELETE FROM memo WHERE expires_at <= ?", s.now().UnixMilli())
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, nil
	}
	return s.deleteWhere(ctx, "DELETE FROM memo")
}

// Stats reports entry counts per function name.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	if s == nil {
		return Stats{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, COUNT(1), SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END)
		 FROM memo GROUP BY name ORDER BY name`,
		s.now().UnixMilli(),
	)
	if err != nil {
		return Stats{}, fmt.Errorf("query memo stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{Path: s.path}
	for rows.Next() {
		var ns NameStats
		if err := rows.Scan(&ns.Name, &ns.Entries, &ns.Expired); err != nil {
			return Stats{}, fmt.Errorf("scan memo stats: %w", err)
		}
		stats.Entries += ns.Entries
		stats.Expired += ns.Expired
		stats.Names = append(stats.Names, ns)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate memo stats: %w", err)
	}
	return stats, nil
}

func (s *Store) deleteWhere(ctx context.Context, query string, args ...any) (int64, error) {
	var removed int64
	err := s.withWriteLock(ctx, func() error {
		return retryOnBusy(ctx, func() error {
			res, err := s.db.ExecContext(ctx, query, args...)
			if err != nil {
				return err
			}
			removed, err = res.RowsAffected()
			return err
		})
	})
	if err != nil {
		return 0, fmt.Errorf("delete memo entries: %w", err)
	}
	return removed, nil
}

func (s *Store) withWriteLock(ctx context.Context, fn func() error) error {
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return errors.New("acquire cache lock: not acquired")
	}
	defer func() {
		if unlockErr := s.lock.Unlock(); unlockErr != nil {
			s.logger.Debug("release cache lock failed", logging.Error(unlockErr))
		}
	}()
	return fn()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = busyRetryInitialBackoff
	exp.MaxInterval = busyRetryMaxBackoff
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, busyRetryAttempts-1), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !isSQLiteBusy(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
