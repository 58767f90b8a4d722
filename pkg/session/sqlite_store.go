package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chack-ai/chack-tools/pkg/errors"
)

// SQLiteStore implements Store on a SQLite database, for session state that
// must survive the process.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	initialized sync.Once
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path. ":memory:" keeps
// the store in memory.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	connStr := path + "?cache=shared"
	if path == ":memory:" {
		connStr = path + "?cache=shared&mode=memory"
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to open SQLite database"),
			errors.Fields{"path": path},
		)
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.ensureInitialized(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureInitialized() error {
	var initErr error
	s.initialized.Do(func() {
		// WAL mode for concurrent readers.
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			initErr = errors.Wrap(err, errors.Unknown, "failed to enable WAL mode")
			return
		}

		query := `
        CREATE TABLE IF NOT EXISTS session_state (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            expires_at DATETIME
        );

        CREATE INDEX IF NOT EXISTS idx_session_state_created_at
        ON session_state(created_at);
        `
		if _, err := s.db.Exec(query); err != nil {
			initErr = errors.WithFields(
				errors.Wrap(err, errors.Unknown, "failed to initialize database"),
				errors.Fields{"query": query},
			)
		}
	})
	return initErr
}

// Store implements Store.
func (s *SQLiteStore) Store(key string, value any, opts ...StoreOption) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}

	options := &StoreOptions{}
	for _, opt := range opts {
		opt(options)
	}

	jsonValue, err := json.Marshal(value)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to marshal value to JSON"),
			errors.Fields{"key": key, "value_type": fmt.Sprintf("%T", value)},
		)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec("DELETE FROM session_state WHERE key = ?", key); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to delete existing key"),
			errors.Fields{"key": key},
		)
	}

	if options.TTL > 0 {
		expiry := time.Now().Add(options.TTL)
		_, err = tx.Exec(
			"INSERT INTO session_state (key, value, updated_at, expires_at) VALUES (?, ?, ?, ?)",
			key, string(jsonValue), time.Now().Format(time.RFC3339), expiry.Format(time.RFC3339))
	} else {
		_, err = tx.Exec(
			"INSERT INTO session_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
			key, string(jsonValue))
	}
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to store value in SQLite"),
			errors.Fields{"key": key},
		)
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to commit transaction")
	}
	return nil
}

// Retrieve implements Store.
func (s *SQLiteStore) Retrieve(key string) (any, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var jsonValue string
	err := s.db.QueryRow("SELECT value FROM session_state WHERE key = ?", key).Scan(&jsonValue)
	if err == sql.ErrNoRows {
		return nil, errors.WithFields(
			errors.New(errors.ResourceNotFound, "key not found"),
			errors.Fields{"key": key},
		)
	}
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to retrieve value"),
			errors.Fields{"key": key},
		)
	}

	var value any
	if err := json.Unmarshal([]byte(jsonValue), &value); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidResponse, "failed to unmarshal value from JSON"),
			errors.Fields{"key": key},
		)
	}
	return value, nil
}

// List implements Store.
func (s *SQLiteStore) List() ([]string, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT key FROM session_state ORDER BY created_at")
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to list keys")
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to scan key")
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "error iterating rows")
	}
	return keys, nil
}

// Clear implements Store.
func (s *SQLiteStore) Clear() error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM session_state"); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to clear session store")
	}
	return nil
}

// CleanExpired implements Store.
func (s *SQLiteStore) CleanExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
    DELETE FROM session_state
    WHERE expires_at IS NOT NULL
    AND datetime(expires_at) <= datetime('now', 'utc')`

	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, errors.Wrap(err, errors.Unknown, "failed to clean expired entries")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, errors.Unknown, "failed to get affected rows count")
	}
	return affected, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to close database connection")
	}
	return nil
}
