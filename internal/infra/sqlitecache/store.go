package sqlitecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cacheapp "github.com/osvaldoandrade/ledgerproof/internal/app/cache"
	"github.com/osvaldoandrade/ledgerproof/internal/domain"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

type OpenOptions struct {
	Fast bool
}

func Open(path string) (*Store, error) {
	return OpenWithOptions(path, OpenOptions{})
}

func OpenWithOptions(path string, opts OpenOptions) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path required")
	}

	if shouldCreateDir(path) {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.applyPragmas(context.Background(), opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Put(ctx context.Context, entry cacheapp.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO verified_state (path, record, record_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			record = excluded.record,
			record_id = excluded.record_id,
			updated_at = excluded.updated_at
	`, []byte(entry.Path), entry.Record, entry.RecordID, entry.UpdatedAt); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE cache_state SET last_record_id = ? WHERE id = 1
	`, entry.RecordID); err != nil {
		return fmt.Errorf("update cache state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, path domain.StatePath) (cacheapp.Entry, error) {
	var record []byte
	var recordID string
	var updatedAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT record, record_id, updated_at FROM verified_state WHERE path = ?
	`, []byte(path)).Scan(&record, &recordID, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cacheapp.Entry{}, cacheapp.ErrRecordNotFound
		}
		return cacheapp.Entry{}, fmt.Errorf("read record: %w", err)
	}
	return cacheapp.Entry{
		Path:      path,
		RecordID:  recordID,
		Record:    record,
		UpdatedAt: updatedAt,
	}, nil
}

func (s *Store) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM verified_state"); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE cache_state SET last_record_id = '' WHERE id = 1"); err != nil {
		return fmt.Errorf("reset cache state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

func (s *Store) Info(ctx context.Context) (cacheapp.Info, error) {
	var info cacheapp.Info
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM verified_state").Scan(&info.Records); err != nil {
		return cacheapp.Info{}, fmt.Errorf("count records: %w", err)
	}
	err := s.db.QueryRowContext(ctx, "SELECT last_record_id FROM cache_state WHERE id = 1").Scan(&info.LastRecordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return info, nil
		}
		return cacheapp.Info{}, fmt.Errorf("read cache state: %w", err)
	}
	return info, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS verified_state (
			path BLOB PRIMARY KEY,
			record BLOB NOT NULL,
			record_id TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create record table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cache_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_record_id TEXT NOT NULL DEFAULT ''
		)
	`); err != nil {
		return fmt.Errorf("create state table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO cache_state (id, last_record_id) VALUES (1, '')
	`); err != nil {
		return fmt.Errorf("seed state table: %w", err)
	}
	return nil
}

func (s *Store) applyPragmas(ctx context.Context, opts OpenOptions) error {
	if !opts.Fast {
		return nil
	}
	var mode string
	if err := s.db.QueryRowContext(ctx, "PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
		return fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA synchronous = NORMAL"); err != nil {
		return fmt.Errorf("set synchronous: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA temp_store = MEMORY"); err != nil {
		return fmt.Errorf("set temp_store: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA cache_size = -20000"); err != nil {
		return fmt.Errorf("set cache_size: %w", err)
	}
	return nil
}

func shouldCreateDir(path string) bool {
	if path == ":memory:" {
		return false
	}
	if strings.HasPrefix(path, "file:") {
		return false
	}
	return true
}
