package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists collections in a local SQLite database. Every
// record lives in one table with a per-collection sequence column, so
// List returns insertion order exactly like the file backend. Rewrites
// run inside a transaction.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSQLite opens a new connection to the SQLite database.
func NewSQLite(ctx context.Context, databasePath string, logger *slog.Logger) (*SQLiteStore, error) {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is empty")
	}
	// Busy timeout and WAL mode are recommended for SQLite concurrency.
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn = fmt.Sprintf("%s%s_pragma=busy_timeout=10000&_pragma=journal_mode=WAL&_pragma=foreign_keys=ON", dsn, sep)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store_sqlite"),
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RunMigrations applies the schema from the embedded migration files.
func (s *SQLiteStore) RunMigrations(ctx context.Context, filesystem fs.FS) error {
	sqlContent, err := fs.ReadFile(filesystem, "sqlite/001_init.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, string(sqlContent)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

func (s *SQLiteStore) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

func (s *SQLiteStore) List(ctx context.Context, col Collection) ([]Record, error) {
	l := s.lock(col.Name)
	l.Lock()
	defer l.Unlock()
	records, _, err := s.listWithIDs(ctx, col)
	return records, err
}

func (s *SQLiteStore) listWithIDs(ctx context.Context, col Collection) ([]Record, []string, error) {
	const q = `
SELECT id, fields
FROM records
WHERE collection = ?
ORDER BY seq ASC;
`
	rows, err := s.db.QueryContext(ctx, q, col.Name)
	if err != nil {
		return nil, nil, &IntegrityError{Collection: col.Name, Err: err}
	}
	defer rows.Close()

	var records []Record
	var ids []string
	for rows.Next() {
		var id string
		var fields []byte
		if err := rows.Scan(&id, &fields); err != nil {
			return nil, nil, &IntegrityError{Collection: col.Name, Err: err}
		}
		var rec Record
		if err := json.Unmarshal(fields, &rec); err != nil {
			return nil, nil, &IntegrityError{Collection: col.Name, Err: err}
		}
		records = append(records, rec)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, &IntegrityError{Collection: col.Name, Err: err}
	}
	return records, ids, nil
}

func (s *SQLiteStore) Append(ctx context.Context, col Collection, rec Record) error {
	l := s.lock(col.Name)
	l.Lock()
	defer l.Unlock()

	fields, err := json.Marshal(rec)
	if err != nil {
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	const q = `
INSERT INTO records (id, collection, seq, fields)
VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records WHERE collection = ?), ?);
`
	if _, err := s.db.ExecContext(ctx, q, uuid.NewString(), col.Name, col.Name, fields); err != nil {
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	return nil
}

func (s *SQLiteStore) UpdateWhere(ctx context.Context, col Collection, pred Predicate, mut Mutator) (int, error) {
	l := s.lock(col.Name)
	l.Lock()
	defer l.Unlock()

	records, ids, err := s.listWithIDs(ctx, col)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &IntegrityError{Collection: col.Name, Err: err}
	}
	defer tx.Rollback()

	updated := 0
	for i, rec := range records {
		if !pred(rec) {
			continue
		}
		mut(rec)
		fields, err := json.Marshal(rec)
		if err != nil {
			return 0, &IntegrityError{Collection: col.Name, Err: err}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE records SET fields = ? WHERE id = ?`, fields, ids[i]); err != nil {
			return 0, &IntegrityError{Collection: col.Name, Err: err}
		}
		updated++
	}
	if updated == 0 {
		return 0, nil
	}
	if err := tx.Commit(); err != nil {
		return 0, &IntegrityError{Collection: col.Name, Err: err}
	}
	return updated, nil
}

func (s *SQLiteStore) DeleteWhere(ctx context.Context, col Collection, pred Predicate) (int, error) {
	l := s.lock(col.Name)
	l.Lock()
	defer l.Unlock()

	records, ids, err := s.listWithIDs(ctx, col)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &IntegrityError{Collection: col.Name, Err: err}
	}
	defer tx.Rollback()

	removed := 0
	for i, rec := range records {
		if !pred(rec) {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, ids[i]); err != nil {
			return 0, &IntegrityError{Collection: col.Name, Err: err}
		}
		removed++
	}
	if removed == 0 {
		return 0, nil
	}
	if err := tx.Commit(); err != nil {
		return 0, &IntegrityError{Collection: col.Name, Err: err}
	}
	return removed, nil
}
