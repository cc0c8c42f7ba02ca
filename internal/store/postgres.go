package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists collections in Postgres using the same single
// records table shape as the SQLite backend. Rewrite operations run in a
// transaction so a failure never leaves a half-applied update behind.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPostgres opens a connection pool to the database.
func NewPostgres(ctx context.Context, databaseURL string, logger *slog.Logger) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{
		pool:   pool,
		logger: logger.With("component", "store_postgres"),
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// RunMigrations executes the embedded SQL files in lexicographical order.
func (s *PostgresStore) RunMigrations(ctx context.Context, filesystem fs.FS) error {
	entries, err := fs.ReadDir(filesystem, "postgres")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		sqlBytes, err := fs.ReadFile(filesystem, "postgres/"+entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if len(sqlBytes) == 0 {
			continue
		}
		err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, string(sqlBytes))
			return err
		})
		if err != nil {
			return fmt.Errorf("execute migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *PostgresStore) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

func (s *PostgresStore) List(ctx context.Context, col Collection) ([]Record, error) {
	l := s.lock(col.Name)
	l.Lock()
	defer l.Unlock()
	records, _, err := s.listWithIDs(ctx, col)
	return records, err
}

func (s *PostgresStore) listWithIDs(ctx context.Context, col Collection) ([]Record, []string, error) {
	const q = `
SELECT id, fields
FROM records
WHERE collection = $1
ORDER BY seq ASC;
`
	rows, err := s.pool.Query(ctx, q, col.Name)
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

func (s *PostgresStore) Append(ctx context.Context, col Collection, rec Record) error {
	l := s.lock(col.Name)
	l.Lock()
	defer l.Unlock()

	fields, err := json.Marshal(rec)
	if err != nil {
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	const q = `
INSERT INTO records (id, collection, seq, fields)
VALUES ($1, $2, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records WHERE collection = $2), $3);
`
	if _, err := s.pool.Exec(ctx, q, uuid.NewString(), col.Name, fields); err != nil {
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	return nil
}

func (s *PostgresStore) UpdateWhere(ctx context.Context, col Collection, pred Predicate, mut Mutator) (int, error) {
	l := s.lock(col.Name)
	l.Lock()
	defer l.Unlock()

	records, ids, err := s.listWithIDs(ctx, col)
	if err != nil {
		return 0, err
	}

	updated := 0
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for i, rec := range records {
			if !pred(rec) {
				continue
			}
			mut(rec)
			fields, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `UPDATE records SET fields = $1 WHERE id = $2`, fields, ids[i]); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, &IntegrityError{Collection: col.Name, Err: err}
	}
	return updated, nil
}

func (s *PostgresStore) DeleteWhere(ctx context.Context, col Collection, pred Predicate) (int, error) {
	l := s.lock(col.Name)
	l.Lock()
	defer l.Unlock()

	records, ids, err := s.listWithIDs(ctx, col)
	if err != nil {
		return 0, err
	}

	removed := 0
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for i, rec := range records {
			if !pred(rec) {
				continue
			}
			if _, err := tx.Exec(ctx, `DELETE FROM records WHERE id = $1`, ids[i]); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, &IntegrityError{Collection: col.Name, Err: err}
	}
	return removed, nil
}
