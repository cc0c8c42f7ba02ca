package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// utf8BOM matches the byte order mark the original data files carry.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVStore keeps one CSV file per collection under a base directory. The
// header row is written once at creation; rewrites go through a temp file
// in the same directory followed by a rename so a crash never leaves a
// half-written collection behind. A per-collection mutex serializes
// appends against read-modify-write rewrites.
type CSVStore struct {
	dir    string
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCSV prepares a CSV-backed store rooted at dir.
func NewCSV(dir string, logger *slog.Logger) (*CSVStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("csv store dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &CSVStore{
		dir:    dir,
		logger: logger.With("component", "store_csv"),
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Close is a no-op; files are closed after every operation.
func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

func (s *CSVStore) path(col Collection) string {
	return filepath.Join(s.dir, col.Name+".csv")
}

// List returns every record in file order. A missing collection is
// created empty with its header.
func (s *CSVStore) List(ctx context.Context, col Collection) ([]Record, error) {
	l := s.lock(col.Name)
	l.Lock()
	defer l.Unlock()
	return s.readAll(col)
}

// Append adds one record at the end of the collection file.
func (s *CSVStore) Append(ctx context.Context, col Collection, rec Record) error {
	l := s.lock(col.Name)
	l.Lock()
	defer l.Unlock()

	if err := s.ensureFile(col); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path(col), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(recordToRow(col, rec)); err != nil {
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	if err := f.Sync(); err != nil {
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	return nil
}

// UpdateWhere rewrites the whole collection, applying mut to every record
// matching pred. Order and non-matching records are untouched.
func (s *CSVStore) UpdateWhere(ctx context.Context, col Collection, pred Predicate, mut Mutator) (int, error) {
	l := s.lock(col.Name)
	l.Lock()
	defer l.Unlock()

	records, err := s.readAll(col)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, rec := range records {
		if pred(rec) {
			mut(rec)
			updated++
		}
	}
	if updated == 0 {
		return 0, nil
	}
	if err := s.rewrite(col, records); err != nil {
		return 0, err
	}
	return updated, nil
}

// DeleteWhere rewrites the collection without the records matching pred.
func (s *CSVStore) DeleteWhere(ctx context.Context, col Collection, pred Predicate) (int, error) {
	l := s.lock(col.Name)
	l.Lock()
	defer l.Unlock()

	records, err := s.readAll(col)
	if err != nil {
		return 0, err
	}

	kept := records[:0]
	removed := 0
	for _, rec := range records {
		if pred(rec) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.rewrite(col, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *CSVStore) ensureFile(col Collection) error {
	path := s.path(col)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return &IntegrityError{Collection: col.Name, Err: err}
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(col.Columns); err != nil {
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	w.Flush()
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	s.logger.Info("collection created", "collection", col.Name)
	return nil
}

func (s *CSVStore) readAll(col Collection) ([]Record, error) {
	if err := s.ensureFile(col); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(col))
	if err != nil {
		return nil, &IntegrityError{Collection: col.Name, Err: err}
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &IntegrityError{Collection: col.Name, Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = row[i]
			} else {
				rec[name] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// rewrite writes the full collection to a temp file and swaps it in.
func (s *CSVStore) rewrite(col Collection, records []Record) error {
	tmp, err := os.CreateTemp(s.dir, col.Name+".*.tmp")
	if err != nil {
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(utf8BOM); err != nil {
		tmp.Close()
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	w := csv.NewWriter(tmp)
	if err := w.Write(col.Columns); err != nil {
		tmp.Close()
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	for _, rec := range records {
		if err := w.Write(recordToRow(col, rec)); err != nil {
			tmp.Close()
			return &IntegrityError{Collection: col.Name, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	if err := os.Rename(tmpPath, s.path(col)); err != nil {
		return &IntegrityError{Collection: col.Name, Err: err}
	}
	return nil
}

func recordToRow(col Collection, rec Record) []string {
	row := make([]string, len(col.Columns))
	for i, name := range col.Columns {
		row[i] = rec[name]
	}
	return row
}
