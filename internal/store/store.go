// Package store implements the durable record store the whole back office
// persists into: named collections of flat string-field records with
// whole-collection read and rewrite semantics. Backends are injectable so
// the entity services work the same over CSV files, SQLite, Postgres or an
// in-memory map.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Record is one row of a collection, keyed by column name.
type Record map[string]string

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Collection names a stored collection and fixes its column order. The
// column order is preserved across rewrites so files stay compatible.
type Collection struct {
	Name    string
	Columns []string
}

// Predicate selects records during scans.
type Predicate func(Record) bool

// Mutator edits a matched record in place during UpdateWhere.
type Mutator func(Record)

// ErrNoRecord is returned by FindOne when nothing matches.
var ErrNoRecord = errors.New("store: no matching record")

// IntegrityError signals that a collection could not be read or rewritten
// safely. The triggering operation aborts without partial effects.
type IntegrityError struct {
	Collection string
	Err        error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("store: collection %s integrity: %v", e.Collection, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// Store is a durable, ordered, append-friendly collection store.
//
// List returns every record in insertion order and never fails on a
// missing collection. Append is durable on return. UpdateWhere and
// DeleteWhere rewrite the whole collection atomically: matching records
// are mutated or dropped, everything else is untouched and order is
// preserved. All operations on the same collection are serialized by the
// backend.
type Store interface {
	List(ctx context.Context, col Collection) ([]Record, error)
	Append(ctx context.Context, col Collection, rec Record) error
	UpdateWhere(ctx context.Context, col Collection, pred Predicate, mut Mutator) (int, error)
	DeleteWhere(ctx context.Context, col Collection, pred Predicate) (int, error)
	Close() error
}

// FindOne returns the first record matching pred, scanning in insertion
// order. ErrNoRecord when nothing matches.
func FindOne(ctx context.Context, s Store, col Collection, pred Predicate) (Record, error) {
	records, err := s.List(ctx, col)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if pred(rec) {
			return rec, nil
		}
	}
	return nil, ErrNoRecord
}

// FindAll returns every record matching pred in insertion order.
func FindAll(ctx context.Context, s Store, col Collection, pred Predicate) ([]Record, error) {
	records, err := s.List(ctx, col)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, rec := range records {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}
