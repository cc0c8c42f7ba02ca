package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryFindOne(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Append(ctx, testCol, Record{"id": "1", "name": "a"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, testCol, Record{"id": "2", "name": "b"}); err != nil {
		t.Fatal(err)
	}

	rec, err := FindOne(ctx, s, testCol, func(rec Record) bool { return rec["id"] == "2" })
	if err != nil {
		t.Fatalf("find one: %v", err)
	}
	if rec["name"] != "b" {
		t.Fatalf("wrong record: %v", rec)
	}

	_, err = FindOne(ctx, s, testCol, func(rec Record) bool { return rec["id"] == "404" })
	if !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
}

func TestMemoryRecordsAreIsolated(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	original := Record{"id": "1", "name": "a"}
	if err := s.Append(ctx, testCol, original); err != nil {
		t.Fatal(err)
	}
	original["name"] = "mutated-after-append"

	records, err := s.List(ctx, testCol)
	if err != nil {
		t.Fatal(err)
	}
	if records[0]["name"] != "a" {
		t.Fatal("append did not copy the record")
	}

	records[0]["name"] = "mutated-after-list"
	records2, err := s.List(ctx, testCol)
	if err != nil {
		t.Fatal(err)
	}
	if records2[0]["name"] != "a" {
		t.Fatal("list returned a shared record")
	}
}

func TestMemoryDeleteWhereCount(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		if err := s.Append(ctx, testCol, Record{"id": id, "status": "new"}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.DeleteWhere(ctx, testCol, func(rec Record) bool { return rec["id"] != "2" })
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	records, _ := s.List(ctx, testCol)
	if len(records) != 1 || records[0]["id"] != "2" {
		t.Fatalf("unexpected survivors: %v", records)
	}
}
