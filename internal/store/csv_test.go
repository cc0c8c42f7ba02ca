package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
)

var testCol = Collection{
	Name:    "things",
	Columns: []string{"id", "name", "status"},
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCSV(t *testing.T) *CSVStore {
	t.Helper()
	s, err := NewCSV(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("new csv store: %v", err)
	}
	return s
}

func TestCSVAppendPreservesOrder(t *testing.T) {
	s := newTestCSV(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := Record{"id": strconv.Itoa(i), "name": fmt.Sprintf("thing-%d", i), "status": "new"}
		if err := s.Append(ctx, testCol, rec); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	records, err := s.List(ctx, testCol)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
	for i, rec := range records {
		if rec["id"] != strconv.Itoa(i) {
			t.Fatalf("record %d out of order: id=%s", i, rec["id"])
		}
	}
}

func TestCSVListMissingCollectionCreatesEmpty(t *testing.T) {
	s := newTestCSV(t)

	records, err := s.List(context.Background(), testCol)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty collection, got %d records", len(records))
	}
	if _, err := os.Stat(filepath.Join(s.dir, "things.csv")); err != nil {
		t.Fatalf("collection file not created: %v", err)
	}
}

func TestCSVUpdateWhereNoMatchLeavesFileUntouched(t *testing.T) {
	s := newTestCSV(t)
	ctx := context.Background()

	if err := s.Append(ctx, testCol, Record{"id": "1", "name": "a", "status": "new"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, testCol, Record{"id": "2", "name": "b", "status": "new"}); err != nil {
		t.Fatal(err)
	}

	before, err := os.ReadFile(filepath.Join(s.dir, "things.csv"))
	if err != nil {
		t.Fatal(err)
	}

	n, err := s.UpdateWhere(ctx, testCol,
		func(rec Record) bool { return rec["id"] == "404" },
		func(rec Record) { rec["status"] = "done" })
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 updates, got %d", n)
	}

	after, err := os.ReadFile(filepath.Join(s.dir, "things.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("file changed after zero-match update")
	}
}

func TestCSVUpdateWherePreservesOrderAndOthers(t *testing.T) {
	s := newTestCSV(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Append(ctx, testCol, Record{"id": strconv.Itoa(i), "name": "n", "status": "new"}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.UpdateWhere(ctx, testCol,
		func(rec Record) bool { return rec["id"] == "1" },
		func(rec Record) { rec["status"] = "done" })
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 update, got %d", n)
	}

	records, err := s.List(ctx, testCol)
	if err != nil {
		t.Fatal(err)
	}
	if records[0]["status"] != "new" || records[2]["status"] != "new" {
		t.Fatal("non-matching records were mutated")
	}
	if records[1]["status"] != "done" {
		t.Fatalf("matching record not updated: %v", records[1])
	}
	for i, rec := range records {
		if rec["id"] != strconv.Itoa(i) {
			t.Fatalf("order disturbed at %d: %v", i, rec)
		}
	}
}

func TestCSVDeleteWhere(t *testing.T) {
	s := newTestCSV(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := s.Append(ctx, testCol, Record{"id": strconv.Itoa(i), "name": "n", "status": "new"}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.DeleteWhere(ctx, testCol, func(rec Record) bool { return rec["id"] == "2" })
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}

	records, err := s.List(ctx, testCol)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec["id"] == "2" {
			t.Fatal("deleted record still present")
		}
	}
}

func TestCSVHeaderWrittenOnce(t *testing.T) {
	s := newTestCSV(t)
	ctx := context.Background()

	if err := s.Append(ctx, testCol, Record{"id": "1", "name": "a", "status": "new"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpdateWhere(ctx, testCol,
		func(rec Record) bool { return true },
		func(rec Record) { rec["status"] = "done" }); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, "things.csv"))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if got := countOccurrences(content, "id,name,status"); got != 1 {
		t.Fatalf("expected exactly one header, found %d\n%s", got, content)
	}
}

func TestCSVConcurrentAppendAndUpdate(t *testing.T) {
	s := newTestCSV(t)
	ctx := context.Background()

	const writers = 8
	const perWriter = 20

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				rec := Record{
					"id":     fmt.Sprintf("%d-%d", w, i),
					"name":   "n",
					"status": "new",
				}
				if err := s.Append(ctx, testCol, rec); err != nil {
					t.Errorf("append: %v", err)
					return
				}
				if _, err := s.UpdateWhere(ctx, testCol,
					func(rec Record) bool { return rec["id"] == fmt.Sprintf("%d-%d", w, i) },
					func(rec Record) { rec["status"] = "seen" }); err != nil {
					t.Errorf("update: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	records, err := s.List(ctx, testCol)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != writers*perWriter {
		t.Fatalf("lost records under concurrency: expected %d, got %d", writers*perWriter, len(records))
	}
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}
