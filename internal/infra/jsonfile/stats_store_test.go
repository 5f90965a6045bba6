package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"math-quiz-bot/internal/domain"
)

func TestStatsStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")

	store := NewStatsStore(path)
	if _, _, err := store.Register(ctx, "u1", "Lina"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := store.RecordAnswer(ctx, "u1", "Lina", true); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := store.RecordAnswer(ctx, "u1", "Lina", false); err != nil {
		t.Fatalf("record: %v", err)
	}

	// every mutation rewrites the whole document
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stats file not written: %v", err)
	}
	var doc domain.StatsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("stats file not valid JSON: %v", err)
	}
	if doc.TotalQuestions != 2 || doc.CorrectAnswers != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Students["u1"].Name != "Lina" {
		t.Fatalf("student record missing: %+v", doc.Students)
	}

	// a second process sees the persisted state
	reloaded := NewStatsStore(path)
	stats, ok, err := reloaded.Get(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("reload get: %v ok=%v", err, ok)
	}
	if stats.Total != 2 || stats.Correct != 1 {
		t.Fatalf("reloaded stats %+v", stats)
	}
	answered, correct, _ := reloaded.Totals(ctx)
	if answered != 2 || correct != 1 {
		t.Fatalf("reloaded totals %d/%d", correct, answered)
	}
}

func TestStatsStoreMissingFileStartsEmpty(t *testing.T) {
	store := NewStatsStore(filepath.Join(t.TempDir(), "absent.json"))
	rows, err := store.All(context.Background())
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected empty store, got %d rows, %v", len(rows), err)
	}
}

func TestStatsStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	store := NewStatsStore(path)
	rows, err := store.All(ctx)
	if err != nil || len(rows) != 0 {
		t.Fatalf("corrupt file must start empty, got %d rows, %v", len(rows), err)
	}

	// and the first write replaces the garbage with a valid document
	if _, _, err := store.Register(ctx, "u1", "Lina"); err != nil {
		t.Fatalf("register: %v", err)
	}
	data, _ := os.ReadFile(path)
	var doc domain.StatsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("rewrite left invalid JSON: %v", err)
	}
}
