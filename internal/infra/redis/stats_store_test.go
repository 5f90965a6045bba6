package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *StatsStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStatsStore(client)
}

func TestRegisterAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	stats, isNew, err := store.Register(ctx, "u1", "Lina")
	if err != nil || !isNew {
		t.Fatalf("first register: %+v new=%v %v", stats, isNew, err)
	}
	if stats.Name != "Lina" || stats.Joined == "" {
		t.Fatalf("unexpected fresh record %+v", stats)
	}

	_, isNew, err = store.Register(ctx, "u1", "Renamed")
	if err != nil || isNew {
		t.Fatalf("re-register must be a no-op: new=%v %v", isNew, err)
	}
	got, ok, err := store.Get(ctx, "u1")
	if err != nil || !ok || got.Name != "Lina" {
		t.Fatalf("get after re-register: %+v ok=%v %v", got, ok, err)
	}

	if _, ok, _ := store.Get(ctx, "ghost"); ok {
		t.Fatal("unknown user must not resolve")
	}
}

func TestRecordAnswerAccumulates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// recording against an unknown user auto-registers them first
	stats, err := store.RecordAnswer(ctx, "u1", "Lina", true)
	if err != nil || stats.Total != 1 || stats.Correct != 1 {
		t.Fatalf("first record: %+v %v", stats, err)
	}
	stats, err = store.RecordAnswer(ctx, "u1", "Lina", false)
	if err != nil || stats.Total != 2 || stats.Correct != 1 {
		t.Fatalf("second record: %+v %v", stats, err)
	}

	answered, correct, err := store.Totals(ctx)
	if err != nil || answered != 2 || correct != 1 {
		t.Fatalf("totals %d/%d %v", correct, answered, err)
	}
}

func TestAllKeepsRegistrationOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, id := range []string{"u3", "u1", "u2"} {
		if _, _, err := store.Register(ctx, id, "Student "+id); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.RecordAnswer(ctx, "u1", "", true); err != nil {
		t.Fatal(err)
	}

	rows, err := store.All(ctx)
	if err != nil || len(rows) != 3 {
		t.Fatalf("all: %d rows %v", len(rows), err)
	}
	for i, want := range []string{"u3", "u1", "u2"} {
		if rows[i].UserID != want {
			t.Fatalf("row %d = %s, want %s", i, rows[i].UserID, want)
		}
	}
	if rows[1].Stats.Correct != 1 || rows[1].Stats.Total != 1 {
		t.Fatalf("row stats not hydrated: %+v", rows[1])
	}
}
