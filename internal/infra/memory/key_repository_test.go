package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"math-quiz-bot/internal/domain"
)

type countingLoader struct {
	key   domain.AnswerKey
	err   error
	calls int
}

func (l *countingLoader) LoadKey(_ context.Context) (domain.AnswerKey, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.key, nil
}

func TestKeyRepositoryCachesForever(t *testing.T) {
	loader := &countingLoader{key: domain.SyntheticKey(5, 3)}
	repo := NewKeyRepository(loader, 0)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		key, err := repo.GetKey(ctx)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if key.Len() != 5 {
			t.Fatalf("get %d: %d entries", i, key.Len())
		}
	}
	if loader.calls != 1 {
		t.Fatalf("loader called %d times, want 1", loader.calls)
	}
}

func TestKeyRepositoryReloadsAfterTTL(t *testing.T) {
	loader := &countingLoader{key: domain.SyntheticKey(5, 3)}
	repo := NewKeyRepository(loader, time.Minute)

	now := time.Unix(1000, 0)
	repo.clock = func() time.Time { return now }

	ctx := context.Background()
	if _, err := repo.GetKey(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetKey(ctx); err != nil {
		t.Fatal(err)
	}
	if loader.calls != 1 {
		t.Fatalf("loader called %d times before expiry, want 1", loader.calls)
	}

	// past the TTL plus maximum jitter
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetKey(ctx); err != nil {
		t.Fatal(err)
	}
	if loader.calls != 2 {
		t.Fatalf("loader called %d times after expiry, want 2", loader.calls)
	}
}

func TestKeyRepositoryPropagatesLoadError(t *testing.T) {
	wantErr := errors.New("boom")
	loader := &countingLoader{err: wantErr}
	repo := NewKeyRepository(loader, 0)

	if _, err := repo.GetKey(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
	// a failed load is not cached
	if _, err := repo.GetKey(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("second get: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("loader called %d times, want 2", loader.calls)
	}
}

func TestFallbackKeyLoader(t *testing.T) {
	broken := &countingLoader{err: errors.New("no such file")}
	fallback := NewFallbackKeyLoader(broken, 45, 20)

	key, err := fallback.LoadKey(context.Background())
	if err != nil {
		t.Fatalf("fallback must swallow the source error, got %v", err)
	}
	if key.Len() != 45 {
		t.Fatalf("synthetic key size %d, want 45", key.Len())
	}
	if key[1].Type != domain.TrueFalse || key[20].Type != domain.MultipleChoice {
		t.Fatalf("synthetic key split wrong: %+v %+v", key[1], key[20])
	}

	healthy := &countingLoader{key: domain.AnswerKey{1: {Number: 1, Type: domain.TrueFalse, Answer: "t"}}}
	fallback = NewFallbackKeyLoader(healthy, 45, 20)
	key, err = fallback.LoadKey(context.Background())
	if err != nil || key.Len() != 1 {
		t.Fatalf("healthy source must pass through: %d entries, %v", key.Len(), err)
	}
}
