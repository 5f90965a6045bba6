package memory

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"math-quiz-bot/internal/domain"
	"golang.org/x/sync/singleflight"
)

// KeyLoader fetches the answer key from a backing source (CSV, Postgres).
type KeyLoader interface {
	LoadKey(ctx context.Context) (domain.AnswerKey, error)
}

// KeyRepository caches the loaded answer key. With a positive TTL the key
// is re-read when it expires (singleflighted so concurrent misses load
// once); with TTL zero the first load is kept for the process lifetime.
type KeyRepository struct {
	loader KeyLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    domain.AnswerKey
	expiresAt time.Time
	loaded    bool
}

func NewKeyRepository(loader KeyLoader, ttl time.Duration) *KeyRepository {
	return &KeyRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *KeyRepository) GetKey(ctx context.Context) (domain.AnswerKey, error) {
	if key, ok := r.fresh(); ok {
		return key, nil
	}

	result, err, _ := r.sf.Do("key", func() (interface{}, error) {
		if key, ok := r.fresh(); ok {
			return key, nil
		}
		key, err := r.loader.LoadKey(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cached = key
		r.loaded = true
		if r.ttl > 0 {
			r.expiresAt = r.clock().Add(r.ttlWithJitter())
		}
		r.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(domain.AnswerKey), nil
}

func (r *KeyRepository) fresh() (domain.AnswerKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded {
		return nil, false
	}
	if r.ttl > 0 && !r.expiresAt.After(r.clock()) {
		return nil, false
	}
	return r.cached, true
}

func (r *KeyRepository) ttlWithJitter() time.Duration {
	// up to 10% jitter to spread reloads
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticKeyLoader serves a fixed in-memory key (tests, demos).
type StaticKeyLoader struct {
	key domain.AnswerKey
}

func NewStaticKeyLoader(key domain.AnswerKey) *StaticKeyLoader {
	return &StaticKeyLoader{key: key}
}

func (l *StaticKeyLoader) LoadKey(_ context.Context) (domain.AnswerKey, error) {
	return l.key, nil
}

// FallbackKeyLoader decorates a primary loader with the synthetic-key
// fallback: when the source cannot be read at all, a deterministic bank of
// the configured size keeps the bot runnable for smoke testing.
type FallbackKeyLoader struct {
	primary   KeyLoader
	size      int
	threshold int
}

func NewFallbackKeyLoader(primary KeyLoader, size, threshold int) *FallbackKeyLoader {
	return &FallbackKeyLoader{primary: primary, size: size, threshold: threshold}
}

func (l *FallbackKeyLoader) LoadKey(ctx context.Context) (domain.AnswerKey, error) {
	key, err := l.primary.LoadKey(ctx)
	if err != nil {
		log.Printf("answer key source unreadable, using synthetic key: %v", err)
		return domain.SyntheticKey(l.size, l.threshold), nil
	}
	return key, nil
}
