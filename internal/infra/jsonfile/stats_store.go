// Package jsonfile persists student stats as a single JSON document,
// read whole at startup and rewritten whole after every update.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"math-quiz-bot/internal/domain"
	"math-quiz-bot/internal/infra/memory"
)

// StatsStore wraps the in-memory store with whole-document persistence.
// A missing or corrupt file starts empty; that is a recoverable condition.
type StatsStore struct {
	mu   sync.Mutex // serializes rewrites; updates are rare and small
	path string
	mem  *memory.StatsStore
}

func NewStatsStore(path string) *StatsStore {
	s := &StatsStore{path: path, mem: memory.NewStatsStore()}
	s.load()
	return s
}

func (s *StatsStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("stats file %s unreadable, starting empty: %v", s.path, err)
		}
		return
	}
	var doc domain.StatsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("stats file %s corrupt, starting empty: %v", s.path, err)
		return
	}
	s.mem.Restore(doc)
}

func (s *StatsStore) persist() error {
	doc := s.mem.Snapshot()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".stats-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *StatsStore) Register(ctx context.Context, userID, name string) (domain.StudentStats, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, isNew, err := s.mem.Register(ctx, userID, name)
	if err != nil {
		return stats, isNew, err
	}
	if isNew {
		if err := s.persist(); err != nil {
			return stats, isNew, fmt.Errorf("persist stats: %w", err)
		}
	}
	return stats, isNew, nil
}

func (s *StatsStore) RecordAnswer(ctx context.Context, userID, name string, correct bool) (domain.StudentStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, err := s.mem.RecordAnswer(ctx, userID, name, correct)
	if err != nil {
		return stats, err
	}
	if err := s.persist(); err != nil {
		return stats, fmt.Errorf("persist stats: %w", err)
	}
	return stats, nil
}

func (s *StatsStore) Get(ctx context.Context, userID string) (domain.StudentStats, bool, error) {
	return s.mem.Get(ctx, userID)
}

func (s *StatsStore) All(ctx context.Context) ([]domain.StudentRow, error) {
	return s.mem.All(ctx)
}

func (s *StatsStore) Totals(ctx context.Context) (int, int, error) {
	return s.mem.Totals(ctx)
}
