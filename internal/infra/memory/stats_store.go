package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"math-quiz-bot/internal/domain"
)

// StatsStore is the in-memory implementation of app.StatsRepository. It
// also backs the jsonfile store, which persists a snapshot after every
// mutation.
type StatsStore struct {
	mu    sync.RWMutex
	doc   domain.StatsDocument
	order []string
	clock func() time.Time
}

func NewStatsStore() *StatsStore {
	return &StatsStore{
		doc:   domain.StatsDocument{Students: make(map[string]domain.StudentStats)},
		clock: time.Now,
	}
}

// NewStatsStoreWithClock is test-only for deterministic timestamps.
func NewStatsStoreWithClock(now func() time.Time) *StatsStore {
	s := NewStatsStore()
	s.clock = now
	return s
}

func (s *StatsStore) Register(_ context.Context, userID, name string) (domain.StudentStats, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stats, ok := s.doc.Students[userID]; ok {
		return stats, false, nil
	}
	now := s.clock()
	stats := domain.StudentStats{
		Name:       name,
		Joined:     now.Format("2006-01-02"),
		LastActive: now,
	}
	s.doc.Students[userID] = stats
	s.order = append(s.order, userID)
	return stats, true, nil
}

func (s *StatsStore) RecordAnswer(_ context.Context, userID, name string, correct bool) (domain.StudentStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	stats, ok := s.doc.Students[userID]
	if !ok {
		stats = domain.StudentStats{Name: name, Joined: now.Format("2006-01-02")}
		s.order = append(s.order, userID)
	}
	stats.Total++
	if correct {
		stats.Correct++
	}
	stats.LastActive = now
	s.doc.Students[userID] = stats

	s.doc.TotalQuestions++
	if correct {
		s.doc.CorrectAnswers++
	}
	return stats, nil
}

func (s *StatsStore) Get(_ context.Context, userID string) (domain.StudentStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.doc.Students[userID]
	return stats, ok, nil
}

// All returns every student in registration order.
func (s *StatsStore) All(_ context.Context) ([]domain.StudentRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]domain.StudentRow, 0, len(s.order))
	for _, id := range s.order {
		rows = append(rows, domain.StudentRow{UserID: id, Stats: s.doc.Students[id]})
	}
	return rows, nil
}

func (s *StatsStore) Totals(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.TotalQuestions, s.doc.CorrectAnswers, nil
}

// Snapshot copies the whole document for persistence.
func (s *StatsStore) Snapshot() domain.StatsDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := domain.StatsDocument{
		Students:       make(map[string]domain.StudentStats, len(s.doc.Students)),
		TotalQuestions: s.doc.TotalQuestions,
		CorrectAnswers: s.doc.CorrectAnswers,
	}
	for id, stats := range s.doc.Students {
		doc.Students[id] = stats
	}
	return doc
}

// Restore replaces the store's contents with a previously persisted
// document. Registration order is reconstructed from join dates.
func (s *StatsStore) Restore(doc domain.StatsDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.Students == nil {
		doc.Students = make(map[string]domain.StudentStats)
	}
	s.doc = doc
	s.order = orderByJoined(doc.Students)
}

func orderByJoined(students map[string]domain.StudentStats) []string {
	ids := make([]string, 0, len(students))
	for id := range students {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := students[ids[i]], students[ids[j]]
		if a.Joined != b.Joined {
			return a.Joined < b.Joined
		}
		return ids[i] < ids[j]
	})
	return ids
}
