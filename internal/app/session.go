package app

import (
	"fmt"
	"sync"
	"time"

	"math-quiz-bot/internal/domain"
)

// Session tracks one user's walk through the question bank. It is created
// by Begin, mutated only through Answer and Skip, and never destroyed; a
// fresh Begin simply replaces it in the store.
type Session struct {
	mu          sync.Mutex
	userID      string
	displayName string
	numbers     []int
	index       int // 1-based position in numbers
	score       int
	records     map[int]domain.AnswerRecord
	completed   bool
	startedAt   time.Time
	endedAt     time.Time
	now         func() time.Time
}

// NewSession is exported for infrastructure and tests that need to seed
// sessions directly.
func NewSession(userID, displayName string, key domain.AnswerKey) *Session {
	return newSessionWithClock(userID, displayName, key, time.Now)
}

// newSessionWithClock allows deterministic timestamps in tests.
func newSessionWithClock(userID, displayName string, key domain.AnswerKey, now func() time.Time) *Session {
	records := make(map[int]domain.AnswerRecord, key.Len())
	for n, entry := range key {
		records[n] = domain.AnswerRecord{Type: entry.Type, Correct: entry.Answer}
	}
	return &Session{
		userID:      userID,
		displayName: displayName,
		numbers:     key.Numbers(),
		index:       1,
		records:     records,
		startedAt:   now(),
		now:         now,
	}
}

// Current returns the question number at the session's position, or false
// once the position is past the end.
func (s *Session) Current() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() (int, bool) {
	if s.index > len(s.numbers) {
		return 0, false
	}
	return s.numbers[s.index-1], true
}

// Skip advances past the current question without recording an answer.
// Used when the question's image cannot be located.
func (s *Session) Skip(number int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.currentLocked(); !ok || current != number {
		return
	}
	s.advanceLocked()
}

// Answer scores a submission against the current question. The position
// advances by exactly one on success and not at all on any failure.
func (s *Session) Answer(number int, token string) (domain.AnswerOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.currentLocked()
	if !ok || current != number {
		return domain.AnswerOutcome{}, fmt.Errorf("%w: got %d", domain.ErrQuestionMismatch, number)
	}

	record := s.records[number]
	answer, ok := domain.CanonicalAnswer(record.Type, token)
	if !ok {
		return domain.AnswerOutcome{}, fmt.Errorf("%w: %q for %s question %d", domain.ErrAnswerOutOfDomain, token, record.Type, number)
	}

	record.User = answer
	record.IsCorrect = answer == record.Correct
	record.AnsweredAt = s.now()
	s.records[number] = record
	if record.IsCorrect {
		s.score++
	}
	s.advanceLocked()

	return domain.AnswerOutcome{
		Number:    number,
		IsCorrect: record.IsCorrect,
		User:      answer,
		Correct:   record.Correct,
		Score:     s.score,
		Completed: s.completed,
	}, nil
}

func (s *Session) advanceLocked() {
	s.index++
	if s.index > len(s.numbers) && !s.completed {
		s.completed = true
		s.endedAt = s.now()
	}
}

func (s *Session) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayName
}

func (s *Session) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.numbers)
}

func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Record returns the answer record for one question number.
func (s *Session) Record(number int) domain.AnswerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[number]
}

// snapshot copies the state the report generator needs.
func (s *Session) snapshot() (numbers []int, records map[int]domain.AnswerRecord, score int, started, ended time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	numbers = append([]int(nil), s.numbers...)
	records = make(map[int]domain.AnswerRecord, len(s.records))
	for n, r := range s.records {
		records[n] = r
	}
	return numbers, records, s.score, s.startedAt, s.endedAt
}
