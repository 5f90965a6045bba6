package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"math-quiz-bot/internal/domain"
)

// SessionStore abstracts how per-user sessions are stored.
type SessionStore interface {
	Put(userID string, session *Session)
	Get(userID string) (*Session, bool)
}

// KeyRepository serves the loaded answer key.
type KeyRepository interface {
	GetKey(ctx context.Context) (domain.AnswerKey, error)
}

// StatsRepository is the durable, additive-only student record store.
type StatsRepository interface {
	Register(ctx context.Context, userID, name string) (domain.StudentStats, bool, error)
	RecordAnswer(ctx context.Context, userID, name string, correct bool) (domain.StudentStats, error)
	Get(ctx context.Context, userID string) (domain.StudentStats, bool, error)
	All(ctx context.Context) ([]domain.StudentRow, error)
	Totals(ctx context.Context) (questions, correct int, err error)
}

// ImageResolver maps a question number to its illustration on disk.
type ImageResolver interface {
	Resolve(number int) (path string, ok bool)
}

// Options tunes report and leaderboard rendering.
type Options struct {
	DetailCap int // verbatim report lines before collapsing, default 10
	TopN      int // leaderboard rows, default 10
	Clock     func() time.Time
}

// QuizService contains the quiz use cases: session lifecycle, scoring,
// reports, and the aggregate leaderboard.
type QuizService struct {
	sessions SessionStore
	keys     KeyRepository
	stats    StatsRepository
	images   ImageResolver

	detailCap int
	topN      int
	now       func() time.Time
	startedAt time.Time

	subMu       sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewQuizService(sessions SessionStore, keys KeyRepository, stats StatsRepository, images ImageResolver, opts Options) *QuizService {
	if opts.DetailCap <= 0 {
		opts.DetailCap = 10
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &QuizService{
		sessions:    sessions,
		keys:        keys,
		stats:       stats,
		images:      images,
		detailCap:   opts.DetailCap,
		topN:        opts.TopN,
		now:         opts.Clock,
		startedAt:   opts.Clock(),
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
	return s
}

// Register creates the durable stats record on first contact. isNew reports
// whether the user was seen for the first time.
func (s *QuizService) Register(ctx context.Context, userID, name string) (domain.StudentStats, bool, error) {
	return s.stats.Register(ctx, userID, name)
}

// Begin unconditionally (re-)creates the user's session from the current
// answer key, discarding any in-progress one. Only the durable stats record
// survives a restart of the quiz.
func (s *QuizService) Begin(ctx context.Context, userID, name string) (*Session, error) {
	key, err := s.keys.GetKey(ctx)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.stats.Register(ctx, userID, name); err != nil {
		log.Printf("stats register %s: %v", userID, err)
	}
	session := newSessionWithClock(userID, name, key, s.now)
	s.sessions.Put(userID, session)
	return session, nil
}

// NextQuestion returns the next deliverable question for the user, skipping
// past questions whose image cannot be located. The loop is bounded by the
// session length, so it always terminates. Skipped numbers are returned so
// the transport can surface transient notices, including when the skips run
// off the end of the quiz (ErrQuizComplete).
func (s *QuizService) NextQuestion(ctx context.Context, userID string) (domain.QuestionPrompt, []int, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return domain.QuestionPrompt{}, nil, domain.ErrSessionExpired
	}

	var skipped []int
	for {
		number, ok := session.Current()
		if !ok {
			return domain.QuestionPrompt{}, skipped, domain.ErrQuizComplete
		}
		path, found := s.images.Resolve(number)
		if !found {
			log.Printf("no image for question %d, auto-skipping", number)
			session.Skip(number)
			skipped = append(skipped, number)
			continue
		}
		record := session.Record(number)
		return domain.QuestionPrompt{
			Number:    number,
			Type:      record.Type,
			ImagePath: path,
			Index:     session.Index(),
			Total:     session.Total(),
			Skipped:   skipped,
		}, skipped, nil
	}
}

// SubmitAnswer scores one submission against the user's current question,
// updates the durable stats, and notifies leaderboard subscribers.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID string, number int, token string) (domain.AnswerOutcome, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return domain.AnswerOutcome{}, domain.ErrSessionExpired
	}

	outcome, err := session.Answer(number, token)
	if err != nil {
		return domain.AnswerOutcome{}, err
	}

	// Stats writes are additive and best-effort; a storage hiccup must not
	// lose the already-recorded answer.
	if _, err := s.stats.RecordAnswer(ctx, userID, session.DisplayName(), outcome.IsCorrect); err != nil {
		log.Printf("stats update %s: %v", userID, err)
	}
	s.broadcast(ctx)
	return outcome, nil
}

// Summarize renders the result report for the user's session. Calling it
// repeatedly on an unchanged session yields identical output.
func (s *QuizService) Summarize(userID string) (domain.Report, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return domain.Report{}, domain.ErrSessionExpired
	}
	numbers, records, score, started, ended := session.snapshot()
	return buildReport(numbers, records, score, started, ended, s.detailCap), nil
}

// Score returns the durable cumulative record for one user.
func (s *QuizService) Score(ctx context.Context, userID string) (domain.StudentStats, error) {
	stats, ok, err := s.stats.Get(ctx, userID)
	if err != nil {
		return domain.StudentStats{}, err
	}
	if !ok {
		return domain.StudentStats{}, domain.ErrNotRegistered
	}
	return stats, nil
}

// Leaderboard ranks all known students by cumulative percentage, descending,
// ties kept in store order, truncated to the configured top N.
func (s *QuizService) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	rows, err := s.stats.All(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	entries := make([]domain.LeaderboardRow, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.LeaderboardRow{
			UserID:     row.UserID,
			Name:       row.Stats.Name,
			Correct:    row.Stats.Correct,
			Total:      row.Stats.Total,
			Percentage: row.Stats.Percentage(),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Percentage > entries[j].Percentage
	})
	participants := len(entries)
	if len(entries) > s.topN {
		entries = entries[:s.topN]
	}
	return domain.Leaderboard{Rows: entries, Participants: participants, UpdatedAt: s.now()}, nil
}

// Status reports diagnostic counters for the /status command.
type Status struct {
	Questions int
	Students  int
	Answered  int
	Correct   int
	Uptime    time.Duration
}

func (s *QuizService) Status(ctx context.Context) (Status, error) {
	key, err := s.keys.GetKey(ctx)
	if err != nil {
		return Status{}, err
	}
	rows, err := s.stats.All(ctx)
	if err != nil {
		return Status{}, err
	}
	answered, correct, err := s.stats.Totals(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Questions: key.Len(),
		Students:  len(rows),
		Answered:  answered,
		Correct:   correct,
		Uptime:    s.now().Sub(s.startedAt),
	}, nil
}

// Export renders the session's per-question records as CSV.
func (s *QuizService) Export(userID string) ([]byte, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return nil, domain.ErrSessionExpired
	}
	numbers, records, _, _, _ := session.snapshot()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"question", "type", "correct_answer", "student_answer", "is_correct"})
	for _, n := range numbers {
		r := records[n]
		user := r.User
		if user == "" {
			user = "-"
		}
		correct := "no"
		if r.IsCorrect {
			correct = "yes"
		}
		_ = w.Write([]string{strconv.Itoa(n), string(r.Type), r.Correct, user, correct})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Subscribe returns a channel receiving leaderboard updates after every
// scored answer. The caller must invoke cancel to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()
	ch <- initial

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel, nil
}

func (s *QuizService) broadcast(ctx context.Context) {
	s.subMu.Lock()
	n := len(s.subscribers)
	s.subMu.Unlock()
	if n == 0 {
		return
	}

	lb, err := s.Leaderboard(ctx)
	if err != nil {
		log.Printf("leaderboard broadcast: %v", err)
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// Drop the stale update so a slow monitor never blocks scoring.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
