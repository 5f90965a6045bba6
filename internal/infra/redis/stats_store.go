package redis

import (
	"context"
	"strconv"
	"time"

	"math-quiz-bot/internal/domain"
	"github.com/redis/go-redis/v9"
)

// StatsStore is the Redis-backed implementation of app.StatsRepository.
// Layout:
//   - HSET quiz:student:{id}  name/correct/total/joined/last_active
//   - RPUSH quiz:students {id}          (registration order)
//   - HINCRBY quiz:totals questions/correct
type StatsStore struct {
	client *redis.Client
	clock  func() time.Time
}

func NewStatsStore(client *redis.Client) *StatsStore {
	return &StatsStore{client: client, clock: time.Now}
}

func (s *StatsStore) Register(ctx context.Context, userID, name string) (domain.StudentStats, bool, error) {
	exists, err := s.client.Exists(ctx, s.studentKey(userID)).Result()
	if err != nil {
		return domain.StudentStats{}, false, err
	}
	if exists > 0 {
		stats, _, err := s.Get(ctx, userID)
		return stats, false, err
	}

	now := s.clock()
	stats := domain.StudentStats{
		Name:       name,
		Joined:     now.Format("2006-01-02"),
		LastActive: now,
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.studentKey(userID), s.fields(stats))
	pipe.RPush(ctx, s.orderKey(), userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.StudentStats{}, false, err
	}
	return stats, true, nil
}

func (s *StatsStore) RecordAnswer(ctx context.Context, userID, name string, correct bool) (domain.StudentStats, error) {
	exists, err := s.client.Exists(ctx, s.studentKey(userID)).Result()
	if err != nil {
		return domain.StudentStats{}, err
	}
	if exists == 0 {
		if _, _, err := s.Register(ctx, userID, name); err != nil {
			return domain.StudentStats{}, err
		}
	}

	now := s.clock()
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, s.studentKey(userID), "total", 1)
	if correct {
		pipe.HIncrBy(ctx, s.studentKey(userID), "correct", 1)
	}
	pipe.HSet(ctx, s.studentKey(userID), "last_active", now.Format(time.RFC3339))
	pipe.HIncrBy(ctx, s.totalsKey(), "questions", 1)
	if correct {
		pipe.HIncrBy(ctx, s.totalsKey(), "correct", 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.StudentStats{}, err
	}
	stats, _, err := s.Get(ctx, userID)
	return stats, err
}

func (s *StatsStore) Get(ctx context.Context, userID string) (domain.StudentStats, bool, error) {
	values, err := s.client.HGetAll(ctx, s.studentKey(userID)).Result()
	if err != nil {
		return domain.StudentStats{}, false, err
	}
	if len(values) == 0 {
		return domain.StudentStats{}, false, nil
	}
	return statsFromFields(values), true, nil
}

func (s *StatsStore) All(ctx context.Context) ([]domain.StudentRow, error) {
	ids, err := s.client.LRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	rows := make([]domain.StudentRow, 0, len(ids))
	for _, id := range ids {
		stats, ok, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rows = append(rows, domain.StudentRow{UserID: id, Stats: stats})
	}
	return rows, nil
}

func (s *StatsStore) Totals(ctx context.Context) (int, int, error) {
	values, err := s.client.HGetAll(ctx, s.totalsKey()).Result()
	if err != nil {
		return 0, 0, err
	}
	questions, _ := strconv.Atoi(values["questions"])
	correct, _ := strconv.Atoi(values["correct"])
	return questions, correct, nil
}

func (s *StatsStore) fields(stats domain.StudentStats) map[string]interface{} {
	return map[string]interface{}{
		"name":        stats.Name,
		"correct":     stats.Correct,
		"total":       stats.Total,
		"joined":      stats.Joined,
		"last_active": stats.LastActive.Format(time.RFC3339),
	}
}

func statsFromFields(values map[string]string) domain.StudentStats {
	correct, _ := strconv.Atoi(values["correct"])
	total, _ := strconv.Atoi(values["total"])
	lastActive, _ := time.Parse(time.RFC3339, values["last_active"])
	return domain.StudentStats{
		Name:       values["name"],
		Correct:    correct,
		Total:      total,
		Joined:     values["joined"],
		LastActive: lastActive,
	}
}

func (s *StatsStore) studentKey(userID string) string {
	return "quiz:student:" + userID
}

func (s *StatsStore) orderKey() string {
	return "quiz:students"
}

func (s *StatsStore) totalsKey() string {
	return "quiz:totals"
}
