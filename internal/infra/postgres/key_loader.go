package postgres

import (
	"context"
	"fmt"
	"log"

	"math-quiz-bot/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// KeyLoader reads the answer key from the answer_keys table.
type KeyLoader struct {
	pool      *pgxpool.Pool
	threshold int
}

func NewKeyLoader(pool *pgxpool.Pool, threshold int) *KeyLoader {
	return &KeyLoader{pool: pool, threshold: threshold}
}

func (l *KeyLoader) LoadKey(ctx context.Context) (domain.AnswerKey, error) {
	rows, err := l.pool.Query(ctx, `SELECT number, qtype, answer FROM answer_keys ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}
	defer rows.Close()

	key := make(domain.AnswerKey)
	for rows.Next() {
		var (
			number        int
			qtype, answer string
		)
		if err := rows.Scan(&number, &qtype, &answer); err != nil {
			log.Printf("answer key row skipped: %v", err)
			continue
		}
		if number <= 0 {
			log.Printf("answer key row skipped: non-positive number %d", number)
			continue
		}
		entry, defaulted := domain.MakeEntry(number, qtype, answer, l.threshold)
		if defaulted {
			log.Printf("question %d: unrecognized answer %q, defaulted to %q", number, answer, entry.Answer)
		}
		key[number] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}
	return key, nil
}
