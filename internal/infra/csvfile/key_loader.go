// Package csvfile loads the answer key from a three-column CSV file:
// question number, question type label, correct-answer label.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"math-quiz-bot/internal/domain"
)

// KeyLoader reads an answer-key CSV. Malformed rows are skipped with a
// warning; only an unreadable file fails the whole load.
type KeyLoader struct {
	path      string
	threshold int
}

func NewKeyLoader(path string, threshold int) *KeyLoader {
	return &KeyLoader{path: path, threshold: threshold}
}

func (l *KeyLoader) LoadKey(_ context.Context) (domain.AnswerKey, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open answer key: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse answer key: %w", err)
	}

	key := make(domain.AnswerKey)
	for i, row := range rows {
		entry, err := l.parseRow(row)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			log.Printf("answer key row %d skipped: %v", i+1, err)
			continue
		}
		key[entry.Number] = entry
	}
	log.Printf("loaded %d answer key entries from %s", key.Len(), l.path)
	return key, nil
}

func (l *KeyLoader) parseRow(row []string) (domain.KeyEntry, error) {
	if len(row) < 3 {
		return domain.KeyEntry{}, fmt.Errorf("%w: want 3 fields, got %d", domain.ErrKeyRowMalformed, len(row))
	}
	number, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil || number <= 0 {
		return domain.KeyEntry{}, fmt.Errorf("%w: bad question number %q", domain.ErrKeyRowMalformed, row[0])
	}
	entry, defaulted := domain.MakeEntry(number, row[1], row[2], l.threshold)
	if defaulted {
		log.Printf("question %d: unrecognized answer %q, defaulted to %q", number, strings.TrimSpace(row[2]), entry.Answer)
	}
	return entry, nil
}
