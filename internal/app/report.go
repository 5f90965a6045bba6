package app

import (
	"time"

	"math-quiz-bot/internal/domain"
)

// Qualitative tier cut points. Multiple report surfaces assert these exact
// percentages, so they are fixed constants rather than configuration.
const (
	tierExcellentCut  = 90.0
	tierVeryGoodCut   = 75.0
	tierAcceptableCut = 50.0
)

const (
	TierExcellent  = "excellent"
	TierVeryGood   = "very good"
	TierAcceptable = "acceptable"
	TierWeak       = "weak"
)

func tierFor(percentage float64) string {
	switch {
	case percentage >= tierExcellentCut:
		return TierExcellent
	case percentage >= tierVeryGoodCut:
		return TierVeryGood
	case percentage >= tierAcceptableCut:
		return TierAcceptable
	default:
		return TierWeak
	}
}

// buildReport assembles the result summary: percentage with zero-division
// guard, tier, elapsed time when both timestamps are set, and detail lines
// grouped correct-first with a verbatim cap.
func buildReport(numbers []int, records map[int]domain.AnswerRecord, score int, started, ended time.Time, detailCap int) domain.Report {
	total := len(numbers)
	percentage := 0.0
	if total > 0 {
		percentage = float64(score) / float64(total) * 100
	}

	report := domain.Report{
		Total:      total,
		Score:      score,
		Percentage: percentage,
		Tier:       tierFor(percentage),
	}
	if !started.IsZero() && !ended.IsZero() {
		report.Elapsed = ended.Sub(started)
		report.HasElapsed = true
	}

	lines := make([]domain.ReportLine, 0, total)
	for _, correctFirst := range []bool{true, false} {
		for _, n := range numbers {
			r := records[n]
			if r.IsCorrect != correctFirst {
				continue
			}
			lines = append(lines, domain.ReportLine{
				Number:    n,
				User:      r.User,
				Correct:   r.Correct,
				IsCorrect: r.IsCorrect,
			})
		}
	}
	if len(lines) > detailCap {
		report.Hidden = len(lines) - detailCap
		lines = lines[:detailCap]
	}
	report.Lines = lines
	return report
}
