package domain

import (
	"sort"
	"time"
)

// QuestionType distinguishes the two question kinds in the bank.
type QuestionType string

const (
	TrueFalse      QuestionType = "tf"
	MultipleChoice QuestionType = "mcq"
)

// Tokens returns the canonical answer domain for the type.
func (t QuestionType) Tokens() []string {
	if t == TrueFalse {
		return []string{"t", "f"}
	}
	return []string{"a", "b", "c", "d"}
}

// KeyEntry is one row of the answer key. Answer is always canonical:
// "t"/"f" for true/false, "a".."d" for multiple choice.
type KeyEntry struct {
	Number int
	Type   QuestionType
	Answer string
}

// AnswerKey maps question number to its entry. Gaps in numbering are
// tolerated; iteration only visits numbers present.
type AnswerKey map[int]KeyEntry

// Numbers returns the question numbers in ascending order.
func (k AnswerKey) Numbers() []int {
	nums := make([]int, 0, len(k))
	for n := range k {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

func (k AnswerKey) Len() int { return len(k) }

// AnswerRecord is the per-question slice of a session.
// User == "" means the question was skipped or not yet answered.
type AnswerRecord struct {
	Type       QuestionType
	Correct    string
	User       string
	IsCorrect  bool
	AnsweredAt time.Time
}

// QuestionPrompt is what the transport needs to render one question.
// Skipped lists questions auto-skipped (missing image) on the way here.
type QuestionPrompt struct {
	Number    int
	Type      QuestionType
	ImagePath string
	Index     int
	Total     int
	Skipped   []int
}

// AnswerOutcome summarizes one scored submission.
type AnswerOutcome struct {
	Number    int
	IsCorrect bool
	User      string
	Correct   string
	Score     int
	Completed bool
}

// ReportLine is one per-question detail row of a final report.
type ReportLine struct {
	Number    int
	User      string
	Correct   string
	IsCorrect bool
}

// Report is the render-ready result summary for one session.
type Report struct {
	Total      int
	Score      int
	Percentage float64
	Tier       string
	Elapsed    time.Duration
	HasElapsed bool
	Lines      []ReportLine
	Hidden     int
}

// LeaderboardRow is one ranked entry of the aggregate scoreboard.
type LeaderboardRow struct {
	UserID     string  `json:"userId"`
	Name       string  `json:"name"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Leaderboard is the ordered aggregate view across all known students.
type Leaderboard struct {
	Rows         []LeaderboardRow `json:"rows"`
	Participants int              `json:"participants"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// StudentStats is the durable additive-only record for one student.
type StudentStats struct {
	Name       string    `json:"name"`
	Correct    int       `json:"correct"`
	Total      int       `json:"total"`
	Joined     string    `json:"joined"`
	LastActive time.Time `json:"last_active"`
}

// Percentage is the cumulative success rate, 0 when nothing answered yet.
func (s StudentStats) Percentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total) * 100
}

// StudentRow pairs a student id with its stats, preserving store order.
type StudentRow struct {
	UserID string
	Stats  StudentStats
}

// StatsDocument is the persisted stats layout: one JSON document holding
// every student plus aggregate counters, rewritten whole on each update.
type StatsDocument struct {
	Students       map[string]StudentStats `json:"students"`
	TotalQuestions int                     `json:"total_questions"`
	CorrectAnswers int                     `json:"correct_answers"`
}
