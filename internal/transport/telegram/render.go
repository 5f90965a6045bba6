package telegram

import (
	"fmt"
	"strings"
	"time"

	"math-quiz-bot/internal/app"
	"math-quiz-bot/internal/domain"
	"gopkg.in/telebot.v3"
)

const (
	msgUnexpected     = "Something went wrong, please try again."
	msgSessionExpired = "Your session has expired. Send /begin to start over."
	msgNoSession      = "No active quiz session. Send /begin to start."
	msgNotRegistered  = "You are not registered yet. Send /start first."

	helpText = `Math quiz bot commands:
/start - register and see your overall score
/begin - start the quiz from question 1
/results - report for your current session
/score - your cumulative score
/top - leaderboard
/export - download your session results as CSV
/status - bot diagnostics
/help - this message

Questions 1-19 are true/false, 20-45 are multiple choice (A-D).
Answers cannot be changed once submitted; restart anytime with /begin.`
)

func renderWelcome(name string, stats domain.StudentStats, isNew bool) string {
	if isNew {
		return fmt.Sprintf("Welcome, %s! You are registered.\n\n%s", name, helpText)
	}
	return fmt.Sprintf("Welcome back, %s!\nYour overall score: %d/%d\n\nSend /begin to take the quiz.",
		name, stats.Correct, stats.Total)
}

func renderBegin(total int) string {
	return fmt.Sprintf("Quiz initialized: %d questions.\nThe first question is on its way...", total)
}

func renderSkipNotice(number int) string {
	return fmt.Sprintf("No image found for question %d, skipping it.", number)
}

func renderCaption(p domain.QuestionPrompt) string {
	kind := "True/False"
	if p.Type == domain.MultipleChoice {
		kind = "Multiple choice"
	}
	return fmt.Sprintf("Question %d of %d\n%s - pick your answer:", p.Number, p.Total, kind)
}

func answerMarkup(p domain.QuestionPrompt) *telebot.ReplyMarkup {
	var row []telebot.InlineButton
	if p.Type == domain.TrueFalse {
		row = []telebot.InlineButton{
			{Text: "✅ True", Data: domain.CallbackData(p.Number, "t")},
			{Text: "❌ False", Data: domain.CallbackData(p.Number, "f")},
		}
	} else {
		for _, token := range p.Type.Tokens() {
			row = append(row, telebot.InlineButton{
				Text: strings.ToUpper(token),
				Data: domain.CallbackData(p.Number, token),
			})
		}
	}
	return &telebot.ReplyMarkup{InlineKeyboard: [][]telebot.InlineButton{row}}
}

func renderAck(o domain.AnswerOutcome) string {
	verdict := "❌ Wrong"
	if o.IsCorrect {
		verdict = "✅ Correct"
	}
	msg := fmt.Sprintf("%s! Question %d: you answered %s", verdict, o.Number, strings.ToUpper(o.User))
	if !o.IsCorrect {
		msg += fmt.Sprintf(" (correct: %s)", strings.ToUpper(o.Correct))
	}
	if o.Completed {
		return msg + "\nThat was the last question."
	}
	return msg + "\nNext question coming up..."
}

func renderReport(r domain.Report) string {
	var sb strings.Builder
	sb.WriteString("📊 Quiz report\n")
	fmt.Fprintf(&sb, "Questions: %d\nCorrect: %d\nWrong: %d\nScore: %.1f%% (%s)\n",
		r.Total, r.Score, r.Total-r.Score, r.Percentage, r.Tier)
	if r.HasElapsed {
		fmt.Fprintf(&sb, "Time: %s\n", r.Elapsed.Round(time.Second))
	} else {
		sb.WriteString("Time: not computed\n")
	}
	if len(r.Lines) > 0 {
		sb.WriteString("\nDetails:\n")
		for _, line := range r.Lines {
			mark := "❌"
			if line.IsCorrect {
				mark = "✅"
			}
			user := line.User
			if user == "" {
				user = "-"
			}
			fmt.Fprintf(&sb, "%s Q%d: yours %s | correct %s\n",
				mark, line.Number, strings.ToUpper(user), strings.ToUpper(line.Correct))
		}
		if r.Hidden > 0 {
			fmt.Fprintf(&sb, "+%d more\n", r.Hidden)
		}
	}
	sb.WriteString("\nRetake anytime with /begin")
	return sb.String()
}

func renderScore(s domain.StudentStats) string {
	return fmt.Sprintf("📊 Your score:\n✅ %d correct\n❌ %d wrong\n🎯 %.1f%%\n📅 joined %s",
		s.Correct, s.Total-s.Correct, s.Percentage(), s.Joined)
}

func renderLeaderboard(lb domain.Leaderboard) string {
	if lb.Participants == 0 {
		return "No students yet!"
	}
	var sb strings.Builder
	sb.WriteString("🏆 Leaderboard:\n\n")
	for i, row := range lb.Rows {
		fmt.Fprintf(&sb, "%d. %s: %d/%d (%.1f%%)\n", i+1, row.Name, row.Correct, row.Total, row.Percentage)
	}
	fmt.Fprintf(&sb, "\n👥 Total students: %d", lb.Participants)
	return sb.String()
}

func renderStatus(s app.Status) string {
	return fmt.Sprintf("Questions loaded: %d\nStudents: %d\nAnswers recorded: %d (%d correct)\nUptime: %s",
		s.Questions, s.Students, s.Answered, s.Correct, s.Uptime.Round(time.Second))
}
