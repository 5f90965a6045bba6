// Package telegram binds the quiz service to Telegram via telebot.
package telegram

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"math-quiz-bot/internal/app"
	"math-quiz-bot/internal/domain"
	"gopkg.in/telebot.v3"
)

// Bot routes Telegram commands and button clicks into the quiz service.
type Bot struct {
	tb      *telebot.Bot
	service *app.QuizService
	pacing  time.Duration
}

// New wires all handlers onto the given telebot instance. pacing is the
// delay between an answer acknowledgement and the next question; it runs
// on a timer and never blocks other users.
func New(tb *telebot.Bot, service *app.QuizService, pacing time.Duration) *Bot {
	if pacing <= 0 {
		pacing = time.Second
	}
	b := &Bot{tb: tb, service: service, pacing: pacing}

	tb.Handle("/start", b.onStart)
	tb.Handle("/begin", b.onBegin)
	tb.Handle("/results", b.onResults)
	tb.Handle("/score", b.onScore)
	tb.Handle("/top", b.onTop)
	tb.Handle("/status", b.onStatus)
	tb.Handle("/export", b.onExport)
	tb.Handle("/help", b.onHelp)
	tb.Handle(telebot.OnCallback, b.onCallback)
	return b
}

// Start begins consuming updates; it blocks until Stop.
func (b *Bot) Start() { b.tb.Start() }

func (b *Bot) Stop() { b.tb.Stop() }

func ident(user *telebot.User) (string, string) {
	name := user.FirstName
	if name == "" {
		name = user.Username
	}
	return strconv.FormatInt(user.ID, 10), name
}

func (b *Bot) onStart(c telebot.Context) error {
	userID, name := ident(c.Sender())
	stats, isNew, err := b.service.Register(context.Background(), userID, name)
	if err != nil {
		log.Printf("register %s: %v", userID, err)
		return c.Send(msgUnexpected)
	}
	return c.Send(renderWelcome(name, stats, isNew))
}

func (b *Bot) onBegin(c telebot.Context) error {
	userID, name := ident(c.Sender())
	session, err := b.service.Begin(context.Background(), userID, name)
	if err != nil {
		log.Printf("begin %s: %v", userID, err)
		return c.Send(msgUnexpected)
	}
	if err := c.Send(renderBegin(session.Total())); err != nil {
		return err
	}
	b.sendQuestion(c.Chat(), userID)
	return nil
}

// sendQuestion delivers the next question, emitting a transient notice for
// every auto-skipped one, or the final report when the quiz is done.
func (b *Bot) sendQuestion(to telebot.Recipient, userID string) {
	prompt, skipped, err := b.service.NextQuestion(context.Background(), userID)
	for _, n := range skipped {
		_, _ = b.tb.Send(to, renderSkipNotice(n))
	}
	switch {
	case errors.Is(err, domain.ErrQuizComplete):
		b.sendReport(to, userID)
		return
	case errors.Is(err, domain.ErrSessionExpired):
		_, _ = b.tb.Send(to, msgSessionExpired)
		return
	case err != nil:
		log.Printf("next question for %s: %v", userID, err)
		_, _ = b.tb.Send(to, msgUnexpected)
		return
	}

	markup := answerMarkup(prompt)
	photo := &telebot.Photo{
		File:    telebot.FromDisk(prompt.ImagePath),
		Caption: renderCaption(prompt),
	}
	if _, err := b.tb.Send(to, photo, markup); err != nil {
		// Image could not be attached; fall back to text with the same buttons.
		log.Printf("send photo %s: %v", prompt.ImagePath, err)
		_, _ = b.tb.Send(to, renderCaption(prompt), markup)
	}
}

func (b *Bot) sendReport(to telebot.Recipient, userID string) {
	report, err := b.service.Summarize(userID)
	if err != nil {
		log.Printf("summarize %s: %v", userID, err)
		_, _ = b.tb.Send(to, msgSessionExpired)
		return
	}
	_, _ = b.tb.Send(to, renderReport(report))
}

func (b *Bot) onCallback(c telebot.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}
	data := strings.TrimPrefix(callback.Data, "\f")
	parsed, err := domain.ParseCallback(data)
	if err != nil {
		// Clicks from outside the quiz namespace or with a broken shape are
		// dropped: logged, no state change, no user-visible message.
		log.Printf("callback dropped: %v", err)
		return c.Respond(&telebot.CallbackResponse{})
	}

	userID, _ := ident(c.Sender())
	outcome, err := b.service.SubmitAnswer(context.Background(), userID, parsed.Number, parsed.Token)
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		_ = c.Respond(&telebot.CallbackResponse{})
		return c.Send(msgSessionExpired)
	case errors.Is(err, domain.ErrQuestionMismatch), errors.Is(err, domain.ErrAnswerOutOfDomain):
		log.Printf("callback dropped for %s: %v", userID, err)
		return c.Respond(&telebot.CallbackResponse{})
	case err != nil:
		log.Printf("submit for %s: %v", userID, err)
		_ = c.Respond(&telebot.CallbackResponse{})
		return c.Send(msgUnexpected)
	}

	_ = c.Respond(&telebot.CallbackResponse{})
	ack := renderAck(outcome)
	if err := c.Edit(ack); err != nil {
		// The original was a photo, whose text cannot be edited; replace the
		// buttons with a fresh acknowledgement message instead.
		_, _ = b.tb.Send(c.Chat(), ack)
	}

	chat := c.Chat()
	time.AfterFunc(b.pacing, func() {
		b.sendQuestion(chat, userID)
	})
	return nil
}

func (b *Bot) onResults(c telebot.Context) error {
	userID, _ := ident(c.Sender())
	report, err := b.service.Summarize(userID)
	if errors.Is(err, domain.ErrSessionExpired) {
		return c.Send(msgNoSession)
	}
	if err != nil {
		log.Printf("results %s: %v", userID, err)
		return c.Send(msgUnexpected)
	}
	return c.Send(renderReport(report))
}

func (b *Bot) onScore(c telebot.Context) error {
	userID, _ := ident(c.Sender())
	stats, err := b.service.Score(context.Background(), userID)
	if errors.Is(err, domain.ErrNotRegistered) {
		return c.Send(msgNotRegistered)
	}
	if err != nil {
		log.Printf("score %s: %v", userID, err)
		return c.Send(msgUnexpected)
	}
	return c.Send(renderScore(stats))
}

func (b *Bot) onTop(c telebot.Context) error {
	lb, err := b.service.Leaderboard(context.Background())
	if err != nil {
		log.Printf("leaderboard: %v", err)
		return c.Send(msgUnexpected)
	}
	return c.Send(renderLeaderboard(lb))
}

func (b *Bot) onStatus(c telebot.Context) error {
	status, err := b.service.Status(context.Background())
	if err != nil {
		log.Printf("status: %v", err)
		return c.Send(msgUnexpected)
	}
	return c.Send(renderStatus(status))
}

func (b *Bot) onExport(c telebot.Context) error {
	userID, _ := ident(c.Sender())
	data, err := b.service.Export(userID)
	if errors.Is(err, domain.ErrSessionExpired) {
		return c.Send(msgNoSession)
	}
	if err != nil {
		log.Printf("export %s: %v", userID, err)
		return c.Send(msgUnexpected)
	}
	doc := &telebot.Document{
		File:     telebot.FromReader(strings.NewReader(string(data))),
		FileName: "quiz-results-" + userID + ".csv",
		Caption:  "Your quiz results",
	}
	return c.Send(doc)
}

func (b *Bot) onHelp(c telebot.Context) error {
	return c.Send(helpText)
}
