package http

import (
	"context"
	"fmt"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"math-quiz-bot/internal/app"
	"math-quiz-bot/internal/domain"
	"math-quiz-bot/internal/infra/memory"
)

type resolverFunc func(number int) (string, bool)

func (f resolverFunc) Resolve(number int) (string, bool) { return f(number) }

func newTestService() *app.QuizService {
	key := domain.AnswerKey{1: {Number: 1, Type: domain.TrueFalse, Answer: "t"}}
	images := resolverFunc(func(n int) (string, bool) {
		return fmt.Sprintf("images/%d.png", n), true
	})
	return app.NewQuizService(
		memory.NewSessionStore(),
		memory.NewKeyRepository(memory.NewStaticKeyLoader(key), 0),
		memory.NewStatsStore(),
		images,
		app.Options{},
	)
}

func TestHealthEndpoints(t *testing.T) {
	srv := httptest.NewServer(NewMux(NewMonitor(newTestService())))
	defer srv.Close()

	for path, want := range map[string]string{"/healthz": "ok", "/ping": "pong"} {
		resp, err := stdhttp.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != stdhttp.StatusOK || string(body) != want {
			t.Fatalf("%s = %d %q, want 200 %q", path, resp.StatusCode, body, want)
		}
	}
}

func TestServeWSStreamsLeaderboard(t *testing.T) {
	service := newTestService()
	srv := httptest.NewServer(NewMux(NewMonitor(service)))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snapshot domain.Leaderboard
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("initial snapshot: %v", err)
	}
	if snapshot.Participants != 0 {
		t.Fatalf("expected empty standing on connect, got %+v", snapshot)
	}

	ctx := context.Background()
	if _, err := service.Begin(ctx, "u1", "Lina"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := service.SubmitAnswer(ctx, "u1", 1, "t"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	var update domain.Leaderboard
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("update after scored answer: %v", err)
	}
	if update.Participants != 1 || len(update.Rows) != 1 {
		t.Fatalf("unexpected update %+v", update)
	}
	if row := update.Rows[0]; row.UserID != "u1" || row.Correct != 1 || row.Percentage != 100 {
		t.Fatalf("unexpected row %+v", row)
	}
}
