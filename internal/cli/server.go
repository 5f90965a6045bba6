package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"math-quiz-bot/internal/app"
	"math-quiz-bot/internal/config"
	"math-quiz-bot/internal/domain"
	"math-quiz-bot/internal/infra/csvfile"
	"math-quiz-bot/internal/infra/images"
	"math-quiz-bot/internal/infra/jsonfile"
	"math-quiz-bot/internal/infra/memory"
	pgloader "math-quiz-bot/internal/infra/postgres"
	redisstats "math-quiz-bot/internal/infra/redis"
	transport "math-quiz-bot/internal/transport/http"
	"math-quiz-bot/internal/transport/telegram"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

// NewStartCmd builds the CLI subcommand to start the bot.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), *configPath, *port)
		},
	}
}

func runBot(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	token := cfg.Telegram.Token
	if env := os.Getenv("TELEGRAM_TOKEN"); env != "" {
		token = env
	}
	// The only unrecoverable startup condition: without a credential no
	// event loop can begin.
	if token == "" {
		return fmt.Errorf("telegram token not configured (set telegram.token or TELEGRAM_TOKEN)")
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	threshold := cfg.AnswerKey.TFThreshold
	syntheticSize := cfg.AnswerKey.SyntheticSize
	if syntheticSize <= 0 {
		syntheticSize = 45
	}

	var loader memory.KeyLoader
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgloader.NewKeyLoader(pool, threshold)
	case cfg.AnswerKey.CSVPath != "":
		loader = csvfile.NewKeyLoader(cfg.AnswerKey.CSVPath, threshold)
	default:
		log.Printf("no answer key source configured, using synthetic key")
		loader = memory.NewStaticKeyLoader(domain.SyntheticKey(syntheticSize, threshold))
	}
	keyTTL := config.Duration(cfg.AnswerKey.TTL, 0)
	keys := memory.NewKeyRepository(
		memory.NewFallbackKeyLoader(loader, syntheticSize, threshold), keyTTL)

	var stats app.StatsRepository
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		stats = redisstats.NewStatsStore(client)
	} else {
		statsPath := cfg.Stats.Path
		if statsPath == "" {
			statsPath = "data.json"
		}
		stats = jsonfile.NewStatsStore(statsPath)
	}

	imagesDir := cfg.Images.BaseDir
	if imagesDir == "" {
		imagesDir = "images"
	}
	resolver := images.NewResolver(imagesDir, nil)

	service := app.NewQuizService(memory.NewSessionStore(), keys, stats, resolver, app.Options{
		DetailCap: cfg.Quiz.DetailCap,
		TopN:      cfg.Quiz.TopN,
	})

	tb, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: newPoller(cfg),
		OnError: func(err error, c telebot.Context) {
			log.Printf("telegram: %v", err)
		},
	})
	if err != nil {
		return err
	}
	bot := telegram.New(tb, service, config.Duration(cfg.Quiz.Pacing, time.Second))

	monitor := transport.NewMonitor(service)
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewMux(monitor),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		log.Printf("starting monitor server on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start monitor server: %v", err)
		}
	}()
	go transport.KeepAlive(runCtx, cfg.Server.PublicURL, 5*time.Minute)
	go func() {
		log.Printf("starting telegram bot")
		bot.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down...")
	}

	bot.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

func newPoller(cfg config.Config) telebot.Poller {
	if cfg.Telegram.WebhookURL != "" {
		listen := cfg.Telegram.Listen
		if listen == "" {
			listen = ":8443"
		}
		return &telebot.Webhook{
			Listen:   listen,
			Endpoint: &telebot.WebhookEndpoint{PublicURL: cfg.Telegram.WebhookURL},
		}
	}
	return &telebot.LongPoller{
		Timeout: config.Duration(cfg.Telegram.PollTimeout, 10*time.Second),
	}
}
