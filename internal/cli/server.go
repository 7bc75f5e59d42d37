package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"quiz-live-service/internal/app"
	"quiz-live-service/internal/config"
	"quiz-live-service/internal/infra/memory"
	natsjournal "quiz-live-service/internal/infra/nats"
	pgstore "quiz-live-service/internal/infra/postgres"
	infraredis "quiz-live-service/internal/infra/redis"
	transport "quiz-live-service/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings := engineSettings(cfg)
	clock := clockwork.NewRealClock()

	var store app.QuizStore
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = pgstore.NewQuizStore(pool)
		logger.Info().Msg("quiz store: postgres")
	} else {
		store = memory.NewQuizStore(demoQuizzes(clock.Now())...)
		logger.Info().Msg("quiz store: in-memory with demo quizzes")
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var (
		quizzes interface {
			app.QuizRepository
			app.QuizInvalidator
		}
		rooms   app.RoomRepository
		journal app.MultiJournal
	)
	if redisClient != nil {
		quizzes = infraredis.NewQuizRepository(redisClient, store, quizTTL)
		rooms = infraredis.NewRoomStore(redisClient, settings.Retention)
		journal = append(journal, infraredis.NewJournal(redisClient, cfg.Redis.JournalLimit))
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("quiz cache and room codes: redis")
	} else {
		quizzes = memory.NewQuizRepository(store, quizTTL, memory.WithClock(clock))
		rooms = memory.NewRoomStore()
	}

	if cfg.NATS.URL != "" {
		nj, err := natsjournal.Connect(natsjournal.Config{
			URL:           cfg.NATS.URL,
			SubjectPrefix: cfg.NATS.SubjectPrefix,
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		}, logger)
		if err != nil {
			return err
		}
		defer nj.Close()
		journal = append(journal, nj)
		logger.Info().Str("url", cfg.NATS.URL).Msg("journal: nats")
	}

	opts := []app.Option{
		app.WithClock(clock),
		app.WithLogger(logger.With().Str("component", "engine").Logger()),
		app.WithSettings(settings),
	}
	if len(journal) > 0 {
		opts = append(opts, app.WithJournal(journal))
	}
	engine := app.NewEngine(rooms, quizzes, opts...)
	catalog := app.NewQuizCatalog(store, quizzes, engine, clock)

	handler := transport.NewRouter(engine, catalog, transport.RouterConfig{
		Keepalive:      config.Duration(cfg.Server.Keepalive, transport.DefaultKeepalive),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Clock:          clock,
		Logger:         logger.With().Str("component", "http").Logger(),
	})

	addr := ":" + listenPort(portFlag, cfg.Server.Port)
	// no WriteTimeout: event streams stay open for the whole game
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return engine.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// closing rooms ends open streams so Shutdown does not wait on them
		engine.Shutdown()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func engineSettings(cfg config.Config) app.Settings {
	def := app.DefaultSettings()
	return app.Settings{
		Retention:        config.Duration(cfg.Engine.Retention, def.Retention),
		SweepInterval:    config.Duration(cfg.Engine.SweepInterval, def.SweepInterval),
		AnswerGrace:      config.Duration(cfg.Engine.AnswerGrace, def.AnswerGrace),
		MaxParticipants:  config.Int(cfg.Engine.MaxParticipants, def.MaxParticipants),
		SubscriberBuffer: config.Int(cfg.Engine.SubscriberBuffer, def.SubscriberBuffer),
		JournalBuffer:    config.Int(cfg.Engine.JournalBuffer, def.JournalBuffer),
	}
}

func listenPort(flag, configured string) string {
	if flag != "" {
		return flag
	}
	if configured != "" {
		return configured
	}
	return "8080"
}
