package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trivia-proof-service/internal/app"
	"trivia-proof-service/internal/config"
	"trivia-proof-service/internal/infra/memory"
	pgstore "trivia-proof-service/internal/infra/postgres"
	redisstore "trivia-proof-service/internal/infra/redis"
	"trivia-proof-service/internal/logger"
	"trivia-proof-service/internal/metrics"
	transport "trivia-proof-service/internal/transport/http"
	"trivia-proof-service/internal/trivia"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz verification server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	metrics.Register(prometheus.DefaultRegisterer)
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	service := app.NewQuizService(
		questionStore(cfg, pool, redisClient),
		submissionLog(pool),
		scoreLedger(pool, redisClient),
		trivia.NewClient(
			cfg.Trivia.BaseURL,
			config.TTLDuration(cfg.Trivia.Timeout, 10*time.Second),
			config.TTLDuration(cfg.Trivia.MinInterval, 5*time.Second),
		),
		serviceOptions(cfg, redisClient, log)...,
	)
	router := transport.NewRouter(transport.NewHandler(service, log))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting trivia proof service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// questionStore prefers Postgres for durability and fronts it with Redis when configured.
func questionStore(cfg config.Config, pool *pgxpool.Pool, client *redis.Client) app.QuestionStore {
	var store app.QuestionStore = memory.NewQuestionStore()
	if pool != nil {
		store = pgstore.NewQuestionStore(pool)
	}
	if client != nil {
		store = redisstore.NewQuestionCache(client, store, config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute))
	}
	return store
}

func submissionLog(pool *pgxpool.Pool) app.SubmissionLog {
	if pool != nil {
		return pgstore.NewSubmissionLog(pool)
	}
	return memory.NewSubmissionLog()
}

func scoreLedger(pool *pgxpool.Pool, client *redis.Client) app.ScoreLedger {
	switch {
	case pool != nil:
		return pgstore.NewScoreLedger(pool)
	case client != nil:
		return redisstore.NewScoreLedger(client)
	default:
		return memory.NewScoreLedger()
	}
}

func serviceOptions(cfg config.Config, client *redis.Client, log *zap.Logger) []app.Option {
	opts := []app.Option{app.WithLogger(log)}
	if !cfg.RejectDuplicates() {
		return opts
	}
	if client != nil {
		// Claims outlive any realistic session; 0 would keep them forever.
		return append(opts, app.WithGuard(redisstore.NewSubmissionGuard(client, config.TTLDuration(cfg.Redis.TTL, 24*time.Hour))))
	}
	log.Warn("duplicate rejection is per-instance without redis")
	return append(opts, app.WithGuard(memory.NewSubmissionGuard()))
}
