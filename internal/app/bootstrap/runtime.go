package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	blobadapter "github.com/scribeworks/notes-service/internal/adapters/blob"
	cacheadapter "github.com/scribeworks/notes-service/internal/adapters/cache"
	eventadapter "github.com/scribeworks/notes-service/internal/adapters/events"
	httpadapter "github.com/scribeworks/notes-service/internal/adapters/http"
	"github.com/scribeworks/notes-service/internal/adapters/postgres"
	"github.com/scribeworks/notes-service/internal/adapters/security"
	"github.com/scribeworks/notes-service/internal/application"
	"github.com/scribeworks/notes-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping notes service", "http_port", cfg.HTTPPort)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	avatars := blobadapter.NewS3Store(s3.NewFromConfig(awsCfg), cfg.AvatarBucket)

	tokenIssuer, err := security.NewJWTIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	repos := postgres.NewRepositories(pool)
	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			RefreshTokenTTL:      cfg.RefreshTokenTTL,
			FailedLoginThreshold: cfg.FailedThreshold,
			LockoutDuration:      cfg.LockoutDuration,
			AvatarMaxBytes:       cfg.AvatarMaxBytes,
		},
		Users:         repos.Users,
		Notes:         repos.Notes,
		Categories:    repos.Categories,
		Comments:      repos.Comments,
		LoginAttempts: repos.LoginAttempts,
		Outbox:        repos.Outbox,
		Lockouts:      cacheadapter.NewRedisLockoutStore(redisClient),
		Avatars:       avatars,
		Hasher:        security.NewBcryptHasher(cfg.BcryptCost),
		Tokens:        tokenIssuer,
		Logger:        logger,
	})

	handler := httpadapter.NewHandler(svc, cfg.RefreshTokenTTL, cfg.SecureCookies)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	var publisher ports.EventPublisher
	var closePublisher func() error
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, map[string]string{
			"user.registered": "notes.users",
			"user.deleted":    "notes.users",
			"note.created":    "notes.content",
			"comment.created": "notes.content",
		})
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init kafka publisher: %w", err)
		}
		publisher = kafkaPublisher
		closePublisher = kafkaPublisher.Close
	} else {
		logger.Warn("no kafka brokers configured; events go to the log only")
		publisher = eventadapter.NewLoggingPublisher(logger)
	}

	outbox := eventadapter.NewOutboxWorker(
		logger,
		repos.Outbox,
		publisher,
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
		cfg.OutboxMaxRetries,
	)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		outbox:     outbox,
		cleanupFn: func(ctx context.Context) {
			if closePublisher != nil {
				_ = closePublisher()
			}
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("outbox worker started")
	err := r.outbox.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return nil
}
