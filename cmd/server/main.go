package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedbackhub-backend/internal/auth"
	"feedbackhub-backend/internal/config"
	"feedbackhub-backend/internal/database"
	"feedbackhub-backend/internal/handlers"
	"feedbackhub-backend/internal/notify"
	"feedbackhub-backend/internal/ratelimiter"
	"feedbackhub-backend/internal/repository"
	"feedbackhub-backend/internal/service"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

// NewLogger creates a console zap logger with colored levels.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(os.Stdout), lvl)
	return zap.New(core).Sugar(), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Invalid LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}

	os.Exit(finish(logger, run(cfg, logger)))
}

// finish logs why the server stopped and flushes the logger. It returns the
// process exit code.
func finish(logger *zap.SugaredLogger, err error) int {
	code := 0
	if err != nil {
		logger.Errorw("server stopped", "error", err)
		code = 1
	} else {
		logger.Info("server stopped")
	}
	_ = logger.Sync()
	return code
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	gate, err := auth.NewGate(auth.Config{
		Username:     cfg.Admin.Username,
		Password:     cfg.Admin.Password,
		PasswordHash: cfg.Admin.PasswordHash,
		Secret:       cfg.JWT.Secret,
		Issuer:       cfg.JWT.Issuer,
		TokenTTL:     cfg.JWT.TokenTTL,
	})
	if err != nil {
		return err
	}

	notifier := notify.Multi{notify.NewLogNotifier(logger)}
	if cfg.EmailEnabled() {
		notifier = append(notifier, notify.NewEmailNotifier(cfg.Notify.ResendAPIKey, cfg.Notify.FromEmail, cfg.Notify.To, logger))
		logger.Infow("email notifications enabled", "to", cfg.Notify.To)
	}

	svc := service.NewFeedbackService(store, gate, notifier, logger)

	limiter := ratelimiter.NewTokenBucketLimiter(ratelimiter.Config{
		RequestsPerTimeFrame: cfg.RateLimit.PerMinute,
		TimeFrame:            time.Minute,
		Burst:                cfg.RateLimit.Burst,
		Enabled:              cfg.RateLimit.Enabled,
	})

	mux := handlers.NewRouter(
		handlers.RouterConfig{AllowedOrigins: cfg.Server.CORSOrigins, LoginLimiter: limiter, AccessLog: true},
		handlers.NewAuthHandler(gate, logger),
		handlers.NewFeedbackHandler(svc, logger),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Infow("🚀 feedbackhub backend starting", "addr", srv.Addr, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gCtx.Done()
		logger.Infow("shutting down", "reason", context.Cause(gCtx))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		limiter.Run(gCtx.Done())
		return nil
	})

	return group.Wait()
}

// openStore connects the configured feedback store. The returned func releases it.
func openStore(cfg *config.Config, logger *zap.SugaredLogger) (service.FeedbackStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		if cfg.Store.MigrationsEnabled {
			if err := database.Migrate(cfg.Store.PostgresDSN); err != nil {
				return nil, nil, err
			}
			logger.Info("✅ migrations applied")
		}
		pool, err := database.NewPostgres(cfg.Store.PostgresDSN, int32(cfg.Store.PostgresMaxConns))
		if err != nil {
			return nil, nil, err
		}
		logger.Info("✅ connected to postgres")
		return repository.NewPostgresRepo(pool), pool.Close, nil

	case config.StoreMemory:
		logger.Warn("⚠️  using in-memory store, feedback is lost on restart")
		return repository.NewMemoryRepo(), func() {}, nil

	default:
		if err := database.Connect(cfg.Store.MongoURI, cfg.Store.DBName); err != nil {
			return nil, nil, err
		}
		logger.Infow("✅ connected to mongo", "db", cfg.Store.DBName)

		feedbackRepo := repository.NewFeedbackRepo()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := feedbackRepo.EnsureIndexes(ctx); err != nil {
			logger.Warnw("⚠️  failed to create feedback indexes", "error", err)
		}

		return feedbackRepo, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.Disconnect(ctx); err != nil {
				logger.Errorw("mongo disconnect", "error", err)
			}
		}, nil
	}
}
