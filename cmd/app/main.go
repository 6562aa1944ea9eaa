package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-api/internal/auth"
	"github.com/BuzzLyutic/planner-api/internal/config"
	"github.com/BuzzLyutic/planner-api/internal/handler"
	"github.com/BuzzLyutic/planner-api/internal/mail"
	"github.com/BuzzLyutic/planner-api/internal/prefs"
	"github.com/BuzzLyutic/planner-api/internal/repo"
	"github.com/BuzzLyutic/planner-api/internal/service"
	"github.com/BuzzLyutic/planner-api/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Only board preferences live in redis; tasks and notes keep working without it.
		logger.Warn("redis unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	tasks := repo.NewTaskRepo(pool)
	notes := repo.NewNoteRepo(pool)
	links := repo.NewLinkRepo(pool)
	mails := repo.NewMailRepo(pool)

	mailSvc := service.NewMailSyncService(
		mail.NewClient(cfg.GraphBaseURL, nil), tasks, mails, mails, cfg.SyncInterval, logger,
	)
	svc := handler.Services{
		Tasks: service.NewTaskService(tasks),
		Notes: service.NewNoteService(notes),
		Links: service.NewLinkService(links, tasks, notes),
		Board: service.NewBoardService(tasks, notes, prefs.NewStore(rdb, logger)),
		Mail:  mailSvc,

		InboundSigningKey: cfg.InboundSigningKey,
	}

	workers := worker.NewPool(mailSvc, logger, cfg.WorkerCount, cfg.PollInterval)
	workers.Start(ctx)

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(svc, auth.New(cfg.JWTSecret), logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr), zap.Int("workers", cfg.WorkerCount))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	cancel()
	workers.Stop()
	logger.Info("server stopped")
}
