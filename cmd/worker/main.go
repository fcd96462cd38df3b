package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/taleframe/taleframe-backend/internal/db"
	"github.com/taleframe/taleframe-backend/internal/jobs/executor"
	"github.com/taleframe/taleframe-backend/internal/jobs/runtime"
	"github.com/taleframe/taleframe-backend/internal/jobs/worker"
	"github.com/taleframe/taleframe-backend/internal/platform/envutil"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
	"github.com/taleframe/taleframe-backend/internal/platform/redisdb"
	"github.com/taleframe/taleframe-backend/internal/platform/s3"
	"github.com/taleframe/taleframe-backend/internal/processors"
	"github.com/taleframe/taleframe-backend/internal/repos"
	"github.com/taleframe/taleframe-backend/internal/services"
)

func main() {
	envutil.LoadDotenv()

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := redisdb.NewClient(log)
	if err != nil {
		log.Fatal("Could not connect to Redis", "error", err)
	}
	defer rdb.Close()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Could not connect to Postgres", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}

	taskRepo := repos.NewTaskRepo(rdb, log)
	sceneRepo := repos.NewSceneRepo(postgresService.DB(), log)

	bucket, err := s3.NewBucketService(ctx, log)
	if err != nil {
		log.Fatal("Could not init BucketService", "error", err)
	}
	modelClient, err := processors.NewModelClient(log)
	if err != nil {
		log.Fatal("Could not init ModelClient", "error", err)
	}
	notifyService, err := services.NewNotifyService(log, sceneRepo)
	if err != nil {
		log.Fatal("Could not init NotifyService", "error", err)
	}

	registry := runtime.NewRegistry()
	if err := processors.RegisterAll(registry, log, modelClient, bucket, notifyService); err != nil {
		log.Fatal("Could not register processors", "error", err)
	}

	exec := executor.New(log, taskRepo, sceneRepo, registry)
	w := worker.New(log, taskRepo, exec)

	if err := w.Start(ctx); err != nil {
		log.Fatal("Worker pool exited with error", "error", err)
	}
	log.Info("Worker stopped")
}
