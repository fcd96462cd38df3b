package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taleframe/taleframe-backend/internal/handlers"
	"github.com/taleframe/taleframe-backend/internal/platform/envutil"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
	"github.com/taleframe/taleframe-backend/internal/platform/redisdb"
	"github.com/taleframe/taleframe-backend/internal/repos"
	"github.com/taleframe/taleframe-backend/internal/server"
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

	rdb, err := redisdb.NewClient(log)
	if err != nil {
		log.Fatal("Could not connect to Redis", "error", err)
	}
	defer rdb.Close()

	taskRepo := repos.NewTaskRepo(rdb, log)
	launcher := services.NewLaunchService(log, taskRepo)
	pipelineHandler := handlers.NewPipelineHandler(log, launcher)

	router := server.NewRouter(server.RouterConfig{PipelineHandler: pipelineHandler})

	port := envutil.String("SERVER_PORT", "8000")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Ingress listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("Server exited with error", "error", err)
	}
	log.Info("Server stopped")
}
