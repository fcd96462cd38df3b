package worker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taleframe/taleframe-backend/internal/domain"
	"github.com/taleframe/taleframe-backend/internal/jobs/executor"
	"github.com/taleframe/taleframe-backend/internal/platform/envutil"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
	"github.com/taleframe/taleframe-backend/internal/repos"
)

// claimTimeout bounds each blocking pop so a stopping worker observes its
// context within one interval.
const claimTimeout = 5 * time.Second

// Worker runs a pool of stateless loops, each claiming one task at a time
// from the dispatch queue. A crashing processor fails its own task only; the
// loop carries on.
type Worker struct {
	log   *logger.Logger
	tasks repos.TaskRepo
	exec  *executor.Executor
}

func New(baseLog *logger.Logger, tasks repos.TaskRepo, exec *executor.Executor) *Worker {
	return &Worker{
		log:   baseLog.With("component", "Worker"),
		tasks: tasks,
		exec:  exec,
	}
}

// Start launches the worker pool and blocks until ctx is canceled and every
// loop has drained its in-flight task.
func (w *Worker) Start(ctx context.Context) error {
	concurrency := envutil.Int("WORKER_CONCURRENCY", 4)
	if concurrency < 1 {
		concurrency = 1
	}
	w.log.Info("Starting worker pool", "concurrency", concurrency)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		workerID := i + 1
		g.Go(func() error {
			w.runLoop(ctx, workerID)
			return nil
		})
	}
	return g.Wait()
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		default:
		}

		stepID, fields, err := w.tasks.ClaimNext(ctx, claimTimeout)
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info("Worker loop stopped", "worker_id", workerID)
				return
			}
			w.log.Warn("Claim failed", "worker_id", workerID, "error", err)
			time.Sleep(1 * time.Second)
			continue
		}
		if stepID == "" {
			continue
		}

		w.execute(ctx, workerID, stepID, fields)
	}
}

// execute isolates one task so a panicking processor cannot take the loop
// down with it.
func (w *Worker) execute(ctx context.Context, workerID int, stepID string, fields map[string]string) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Processor panic",
				"worker_id", workerID,
				"step_id", stepID,
				"panic", r,
			)
			_ = w.tasks.Complete(ctx, stepID, domain.StatusFailed, fmt.Sprintf("panic: %v", r))
		}
	}()
	w.exec.Execute(ctx, stepID, fields)
}
