package executor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/taleframe/taleframe-backend/internal/domain"
	"github.com/taleframe/taleframe-backend/internal/jobs/runtime"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
	"github.com/taleframe/taleframe-backend/internal/repos"
)

// Executor runs one claimed task to its terminal status and emits whatever
// successor tasks the step graph calls for. Every failure path marks the task
// failed and returns; nothing propagates across tasks.
type Executor struct {
	log      *logger.Logger
	tasks    repos.TaskRepo
	scenes   repos.SceneRepo
	registry *runtime.Registry
}

func New(baseLog *logger.Logger, tasks repos.TaskRepo, scenes repos.SceneRepo, registry *runtime.Registry) *Executor {
	return &Executor{
		log:      baseLog.With("component", "StepExecutor"),
		tasks:    tasks,
		scenes:   scenes,
		registry: registry,
	}
}

// Execute processes one claimed task. fields is the raw record as read from
// the task store; validation happens here, not in the repo, so a malformed
// record can still be marked failed by step id.
func (e *Executor) Execute(ctx context.Context, stepID string, fields map[string]string) {
	for _, f := range domain.RequiredTaskFields {
		if _, ok := fields[f]; !ok {
			e.log.Warn("Task record missing required field", "step_id", stepID, "field", f)
			e.fail(ctx, stepID, fmt.Errorf("missing required field %q", f))
			return
		}
	}

	if err := e.tasks.MarkProcessing(ctx, stepID); err != nil {
		e.log.Error("Failed to mark task processing", "step_id", stepID, "error", err)
		return
	}

	order, err := strconv.Atoi(fields[domain.TaskFieldOrder])
	if err != nil {
		e.fail(ctx, stepID, fmt.Errorf("non-integer order %q", fields[domain.TaskFieldOrder]))
		return
	}
	pipelineID := fields[domain.TaskFieldPipelineID]
	payload := fields[domain.TaskFieldPayload]

	p, ok := e.registry.Get(order)
	if !ok {
		e.log.Warn("No processor registered for order", "step_id", stepID, "order", order)
		e.fail(ctx, stepID, fmt.Errorf("unknown order %d", order))
		return
	}

	var stores *runtime.Stores
	if p.NeedsStore() {
		stores = &runtime.Stores{Tasks: e.tasks, Scenes: e.scenes}
	}

	result, err := p.Run(ctx, payload, pipelineID, stores)
	if err != nil {
		e.log.Warn("Processor failed", "step_id", stepID, "processor", p.Name(), "error", err)
		e.fail(ctx, stepID, err)
		return
	}

	if err := e.tasks.Complete(ctx, stepID, domain.StatusDone, result); err != nil {
		e.log.Error("Failed to record task result", "step_id", stepID, "error", err)
		return
	}
	e.log.Info("Step done", "step_id", stepID, "pipeline_id", pipelineID, "processor", p.Name())

	switch {
	case order == domain.OrderSceneParse:
		if err := e.fanOut(ctx, pipelineID, order, result); err != nil {
			e.log.Error("Fan-out after scene parse failed", "step_id", stepID, "pipeline_id", pipelineID, "error", err)
		}
	case p.Terminal():
		// No queued successor; branches converge in the scene store.
	default:
		if err := e.enqueueSuccessor(ctx, pipelineID, order+1, result); err != nil {
			e.log.Error("Failed to enqueue successor", "step_id", stepID, "order", order+1, "error", err)
		}
	}
}

func (e *Executor) enqueueSuccessor(ctx context.Context, pipelineID string, order int, payload string) error {
	return e.tasks.Create(ctx, &domain.Task{
		StepID:     uuid.NewString(),
		PipelineID: pipelineID,
		Order:      order,
		Status:     domain.StatusQueued,
		Payload:    payload,
	})
}

func (e *Executor) fail(ctx context.Context, stepID string, cause error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if err := e.tasks.Complete(ctx, stepID, domain.StatusFailed, msg); err != nil {
		e.log.Error("Failed to mark task failed", "step_id", stepID, "error", err)
	}
}
