package repos

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taleframe/taleframe-backend/internal/domain"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
)

const (
	taskKeyPrefix = "task:"
	queueKey      = "task_queue"
)

func taskKey(stepID string) string { return taskKeyPrefix + stepID }

// TaskRepo is the task store: one hash per step at task:{step_id} plus the
// task_queue list (LPUSH head, BRPOP tail). The record write precedes the
// enqueue, so the worst failure mode is a dangling record that is never
// dispatched.
type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	// ClaimNext blocks up to timeout on the queue tail. A drained timeout
	// returns ("", nil, nil) so callers can re-check their context.
	ClaimNext(ctx context.Context, timeout time.Duration) (string, map[string]string, error)
	MarkProcessing(ctx context.Context, stepID string) error
	SetStatus(ctx context.Context, stepID string, status domain.Status) error
	// Complete writes the terminal status and the result in one update.
	Complete(ctx context.Context, stepID string, status domain.Status, result string) error
	Read(ctx context.Context, stepID string) (map[string]string, error)
}

type taskRepo struct {
	rdb *goredis.Client
	log *logger.Logger
}

func NewTaskRepo(rdb *goredis.Client, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{
		rdb: rdb,
		log: baseLog.With("repo", "TaskRepo"),
	}
}

func (r *taskRepo) Create(ctx context.Context, t *domain.Task) error {
	if t == nil || t.StepID == "" {
		return fmt.Errorf("task requires a step id")
	}
	status := t.Status
	if status == "" {
		status = domain.StatusQueued
	}
	err := r.rdb.HSet(ctx, taskKey(t.StepID), map[string]interface{}{
		domain.TaskFieldStatus:     string(status),
		domain.TaskFieldPayload:    t.Payload,
		domain.TaskFieldPipelineID: t.PipelineID,
		domain.TaskFieldOrder:      strconv.Itoa(t.Order),
		domain.TaskFieldStepID:     t.StepID,
	}).Err()
	if err != nil {
		return fmt.Errorf("write task record: %w", err)
	}
	if err := r.rdb.LPush(ctx, queueKey, t.StepID).Err(); err != nil {
		return fmt.Errorf("enqueue step: %w", err)
	}
	r.log.Debug("Task enqueued", "step_id", t.StepID, "pipeline_id", t.PipelineID, "order", t.Order)
	return nil
}

func (r *taskRepo) ClaimNext(ctx context.Context, timeout time.Duration) (string, map[string]string, error) {
	res, err := r.rdb.BRPop(ctx, timeout, queueKey).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("pop queue: %w", err)
	}
	if len(res) != 2 {
		return "", nil, fmt.Errorf("unexpected BRPOP reply of %d elements", len(res))
	}
	stepID := res[1]
	fields, err := r.rdb.HGetAll(ctx, taskKey(stepID)).Result()
	if err != nil {
		return "", nil, fmt.Errorf("read task record %s: %w", stepID, err)
	}
	return stepID, fields, nil
}

func (r *taskRepo) MarkProcessing(ctx context.Context, stepID string) error {
	return r.rdb.HSet(ctx, taskKey(stepID), domain.TaskFieldStatus, string(domain.StatusProcessing)).Err()
}

func (r *taskRepo) SetStatus(ctx context.Context, stepID string, status domain.Status) error {
	return r.rdb.HSet(ctx, taskKey(stepID), domain.TaskFieldStatus, string(status)).Err()
}

func (r *taskRepo) Complete(ctx context.Context, stepID string, status domain.Status, result string) error {
	if status != domain.StatusDone && status != domain.StatusFailed {
		return fmt.Errorf("complete requires a terminal status, got %q", status)
	}
	return r.rdb.HSet(ctx, taskKey(stepID), map[string]interface{}{
		domain.TaskFieldStatus: string(status),
		domain.TaskFieldResult: result,
	}).Err()
}

func (r *taskRepo) Read(ctx context.Context, stepID string) (map[string]string, error) {
	return r.rdb.HGetAll(ctx, taskKey(stepID)).Result()
}
