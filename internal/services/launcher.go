package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/taleframe/taleframe-backend/internal/domain"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
	"github.com/taleframe/taleframe-backend/internal/repos"
)

// LaunchService starts a pipeline run: it mints the root step id, writes the
// order-1 task record and pushes it onto the dispatch queue.
type LaunchService interface {
	Launch(ctx context.Context, pipelineID, payload string) (string, error)
}

type launchService struct {
	log   *logger.Logger
	tasks repos.TaskRepo
}

func NewLaunchService(log *logger.Logger, tasks repos.TaskRepo) LaunchService {
	return &launchService{
		log:   log.With("service", "LaunchService"),
		tasks: tasks,
	}
}

func (s *launchService) Launch(ctx context.Context, pipelineID, payload string) (string, error) {
	stepID := uuid.NewString()
	t := &domain.Task{
		StepID:     stepID,
		PipelineID: pipelineID,
		Order:      domain.OrderTranslateKoEn,
		Status:     domain.StatusQueued,
		Payload:    payload,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return "", err
	}
	s.log.Info("Pipeline launched", "pipeline_id", pipelineID, "step_id", stepID)
	return stepID, nil
}
