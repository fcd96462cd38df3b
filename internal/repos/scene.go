package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taleframe/taleframe-backend/internal/domain"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
)

// SceneRepo is the scene store. Each upsert finds-or-creates the row keyed by
// (pipeline_id, scene_number) and mutates only its own column inside a
// transaction; the three branches write disjoint columns so they may land in
// any order.
type SceneRepo interface {
	PutStory(ctx context.Context, pipelineID string, sceneNumber int, story string) error
	PutMood(ctx context.Context, pipelineID string, sceneNumber int, mood string) error
	PutImageURL(ctx context.Context, pipelineID string, sceneNumber int, url string) error
	ListByPipeline(ctx context.Context, pipelineID string) ([]*domain.SceneResult, error)
}

type sceneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSceneRepo(db *gorm.DB, baseLog *logger.Logger) SceneRepo {
	return &sceneRepo{
		db:  db,
		log: baseLog.With("repo", "SceneRepo"),
	}
}

func (r *sceneRepo) PutStory(ctx context.Context, pipelineID string, sceneNumber int, story string) error {
	return r.upsertColumn(ctx, pipelineID, sceneNumber, "scene_story", story)
}

func (r *sceneRepo) PutMood(ctx context.Context, pipelineID string, sceneNumber int, mood string) error {
	return r.upsertColumn(ctx, pipelineID, sceneNumber, "mood", mood)
}

func (r *sceneRepo) PutImageURL(ctx context.Context, pipelineID string, sceneNumber int, url string) error {
	return r.upsertColumn(ctx, pipelineID, sceneNumber, "scene_image_url", url)
}

func (r *sceneRepo) upsertColumn(ctx context.Context, pipelineID string, sceneNumber int, column string, value string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row domain.SceneResult
		err := tx.Where("pipeline_id = ? AND scene_number = ?", pipelineID, sceneNumber).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = domain.SceneResult{
				PipelineID:  pipelineID,
				SceneNumber: sceneNumber,
				CreatedAt:   time.Now().UTC(),
			}
			setColumn(&row, column, value)
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&domain.SceneResult{}).
			Where("pipeline_id = ? AND scene_number = ?", pipelineID, sceneNumber).
			Update(column, value).Error
	})
}

func setColumn(row *domain.SceneResult, column, value string) {
	v := value
	switch column {
	case "scene_story":
		row.SceneStory = &v
	case "mood":
		row.Mood = &v
	case "scene_image_url":
		row.SceneImageURL = &v
	}
}

func (r *sceneRepo) ListByPipeline(ctx context.Context, pipelineID string) ([]*domain.SceneResult, error) {
	var out []*domain.SceneResult
	err := r.db.WithContext(ctx).
		Where("pipeline_id = ?", pipelineID).
		Order("scene_number ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
