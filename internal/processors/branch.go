package processors

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taleframe/taleframe-backend/internal/domain"
	"github.com/taleframe/taleframe-backend/internal/jobs/runtime"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
)

// storyTranslator is the order-31 branch: translate each scene's English
// story back to Korean and commit it to the scene store. Items are processed
// independently; a failing item does not stop the rest, and the whole-task
// status reflects the last item's outcome.
type storyTranslator struct {
	log    *logger.Logger
	client TextGenerator
}

func NewStoryTranslator(log *logger.Logger, client TextGenerator) runtime.Processor {
	return &storyTranslator{log: log.With("processor", "translate_en_ko"), client: client}
}

func (p *storyTranslator) Order() int       { return domain.OrderTranslateEnKo }
func (p *storyTranslator) Name() string     { return "translate_en_ko" }
func (p *storyTranslator) NeedsStore() bool { return true }
func (p *storyTranslator) Terminal() bool   { return true }

func (p *storyTranslator) Run(ctx context.Context, payload, pipelineID string, stores *runtime.Stores) (string, error) {
	var items []domain.SceneStoryItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return "", fmt.Errorf("parse translation payload: %w", err)
	}

	translated := make([]domain.SceneStoryItem, 0, len(items))
	var lastErr error
	for _, item := range items {
		lastErr = nil
		storyKo, err := p.client.Generate(ctx, pathTranslateEnKo, item.Story)
		if err != nil {
			p.log.Warn("Scene translation failed", "pipeline_id", pipelineID, "scene", item.SceneNumber, "error", err)
			lastErr = err
			continue
		}
		if err := stores.Scenes.PutStory(ctx, pipelineID, item.SceneNumber, storyKo); err != nil {
			p.log.Warn("Scene story write failed", "pipeline_id", pipelineID, "scene", item.SceneNumber, "error", err)
			lastErr = err
			continue
		}
		translated = append(translated, domain.SceneStoryItem{SceneNumber: item.SceneNumber, Story: storyKo})
	}
	if lastErr != nil {
		return "", lastErr
	}

	out, err := json.Marshal(translated)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// moodClassifier is the order-32 branch: classify each scene's mood and
// commit the mood to the scene store. The classifier output is returned as
// the task result; the stored column keeps the parser's mood label.
type moodClassifier struct {
	log    *logger.Logger
	client TextGenerator
}

func NewMoodClassifier(log *logger.Logger, client TextGenerator) runtime.Processor {
	return &moodClassifier{log: log.With("processor", "emotion_classify"), client: client}
}

func (p *moodClassifier) Order() int       { return domain.OrderEmotionClassify }
func (p *moodClassifier) Name() string     { return "emotion_classify" }
func (p *moodClassifier) NeedsStore() bool { return true }
func (p *moodClassifier) Terminal() bool   { return true }

type sceneEmotion struct {
	SceneNumber int    `json:"scene_number"`
	Emotion     string `json:"emotion"`
}

func (p *moodClassifier) Run(ctx context.Context, payload, pipelineID string, stores *runtime.Stores) (string, error) {
	var items []domain.SceneMoodItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return "", fmt.Errorf("parse emotion payload: %w", err)
	}

	emotions := make([]sceneEmotion, 0, len(items))
	var lastErr error
	for _, item := range items {
		lastErr = nil
		emotion, err := p.client.Generate(ctx, pathEmotion, item.Mood)
		if err != nil {
			p.log.Warn("Emotion classification failed", "pipeline_id", pipelineID, "scene", item.SceneNumber, "error", err)
			lastErr = err
			continue
		}
		if err := stores.Scenes.PutMood(ctx, pipelineID, item.SceneNumber, item.Mood); err != nil {
			p.log.Warn("Scene mood write failed", "pipeline_id", pipelineID, "scene", item.SceneNumber, "error", err)
			lastErr = err
			continue
		}
		emotions = append(emotions, sceneEmotion{SceneNumber: item.SceneNumber, Emotion: emotion})
	}
	if lastErr != nil {
		return "", lastErr
	}

	out, err := json.Marshal(emotions)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
