package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/taleframe/taleframe-backend/internal/domain"
)

// fanOut splits the scene-parse result into the three successor tasks: the
// image spine keeps the verbatim parser output, the two branches get disjoint
// per-scene projections. All three carry the parent's pipeline id and are
// enqueued before returning; their relative execution order is unconstrained.
func (e *Executor) fanOut(ctx context.Context, pipelineID string, parentOrder int, result string) error {
	var doc domain.SceneDocument
	if err := json.Unmarshal([]byte(result), &doc); err != nil {
		return fmt.Errorf("parse scene document: %w", err)
	}

	if err := e.enqueueSuccessor(ctx, pipelineID, parentOrder+1, result); err != nil {
		return fmt.Errorf("enqueue image spine: %w", err)
	}

	storyItems := make([]domain.SceneStoryItem, 0, len(doc.Scenes))
	for _, scene := range doc.Scenes {
		storyItems = append(storyItems, domain.SceneStoryItem{
			SceneNumber: scene.SceneNumber,
			Story:       scene.Story,
		})
	}
	storyPayload, err := json.Marshal(storyItems)
	if err != nil {
		return fmt.Errorf("marshal translation payload: %w", err)
	}
	if err := e.enqueueSuccessor(ctx, pipelineID, branchOrder(parentOrder, 1), string(storyPayload)); err != nil {
		return fmt.Errorf("enqueue translation branch: %w", err)
	}

	moodItems := make([]domain.SceneMoodItem, 0, len(doc.Scenes))
	for _, scene := range doc.Scenes {
		moodItems = append(moodItems, domain.SceneMoodItem{
			SceneNumber: scene.SceneNumber,
			Mood:        scene.Mood,
		})
	}
	moodPayload, err := json.Marshal(moodItems)
	if err != nil {
		return fmt.Errorf("marshal emotion payload: %w", err)
	}
	if err := e.enqueueSuccessor(ctx, pipelineID, branchOrder(parentOrder, 2), string(moodPayload)); err != nil {
		return fmt.Errorf("enqueue emotion branch: %w", err)
	}

	return nil
}

// branchOrder appends the branch digit to the parent order: 3,1 -> 31.
func branchOrder(parentOrder, branch int) int {
	n, _ := strconv.Atoi(fmt.Sprintf("%d%d", parentOrder, branch))
	return n
}
