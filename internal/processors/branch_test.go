package processors

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taleframe/taleframe-backend/internal/domain"
	"github.com/taleframe/taleframe-backend/internal/jobs/runtime"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
	"github.com/taleframe/taleframe-backend/internal/repos"
)

// fakeTextGenerator answers by path with a canned transform and can be told
// to fail on a specific input.
type fakeTextGenerator struct {
	prefix string
	failOn string
	calls  []string
}

func (f *fakeTextGenerator) Generate(_ context.Context, path, input string) (string, error) {
	f.calls = append(f.calls, path)
	if input == f.failOn {
		return "", errors.New("model unavailable")
	}
	return f.prefix + input, nil
}

func newTestStores(t *testing.T) *runtime.Stores {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&domain.SceneResult{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &runtime.Stores{Scenes: repos.NewSceneRepo(gdb, logger.NewNop())}
}

func storyPayload(t *testing.T, items []domain.SceneStoryItem) string {
	t.Helper()
	raw, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return string(raw)
}

func TestStoryTranslatorWritesTranslatedStories(t *testing.T) {
	gen := &fakeTextGenerator{prefix: "ko:"}
	stores := newTestStores(t)
	proc := NewStoryTranslator(logger.NewNop(), gen)

	payload := storyPayload(t, []domain.SceneStoryItem{
		{SceneNumber: 1, Story: "first scene"},
		{SceneNumber: 2, Story: "second scene"},
	})
	result, err := proc.Run(context.Background(), payload, "p1", stores)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var translated []domain.SceneStoryItem
	if err := json.Unmarshal([]byte(result), &translated); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(translated) != 2 || translated[0].Story != "ko:first scene" {
		t.Fatalf("result = %+v", translated)
	}

	rows, err := stores.Scenes.ListByPipeline(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ListByPipeline: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1].SceneStory == nil || *rows[1].SceneStory != "ko:second scene" {
		t.Fatalf("scene 2 story = %v", rows[1].SceneStory)
	}
	for _, path := range gen.calls {
		if path != "/translate/en-ko" {
			t.Fatalf("called %q, want /translate/en-ko", path)
		}
	}
}

func TestStoryTranslatorKeepsGoingPastFailedItem(t *testing.T) {
	gen := &fakeTextGenerator{prefix: "ko:", failOn: "bad scene"}
	stores := newTestStores(t)
	proc := NewStoryTranslator(logger.NewNop(), gen)

	payload := storyPayload(t, []domain.SceneStoryItem{
		{SceneNumber: 1, Story: "bad scene"},
		{SceneNumber: 2, Story: "good scene"},
	})
	result, err := proc.Run(context.Background(), payload, "p1", stores)
	if err != nil {
		t.Fatalf("Run: %v (last item succeeded)", err)
	}

	var translated []domain.SceneStoryItem
	if err := json.Unmarshal([]byte(result), &translated); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(translated) != 1 || translated[0].SceneNumber != 2 {
		t.Fatalf("result = %+v", translated)
	}

	rows, err := stores.Scenes.ListByPipeline(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ListByPipeline: %v", err)
	}
	if len(rows) != 1 || rows[0].SceneNumber != 2 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestStoryTranslatorFailsWhenLastItemFails(t *testing.T) {
	gen := &fakeTextGenerator{prefix: "ko:", failOn: "bad scene"}
	stores := newTestStores(t)
	proc := NewStoryTranslator(logger.NewNop(), gen)

	payload := storyPayload(t, []domain.SceneStoryItem{
		{SceneNumber: 1, Story: "good scene"},
		{SceneNumber: 2, Story: "bad scene"},
	})
	if _, err := proc.Run(context.Background(), payload, "p1", stores); err == nil {
		t.Fatal("expected error when the last item fails")
	}

	// Scene 1 was still committed before the failure.
	rows, err := stores.Scenes.ListByPipeline(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ListByPipeline: %v", err)
	}
	if len(rows) != 1 || rows[0].SceneNumber != 1 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestStoryTranslatorRejectsMalformedPayload(t *testing.T) {
	proc := NewStoryTranslator(logger.NewNop(), &fakeTextGenerator{})
	if _, err := proc.Run(context.Background(), "not json", "p1", newTestStores(t)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMoodClassifierStoresParserMoodAndReturnsEmotion(t *testing.T) {
	gen := &fakeTextGenerator{prefix: "emotion:"}
	stores := newTestStores(t)
	proc := NewMoodClassifier(logger.NewNop(), gen)

	payload, err := json.Marshal([]domain.SceneMoodItem{
		{SceneNumber: 1, Mood: "고요함"},
		{SceneNumber: 2, Mood: "긴장감"},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	result, err := proc.Run(context.Background(), string(payload), "p1", stores)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var emotions []sceneEmotion
	if err := json.Unmarshal([]byte(result), &emotions); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(emotions) != 2 || emotions[0].Emotion != "emotion:고요함" {
		t.Fatalf("result = %+v", emotions)
	}

	rows, err := stores.Scenes.ListByPipeline(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ListByPipeline: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// The stored column keeps the parser's label, not the classifier output.
	if rows[0].Mood == nil || *rows[0].Mood != "고요함" {
		t.Fatalf("scene 1 mood = %v", rows[0].Mood)
	}
	for _, path := range gen.calls {
		if path != "/emotions" {
			t.Fatalf("called %q, want /emotions", path)
		}
	}
}

func TestMoodClassifierWithEmptyPayload(t *testing.T) {
	stores := newTestStores(t)
	proc := NewMoodClassifier(logger.NewNop(), &fakeTextGenerator{})

	result, err := proc.Run(context.Background(), "[]", "p1", stores)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result != "[]" {
		t.Fatalf("result = %q, want []", result)
	}
}
