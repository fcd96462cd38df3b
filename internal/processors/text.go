package processors

import (
	"context"

	"github.com/taleframe/taleframe-backend/internal/domain"
	"github.com/taleframe/taleframe-backend/internal/jobs/runtime"
)

// Model server endpoint paths, one per processor variant.
const (
	pathTranslateKoEn = "/translate/ko-en"
	pathTranslateEnKo = "/translate/en-ko"
	pathStoryWrite    = "/story"
	pathSceneParse    = "/scenes"
	pathPromptMake    = "/prompts"
	pathEmotion       = "/emotions"
	pathImages        = "/images"
)

// textProcessor covers the pure spine steps (orders 1-4): the payload goes to
// a model endpoint, the response body becomes the task result and the next
// step's payload.
type textProcessor struct {
	order  int
	name   string
	path   string
	client TextGenerator
}

func (p *textProcessor) Order() int       { return p.order }
func (p *textProcessor) Name() string     { return p.name }
func (p *textProcessor) NeedsStore() bool { return false }
func (p *textProcessor) Terminal() bool   { return false }

func (p *textProcessor) Run(ctx context.Context, payload, pipelineID string, _ *runtime.Stores) (string, error) {
	return p.client.Generate(ctx, p.path, payload)
}

func NewKoEnTranslator(client TextGenerator) runtime.Processor {
	return &textProcessor{order: domain.OrderTranslateKoEn, name: "translate_ko_en", path: pathTranslateKoEn, client: client}
}

func NewStoryWriter(client TextGenerator) runtime.Processor {
	return &textProcessor{order: domain.OrderStoryWrite, name: "story_write", path: pathStoryWrite, client: client}
}

func NewSceneParser(client TextGenerator) runtime.Processor {
	return &textProcessor{order: domain.OrderSceneParse, name: "scene_parse", path: pathSceneParse, client: client}
}

func NewPromptMaker(client TextGenerator) runtime.Processor {
	return &textProcessor{order: domain.OrderPromptMake, name: "prompt_make", path: pathPromptMake, client: client}
}
