package processors

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/taleframe/taleframe-backend/internal/domain"
	"github.com/taleframe/taleframe-backend/internal/jobs/runtime"
	"github.com/taleframe/taleframe-backend/internal/platform/s3"
)

// imageMaker is the order-5 step: synthesize one PNG per scene, upload each
// under {pipeline_id}/scene_{n}.png and record the public URL. On success it
// enqueues the notify step itself; the generic successor rule treats it as
// terminal. The notify step therefore does not wait for the translation or
// emotion branches, so the delivered document may carry null columns for
// scenes whose branch writes have not committed yet. Known race; downstream
// tolerates null columns.
type imageMaker struct {
	client ImageGenerator
	bucket s3.BucketService
}

func NewImageMaker(client ImageGenerator, bucket s3.BucketService) runtime.Processor {
	return &imageMaker{client: client, bucket: bucket}
}

func (p *imageMaker) Order() int       { return domain.OrderImageMake }
func (p *imageMaker) Name() string     { return "image_make" }
func (p *imageMaker) NeedsStore() bool { return true }
func (p *imageMaker) Terminal() bool   { return true }

func (p *imageMaker) Run(ctx context.Context, payload, pipelineID string, stores *runtime.Stores) (string, error) {
	images, err := p.client.GenerateImages(ctx, pathImages, payload)
	if err != nil {
		return "", err
	}

	for i, img := range images {
		sceneNumber := i + 1
		key := s3.SceneKey(pipelineID, sceneNumber)
		url, err := p.bucket.UploadPNG(ctx, key, img)
		if err != nil {
			return "", fmt.Errorf("scene %d: %w", sceneNumber, err)
		}
		if err := stores.Scenes.PutImageURL(ctx, pipelineID, sceneNumber, url); err != nil {
			return "", fmt.Errorf("scene %d: record image url: %w", sceneNumber, err)
		}
	}

	err = stores.Tasks.Create(ctx, &domain.Task{
		StepID:     uuid.NewString(),
		PipelineID: pipelineID,
		Order:      domain.OrderNotify,
		Status:     domain.StatusQueued,
	})
	if err != nil {
		return "", fmt.Errorf("enqueue notify step: %w", err)
	}

	return "success", nil
}
