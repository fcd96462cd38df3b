package processors

import (
	"github.com/taleframe/taleframe-backend/internal/jobs/runtime"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
	"github.com/taleframe/taleframe-backend/internal/platform/s3"
	"github.com/taleframe/taleframe-backend/internal/services"
)

// RegisterAll wires the full step set into the registry. The registry is
// immutable once this returns.
func RegisterAll(
	reg *runtime.Registry,
	log *logger.Logger,
	client *ModelClient,
	bucket s3.BucketService,
	notify services.NotifyService,
) error {
	all := []runtime.Processor{
		NewKoEnTranslator(client),
		NewStoryWriter(client),
		NewSceneParser(client),
		NewPromptMaker(client),
		NewImageMaker(client, bucket),
		NewStoryTranslator(log, client),
		NewMoodClassifier(log, client),
		NewNotifier(log, notify),
	}
	for _, p := range all {
		if err := reg.Register(p); err != nil {
			return err
		}
	}
	return nil
}
