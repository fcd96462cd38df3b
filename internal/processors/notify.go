package processors

import (
	"context"

	"github.com/taleframe/taleframe-backend/internal/domain"
	"github.com/taleframe/taleframe-backend/internal/jobs/runtime"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
	"github.com/taleframe/taleframe-backend/internal/services"
)

// notifier is the order-6 step: assemble the pipeline's scene rows and POST
// them downstream. A failed delivery records "failed" as the task result;
// there is no retry either way.
type notifier struct {
	log    *logger.Logger
	notify services.NotifyService
}

func NewNotifier(log *logger.Logger, notify services.NotifyService) runtime.Processor {
	return &notifier{log: log.With("processor", "notify"), notify: notify}
}

func (p *notifier) Order() int       { return domain.OrderNotify }
func (p *notifier) Name() string     { return "notify" }
func (p *notifier) NeedsStore() bool { return true }
func (p *notifier) Terminal() bool   { return true }

func (p *notifier) Run(ctx context.Context, payload, pipelineID string, _ *runtime.Stores) (string, error) {
	if err := p.notify.NotifyCompleted(ctx, pipelineID); err != nil {
		p.log.Warn("Downstream delivery failed", "pipeline_id", pipelineID, "error", err)
		return "failed", nil
	}
	return "success", nil
}
