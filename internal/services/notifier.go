package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/taleframe/taleframe-backend/internal/domain"
	"github.com/taleframe/taleframe-backend/internal/platform/envutil"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
	"github.com/taleframe/taleframe-backend/internal/repos"
)

const notifyTimeout = 5 * time.Second

// NotifyService assembles the per-scene rows of a finished pipeline into the
// downstream result document and delivers it with the service token. Delivery
// is attempted once; a non-2xx response is a failed delivery.
type NotifyService interface {
	Assemble(ctx context.Context, pipelineID string) (*domain.ResultDocument, error)
	NotifyCompleted(ctx context.Context, pipelineID string) error
}

type notifyService struct {
	log        *logger.Logger
	scenes     repos.SceneRepo
	httpClient *http.Client
	notifyURL  string
	token      string
}

func NewNotifyService(log *logger.Logger, scenes repos.SceneRepo) (NotifyService, error) {
	baseURL, err := envutil.Require("BASE_URL")
	if err != nil {
		return nil, err
	}
	endpoint, err := envutil.Require("NOTIFY_ENDPOINT")
	if err != nil {
		return nil, err
	}
	token, err := envutil.Require("SERVICE_TOKEN")
	if err != nil {
		return nil, err
	}
	return &notifyService{
		log:        log.With("service", "NotifyService"),
		scenes:     scenes,
		httpClient: &http.Client{Timeout: notifyTimeout},
		notifyURL:  baseURL + endpoint,
		token:      token,
	}, nil
}

func (s *notifyService) Assemble(ctx context.Context, pipelineID string) (*domain.ResultDocument, error) {
	rows, err := s.scenes.ListByPipeline(ctx, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("list scenes for %s: %w", pipelineID, err)
	}
	doc := &domain.ResultDocument{
		PipelineID: pipelineID,
		Status:     domain.ResultStatusCompleted,
		PageList:   make([]domain.ResultPage, 0, len(rows)),
	}
	for _, row := range rows {
		doc.PageList = append(doc.PageList, domain.PageFromScene(row))
	}
	return doc, nil
}

func (s *notifyService) NotifyCompleted(ctx context.Context, pipelineID string) error {
	doc, err := s.Assemble(ctx, pipelineID)
	if err != nil {
		return err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal result document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.notifyURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post result: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("downstream responded %d", resp.StatusCode)
	}
	s.log.Info("Result delivered", "pipeline_id", pipelineID, "pages", len(doc.PageList))
	return nil
}
