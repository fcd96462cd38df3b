package processors

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/taleframe/taleframe-backend/internal/platform/envutil"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
)

// TextGenerator invokes a text-producing model endpoint.
type TextGenerator interface {
	Generate(ctx context.Context, path, input string) (string, error)
}

// ImageGenerator invokes the image synthesis endpoint and returns one PNG per
// scene in scene order.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, path, input string) ([][]byte, error)
}

// ModelClient is the narrow HTTP interface to the model server that hosts
// every AI processor (translation, story, scene parsing, prompts, emotions,
// image synthesis). The processor call blocks for its duration; there is no
// client-side timeout beyond the caller's context.
type ModelClient struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
}

func NewModelClient(log *logger.Logger) (*ModelClient, error) {
	baseURL, err := envutil.Require("MODEL_SERVER_URL")
	if err != nil {
		return nil, err
	}
	return &ModelClient{
		log:        log.With("client", "ModelClient"),
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}, nil
}

type generateRequest struct {
	Input string `json:"input"`
}

type generateResponse struct {
	Output string   `json:"output"`
	Images []string `json:"images,omitempty"`
}

func (c *ModelClient) post(ctx context.Context, path, input string) (*generateResponse, error) {
	body, err := json.Marshal(generateRequest{Input: input})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model server %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("model server %s: read body: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("model server %s responded %d", path, resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("model server %s: decode response: %w", path, err)
	}
	return &out, nil
}

func (c *ModelClient) Generate(ctx context.Context, path, input string) (string, error) {
	out, err := c.post(ctx, path, input)
	if err != nil {
		return "", err
	}
	return out.Output, nil
}

func (c *ModelClient) GenerateImages(ctx context.Context, path, input string) ([][]byte, error) {
	out, err := c.post(ctx, path, input)
	if err != nil {
		return nil, err
	}
	images := make([][]byte, 0, len(out.Images))
	for i, enc := range out.Images {
		img, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("decode image %d: %w", i+1, err)
		}
		images = append(images, img)
	}
	return images, nil
}
