package processors

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taleframe/taleframe-backend/internal/domain"
	"github.com/taleframe/taleframe-backend/internal/jobs/runtime"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
)

func newTestModelClient(t *testing.T, handler http.HandlerFunc) *ModelClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	t.Setenv("MODEL_SERVER_URL", ts.URL)
	client, err := NewModelClient(logger.NewNop())
	if err != nil {
		t.Fatalf("NewModelClient: %v", err)
	}
	return client
}

func TestGeneratePostsInputAndReturnsOutput(t *testing.T) {
	var gotPath string
	var gotBody []byte
	client := newTestModelClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(generateResponse{Output: "once upon a time"})
	})

	out, err := client.Generate(context.Background(), "/story", "옛날 옛적에")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "once upon a time" {
		t.Fatalf("output = %q", out)
	}
	if gotPath != "/story" {
		t.Fatalf("posted to %q", gotPath)
	}
	var req generateRequest
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.Input != "옛날 옛적에" {
		t.Fatalf("input = %q", req.Input)
	}
}

func TestGenerateImagesDecodesBase64InOrder(t *testing.T) {
	first := []byte("png-bytes-1")
	second := []byte("png-bytes-2")
	client := newTestModelClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse{Images: []string{
			base64.StdEncoding.EncodeToString(first),
			base64.StdEncoding.EncodeToString(second),
		}})
	})

	images, err := client.GenerateImages(context.Background(), "/images", "prompts")
	if err != nil {
		t.Fatalf("GenerateImages: %v", err)
	}
	if len(images) != 2 || !bytes.Equal(images[0], first) || !bytes.Equal(images[1], second) {
		t.Fatalf("images = %v", images)
	}
}

func TestGenerateImagesRejectsBadEncoding(t *testing.T) {
	client := newTestModelClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse{Images: []string{"%%% not base64 %%%"}})
	})
	if _, err := client.GenerateImages(context.Background(), "/images", "prompts"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestGenerateFailsOnNon2xx(t *testing.T) {
	client := newTestModelClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	if _, err := client.Generate(context.Background(), "/story", "x"); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestTextProcessorForwardsPayloadToItsPath(t *testing.T) {
	cases := []struct {
		name     string
		build    func(TextGenerator) runtime.Processor
		wantPath string
		order    int
	}{
		{"translate_ko_en", NewKoEnTranslator, "/translate/ko-en", domain.OrderTranslateKoEn},
		{"story_write", NewStoryWriter, "/story", domain.OrderStoryWrite},
		{"scene_parse", NewSceneParser, "/scenes", domain.OrderSceneParse},
		{"prompt_make", NewPromptMaker, "/prompts", domain.OrderPromptMake},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeTextGenerator{prefix: "out:"}
			p := tc.build(gen)
			if p.Order() != tc.order {
				t.Fatalf("order = %d, want %d", p.Order(), tc.order)
			}
			if p.Name() != tc.name {
				t.Fatalf("name = %q, want %q", p.Name(), tc.name)
			}
			out, err := p.Run(context.Background(), "payload", "p1", nil)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if out != "out:payload" {
				t.Fatalf("result = %q", out)
			}
			if len(gen.calls) != 1 || gen.calls[0] != tc.wantPath {
				t.Fatalf("called %v, want [%s]", gen.calls, tc.wantPath)
			}
		})
	}
}
