package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"DailyDigest/internal/config"
)

func testGeminiConfig(endpoint string) config.GeminiConfig {
	return config.GeminiConfig{
		Endpoint:        endpoint,
		Model:           "gemini-2.0-flash-exp",
		APIKey:          "test-key",
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 8192,
	}
}

func TestGenerateParsesCandidateText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.0-flash-exp:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 {
			t.Errorf("unexpected contents shape: %+v", req.Contents)
		}
		if req.GenerationConfig.Temperature != 0.7 || req.GenerationConfig.TopK != 40 {
			t.Errorf("sampling config not applied: %+v", req.GenerationConfig)
		}
		if req.GenerationConfig.MaxOutputTokens != 8192 {
			t.Errorf("unexpected token ceiling: %d", req.GenerationConfig.MaxOutputTokens)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{{"text": "# Daily AI News"}},
				},
			}},
		})
	}))
	defer server.Close()

	client := NewGeminiClient(testGeminiConfig(server.URL))
	digest, err := client.Generate(context.Background(), "summarize these")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if digest != "# Daily AI News" {
		t.Fatalf("unexpected digest: %q", digest)
	}
}

func TestGenerateSurfacesErrorBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGeminiClient(testGeminiConfig(server.URL))
	_, err := client.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected response body in error, got: %v", err)
	}
}

func TestGenerateRejectsMalformedShape(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	client := NewGeminiClient(testGeminiConfig(server.URL))
	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestGenerateRequiresCredentials(t *testing.T) {
	t.Parallel()

	cfg := testGeminiConfig("https://example.com")
	cfg.APIKey = ""
	client := NewGeminiClient(cfg)

	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
