package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
	"github.com/AdhiDevX369-work/doc-rag/internal/usecase/generate"
)

func TestGenerator_Complete(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []any{
				map[string]any{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": "Attention weighs token pairs."},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer server.Close()

	g := NewGenerator(&GeneratorConfig{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		Model:     "test-model",
		MaxTokens: 512,
		Logger:    zap.NewNop(),
	})

	answer, err := g.Complete(context.Background(), []generate.Message{
		{Role: generate.RoleSystem, Content: "You answer from provided context."},
		{Role: generate.RoleUser, Content: "What is attention?"},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if answer != "Attention weighs token pairs." {
		t.Errorf("answer = %q", answer)
	}
	if !strings.Contains(gotBody, `"role":"system"`) {
		t.Errorf("system role not forwarded: %s", gotBody)
	}
	if !strings.Contains(gotBody, "What is attention?") {
		t.Errorf("user content not forwarded: %s", gotBody)
	}
}

func TestGenerator_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "upstream unavailable", "type": "server_error"},
		})
	}))
	defer server.Close()

	g := NewGenerator(&GeneratorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := g.Complete(context.Background(), []generate.Message{
		{Role: generate.RoleUser, Content: "hi"},
	})
	if !errors.Is(err, domain.ErrGenerationProviderError) {
		t.Errorf("expected ErrGenerationProviderError, got %v", err)
	}
}

func TestGenerator_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object":  "chat.completion",
			"model":   "test-model",
			"choices": []any{},
		})
	}))
	defer server.Close()

	g := NewGenerator(&GeneratorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := g.Complete(context.Background(), []generate.Message{
		{Role: generate.RoleUser, Content: "hi"},
	})
	if !errors.Is(err, domain.ErrGenerationProviderError) {
		t.Errorf("expected ErrGenerationProviderError, got %v", err)
	}
}
