package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/sydlabs/noteseek/internal/domain"
)

// openaiChatResponse mirrors the OpenAI-compatible chat completion response.
type openaiChatResponse struct {
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func newTestGenerator(serverURL string) *Generator {
	return NewGenerator(&GeneratorConfig{
		APIKey:   "test-key",
		BaseURL:  serverURL,
		Model:    "test-chat-model",
		Provider: "test",
		Logger:   zap.NewNop(),
	})
}

func chatResponse(content string, prompt, completion int) openaiChatResponse {
	resp := openaiChatResponse{Object: "chat.completion", Model: "test-chat-model"}
	resp.Choices = append(resp.Choices, struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	}{
		Message: struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{Role: "assistant", Content: content},
		FinishReason: "stop",
	})
	resp.Usage.PromptTokens = prompt
	resp.Usage.CompletionTokens = completion
	resp.Usage.TotalTokens = prompt + completion
	return resp
}

func TestGenerator_Generate(t *testing.T) {
	var gotPrompt string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		gotPrompt = req.Messages[0].Content

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("这是总结内容", 120, 45))
	}))
	defer server.Close()

	gen := newTestGenerator(server.URL)

	result, err := gen.Generate(context.Background(), "总结以下笔记")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if gotPrompt != "总结以下笔记" {
		t.Errorf("prompt = %q", gotPrompt)
	}
	if result.Text != "这是总结内容" {
		t.Errorf("text = %q", result.Text)
	}
	if result.PromptTokens != 120 || result.CompletionTokens != 45 || result.TotalTokens != 165 {
		t.Errorf("usage = %d/%d/%d", result.PromptTokens, result.CompletionTokens, result.TotalTokens)
	}
}

func TestGenerator_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openaiChatResponse{Object: "chat.completion"})
	}))
	defer server.Close()

	gen := newTestGenerator(server.URL)

	_, err := gen.Generate(context.Background(), "prompt")
	if !errors.Is(err, domain.ErrGenerationProviderError) {
		t.Fatalf("error = %v, want ErrGenerationProviderError", err)
	}
}

func TestGenerator_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "model overloaded",
				"type":    "server_error",
			},
		})
	}))
	defer server.Close()

	gen := newTestGenerator(server.URL)

	_, err := gen.Generate(context.Background(), "prompt")
	if !errors.Is(err, domain.ErrGenerationProviderError) {
		t.Fatalf("error = %v, want ErrGenerationProviderError", err)
	}
}

func TestGenerator_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	gen := newTestGenerator(server.URL)

	_, err := gen.Generate(context.Background(), "prompt")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
}
