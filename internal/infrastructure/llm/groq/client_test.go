package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkravets/studyassist/internal/core/domain"
)

func TestGenerateAnswerBuildsContextPrompt(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"the answer"}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "test-key", "llama-3.3-70b-versatile")
	answer, err := client.GenerateAnswer(context.Background(), "what is recursion?", []domain.ScoredChunk{
		{Source: "cs.pdf", Page: 7, Text: "recursion is self reference", Score: 2.5},
	}, "")
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if answer != "the answer" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if captured.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("expected default model, got %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[1].Content != "what is recursion?" {
		t.Fatalf("unexpected messages %+v", captured.Messages)
	}
	system := captured.Messages[0].Content
	if !strings.Contains(system, "[Source: cs.pdf p7]") || !strings.Contains(system, "recursion is self reference") {
		t.Fatalf("unexpected system prompt: %s", system)
	}
}

func TestGenerateAnswerFallsBackToDefaultModel(t *testing.T) {
	var models []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		models = append(models, req.Model)
		if req.Model == "retired-model" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":"model_decommissioned"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "key", "llama-3.3-70b-versatile")
	answer, err := client.GenerateAnswer(context.Background(), "q", nil, "retired-model")
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if answer != "ok" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if len(models) != 2 || models[0] != "retired-model" || models[1] != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected model sequence %v", models)
	}
}

func TestGenerateAnswerWrapsRetryableStatusAsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over capacity", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "key", "llama-3.3-70b-versatile")
	_, err := client.GenerateAnswer(context.Background(), "q", nil, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	if !strings.Contains(err.Error(), "over capacity") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestGenerateAnswerEmptyContextPromptMentionsNoText(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"no docs"}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "key", "m")
	if _, err := client.GenerateAnswer(context.Background(), "q", nil, ""); err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if !strings.Contains(captured.Messages[0].Content, "no readable text") {
		t.Fatalf("unexpected empty-context prompt: %s", captured.Messages[0].Content)
	}
}
