package groq

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mkravets/studyassist/internal/core/domain"
	"github.com/mkravets/studyassist/internal/infrastructure/resilience"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

type Client struct {
	baseURL      string
	apiKey       string
	defaultModel string
	httpClient   *http.Client
	executor     *resilience.Executor
}

type Option func(*Client)

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) {
		c.executor = executor
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(baseURL, apiKey, defaultModel string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		defaultModel: defaultModel,
		httpClient:   &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateAnswer asks the chat completions endpoint with the retrieved
// context baked into the prompt. An explicitly requested model that the
// provider no longer serves falls back to the configured default.
func (c *Client) GenerateAnswer(ctx context.Context, question string, chunks []domain.ScoredChunk, model string) (string, error) {
	if strings.TrimSpace(model) == "" {
		model = c.defaultModel
	}

	text, err := c.chatCompletion(ctx, question, chunks, model)
	if err != nil && model != c.defaultModel && isModelError(err) {
		text, err = c.chatCompletion(ctx, question, chunks, c.defaultModel)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("generate answer", err)
	}
	return text, nil
}

func (c *Client) chatCompletion(ctx context.Context, question string, chunks []domain.ScoredChunk, model string) (string, error) {
	request := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: buildSystemPrompt(chunks)},
			{Role: "user", Content: question},
		},
		Temperature: 0.2,
	}

	var response chatResponse
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/chat/completions", request, &response, "chat")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "groq.chat", call, classifyGroqError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", &HTTPStatusError{Operation: "chat", StatusCode: http.StatusOK, Status: "200 OK", Body: "empty choices"}
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
