// Package genai provides the LLM-backed intent classification port using the OpenAI API.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// classifierPrompt instructs the model to emit a single JSON object so the
// engine can parse the intent deterministically.
const classifierPrompt = `You are an intent classifier for a calendar scheduling assistant.
Classify the user's message into exactly one of these intents:
find_event, book_appointment, check_availability, cancel_appointment, reschedule_appointment, general_inquiry.
Respond with a single JSON object of the form {"intent": "<intent>"} and nothing else.`

// chatService is the minimal chat-completion surface we consume, kept small
// so tests can substitute a fake.
type chatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Client wraps the OpenAI chat completion service for intent classification.
type Client struct {
	chat  chatService
	model openai.ChatModel
}

// Opts holds configuration for the GenAI client.
type Opts struct {
	APIKey string
	Model  string
}

// Option configures the GenAI client.
type Option func(*Opts)

// WithAPIKey overrides the API key read from the environment.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the default chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// NewClient initializes a GenAI client. The API key falls back to the
// OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	model := openai.ChatModelGPT4oMini
	if cfg.Model != "" {
		model = openai.ChatModel(cfg.Model)
	}
	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	slog.Debug("genai.NewClient: client created", "model", model)
	return &Client{chat: &cli.Chat.Completions, model: model}, nil
}

// Classify sends the utterance to the model and returns the raw completion
// text. Parsing the intent out of the response, including the fallback for
// malformed output, is the dialogue engine's responsibility.
func (c *Client) Classify(ctx context.Context, utterance string) (string, error) {
	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifierPrompt),
			openai.UserMessage(utterance),
		},
	})
	if err != nil {
		slog.Error("genai.Classify: completion failed", "error", err)
		return "", fmt.Errorf("intent classification failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("genai.Classify: no choices returned")
		return "", fmt.Errorf("no choices returned")
	}
	content := resp.Choices[0].Message.Content
	slog.Debug("genai.Classify: completion received", "contentLength", len(content))
	return content, nil
}
