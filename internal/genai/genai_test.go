package genai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type fakeChat struct {
	content  string
	err      error
	messages int
}

func (f *fakeChat) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.messages = len(params.Messages)
	if f.err != nil {
		return nil, f.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func TestClassifyReturnsContent(t *testing.T) {
	fake := &fakeChat{content: `{"intent": "book_appointment"}`}
	c := &Client{chat: fake, model: openai.ChatModelGPT4oMini}

	out, err := c.Classify(context.Background(), "book a meeting tomorrow at 3pm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"intent": "book_appointment"}` {
		t.Errorf("unexpected content %q", out)
	}
	if fake.messages != 2 {
		t.Errorf("expected system+user messages, got %d", fake.messages)
	}
}

func TestClassifyError(t *testing.T) {
	c := &Client{chat: &fakeChat{err: errors.New("boom")}, model: openai.ChatModelGPT4oMini}
	if _, err := c.Classify(context.Background(), "anything"); err == nil {
		t.Error("expected error, got nil")
	}
}

type emptyChat struct{}

func (emptyChat) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	return &openai.ChatCompletion{}, nil
}

func TestClassifyNoChoices(t *testing.T) {
	c := &Client{chat: emptyChat{}, model: openai.ChatModelGPT4oMini}
	if _, err := c.Classify(context.Background(), "anything"); err == nil {
		t.Error("expected error for empty choices, got nil")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error without API key, got nil")
	}
}

func TestNewClientWithOptions(t *testing.T) {
	c, err := NewClient(WithAPIKey("test-key"), WithModel("gpt-4o"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.model != "gpt-4o" {
		t.Errorf("expected model override, got %q", c.model)
	}
}
