package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// ErrEmptyCompletion is returned when the model answers with an empty body.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Request describes a single completion request. SystemPrompt is only
// honored by conversational models; completion-style models receive the
// raw Prompt and nothing else.
type Request struct {
	Model           string
	SystemPrompt    string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int32
}

// Completer is the capability interface shared by the conversational and
// completion-style invocation variants.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Client talks to the Gemini API. It is constructed once at startup with a
// validated credential and injected wherever completions are needed.
type Client struct {
	chat completer
	text completer
}

type completer interface {
	complete(ctx context.Context, req Request) (string, error)
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("llm: missing API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Client{
		chat: &chatCompleter{client: client},
		text: &textCompleter{client: client},
	}, nil
}

// Complete dispatches the request to the invocation variant registered for
// the model. Unknown models fall back to the completion-style variant.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if KindOf(req.Model) == KindChat {
		return c.chat.complete(ctx, req)
	}
	return c.text.complete(ctx, req)
}

// chatCompleter performs a two-message exchange: the system prompt as the
// chat's system instruction, the prompt as the single user message.
type chatCompleter struct {
	client *genai.Client
}

func (c *chatCompleter) complete(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxOutputTokens,
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	chat, err := c.client.Chats.Create(ctx, req.Model, cfg, nil)
	if err != nil {
		return "", fmt.Errorf("creating chat: %w", err)
	}
	resp, err := chat.SendMessage(ctx, genai.Part{Text: req.Prompt})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// textCompleter sends the prompt as-is. The system prompt is ignored, which
// is the documented behavior for non-conversational models.
type textCompleter struct {
	client *genai.Client
}

func (c *textCompleter) complete(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxOutputTokens,
	}
	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
