package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/circuitbreaker"
)

var ErrEmptyReply = errors.New("provider returned no reply")

// ChatClient sends one user message to the chat-completion provider and
// returns its single text reply.
type ChatClient interface {
	Complete(ctx context.Context, message string) (*model.AssistantReply, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

type ProviderClient struct {
	http      *resty.Client
	model     string
	maxTokens int
	breaker   *circuitbreaker.CircuitBreaker
}

func NewProviderClient(cfg config.AssistantConfig) *ProviderClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &ProviderClient{
		http:      client,
		model:     cfg.Model,
		maxTokens: cfg.MaxReplyTokens,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "assistant-provider",
			MaxFailures: 5,
			Timeout:     cfg.Timeout,
		}),
	}
}

func (c *ProviderClient) Complete(ctx context.Context, message string) (*model.AssistantReply, error) {
	var reply *model.AssistantReply
	err := c.breaker.Execute(func() error {
		var err error
		reply, err = c.complete(ctx, message)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *ProviderClient) complete(ctx context.Context, message string) (*model.AssistantReply, error) {
	var result completionResponse
	var failure providerError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(completionRequest{
			Model:     c.model,
			Messages:  []chatMessage{{Role: "user", Content: message}},
			MaxTokens: c.maxTokens,
		}).
		SetResult(&result).
		SetError(&failure).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to call chat provider: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("chat provider returned %d: %s", resp.StatusCode(), failure.Error.Message)
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyReply
	}
	return &model.AssistantReply{
		Reply: result.Choices[0].Message.Content,
		Model: result.Model,
	}, nil
}
