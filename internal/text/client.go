package text

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/DaanHessen/fanlife/internal/engine"
)

const (
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"
	defaultTimeout = 90 * time.Second
)

// Config configures the OpenAI-compatible client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client drafts fic bodies and reaction comments through a chat-completions
// API. It never retries; every failure comes back as *engine.GenerationError.
type Client struct {
	api   *openai.Client
	model string
	log   *zap.Logger
}

var _ engine.Ghostwriter = (*Client)(nil)

// New builds a client. A missing API key is a config failure.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &engine.GenerationError{Category: engine.GenConfig, Err: errors.New("no API key configured")}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Client{
		api:   openai.NewClientWithConfig(oc),
		model: cfg.Model,
		log:   log.Named("text"),
	}, nil
}

// DraftFic writes the body of a finished manuscript.
func (c *Client) DraftFic(ctx context.Context, req engine.DraftRequest) (string, error) {
	body, err := c.complete(ctx, callDraft, draftMessages(req), 0.9, 3000)
	if err != nil {
		return "", err
	}
	return body, nil
}

// ReactComments asks for req.Count short reactions, returned as a JSON array.
func (c *Client) ReactComments(ctx context.Context, req engine.ReactionRequest) ([]string, error) {
	raw, err := c.complete(ctx, callReact, reactionMessages(req), 1.0, 400)
	if err != nil {
		return nil, err
	}
	lines, err := parseComments(raw, req.Count)
	if err != nil {
		requestsTotal.WithLabelValues(callReact, string(engine.GenParse)).Inc()
		return nil, &engine.GenerationError{Category: engine.GenParse, Err: err}
	}
	return lines, nil
}

func (c *Client) complete(ctx context.Context, call string, msgs []openai.ChatCompletionMessage, temp float32, maxTokens int) (string, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: temp,
		MaxTokens:   maxTokens,
	})
	requestSeconds.WithLabelValues(call).Observe(time.Since(start).Seconds())
	if err != nil {
		ge := classify(err)
		requestsTotal.WithLabelValues(call, string(ge.Category)).Inc()
		c.log.Warn("chat completion failed", zap.String("call", call), zap.String("category", string(ge.Category)), zap.Error(err))
		return "", ge
	}
	if len(resp.Choices) == 0 {
		requestsTotal.WithLabelValues(call, string(engine.GenParse)).Inc()
		return "", &engine.GenerationError{Category: engine.GenParse, Err: errors.New("response has no choices")}
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		requestsTotal.WithLabelValues(call, string(engine.GenSafety)).Inc()
		return "", &engine.GenerationError{Category: engine.GenSafety, Err: errors.New("response blocked by content filter")}
	}
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		requestsTotal.WithLabelValues(call, string(engine.GenParse)).Inc()
		return "", &engine.GenerationError{Category: engine.GenParse, Err: errors.New("empty response")}
	}
	requestsTotal.WithLabelValues(call, "ok").Inc()
	c.log.Debug("chat completion", zap.String("call", call), zap.Int("tokens", resp.Usage.TotalTokens))
	return content, nil
}

// classify maps transport and API errors onto the generation categories.
func classify(err error) *engine.GenerationError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized,
			apiErr.HTTPStatusCode == http.StatusForbidden,
			apiErr.HTTPStatusCode == http.StatusPaymentRequired,
			apiErr.HTTPStatusCode == http.StatusNotFound:
			return &engine.GenerationError{Category: engine.GenConfig, Err: errors.Wrap(err, "api rejected credentials or model")}
		case isSafety(apiErr.Type, apiErr.Message, apiErr.Code):
			return &engine.GenerationError{Category: engine.GenSafety, Err: err}
		}
		return &engine.GenerationError{Category: engine.GenNetwork, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &engine.GenerationError{Category: engine.GenNetwork, Err: errors.Wrapf(err, "http %d", reqErr.HTTPStatusCode)}
	}
	return &engine.GenerationError{Category: engine.GenNetwork, Err: err}
}

func isSafety(typ, msg string, code any) bool {
	joined := strings.ToLower(typ + " " + msg)
	if s, ok := code.(string); ok {
		joined += " " + strings.ToLower(s)
	}
	for _, marker := range []string{"content_filter", "content filter", "safety", "content_policy", "moderation"} {
		if strings.Contains(joined, marker) {
			return true
		}
	}
	return false
}
