// Package llm wraps Genkit model calls behind a small completion client.
//
// Every model call in the application (planning, per-tool summarization,
// final synthesis) goes through Client.Complete, which applies a call
// timeout, proactive rate limiting, and a bounded retry with exponential
// backoff for transient provider failures. Malformed responses are never
// retried here; structural fallbacks belong to the caller.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"
)

// Sentinel errors classifying completion failures.
var (
	// ErrModelTimeout indicates the model call exceeded its deadline.
	ErrModelTimeout = errors.New("model call timed out")

	// ErrModelRateLimited indicates the provider rejected the call for quota reasons.
	ErrModelRateLimited = errors.New("model call rate limited")

	// ErrEmptyResponse indicates the model returned no usable text.
	ErrEmptyResponse = errors.New("model returned empty response")
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is a single conversation turn passed as model context.
type Message struct {
	Role    Role
	Content string
}

// Request describes one completion call.
type Request struct {
	// Model is the provider-qualified model name (e.g., "googleai/gemini-2.5-flash").
	Model string

	// System is the system prompt. Optional.
	System string

	// History is prior conversation context, oldest first. Optional.
	History []Message

	// Prompt is the user-role input for this call. Required.
	Prompt string
}

// RetryConfig configures the retry behavior for model calls.
type RetryConfig struct {
	MaxRetries      int           // Maximum number of retry attempts after the first try
	InitialInterval time.Duration // Initial backoff interval
	MaxInterval     time.Duration // Maximum backoff interval
}

// DefaultRetryConfig returns the default retry policy: a single retry
// with backoff, matching the call sites' transient-failure budget.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      1,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

// DefaultCallTimeout bounds a single completion attempt.
const DefaultCallTimeout = 60 * time.Second

// Config contains the parameters for Client.
type Config struct {
	Genkit      *genkit.Genkit
	Logger      *slog.Logger
	Retry       RetryConfig   // zero value uses DefaultRetryConfig
	CallTimeout time.Duration // zero value uses DefaultCallTimeout
	RateLimiter *rate.Limiter // nil = default 5 req/s, burst 10
}

// Client executes completion requests against Genkit-registered models.
// Safe for concurrent use.
type Client struct {
	g           *genkit.Genkit
	logger      *slog.Logger
	retry       RetryConfig
	callTimeout time.Duration
	limiter     *rate.Limiter
}

// New creates a completion client.
func New(cfg Config) (*Client, error) {
	if cfg.Genkit == nil {
		return nil, errors.New("genkit instance is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	retry := cfg.Retry
	if retry.MaxRetries == 0 && retry.InitialInterval == 0 {
		retry = DefaultRetryConfig()
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = rate.NewLimiter(5, 10)
	}

	return &Client{
		g:           cfg.Genkit,
		logger:      cfg.Logger,
		retry:       retry,
		callTimeout: timeout,
		limiter:     limiter,
	}, nil
}

// Complete executes the request and returns the model's text output.
// Transient failures (timeout, 429, 5xx) are retried once with backoff;
// any other failure is returned immediately.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}
	if req.Model == "" {
		return "", errors.New("model must not be empty")
	}

	var lastErr error
	delay := c.retry.InitialInterval
	start := time.Now()

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		// Rate limit each attempt, retries included.
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}

		text, err := c.generate(ctx, req)
		if err == nil {
			c.logger.Debug("completion succeeded",
				"model", req.Model,
				"attempts", attempt+1,
				"elapsed", time.Since(start),
			)
			return text, nil
		}

		lastErr = err

		if !retryableError(err) {
			return "", err
		}

		if attempt == c.retry.MaxRetries {
			break
		}

		c.logger.Debug("retrying model call",
			"model", req.Model,
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context canceled during retry: %w", ctx.Err())
		case <-time.After(delay):
			delay = min(delay*2, c.retry.MaxInterval)
		}
	}

	return "", fmt.Errorf("model call after %d retries (elapsed %v): %w",
		c.retry.MaxRetries, time.Since(start), lastErr)
}

// generate performs a single Genkit generation attempt under the call timeout.
func (c *Client) generate(ctx context.Context, req Request) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	messages := make([]*ai.Message, 0, len(req.History)+1)
	for _, m := range req.History {
		switch m.Role {
		case RoleModel:
			messages = append(messages, ai.NewModelMessage(ai.NewTextPart(m.Content)))
		default:
			messages = append(messages, ai.NewUserMessage(ai.NewTextPart(m.Content)))
		}
	}
	messages = append(messages, ai.NewUserMessage(ai.NewTextPart(req.Prompt)))

	opts := []ai.GenerateOption{
		ai.WithModelName(req.Model),
		ai.WithMessages(messages...),
	}
	if req.System != "" {
		opts = append(opts, ai.WithSystem(req.System))
	}

	resp, err := genkit.Generate(callCtx, c.g, opts...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrModelTimeout, err)
		}
		if containsAny(err.Error(), "rate limit", "quota exceeded", "429") {
			return "", fmt.Errorf("%w: %v", ErrModelRateLimited, err)
		}
		return "", fmt.Errorf("generate: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
