package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iyhunko/product-catalog/internal/apperr"
	"github.com/iyhunko/product-catalog/internal/config"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	dependencyName = "generation"

	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
	maxResponseBytes        = 1 << 20
	temperature             = 0.8
)

// ErrNotConfigured is returned when no generation service is wired.
var ErrNotConfigured = errors.New("generation service not configured")

// Client calls an OpenAI compatible chat completion endpoint.
// Calls are rate limited and guarded by a circuit breaker; nothing is retried.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	rateLimiter *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[string]
}

// NewClient creates a new chat completion client.
func NewClient(conf config.Generation) *Client {
	burst := int(conf.RatePerSec)
	if burst < 1 {
		burst = 1
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "generation",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Client{
		httpClient: &http.Client{
			Timeout: conf.Timeout,
		},
		baseURL:     strings.TrimSuffix(conf.APIURL, "/"),
		apiKey:      conf.APIKey,
		model:       conf.Model,
		rateLimiter: rate.NewLimiter(rate.Limit(conf.RatePerSec), burst),
		breaker:     breaker,
	}
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
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends one chat completion request and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	content, err := c.breaker.Execute(func() (string, error) {
		return c.complete(ctx, systemPrompt, userPrompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", apperr.Upstream(dependencyName, "complete", err)
		}
		return "", err
	}
	return content, nil
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// local OpenAI-compatible servers run without a key
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Upstream(dependencyName, "complete", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", apperr.Upstream(dependencyName, "read response", err)
	}

	var parsed chatResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg += ": " + parsed.Error.Message
		}
		return "", apperr.Upstream(dependencyName, "complete", errors.New(msg))
	}
	if decodeErr != nil {
		return "", apperr.Upstream(dependencyName, "decode response", decodeErr)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}

	return parsed.Choices[0].Message.Content, nil
}
