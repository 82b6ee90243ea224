package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/blogspace/patientzero/internal/logging"
)

// ErrEmptyCompletion is returned when the model answers with no content.
var ErrEmptyCompletion = errors.New("llm returned an empty completion")

// CompletionRequest is one JSON-mode chat completion.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int64
}

// Completer runs chat completions. *LLMClient implements it; tests use fakes.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// LLMConfig configures an OpenAI-compatible endpoint such as Groq.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// FailureThreshold consecutive failures open the breaker for OpenTimeout.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// LLMClient sends completions through a circuit breaker so an unavailable
// provider fails fast instead of holding request goroutines.
type LLMClient struct {
	client  openai.Client
	model   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[string]
}

// NewLLMClient builds a client for cfg.
func NewLLMClient(cfg LLMConfig) *LLMClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &LLMClient{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		breaker: newBreaker(cfg),
	}
}

func newBreaker(cfg LLMConfig) *gobreaker.CircuitBreaker[string] {
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("LLM circuit breaker changed state")
		},
	})
}

// breakerSuccess keeps caller cancellations from counting against the
// provider. Per-call deadlines still count as failures.
func breakerSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

func (c *LLMClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return c.breaker.Execute(func() (string, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: shared.ChatModel(c.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(req.System),
				openai.UserMessage(req.User),
			},
			Temperature: openai.Float(req.Temperature),
			MaxTokens:   openai.Int(req.MaxTokens),
			TopP:        openai.Float(0.9),
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
		})
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return "", ErrEmptyCompletion
		}
		return resp.Choices[0].Message.Content, nil
	})
}
