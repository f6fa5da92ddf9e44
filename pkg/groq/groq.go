// Package groq provides the text-generation capability backed by Groq's
// OpenAI-compatible chat completion API.
package groq

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"

	contractx "github.com/careerninja/learntube/agent/contract"
)

type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.groq.com/openai/v1"`
	APIKey      string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model       string        `envconfig:"MODEL" split_words:"true" default:"llama-3.1-8b-instant"`
	MaxTokens   int           `envconfig:"MAX_TOKENS" split_words:"true" default:"900"`
	Temperature float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// Client implements contract.Generator.
type Client struct {
	api   openaisdk.Client
	model string
	cfg   Config
}

var _ contractx.Generator = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("groq api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{
		api:   openaisdk.NewClient(opts...),
		model: strings.TrimSpace(cfg.Model),
		cfg:   cfg,
	}, nil
}

func MustNew(cfg Config) *Client {
	c, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// Generate runs one chat completion. Context deadlines are honored by the
// underlying SDK; a deadline hit surfaces as a transient failure for the
// calling agent's own retry policy.
func (c *Client) Generate(ctx context.Context, prompt string, opts contractx.GenerateOptions) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: empty prompt", contractx.ErrGenerationFailed)
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = c.cfg.Temperature
	}

	params := openaisdk.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		MaxTokens:   openaisdk.Int(int64(maxTokens)),
		Temperature: openaisdk.Float(temperature),
	}
	if len(opts.StopSequences) > 0 {
		params.Stop = openaisdk.ChatCompletionNewParamsStopUnion{
			OfStringArray: opts.StopSequences,
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Debug().Err(err).Str("model", c.model).Msg("groq completion failed")
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: generation timed out", contractx.ErrTransientIO)
		}
		return "", fmt.Errorf("%w: %v", contractx.ErrTransientIO, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", contractx.ErrGenerationFailed)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
