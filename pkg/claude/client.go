package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/xrsl/texcv/pkg/llm"
)

const (
	ProviderName = "anthropic"
	DefaultModel = "claude-sonnet-4"
	APIKeyEnv    = "ANTHROPIC_API_KEY"
)

var SupportedModels = []string{
	"claude-sonnet-4",
	"claude-sonnet-4-5",
	"claude-opus-4",
	"claude-opus-4-5",
	"claude-haiku-4-5",
}

// Map friendly model names to Anthropic model IDs
var modelMapping = map[string]string{
	"claude-sonnet-4":   "claude-sonnet-4-20250514",
	"claude-sonnet-4-5": "claude-sonnet-4-5-20250929",
	"claude-opus-4":     "claude-opus-4-20250514",
	"claude-opus-4-5":   "claude-opus-4-5-20251101",
	"claude-haiku-4-5":  "claude-haiku-4-5-20251001",
}

func IsModelSupported(model string) bool {
	for _, m := range SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}

// ResolveModel maps a friendly name to its model ID; unknown names pass through.
func ResolveModel(model string) string {
	if model == "" {
		model = DefaultModel
	}
	if id, ok := modelMapping[model]; ok {
		return id
	}
	return model
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
}

type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s environment variable not set: %w", APIKeyEnv, llm.ErrMissingCredential)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}

	// One best-effort call per prompt; callers fall back on failure.
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &Client{
		client:    anthropic.NewClient(reqOpts...),
		model:     ResolveModel(opts.Model),
		maxTokens: opts.MaxTokens,
	}, nil
}

func (c *Client) Name() string  { return ProviderName }
func (c *Client) Model() string { return c.model }

// formatAPIError converts API errors to user-friendly messages
func formatAPIError(err error, model string) error {
	if err == nil {
		return nil
	}
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication_error"):
		return fmt.Errorf("claude API error: invalid API key. Check %s environment variable", APIKeyEnv)
	case strings.Contains(errStr, "403") || strings.Contains(errStr, "permission_denied"):
		return fmt.Errorf("claude API error: key does not have access to model %q", model)
	case strings.Contains(errStr, "404") || strings.Contains(errStr, "not_found"):
		return fmt.Errorf("claude API error: model %q not found", model)
	case strings.Contains(errStr, "rate_limit"):
		return fmt.Errorf("claude API error: rate limit exceeded for model %q", model)
	case strings.Contains(errStr, "overloaded") || strings.Contains(errStr, "529"):
		return fmt.Errorf("claude API error: service overloaded")
	default:
		return fmt.Errorf("claude API error: %w", err)
	}
}

// Complete sends prompt as a single user message.
func (c *Client) Complete(ctx context.Context, prompt string) (llm.Completion, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return llm.Completion{}, formatAPIError(err, c.model)
	}

	usage := &llm.Usage{
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return llm.Completion{Text: block.Text, Usage: usage}, nil
		}
	}

	return llm.Completion{Usage: usage}, llm.ErrEmptyCompletion
}

func (c *Client) Close() {
	// No cleanup needed for HTTP client
}
