// Package openai talks to OpenAI and OpenAI-compatible chat completion APIs.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/xrsl/texcv/pkg/llm"
)

const (
	ProviderName       = "openai"
	CustomProviderName = "custom"
	DefaultModel       = "gpt-4o"
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultEndpoint    = "/chat/completions"
	APIKeyEnv          = "OPENAI_API_KEY"
	CustomAPIKeyEnv    = "CUSTOM_API_KEY"
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	Provider     string // ProviderName or CustomProviderName
	APIKey       string
	Model        string
	MaxTokens    int
	BaseURL      string
	EndpointPath string // custom endpoints only
	Timeout      time.Duration
}

type Client struct {
	client    *goopenai.Client
	provider  string
	model     string
	maxTokens int
}

func NewClient(opts Options) (*Client, error) {
	if opts.Provider == "" {
		opts.Provider = ProviderName
	}
	keyEnv := APIKeyEnv
	if opts.Provider == CustomProviderName {
		keyEnv = CustomAPIKeyEnv
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("custom provider requires a base URL")
		}
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s environment variable not set: %w", keyEnv, llm.ErrMissingCredential)
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}

	cfg := goopenai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	if opts.EndpointPath != "" && opts.EndpointPath != DefaultEndpoint {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
		}
		httpClient.Transport = &endpointRewriter{
			path: path.Join("/", base.Path, opts.EndpointPath),
			next: http.DefaultTransport,
		}
	}
	cfg.HTTPClient = httpClient

	return &Client{
		client:    goopenai.NewClientWithConfig(cfg),
		provider:  opts.Provider,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}, nil
}

func (c *Client) Name() string  { return c.provider }
func (c *Client) Model() string { return c.model }

// Complete sends prompt as a single user message.
func (c *Client) Complete(ctx context.Context, prompt string) (llm.Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return llm.Completion{}, fmt.Errorf("%s API error: %w", c.provider, err)
	}

	// Some compatible servers omit usage; the caller estimates then.
	var usage *llm.Usage
	if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
		usage = &llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return llm.Completion{Usage: usage}, llm.ErrEmptyCompletion
	}
	return llm.Completion{Text: resp.Choices[0].Message.Content, Usage: usage}, nil
}

func (c *Client) Close() {}

// endpointRewriter sends chat completion requests to a non-standard path.
type endpointRewriter struct {
	path string
	next http.RoundTripper
}

func (e *endpointRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	if !strings.HasSuffix(req.URL.Path, DefaultEndpoint) {
		return e.next.RoundTrip(req)
	}
	out := req.Clone(req.Context())
	out.URL.Path = e.path
	out.URL.RawPath = ""
	return e.next.RoundTrip(out)
}
