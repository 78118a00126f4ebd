package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/xrsl/texcv/pkg/llm"
)

const (
	ProviderName = "google"
	DefaultModel = "gemini-2.5-flash"
	APIKeyEnv    = "GEMINI_API_KEY"
)

var SupportedModels = []string{
	"gemini-2.5-flash",
	"gemini-2.5-pro",
	"gemini-2.0-flash",
}

func IsModelSupported(model string) bool {
	for _, m := range SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
}

type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s environment variable not set: %w", APIKeyEnv, llm.ErrMissingCredential)
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.BaseURL))
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}

	m := client.GenerativeModel(opts.Model)
	m.ResponseMIMEType = "application/json"
	if opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(opts.MaxTokens))
	}

	return &Client{
		client:    client,
		model:     m,
		modelName: opts.Model,
	}, nil
}

func (c *Client) Name() string  { return ProviderName }
func (c *Client) Model() string { return c.modelName }

func (c *Client) Complete(ctx context.Context, prompt string) (llm.Completion, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return llm.Completion{}, fmt.Errorf("gemini API error: %w", err)
	}

	var usage *llm.Usage
	if resp.UsageMetadata != nil {
		usage = &llm.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return llm.Completion{Usage: usage}, llm.ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return llm.Completion{Usage: usage}, llm.ErrEmptyCompletion
	}

	return llm.Completion{Text: sb.String(), Usage: usage}, nil
}

func (c *Client) Close() {
	_ = c.client.Close()
}
