package ai

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xrsl/texcv/pkg/claude"
	"github.com/xrsl/texcv/pkg/gemini"
	"github.com/xrsl/texcv/pkg/llm"
	"github.com/xrsl/texcv/pkg/openai"
)

// Backend names accepted by NewBackend.
const (
	Anthropic = "anthropic"
	OpenAI    = "openai"
	Custom    = "custom"
	Gemini    = "gemini"
	// Stub selects canned content instead of a backend; see provider.Stub.
	Stub = "stub"
)

var ErrUnknownProvider = errors.New("unknown provider")

// Settings selects and configures a backend. Empty fields use the
// backend's defaults.
type Settings struct {
	Provider     string
	Model        string
	MaxTokens    int
	BaseURL      string
	EndpointPath string
}

// Providers returns the backend names in preference order.
func Providers() []string {
	return []string{Anthropic, OpenAI, Custom, Gemini, Stub}
}

// CredentialEnv returns the environment variable holding the API key for
// provider, or "" when none is needed.
func CredentialEnv(provider string) string {
	switch provider {
	case Anthropic:
		return claude.APIKeyEnv
	case OpenAI:
		return openai.APIKeyEnv
	case Custom:
		return openai.CustomAPIKeyEnv
	case Gemini:
		return gemini.APIKeyEnv
	default:
		return ""
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case Anthropic:
		return claude.DefaultModel
	case OpenAI, Custom:
		return openai.DefaultModel
	case Gemini:
		return gemini.DefaultModel
	default:
		return ""
	}
}

// NewBackend creates the backend named by s.Provider. A missing API key is
// reported as llm.ErrMissingCredential.
func NewBackend(s Settings) (llm.Backend, error) {
	provider := strings.ToLower(strings.TrimSpace(s.Provider))
	apiKey := os.Getenv(CredentialEnv(provider))

	var (
		backend llm.Backend
		err     error
	)
	switch provider {
	case Anthropic:
		var c *claude.Client
		c, err = claude.NewClient(claude.Options{
			APIKey:    apiKey,
			Model:     s.Model,
			MaxTokens: s.MaxTokens,
			BaseURL:   s.BaseURL,
		})
		backend = c
	case OpenAI, Custom:
		opts := openai.Options{
			Provider:  openai.ProviderName,
			APIKey:    apiKey,
			Model:     s.Model,
			MaxTokens: s.MaxTokens,
			BaseURL:   s.BaseURL,
		}
		if provider == Custom {
			opts.Provider = openai.CustomProviderName
			opts.EndpointPath = s.EndpointPath
		}
		var c *openai.Client
		c, err = openai.NewClient(opts)
		backend = c
	case Gemini:
		var c *gemini.Client
		c, err = gemini.NewClient(gemini.Options{
			APIKey:    apiKey,
			Model:     s.Model,
			MaxTokens: s.MaxTokens,
			BaseURL:   s.BaseURL,
		})
		backend = c
	default:
		return nil, fmt.Errorf("%w: %q (use %s)", ErrUnknownProvider, s.Provider, strings.Join(Providers()[:4], ", "))
	}
	if err != nil {
		return nil, err
	}
	return backend, nil
}
