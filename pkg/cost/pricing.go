package cost

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xrsl/texcv/pkg/log"
)

// DefaultPricingURL is the community price list fetched at startup.
const DefaultPricingURL = "https://raw.githubusercontent.com/gramener/llmpricing/master/elo.csv"

// OtherProvider holds prices for models no known provider claims.
const OtherProvider = "other"

// Price is the USD cost per million tokens.
type Price struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// FallbackPrice applies when no table entry matches.
var FallbackPrice = Price{Input: 5.00, Output: 15.00}

// PriceTable maps provider to model to price.
type PriceTable map[string]map[string]Price

// DefaultPricing returns the compiled-in table.
func DefaultPricing() PriceTable {
	return PriceTable{
		"anthropic": {
			"claude-opus-4-5":            {Input: 5.00, Output: 25.00},
			"claude-opus-4":              {Input: 15.00, Output: 75.00},
			"claude-sonnet-4-5":          {Input: 3.00, Output: 15.00},
			"claude-sonnet-4":            {Input: 3.00, Output: 15.00},
			"claude-haiku-4-5":           {Input: 1.00, Output: 5.00},
			"claude-3-5-sonnet-20240620": {Input: 3.00, Output: 15.00},
			"claude-3-opus-20240229":     {Input: 15.00, Output: 75.00},
			"claude-3-sonnet-20240229":   {Input: 3.00, Output: 15.00},
			"claude-3-haiku-20240307":    {Input: 0.25, Output: 1.25},
		},
		"openai": {
			"gpt-4o":        {Input: 5.00, Output: 15.00},
			"gpt-4o-mini":   {Input: 0.15, Output: 0.60},
			"gpt-4-turbo":   {Input: 10.00, Output: 30.00},
			"gpt-4":         {Input: 30.00, Output: 60.00},
			"gpt-3.5-turbo": {Input: 0.50, Output: 1.50},
		},
		"google": {
			"gemini-2.5-pro":   {Input: 1.25, Output: 10.00},
			"gemini-2.5-flash": {Input: 0.30, Output: 2.50},
			"gemini-2.0-flash": {Input: 0.10, Output: 0.40},
		},
	}
}

// PricingOptions selects where prices come from.
type PricingOptions struct {
	// File is a local JSON override; consulted first when it exists.
	File string
	// Remote enables fetching RemoteURL when no local file is usable.
	Remote     bool
	RemoteURL  string
	HTTPClient *http.Client
}

// LoadPricing returns the local override, else the remote table, else the
// compiled-in defaults. Failures are logged and never returned.
func LoadPricing(ctx context.Context, opts PricingOptions, logger *slog.Logger) PriceTable {
	logger = log.OrDiscard(logger)

	if opts.File != "" {
		table, err := ReadPricingFile(opts.File)
		switch {
		case err == nil:
			logger.Info("using custom pricing", "file", opts.File)
			return table
		case errors.Is(err, os.ErrNotExist):
		default:
			logger.Warn("failed to load custom pricing", "file", opts.File, "error", err)
		}
	}

	if opts.Remote {
		url := opts.RemoteURL
		if url == "" {
			url = DefaultPricingURL
		}
		table, err := FetchPricing(ctx, url, opts.HTTPClient)
		if err == nil {
			logger.Debug("using remote pricing", "url", url)
			return table
		}
		logger.Warn("failed to fetch remote pricing, using defaults", "url", url, "error", err)
	}

	return DefaultPricing()
}

// ReadPricingFile reads a provider → model → {input, output} JSON document.
func ReadPricingFile(path string) (PriceTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var table PriceTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("invalid pricing file %s: %w", path, err)
	}
	return table, nil
}

// FetchPricing downloads a CSV price list with "model" and "cpmi" columns.
// cpmi is applied to both input and output tokens.
func FetchPricing(ctx context.Context, url string, client *http.Client) (PriceTable, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return ParsePricingCSV(resp.Body)
}

// ParsePricingCSV parses the remote price list. Rows without a usable price
// are skipped.
func ParsePricingCSV(r io.Reader) (PriceTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading pricing header: %w", err)
	}
	modelCol, priceCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "model":
			modelCol = i
		case "cpmi":
			priceCol = i
		}
	}
	if modelCol < 0 || priceCol < 0 {
		return nil, fmt.Errorf("pricing CSV needs model and cpmi columns")
	}

	table := PriceTable{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if modelCol >= len(row) || priceCol >= len(row) {
			continue
		}
		model := strings.TrimSpace(row[modelCol])
		cpmi, err := strconv.ParseFloat(strings.TrimSpace(row[priceCol]), 64)
		if model == "" || err != nil {
			continue
		}
		provider := InferProvider(model)
		if table[provider] == nil {
			table[provider] = map[string]Price{}
		}
		table[provider][model] = Price{Input: cpmi, Output: cpmi}
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("pricing CSV has no priced models")
	}
	return table, nil
}

// InferProvider guesses the provider from a model name.
func InferProvider(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "claude"):
		return "anthropic"
	case strings.Contains(m, "gpt"), strings.Contains(m, "o1"):
		return "openai"
	case strings.Contains(m, "gemini"), strings.Contains(m, "gemma"):
		return "google"
	case strings.Contains(m, "mistral"):
		return "mistral"
	case strings.Contains(m, "llama"):
		return "meta"
	default:
		return OtherProvider
	}
}
