// Package cost records token usage per generative call and estimates its
// price.
package cost

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xrsl/texcv/pkg/log"
)

// Tokens counts a call's tokens.
type Tokens struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// Amount is a cost in USD.
type Amount struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
	Total  float64 `json:"total"`
}

// Call is one tracked generative call.
type Call struct {
	Timestamp time.Time `json:"timestamp"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Operation string    `json:"operation"`
	Tokens    Tokens    `json:"tokens"`
	Cost      Amount    `json:"cost"`
}

// Summary totals every call of a run.
type Summary struct {
	TotalCalls   int     `json:"total_calls"`
	TotalTokens  Tokens  `json:"total_tokens"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

type logFile struct {
	RunID     string    `json:"run_id"`
	Project   string    `json:"project"`
	Timestamp time.Time `json:"timestamp"`
	Summary   Summary   `json:"summary"`
	Calls     []Call    `json:"calls"`
}

// Tracker is an append-only list of calls. It is used from a single flow
// and is not safe for concurrent use.
type Tracker struct {
	pricing PriceTable
	logger  *slog.Logger
	runID   string
	calls   []Call
	summary Summary

	// now is replaced in tests.
	now func() time.Time
}

// NewTracker returns a Tracker pricing calls with table. A nil table uses
// DefaultPricing.
func NewTracker(table PriceTable, logger *slog.Logger) *Tracker {
	if table == nil {
		table = DefaultPricing()
	}
	return &Tracker{
		pricing: table,
		logger:  log.OrDiscard(logger),
		runID:   uuid.NewString(),
		now:     time.Now,
	}
}

// RunID identifies this run in the saved log.
func (t *Tracker) RunID() string { return t.runID }

// Lookup finds the price for provider/model. It tries an exact match, then a
// substring match either way within the provider, then within the "other"
// table. ok is false when FallbackPrice was used.
func (t *Tracker) Lookup(provider, model string) (price Price, ok bool) {
	if models, found := t.pricing[provider]; found {
		if p, exact := models[model]; exact {
			return p, true
		}
		if p, fuzzy := substringMatch(models, model); fuzzy {
			t.logger.Debug("using fuzzy price match", "provider", provider, "model", model)
			return p, true
		}
	}
	if p, fuzzy := substringMatch(t.pricing[OtherProvider], model); fuzzy {
		t.logger.Debug("using price from other table", "model", model)
		return p, true
	}
	return FallbackPrice, false
}

// substringMatch prefers the longest key contained in model, so a dated ID
// like claude-opus-4-5-20251101 resolves to claude-opus-4-5 rather than
// claude-opus-4. Failing that it takes the shortest key containing model.
// Ties go to the first key in sorted order.
func substringMatch(models map[string]Price, model string) (Price, bool) {
	if model == "" {
		return Price{}, false
	}
	keys := make([]string, 0, len(models))
	for k := range models {
		if k != "" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	best := ""
	for _, k := range keys {
		if strings.Contains(model, k) && len(k) > len(best) {
			best = k
		}
	}
	if best != "" {
		return models[best], true
	}
	for _, k := range keys {
		if strings.Contains(k, model) && (best == "" || len(k) < len(best)) {
			best = k
		}
	}
	if best != "" {
		return models[best], true
	}
	return Price{}, false
}

// TrackCall prices and records one call.
func (t *Tracker) TrackCall(provider, model, operation string, inputTokens, outputTokens int) Call {
	price, ok := t.Lookup(provider, model)
	if !ok {
		t.logger.Warn("pricing not found, using estimate", "provider", provider, "model", model)
	}

	in := float64(inputTokens) / 1e6 * price.Input
	out := float64(outputTokens) / 1e6 * price.Output
	call := Call{
		Timestamp: t.now(),
		Provider:  provider,
		Model:     model,
		Operation: operation,
		Tokens:    Tokens{Input: inputTokens, Output: outputTokens, Total: inputTokens + outputTokens},
		Cost:      Amount{Input: in, Output: out, Total: in + out},
	}

	t.calls = append(t.calls, call)
	t.summary.TotalCalls++
	t.summary.TotalTokens.Input += inputTokens
	t.summary.TotalTokens.Output += outputTokens
	t.summary.TotalTokens.Total += call.Tokens.Total
	t.summary.TotalCostUSD += call.Cost.Total

	t.logger.Debug("tracked call",
		"operation", operation,
		"tokens", call.Tokens.Total,
		"cost", fmt.Sprintf("$%.6f", call.Cost.Total))
	return call
}

// Calls returns a copy of the recorded calls.
func (t *Tracker) Calls() []Call {
	return slices.Clone(t.calls)
}

func (t *Tracker) Summary() Summary {
	return t.summary
}

// SaveLog writes cost_log_<project>_<YYYYMMDD_HHMMSS>.json into dir and
// returns its path. Nothing is written when no call was tracked.
func (t *Tracker) SaveLog(dir, project string) (string, error) {
	if len(t.calls) == 0 {
		t.logger.Info("no API calls to log")
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cost log directory: %w", err)
	}

	now := t.now()
	path := filepath.Join(dir, fmt.Sprintf("cost_log_%s_%s.json", project, now.Format("20060102_150405")))
	data, err := json.MarshalIndent(logFile{
		RunID:     t.runID,
		Project:   project,
		Timestamp: now,
		Summary:   t.summary,
		Calls:     t.calls,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write cost log: %w", err)
	}

	t.logger.Info("cost log saved", "path", path)
	return path, nil
}

// PrintSummary writes the run totals for humans.
func (t *Tracker) PrintSummary(w io.Writer) {
	if len(t.calls) == 0 {
		fmt.Fprintln(w, "No API calls recorded")
		return
	}
	s := t.summary
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Cost Summary ===")
	fmt.Fprintf(w, "Total API calls: %d\n", s.TotalCalls)
	fmt.Fprintf(w, "Total tokens: %d\n", s.TotalTokens.Total)
	fmt.Fprintf(w, "  - Input tokens: %d\n", s.TotalTokens.Input)
	fmt.Fprintf(w, "  - Output tokens: %d\n", s.TotalTokens.Output)
	fmt.Fprintf(w, "Estimated cost: $%.4f\n", s.TotalCostUSD)
	fmt.Fprintln(w, "====================")
}
