package cost

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTrackCallCost(t *testing.T) {
	tr := NewTracker(PriceTable{
		"anthropic": {"claude-sonnet-4": {Input: 3.00, Output: 15.00}},
	}, nil)

	call := tr.TrackCall("anthropic", "claude-sonnet-4", "get_summary", 1000, 500)

	if math.Abs(call.Cost.Total-0.0105) > 1e-12 {
		t.Errorf("cost = %v, want 0.0105", call.Cost.Total)
	}
	if call.Tokens.Total != 1500 {
		t.Errorf("total tokens = %d, want 1500", call.Tokens.Total)
	}
	if call.Operation != "get_summary" {
		t.Errorf("operation = %q", call.Operation)
	}

	s := tr.Summary()
	if s.TotalCalls != 1 || s.TotalTokens.Input != 1000 || s.TotalTokens.Output != 500 {
		t.Errorf("summary = %+v", s)
	}
}

func TestTrackCallAccumulates(t *testing.T) {
	tr := NewTracker(nil, nil)
	tr.TrackCall("openai", "gpt-4o", "a", 100, 10)
	tr.TrackCall("openai", "gpt-4o", "b", 200, 20)

	s := tr.Summary()
	if s.TotalCalls != 2 || s.TotalTokens.Total != 330 {
		t.Errorf("summary = %+v", s)
	}
	if got := len(tr.Calls()); got != 2 {
		t.Errorf("len(Calls()) = %d, want 2", got)
	}
}

func TestLookup(t *testing.T) {
	table := PriceTable{
		"anthropic": {
			"claude-sonnet-4": {Input: 3, Output: 15},
			"claude-opus-4":   {Input: 15, Output: 75},
		},
		OtherProvider: {
			"qwen": {Input: 0.5, Output: 0.5},
		},
	}
	tr := NewTracker(table, nil)

	tests := []struct {
		name     string
		provider string
		model    string
		want     Price
		wantOK   bool
	}{
		{"exact", "anthropic", "claude-opus-4", Price{15, 75}, true},
		{"model contains key", "anthropic", "claude-sonnet-4-20250514", Price{3, 15}, true},
		{"key contains model", "anthropic", "claude-opus", Price{15, 75}, true},
		{"other table", "custom", "qwen2.5-coder", Price{0.5, 0.5}, true},
		{"fallback", "openai", "unknown-model", FallbackPrice, false},
		{"empty model", "anthropic", "", FallbackPrice, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tr.Lookup(tt.provider, tt.model)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Lookup(%q, %q) = %v, %v; want %v, %v", tt.provider, tt.model, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLookupFuzzyPrefersMostSpecificKey(t *testing.T) {
	tr := NewTracker(PriceTable{
		"openai": {
			"gpt-4":  {Input: 30, Output: 60},
			"gpt-4o": {Input: 5, Output: 15},
		},
	}, nil)
	for range 20 {
		got, _ := tr.Lookup("openai", "gpt-4o-2024-08-06")
		if got != (Price{5, 15}) {
			t.Fatalf("Lookup() = %v, want gpt-4o price", got)
		}
	}
}

func TestLookupResolvedClaudeIDs(t *testing.T) {
	tr := NewTracker(DefaultPricing(), nil)
	tests := []struct {
		model string
		want  Price
	}{
		{"claude-opus-4-5-20251101", Price{5, 25}},
		{"claude-opus-4-20250514", Price{15, 75}},
	}
	for _, tt := range tests {
		got, ok := tr.Lookup("anthropic", tt.model)
		if !ok || got != tt.want {
			t.Errorf("Lookup(%q) = %v, %v; want %v", tt.model, got, ok, tt.want)
		}
	}

	c := tr.TrackCall("anthropic", "claude-opus-4-5-20251101", "get_summary", 1_000_000, 1_000_000)
	if c.Cost.Total < 29.99 || c.Cost.Total > 30.01 {
		t.Errorf("cost = %v, want 30.00", c.Cost.Total)
	}
}

func TestDefaultPricingCoversDefaultModels(t *testing.T) {
	tr := NewTracker(nil, nil)
	for _, pm := range [][2]string{
		{"anthropic", "claude-sonnet-4-20250514"},
		{"openai", "gpt-4o"},
		{"google", "gemini-2.5-flash"},
	} {
		if _, ok := tr.Lookup(pm[0], pm[1]); !ok {
			t.Errorf("no default price for %s/%s", pm[0], pm[1])
		}
	}
}

func TestSaveLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	tr := NewTracker(nil, nil)
	tr.now = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }

	path, err := tr.SaveLog(dir, "acme")
	if err != nil || path != "" {
		t.Fatalf("SaveLog() with no calls = %q, %v; want no file", path, err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("SaveLog() with no calls should not create the directory")
	}

	tr.TrackCall("openai", "gpt-4o", "get_summary", 10, 20)
	path, err = tr.SaveLog(dir, "acme")
	if err != nil {
		t.Fatalf("SaveLog() error: %v", err)
	}
	if filepath.Base(path) != "cost_log_acme_20250304_050607.json" {
		t.Errorf("log file = %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	var got logFile
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("log is not JSON: %v", err)
	}
	if got.RunID != tr.RunID() || got.Project != "acme" {
		t.Errorf("log header = %q/%q", got.RunID, got.Project)
	}
	if got.Summary.TotalCalls != 1 || len(got.Calls) != 1 {
		t.Errorf("log summary = %+v, calls = %d", got.Summary, len(got.Calls))
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker(nil, nil)
	tr.PrintSummary(&buf)
	if !strings.Contains(buf.String(), "No API calls recorded") {
		t.Errorf("empty summary = %q", buf.String())
	}

	buf.Reset()
	tr.TrackCall("anthropic", "claude-sonnet-4", "x", 1000, 500)
	tr.PrintSummary(&buf)
	for _, want := range []string{"Total API calls: 1", "Total tokens: 1500", "$0.0105"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, buf.String())
		}
	}
}

const pricingCSV = `model,elo,cpmi
claude-3-5-sonnet,1270,6.0
gpt-4o,1280,7.5
gemini-1.5-pro,1260,3.5
llama-3-70b,1200,0.9
mistral-large,1150,4
qwen-72b,1180,0.8
no-price,1000,
`

func TestParsePricingCSV(t *testing.T) {
	table, err := ParsePricingCSV(strings.NewReader(pricingCSV))
	if err != nil {
		t.Fatalf("ParsePricingCSV() error: %v", err)
	}

	tests := []struct {
		provider, model string
		want            float64
	}{
		{"anthropic", "claude-3-5-sonnet", 6.0},
		{"openai", "gpt-4o", 7.5},
		{"google", "gemini-1.5-pro", 3.5},
		{"meta", "llama-3-70b", 0.9},
		{"mistral", "mistral-large", 4},
		{OtherProvider, "qwen-72b", 0.8},
	}
	for _, tt := range tests {
		got, ok := table[tt.provider][tt.model]
		if !ok || got.Input != tt.want || got.Output != tt.want {
			t.Errorf("table[%s][%s] = %v, %v; want %v", tt.provider, tt.model, got, ok, tt.want)
		}
	}
	if _, ok := table[OtherProvider]["no-price"]; ok {
		t.Error("rows without a price should be skipped")
	}
}

func TestParsePricingCSVMissingColumns(t *testing.T) {
	if _, err := ParsePricingCSV(strings.NewReader("name,price\nx,1\n")); err == nil {
		t.Error("expected error without model/cpmi columns")
	}
}

func TestLoadPricing(t *testing.T) {
	ctx := context.Background()

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pricingCSV))
	}))
	defer remote.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	dir := t.TempDir()
	localFile := filepath.Join(dir, "pricing.json")
	if err := os.WriteFile(localFile, []byte(`{"acme":{"m1":{"input":1,"output":2}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	badFile := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badFile, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("local file wins", func(t *testing.T) {
		table := LoadPricing(ctx, PricingOptions{File: localFile, Remote: true, RemoteURL: remote.URL}, nil)
		if table["acme"]["m1"] != (Price{1, 2}) {
			t.Errorf("table = %v", table)
		}
	})

	t.Run("remote when no file", func(t *testing.T) {
		table := LoadPricing(ctx, PricingOptions{File: filepath.Join(dir, "missing.json"), Remote: true, RemoteURL: remote.URL}, nil)
		if _, ok := table["openai"]["gpt-4o"]; !ok || table["openai"]["gpt-4o"].Input != 7.5 {
			t.Errorf("table = %v", table)
		}
	})

	t.Run("bad file falls through to remote", func(t *testing.T) {
		table := LoadPricing(ctx, PricingOptions{File: badFile, Remote: true, RemoteURL: remote.URL}, nil)
		if table["openai"]["gpt-4o"].Input != 7.5 {
			t.Errorf("table = %v", table)
		}
	})

	t.Run("remote failure uses defaults", func(t *testing.T) {
		table := LoadPricing(ctx, PricingOptions{Remote: true, RemoteURL: broken.URL}, nil)
		if table["anthropic"]["claude-sonnet-4"] != (Price{3, 15}) {
			t.Errorf("expected default table, got %v", table)
		}
	})

	t.Run("remote disabled uses defaults", func(t *testing.T) {
		table := LoadPricing(ctx, PricingOptions{RemoteURL: remote.URL}, nil)
		if _, ok := table["google"]; !ok {
			t.Errorf("expected default table, got %v", table)
		}
	})
}
