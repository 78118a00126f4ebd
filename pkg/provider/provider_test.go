package provider

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/xrsl/texcv/pkg/cost"
	"github.com/xrsl/texcv/pkg/llm"
	"github.com/xrsl/texcv/pkg/model"
)

type answer struct {
	text  string
	usage *llm.Usage
	err   error
}

// fakeBackend replies with answers in order and records every prompt.
type fakeBackend struct {
	answers []answer
	prompts []string
}

func (f *fakeBackend) Name() string  { return "anthropic" }
func (f *fakeBackend) Model() string { return "claude-sonnet-4" }
func (f *fakeBackend) Close()        {}

func (f *fakeBackend) Complete(_ context.Context, prompt string) (llm.Completion, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.answers) == 0 {
		return llm.Completion{}, errors.New("no answer queued")
	}
	a := f.answers[0]
	f.answers = f.answers[1:]
	if a.err != nil {
		return llm.Completion{Usage: a.usage}, a.err
	}
	return llm.Completion{Text: a.text, Usage: a.usage}, nil
}

var (
	testJobs = []model.Job{
		{Job: 1, Position: "Engineer", Organization: "Acme"},
		{Job: 2, Position: "Lead", Organization: "Globex"},
	}
	testStatements = []model.Statement{{Job: 1, Statement: "Built the billing system"}}
	testCars       = []model.CarStory{
		{Job: 1, Challenge: "Slow builds", Action: "Cached artifacts", Result: "Builds 4x faster"},
		{Job: 2, Challenge: "Churn", Action: "Mentoring", Result: "Retention up"},
	}
)

func newTestProvider(answers ...answer) (*Provider, *fakeBackend, *cost.Tracker) {
	b := &fakeBackend{answers: answers}
	tr := cost.NewTracker(nil, nil)
	return New(b, nil, tr, nil), b, tr
}

func TestGetSummary(t *testing.T) {
	tests := []struct {
		name   string
		answer answer
		want   string
	}{
		{"json", answer{text: `{"summary": "Seasoned engineer."}`}, "Seasoned engineer."},
		{"fenced json", answer{text: "```json\n{\"summary\": \"Fenced.\"}\n```"}, "Fenced."},
		{"free text", answer{text: "Just prose about me."}, "Just prose about me."},
		{"backend error", answer{err: errors.New("connection refused")}, PlaceholderSummaryText},
		{"empty answer", answer{text: "   "}, PlaceholderSummaryText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newTestProvider(tt.answer)
			got, err := p.GetSummary(context.Background(), nil, testStatements, "posting")
			if err != nil {
				t.Fatalf("GetSummary() error: %v", err)
			}
			if got.Summary != tt.want {
				t.Errorf("GetSummary() = %q, want %q", got.Summary, tt.want)
			}
		})
	}
}

func TestGetSummaryPromptContent(t *testing.T) {
	p, b, _ := newTestProvider(answer{text: `{"summary":"x"}`})
	skills := []model.SkillCategory{{Category: "Languages", Items: []string{"Go"}}}
	if _, err := p.GetSummary(context.Background(), skills, testStatements, "https://example.com/job"); err != nil {
		t.Fatal(err)
	}
	prompt := b.prompts[0]
	for _, want := range []string{`"items":["Go"]`, "Built the billing system", "https://example.com/job"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGetJobSummaries(t *testing.T) {
	tests := []struct {
		name   string
		answer answer
		want   []model.JobDescription
	}{
		{
			"array",
			answer{text: `[{"job":1,"description":"A"},{"job":2,"description":"B"}]`},
			[]model.JobDescription{{Job: 1, Description: "A"}, {Job: 2, Description: "B"}},
		},
		{
			"wrapped array",
			answer{text: `Here you go: {"descriptions":[{"job":2,"description":"B"}]}`},
			[]model.JobDescription{{Job: 2, Description: "B"}},
		},
		{
			"free text",
			answer{text: "Led teams."},
			[]model.JobDescription{{Job: 1, Description: "Led teams."}},
		},
		{
			"invalid record is free text",
			answer{text: `[{"job":1,"description":""}]`},
			[]model.JobDescription{{Job: 1, Description: `[{"job":1,"description":""}]`}},
		},
		{
			"missing job key is free text",
			answer{text: `[{"description":"Led the platform team"}]`},
			[]model.JobDescription{{Job: 1, Description: `[{"description":"Led the platform team"}]`}},
		},
		{
			"missing key in one of several records",
			answer{text: `[{"job":1,"description":"A"},{"description":"B"}]`},
			[]model.JobDescription{{Job: 1, Description: `[{"job":1,"description":"A"},{"description":"B"}]`}},
		},
		{
			"empty list",
			answer{text: `[]`},
			PlaceholderJobDescriptions(testJobs),
		},
		{
			"backend error",
			answer{err: errors.New("boom")},
			PlaceholderJobDescriptions(testJobs),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newTestProvider(tt.answer)
			got, err := p.GetJobSummaries(context.Background(), testJobs, testStatements, "posting")
			if err != nil {
				t.Fatalf("GetJobSummaries() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GetJobSummaries() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetExperienceTwoStages(t *testing.T) {
	descs := []model.JobDescription{{Job: 1, Description: "Ran the platform team"}}
	p, b, tr := newTestProvider(
		answer{text: `[{"job":1,"challenge":"Slow builds","action":"Cached artifacts","result":"Builds 4x faster"}]`},
		answer{text: `[{"job":1,"item":"Cut build time 4x by caching artifacts"}]`},
	)

	got, err := p.GetExperience(context.Background(), testJobs, testCars, descs, "posting")
	if err != nil {
		t.Fatalf("GetExperience() error: %v", err)
	}
	want := []model.Cvitem{{Job: 1, Item: "Cut build time 4x by caching artifacts"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetExperience() = %+v, want %+v", got, want)
	}

	if len(b.prompts) != 2 {
		t.Fatalf("backend called %d times, want 2", len(b.prompts))
	}
	if !strings.Contains(b.prompts[0], "Mentoring") {
		t.Error("selection prompt must contain all achievements")
	}
	if strings.Contains(b.prompts[1], "Mentoring") {
		t.Error("refine prompt must contain only the selected achievements")
	}
	if !strings.Contains(b.prompts[1], "Ran the platform team") {
		t.Error("refine prompt must contain the job descriptions")
	}

	calls := tr.Calls()
	if len(calls) != 2 || calls[0].Operation != OpExperienceSelect || calls[1].Operation != OpExperienceRefine {
		t.Errorf("tracked calls = %+v", calls)
	}
}

func TestGetExperienceFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		answers []answer
		want    []model.Cvitem
		calls   int
	}{
		{
			"selection fails",
			[]answer{{err: errors.New("timeout")}},
			PlaceholderCvitems(testJobs),
			1,
		},
		{
			"selection empty",
			[]answer{{text: `{"selected": []}`}},
			PlaceholderCvitems(testJobs),
			1,
		},
		{
			"refine fails",
			[]answer{{text: `[{"job":2,"challenge":"c","action":"a","result":"r"}]`}, {err: errors.New("timeout")}},
			PlaceholderCvitems(testJobs),
			2,
		},
		{
			"refine free text",
			[]answer{{text: `[{"job":2,"challenge":"c","action":"a","result":"r"}]`}, {text: "Did great things."}},
			[]model.Cvitem{{Job: 1, Item: "Did great things."}},
			2,
		},
		{
			"selection missing keys is free text",
			[]answer{{text: `[{"challenge":"c","action":"a","result":"r"}]`}, {text: `[{"job":1,"item":"x"}]`}},
			[]model.Cvitem{{Job: 1, Item: "x"}},
			2,
		},
		{
			"refine missing job key is free text",
			[]answer{{text: `[{"job":2,"challenge":"c","action":"a","result":"r"}]`}, {text: `[{"item":"x"}]`}},
			[]model.Cvitem{{Job: 1, Item: `[{"item":"x"}]`}},
			2,
		},
		{
			"selection free text still refines",
			[]answer{{text: "pick the first"}, {text: `[{"job":1,"item":"x"}]`}},
			[]model.Cvitem{{Job: 1, Item: "x"}},
			2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, b, _ := newTestProvider(tt.answers...)
			got, err := p.GetExperience(context.Background(), testJobs, testCars, nil, "posting")
			if err != nil {
				t.Fatalf("GetExperience() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GetExperience() = %+v, want %+v", got, tt.want)
			}
			if len(b.prompts) != tt.calls {
				t.Errorf("backend called %d times, want %d", len(b.prompts), tt.calls)
			}
		})
	}
}

func TestGetLetterinfo(t *testing.T) {
	p, _, _ := newTestProvider(answer{text: `{"recipient":["Acme","Main St 1"],"subject":"Go Engineer","opening":"Dear Ada,","content":"I am keen."}`})
	got, err := p.GetLetterinfo(context.Background(), testStatements, testCars, "posting")
	if err != nil {
		t.Fatal(err)
	}
	want := model.Letterinfo{Recipient: []string{"Acme", "Main St 1"}, Subject: "Go Engineer", Opening: "Dear Ada,", Content: "I am keen."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetLetterinfo() = %+v, want %+v", got, want)
	}

	p, _, _ = newTestProvider(answer{text: `{"recipient":"Acme","content":"x"}`})
	got, _ = p.GetLetterinfo(context.Background(), nil, nil, "posting")
	if got.Content != `{"recipient":"Acme","content":"x"}` || got.Recipient != nil {
		t.Errorf("mistyped field should fall back to free text, got %+v", got)
	}

	p, _, _ = newTestProvider(answer{text: `{"content":"Hello"}`})
	got, _ = p.GetLetterinfo(context.Background(), nil, nil, "posting")
	if got.Content != `{"content":"Hello"}` || got.Subject != "" {
		t.Errorf("letter without recipient, subject and opening should fall back to free text, got %+v", got)
	}

	p, _, _ = newTestProvider(answer{err: errors.New("down")})
	got, _ = p.GetLetterinfo(context.Background(), nil, nil, "posting")
	if !reflect.DeepEqual(got, PlaceholderLetterinfo()) {
		t.Errorf("GetLetterinfo() = %+v, want placeholder", got)
	}
}

func TestTokenAccounting(t *testing.T) {
	p, b, tr := newTestProvider(
		answer{text: `{"summary":"x"}`, usage: &llm.Usage{InputTokens: 1000, OutputTokens: 500}},
		answer{text: `{"summary":"abcdefgh"}`},
	)
	ctx := context.Background()
	p.GetSummary(ctx, nil, nil, "p")
	p.GetSummary(ctx, nil, nil, "p")

	calls := tr.Calls()
	if len(calls) != 2 {
		t.Fatalf("tracked %d calls, want 2", len(calls))
	}
	if calls[0].Tokens.Input != 1000 || calls[0].Tokens.Output != 500 {
		t.Errorf("reported usage not recorded: %+v", calls[0].Tokens)
	}
	if calls[0].Cost.Total < 0.0104 || calls[0].Cost.Total > 0.0106 {
		t.Errorf("cost = %v, want 0.0105", calls[0].Cost.Total)
	}

	wantIn := EstimateTokens(b.prompts[1])
	if calls[1].Tokens.Input != wantIn || calls[1].Tokens.Output != EstimateTokens(`{"summary":"abcdefgh"}`) {
		t.Errorf("estimated usage = %+v, want input %d", calls[1].Tokens, wantIn)
	}
}

func TestFailedCallWithUsageIsTracked(t *testing.T) {
	p, _, tr := newTestProvider(
		answer{err: llm.ErrEmptyCompletion, usage: &llm.Usage{InputTokens: 800, OutputTokens: 0}},
		answer{err: errors.New("connection refused")},
	)
	got, _ := p.GetSummary(context.Background(), nil, nil, "p")
	if got != PlaceholderSummary() {
		t.Errorf("GetSummary() = %+v, want placeholder", got)
	}
	p.GetSummary(context.Background(), nil, nil, "p")

	calls := tr.Calls()
	if len(calls) != 1 {
		t.Fatalf("tracked %d calls, want only the billed one", len(calls))
	}
	if calls[0].Tokens.Input != 800 || calls[0].Operation != OpSummary {
		t.Errorf("tracked call = %+v", calls[0])
	}
}

func TestNoTrackerAndNoBackend(t *testing.T) {
	p := New(&fakeBackend{answers: []answer{{text: `{"summary":"ok"}`}}}, nil, nil, nil)
	got, _ := p.GetSummary(context.Background(), nil, nil, "p")
	if got.Summary != "ok" {
		t.Errorf("GetSummary() = %q", got.Summary)
	}

	p = New(nil, nil, nil, nil)
	got, err := p.GetSummary(context.Background(), nil, nil, "p")
	if err != nil || got != PlaceholderSummary() {
		t.Errorf("GetSummary() without backend = %+v, %v", got, err)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := map[string]int{
		"":          0,
		"abc":       1,
		"abcd":      1,
		"abcde":     2,
		"résumé!!":  2,
		"12345678x": 3,
	}
	for in, want := range tests {
		if got := EstimateTokens(in); got != want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n[1,2]\n```", `[1,2]`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`Sure! {"a":1} Hope this helps.`, `{"a":1}`},
		{`Result: [{"a":1}]`, `[{"a":1}]`},
		{`no json here`, `no json here`},
	}
	for _, tt := range tests {
		if got := extractJSON(tt.in); got != tt.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStub(t *testing.T) {
	var s Stub
	ctx := context.Background()

	summary, err := s.GetSummary(ctx, nil, nil, "")
	if err != nil || summary.Validate() != nil {
		t.Errorf("GetSummary() = %+v, %v", summary, err)
	}
	descs, _ := s.GetJobSummaries(ctx, testJobs, nil, "")
	items, _ := s.GetExperience(ctx, testJobs, nil, descs, "")
	if len(descs) != len(testJobs) || len(items) != len(testJobs) {
		t.Errorf("stub should produce one record per job, got %d/%d", len(descs), len(items))
	}
	letter, _ := s.GetLetterinfo(ctx, nil, nil, "")
	if letter.Validate() != nil {
		t.Errorf("GetLetterinfo() = %+v", letter)
	}
}
