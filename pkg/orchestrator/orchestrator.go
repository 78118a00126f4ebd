// Package orchestrator decides which content to generate, in which order,
// and joins the generated records back to the loaded jobs for rendering.
//
// Each operation guards its generator call independently of the generator's
// own fallbacks: a returned error, a panic, or a result of the wrong shape
// is logged and replaced by the placeholder for that operation.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xrsl/texcv/pkg/datastore"
	"github.com/xrsl/texcv/pkg/log"
	"github.com/xrsl/texcv/pkg/model"
	"github.com/xrsl/texcv/pkg/posting"
	"github.com/xrsl/texcv/pkg/provider"
	"github.com/xrsl/texcv/pkg/render"
)

// Generator produces the content of a run. *provider.Provider and
// provider.Stub implement it.
type Generator interface {
	GetSummary(ctx context.Context, skills []model.SkillCategory, statements []model.Statement, posting string) (model.Summary, error)
	GetJobSummaries(ctx context.Context, jobs []model.Job, statements []model.Statement, posting string) ([]model.JobDescription, error)
	GetExperience(ctx context.Context, jobs []model.Job, achievements []model.CarStory, descriptions []model.JobDescription, posting string) ([]model.Cvitem, error)
	GetLetterinfo(ctx context.Context, statements []model.Statement, achievements []model.CarStory, posting string) (model.Letterinfo, error)
}

type Options struct {
	// Project names the output documents.
	Project string
	// UseStoredSummary takes the summary from summary.yaml instead of
	// generating one, when the file provides it.
	UseStoredSummary bool
}

type Orchestrator struct {
	store   *datastore.Store
	gen     Generator
	posting posting.Posting
	logger  *slog.Logger
	opts    Options
}

func New(store *datastore.Store, gen Generator, p posting.Posting, logger *slog.Logger, opts Options) *Orchestrator {
	if store == nil {
		store = &datastore.Store{}
	}
	return &Orchestrator{
		store:   store,
		gen:     gen,
		posting: p,
		logger:  log.OrDiscard(logger),
		opts:    opts,
	}
}

var errWrongShape = errors.New("generator returned an empty result")

// Assemble generates all content and returns the render-ready document.
// Job summaries are generated before experience, which is conditioned on
// them.
func (o *Orchestrator) Assemble(ctx context.Context) (*render.Document, error) {
	if o.gen == nil {
		return nil, fmt.Errorf("no content generator configured")
	}

	summary := o.GetSummary(ctx)
	descriptions := o.GetJobSummaries(ctx)
	items := o.GetExperience(ctx, descriptions)
	letter := o.GetLetterinfo(ctx)

	return &render.Document{
		Project:    o.opts.Project,
		Headers:    o.store.Headers,
		Summary:    summary.Summary,
		Jobs:       GroupJobs(o.store.Jobs, descriptions, items),
		Education:  o.store.Education,
		Skills:     o.store.Skills,
		Languages:  o.store.Languages,
		Letter:     letter,
		Posting:    o.posting.Text,
		PostingURL: o.posting.URL,
	}, nil
}

// GetSummary never fails.
func (o *Orchestrator) GetSummary(ctx context.Context) (summary model.Summary) {
	if o.opts.UseStoredSummary {
		if s := o.store.Summary; s != nil && s.Validate() == nil {
			o.logger.Info("using stored summary", "file", datastore.SummaryFile)
			return *s
		}
		o.logger.Warn("no stored summary, generating one", "file", datastore.SummaryFile)
	}

	defer o.guard(provider.OpSummary, func() { summary = provider.PlaceholderSummary() })

	s, err := o.gen.GetSummary(ctx, o.store.Skills, o.store.Statements, o.posting.Text)
	if err == nil {
		err = s.Validate()
	}
	if err != nil {
		o.fallback(provider.OpSummary, err)
		return provider.PlaceholderSummary()
	}
	return s
}

// GetJobSummaries never fails.
func (o *Orchestrator) GetJobSummaries(ctx context.Context) (descs []model.JobDescription) {
	jobs := o.store.Jobs
	defer o.guard(provider.OpJobSummaries, func() { descs = provider.PlaceholderJobDescriptions(jobs) })

	d, err := o.gen.GetJobSummaries(ctx, jobs, o.store.Statements, o.posting.Text)
	if err == nil && len(d) == 0 && len(jobs) > 0 {
		err = errWrongShape
	}
	if err != nil {
		o.fallback(provider.OpJobSummaries, err)
		return provider.PlaceholderJobDescriptions(jobs)
	}
	return d
}

// GetExperience never fails. descriptions must be the result of
// GetJobSummaries in the same run.
func (o *Orchestrator) GetExperience(ctx context.Context, descriptions []model.JobDescription) (items []model.Cvitem) {
	jobs := o.store.Jobs
	defer o.guard("get_experience", func() { items = provider.PlaceholderCvitems(jobs) })

	i, err := o.gen.GetExperience(ctx, jobs, o.store.CarStories, descriptions, o.posting.Text)
	if err == nil && len(i) == 0 && len(jobs) > 0 {
		err = errWrongShape
	}
	if err != nil {
		o.fallback("get_experience", err)
		return provider.PlaceholderCvitems(jobs)
	}
	return i
}

// GetLetterinfo never fails.
func (o *Orchestrator) GetLetterinfo(ctx context.Context) (info model.Letterinfo) {
	defer o.guard(provider.OpLetterinfo, func() { info = provider.PlaceholderLetterinfo() })

	l, err := o.gen.GetLetterinfo(ctx, o.store.Statements, o.store.CarStories, o.posting.Text)
	if err == nil {
		err = l.Validate()
	}
	if err != nil {
		o.fallback(provider.OpLetterinfo, err)
		return provider.PlaceholderLetterinfo()
	}
	return l
}

// guard must be deferred directly so recover sees the panic.
func (o *Orchestrator) guard(operation string, placeholder func()) {
	if r := recover(); r != nil {
		o.logger.Warn("generation panicked, using placeholder", "operation", operation, "panic", r)
		placeholder()
	}
}

func (o *Orchestrator) fallback(operation string, err error) {
	o.logger.Warn("generation failed, using placeholder", "operation", operation, "error", err)
}

// GroupJobs returns one block per job in job order. Each block holds the
// descriptions and items whose job id equals the job's, in their original
// order. Jobs without matches get empty blocks.
func GroupJobs(jobs []model.Job, descs []model.JobDescription, items []model.Cvitem) []model.JobBlock {
	blocks := make([]model.JobBlock, 0, len(jobs))
	for _, job := range jobs {
		block := model.JobBlock{Job: job}
		for _, d := range descs {
			if d.Job == job.Job {
				block.Descriptions = append(block.Descriptions, d)
			}
		}
		for _, it := range items {
			if it.Job == job.Job {
				block.Items = append(block.Items, it)
			}
		}
		blocks = append(blocks, block)
	}
	return blocks
}
