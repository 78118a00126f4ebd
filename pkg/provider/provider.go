// Package provider turns career records and a posting into generated résumé
// content using a generative backend.
//
// Every operation degrades instead of failing: when the backend errors, the
// answer is empty, or it decodes to an empty list, the operation logs a
// warning and returns a fixed placeholder of the same shape. Answers that are
// not valid JSON for the target shape are wrapped as free text into the
// simplest valid value.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xrsl/texcv/pkg/cost"
	"github.com/xrsl/texcv/pkg/llm"
	"github.com/xrsl/texcv/pkg/log"
	"github.com/xrsl/texcv/pkg/model"
	"github.com/xrsl/texcv/pkg/prompts"
)

// Operation labels recorded by the cost tracker.
const (
	OpSummary          = "get_summary"
	OpJobSummaries     = "get_job_summaries"
	OpExperienceSelect = "get_experience.select"
	OpExperienceRefine = "get_experience.refine"
	OpLetterinfo       = "get_letterinfo"
)

// CallTracker records the token usage of a call. *cost.Tracker satisfies it.
type CallTracker interface {
	TrackCall(provider, model, operation string, inputTokens, outputTokens int) cost.Call
}

type Provider struct {
	backend llm.Backend
	prompts *prompts.Set
	tracker CallTracker
	logger  *slog.Logger
}

// New returns a Provider. A nil prompt set uses the embedded prompts and a
// nil tracker disables cost tracking.
func New(backend llm.Backend, set *prompts.Set, tracker CallTracker, logger *slog.Logger) *Provider {
	if set == nil {
		set = prompts.New("")
	}
	return &Provider{
		backend: backend,
		prompts: set,
		tracker: tracker,
		logger:  log.OrDiscard(logger),
	}
}

// GetSummary writes the professional summary.
func (p *Provider) GetSummary(ctx context.Context, skills []model.SkillCategory, statements []model.Statement, posting string) (model.Summary, error) {
	text, err := p.complete(ctx, OpSummary, prompts.Summary, prompts.Data{
		Skills:     toJSON(skills),
		Statements: toJSON(statements),
		Posting:    posting,
	})
	if err != nil {
		p.warn(OpSummary, err)
		return PlaceholderSummary(), nil
	}

	summary, err := decodeObject[model.Summary](text)
	if err != nil {
		p.wrapping(OpSummary, err)
		return model.Summary{Summary: text}, nil
	}
	return summary, nil
}

// GetJobSummaries writes a description for each job.
func (p *Provider) GetJobSummaries(ctx context.Context, jobs []model.Job, statements []model.Statement, posting string) ([]model.JobDescription, error) {
	text, err := p.complete(ctx, OpJobSummaries, prompts.JobDescription, prompts.Data{
		Jobs:       toJSON(jobs),
		Statements: toJSON(statements),
		Posting:    posting,
	})
	if err != nil {
		p.warn(OpJobSummaries, err)
		return PlaceholderJobDescriptions(jobs), nil
	}

	descs, err := decodeList[model.JobDescription](text)
	switch {
	case err == nil:
		return descs, nil
	case errors.Is(err, ErrEmptyResult):
		p.warn(OpJobSummaries, err)
		return PlaceholderJobDescriptions(jobs), nil
	default:
		p.wrapping(OpJobSummaries, err)
		return []model.JobDescription{{Job: firstJobID(jobs), Description: text}}, nil
	}
}

// GetExperience selects the achievements that fit the posting, then rewrites
// the selection into bullets consistent with descriptions.
func (p *Provider) GetExperience(ctx context.Context, jobs []model.Job, achievements []model.CarStory, descriptions []model.JobDescription, posting string) ([]model.Cvitem, error) {
	selected, ok := p.selectAchievements(ctx, jobs, achievements, posting)
	if !ok {
		return PlaceholderCvitems(jobs), nil
	}

	text, err := p.complete(ctx, OpExperienceRefine, prompts.RefineCars, prompts.Data{
		Cars:         toJSON(selected),
		Descriptions: toJSON(descriptions),
		Posting:      posting,
	})
	if err != nil {
		p.warn(OpExperienceRefine, err)
		return PlaceholderCvitems(jobs), nil
	}

	items, err := decodeList[model.Cvitem](text)
	switch {
	case err == nil:
		return items, nil
	case errors.Is(err, ErrEmptyResult):
		p.warn(OpExperienceRefine, err)
		return PlaceholderCvitems(jobs), nil
	default:
		p.wrapping(OpExperienceRefine, err)
		return []model.Cvitem{{Job: firstJobID(jobs), Item: text}}, nil
	}
}

func (p *Provider) selectAchievements(ctx context.Context, jobs []model.Job, achievements []model.CarStory, posting string) ([]model.CarStory, bool) {
	text, err := p.complete(ctx, OpExperienceSelect, prompts.Cars, prompts.Data{
		Jobs:    toJSON(jobs),
		Cars:    toJSON(achievements),
		Posting: posting,
	})
	if err != nil {
		p.warn(OpExperienceSelect, err)
		return nil, false
	}

	selected, err := decodeList[model.CarStory](text)
	switch {
	case err == nil:
		return selected, true
	case errors.Is(err, ErrEmptyResult):
		p.warn(OpExperienceSelect, err)
		return nil, false
	default:
		p.wrapping(OpExperienceSelect, err)
		return []model.CarStory{{Job: firstJobID(jobs), Challenge: text}}, true
	}
}

// GetLetterinfo writes the cover letter fields.
func (p *Provider) GetLetterinfo(ctx context.Context, statements []model.Statement, achievements []model.CarStory, posting string) (model.Letterinfo, error) {
	text, err := p.complete(ctx, OpLetterinfo, prompts.Letter, prompts.Data{
		Statements: toJSON(statements),
		Cars:       toJSON(achievements),
		Posting:    posting,
	})
	if err != nil {
		p.warn(OpLetterinfo, err)
		return PlaceholderLetterinfo(), nil
	}

	info, err := decodeObject[model.Letterinfo](text)
	if err != nil {
		p.wrapping(OpLetterinfo, err)
		return model.Letterinfo{Content: text}, nil
	}
	return info, nil
}

// complete renders a prompt, sends it and tracks its usage. The returned text
// is trimmed and never empty.
func (p *Provider) complete(ctx context.Context, operation, promptName string, data prompts.Data) (string, error) {
	if p.backend == nil {
		return "", fmt.Errorf("no backend configured")
	}

	prompt, err := p.prompts.Render(promptName, data)
	if err != nil {
		return "", err
	}

	p.logger.Debug("sending prompt", "operation", operation, "model", p.backend.Model(), "chars", len(prompt))
	c, err := p.backend.Complete(ctx, prompt)
	if err != nil {
		// A failed call can still have been billed.
		if c.Usage != nil {
			p.track(operation, prompt, c)
		}
		return "", err
	}
	p.track(operation, prompt, c)

	text := strings.TrimSpace(c.Text)
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	return text, nil
}

func (p *Provider) track(operation, prompt string, c llm.Completion) {
	if p.tracker == nil {
		return
	}
	in, out := EstimateTokens(prompt), EstimateTokens(c.Text)
	if c.Usage != nil {
		in, out = c.Usage.InputTokens, c.Usage.OutputTokens
	}
	p.tracker.TrackCall(p.backend.Name(), p.backend.Model(), operation, in, out)
}

func (p *Provider) warn(operation string, err error) {
	p.logger.Warn("generation failed, using placeholder", "operation", operation, "error", err)
}

func (p *Provider) wrapping(operation string, err error) {
	p.logger.Warn("answer is not structured, using it as free text", "operation", operation, "error", err)
}
