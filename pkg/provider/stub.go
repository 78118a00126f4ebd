package provider

import (
	"context"

	"github.com/xrsl/texcv/pkg/model"
)

// Stub returns placeholder content without contacting any backend. It needs
// no credentials and never fails.
type Stub struct{}

func (Stub) GetSummary(context.Context, []model.SkillCategory, []model.Statement, string) (model.Summary, error) {
	return PlaceholderSummary(), nil
}

func (Stub) GetJobSummaries(_ context.Context, jobs []model.Job, _ []model.Statement, _ string) ([]model.JobDescription, error) {
	return PlaceholderJobDescriptions(jobs), nil
}

func (Stub) GetExperience(_ context.Context, jobs []model.Job, _ []model.CarStory, _ []model.JobDescription, _ string) ([]model.Cvitem, error) {
	return PlaceholderCvitems(jobs), nil
}

func (Stub) GetLetterinfo(context.Context, []model.Statement, []model.CarStory, string) (model.Letterinfo, error) {
	return PlaceholderLetterinfo(), nil
}
