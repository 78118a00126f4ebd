package provider

import "github.com/xrsl/texcv/pkg/model"

// Placeholder texts used when generation fails.
const (
	PlaceholderSummaryText     = "Experienced professional with a record of delivering results in the roles listed below."
	PlaceholderDescriptionText = "Responsible for the delivery and operation of the team's core work."
	PlaceholderItemText        = "Delivered projects end to end in collaboration with colleagues and stakeholders."
	PlaceholderSubject         = "Application"
	PlaceholderOpening         = "Dear Hiring Team,"
	PlaceholderLetterText      = "I am writing to apply for the advertised position. My experience, summarized in the enclosed résumé, matches the requirements of the role, and I would welcome the opportunity to discuss it with you."
)

func PlaceholderSummary() model.Summary {
	return model.Summary{Summary: PlaceholderSummaryText}
}

// PlaceholderJobDescriptions returns one description per job.
func PlaceholderJobDescriptions(jobs []model.Job) []model.JobDescription {
	out := make([]model.JobDescription, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, model.JobDescription{Job: j.Job, Description: PlaceholderDescriptionText})
	}
	return out
}

// PlaceholderCvitems returns one bullet per job.
func PlaceholderCvitems(jobs []model.Job) []model.Cvitem {
	out := make([]model.Cvitem, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, model.Cvitem{Job: j.Job, Item: PlaceholderItemText})
	}
	return out
}

func PlaceholderLetterinfo() model.Letterinfo {
	return model.Letterinfo{
		Subject: PlaceholderSubject,
		Opening: PlaceholderOpening,
		Content: PlaceholderLetterText,
	}
}

func firstJobID(jobs []model.Job) int {
	if len(jobs) == 0 {
		return 0
	}
	return jobs[0].Job
}
