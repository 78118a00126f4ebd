// Package model defines the career records loaded from the data directory
// and the records generated for a posting.
//
// Generated records reference a Job by its integer id. Grouping by that id is
// a filter: several records may share one id and unmatched ids simply group
// to nothing.
package model

import (
	"fmt"
	"strings"
)

// Job is a position held. Job is the identity used by generated records.
type Job struct {
	Job          int      `json:"job" yaml:"job"`
	Position     string   `json:"position" yaml:"position"`
	Organization string   `json:"organization" yaml:"organization"`
	Location     string   `json:"location" yaml:"location"`
	Date         []string `json:"date" yaml:"date"`
}

// Start returns the start label of the date pair.
func (j Job) Start() string { return dateAt(j.Date, 0) }

// End returns the end label of the date pair.
func (j Job) End() string { return dateAt(j.Date, 1) }

type Education struct {
	Edu          int      `json:"edu" yaml:"edu"`
	Title        string   `json:"title" yaml:"title"`
	Organization string   `json:"organization" yaml:"organization"`
	Location     string   `json:"location" yaml:"location"`
	Date         []string `json:"date" yaml:"date"`
	Desc         string   `json:"desc,omitempty" yaml:"desc,omitempty"`
}

func (e Education) Start() string { return dateAt(e.Date, 0) }
func (e Education) End() string   { return dateAt(e.Date, 1) }

func dateAt(date []string, i int) string {
	if i < len(date) {
		return date[i]
	}
	return ""
}

type SkillCategory struct {
	Category string   `json:"category" yaml:"category"`
	Items    []string `json:"items" yaml:"items"`
}

type Language struct {
	Language string `json:"language" yaml:"language"`
	Level    string `json:"level" yaml:"level"`
}

// Statement is a free-form claim about the work done in a job.
type Statement struct {
	Job       int    `json:"job" yaml:"job"`
	Statement string `json:"statement" yaml:"statement"`
}

// CarStory is a challenge-action-result achievement tied to a job.
type CarStory struct {
	Job       int      `json:"job" yaml:"job"`
	Challenge string   `json:"challenge" yaml:"challenge"`
	Action    string   `json:"action" yaml:"action"`
	Result    string   `json:"result" yaml:"result"`
	Skills    []string `json:"skills" yaml:"skills"`
}

// Validate reports a story without any narrative text.
func (c CarStory) Validate() error {
	if strings.TrimSpace(c.Challenge+c.Action+c.Result) == "" {
		return fmt.Errorf("car story for job %d has no text", c.Job)
	}
	return nil
}

// JobDescription is generated prose describing a job.
type JobDescription struct {
	Job         int    `json:"job" yaml:"job"`
	Description string `json:"description" yaml:"description"`
}

func (d JobDescription) Validate() error {
	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("job description for job %d is empty", d.Job)
	}
	return nil
}

// Cvitem is a generated résumé bullet.
type Cvitem struct {
	Job  int    `json:"job" yaml:"job"`
	Item string `json:"item" yaml:"item"`
}

func (c Cvitem) Validate() error {
	if strings.TrimSpace(c.Item) == "" {
		return fmt.Errorf("cv item for job %d is empty", c.Job)
	}
	return nil
}

type Summary struct {
	Summary string `json:"summary" yaml:"summary"`
}

func (s Summary) Validate() error {
	if strings.TrimSpace(s.Summary) == "" {
		return fmt.Errorf("summary is empty")
	}
	return nil
}

// Letterinfo holds the generated cover letter fields.
type Letterinfo struct {
	Recipient []string `json:"recipient" yaml:"recipient"`
	Subject   string   `json:"subject" yaml:"subject"`
	Opening   string   `json:"opening" yaml:"opening"`
	Content   string   `json:"content" yaml:"content"`
}

func (l Letterinfo) Validate() error {
	if strings.TrimSpace(l.Content) == "" {
		return fmt.Errorf("letter content is empty")
	}
	return nil
}

// JobBlock is the render unit for one job: the job with its matching
// descriptions and bullets.
type JobBlock struct {
	Job          Job
	Descriptions []JobDescription
	Items        []Cvitem
}
