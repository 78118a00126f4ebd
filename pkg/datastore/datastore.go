// Package datastore loads the career records from a directory of YAML files.
package datastore

import (
	"cmp"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/xrsl/texcv/pkg/log"
	"github.com/xrsl/texcv/pkg/model"
)

// Known data files. Every file is optional.
const (
	SummaryFile    = "summary.yaml"
	EducationFile  = "education.yaml"
	JobsFile       = "jobs.yaml"
	SkillsFile     = "skills.yaml"
	LanguagesFile  = "languages.yaml"
	CarStoriesFile = "carstories.yaml"
	HeadersFile    = "headers.yaml"
	StatementsFile = "statements.yaml"
)

// Files lists the known data files in load order.
var Files = []string{
	SummaryFile, EducationFile, JobsFile, SkillsFile,
	LanguagesFile, CarStoriesFile, HeadersFile, StatementsFile,
}

// Store holds the loaded, sorted collections. It is read-only after Load.
type Store struct {
	Dir        string
	Summary    *model.Summary
	Headers    *model.Headers
	Education  []model.Education
	Jobs       []model.Job
	Skills     []model.SkillCategory
	Languages  []model.Language
	CarStories []model.CarStory
	Statements []model.Statement
}

// Load reads every known file present in dir. A missing file leaves its
// collection empty; a malformed file is an error.
func Load(dir string, logger *slog.Logger) (store *Store, err error) {
	logger = log.OrDiscard(logger)
	store = &Store{Dir: dir}

	var summary model.Summary
	var found bool
	if found, err = loadFile(dir, SummaryFile, &summary); err != nil {
		return nil, err
	} else if found {
		store.Summary = &summary
	}

	if _, err = loadFile(dir, EducationFile, &store.Education); err != nil {
		return nil, err
	}
	if _, err = loadFile(dir, JobsFile, &store.Jobs); err != nil {
		return nil, err
	}
	if _, err = loadFile(dir, SkillsFile, &store.Skills); err != nil {
		return nil, err
	}
	if _, err = loadFile(dir, LanguagesFile, &store.Languages); err != nil {
		return nil, err
	}
	if _, err = loadFile(dir, CarStoriesFile, &store.CarStories); err != nil {
		return nil, err
	}
	if _, err = loadFile(dir, StatementsFile, &store.Statements); err != nil {
		return nil, err
	}
	if store.Headers, err = loadHeaders(dir); err != nil {
		return nil, err
	}

	store.sort()

	logger.Debug("data loaded",
		"dir", dir,
		"jobs", len(store.Jobs),
		"education", len(store.Education),
		"skills", len(store.Skills),
		"languages", len(store.Languages),
		"carstories", len(store.CarStories),
		"statements", len(store.Statements),
	)
	return store, nil
}

func (s *Store) sort() {
	slices.SortStableFunc(s.Education, func(a, b model.Education) int { return cmp.Compare(a.Edu, b.Edu) })
	slices.SortStableFunc(s.Jobs, func(a, b model.Job) int { return cmp.Compare(a.Job, b.Job) })
	slices.SortStableFunc(s.CarStories, func(a, b model.CarStory) int { return cmp.Compare(a.Job, b.Job) })
	slices.SortStableFunc(s.Statements, func(a, b model.Statement) int { return cmp.Compare(a.Job, b.Job) })
	slices.SortStableFunc(s.Skills, func(a, b model.SkillCategory) int { return cmp.Compare(a.Category, b.Category) })
	slices.SortStableFunc(s.Languages, func(a, b model.Language) int { return cmp.Compare(a.Language, b.Language) })
}

// Present reports which known files exist in dir.
func Present(dir string) map[string]bool {
	present := make(map[string]bool, len(Files))
	for _, name := range Files {
		info, err := os.Stat(filepath.Join(dir, name))
		present[name] = err == nil && !info.IsDir()
	}
	return present
}

// readFile returns the file content, or nil with found=false when missing.
func readFile(dir, name string) (data []byte, found bool, err error) {
	path := filepath.Join(dir, name)
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		err = errors.Wrapf(err, "failed to read %s", path)
		return nil, false, err
	}
	return data, true, nil
}

func loadFile(dir, name string, out any) (found bool, err error) {
	var data []byte
	data, found, err = readFile(dir, name)
	if err != nil || !found {
		return found, err
	}

	if err = yaml.Unmarshal(data, out); err != nil {
		err = errors.Wrapf(err, "failed to parse %s", filepath.Join(dir, name))
		return found, err
	}
	return found, nil
}
