// Package prompts holds the prompt templates sent to the generative backend.
//
// Defaults are embedded from defaults/. A file with the same name in the
// override directory (see `texcv init`) replaces the embedded default.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/xrsl/texcv/pkg/utils"
)

//go:embed defaults/*.md
var defaults embed.FS

// Prompt names.
const (
	Summary        = "summary.md"
	JobDescription = "jobdescription.md"
	Cars           = "cars.md"
	RefineCars     = "refine-cars.md"
	Letter         = "letter.md"
)

// Names lists every prompt.
var Names = []string{Summary, JobDescription, Cars, RefineCars, Letter}

// Data is substituted into a prompt. Record fields hold JSON.
type Data struct {
	Skills       string
	Statements   string
	Jobs         string
	Cars         string
	Descriptions string
	Posting      string
}

// Set loads prompts from an optional override directory.
type Set struct {
	dir string
}

// New returns a Set reading overrides from dir. An empty dir uses only the
// embedded defaults.
func New(dir string) *Set {
	return &Set{dir: dir}
}

// Load returns the raw text of the named prompt.
func (s *Set) Load(name string) (string, error) {
	if s != nil && s.dir != "" {
		content, err := os.ReadFile(filepath.Join(s.dir, name))
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read prompt %s: %w", name, err)
		}
	}
	return Default(name)
}

// Render executes the named prompt with data.
func (s *Set) Render(name string, data Data) (string, error) {
	text, err := s.Load(name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("error parsing prompt %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

// Default returns the embedded prompt.
func Default(name string) (string, error) {
	content, err := defaults.ReadFile("defaults/" + name)
	if err != nil {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return string(content), nil
}

// Init writes the embedded prompts into dir. Existing files are kept unless
// reset is set.
func Init(dir string, reset bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var written []string
	for _, name := range Names {
		path := filepath.Join(dir, name)
		if !reset {
			if _, err := os.Stat(path); err == nil {
				continue
			}
		}
		content, err := Default(name)
		if err != nil {
			return written, err
		}
		if err := utils.WriteFile(path, content); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
