// Package render writes the résumé and cover letter LaTeX sources.
//
// Templates use \VAR{ and } as action delimiters because Go's default {{ }}
// collide with LaTeX braces. Generated free text is escaped in the template
// with the latex function; static data from the data directory is inserted
// as written so it may contain LaTeX markup.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/xrsl/texcv/pkg/latex"
	"github.com/xrsl/texcv/pkg/log"
	"github.com/xrsl/texcv/pkg/model"
	"github.com/xrsl/texcv/pkg/utils"
)

//go:embed templates/*.tex.tmpl
var defaults embed.FS

const (
	LeftDelim  = `\VAR{`
	RightDelim = `}`
)

// Kind is a document type. Its name prefixes the output file.
type Kind string

const (
	Resume      Kind = "resume"
	CoverLetter Kind = "coverletter"
)

// Kinds lists the documents produced by a run, in order.
var Kinds = []Kind{Resume, CoverLetter}

// TemplateName is the template file for k.
func (k Kind) TemplateName() string { return string(k) + ".tex.tmpl" }

// FileName is the output file for k and project, e.g. resume.acme.tex.
func (k Kind) FileName(project string) string {
	return fmt.Sprintf("%s.%s.tex", k, project)
}

// Document is everything the templates need.
type Document struct {
	Project    string
	Headers    *model.Headers
	Summary    string
	Jobs       []model.JobBlock
	Education  []model.Education
	Skills     []model.SkillCategory
	Languages  []model.Language
	Letter     model.Letterinfo
	Posting    string
	PostingURL string
}

type Renderer struct {
	dir    string
	logger *slog.Logger
}

// New returns a Renderer. A template file in dir replaces the embedded
// default of the same name.
func New(dir string, logger *slog.Logger) *Renderer {
	return &Renderer{dir: dir, logger: log.OrDiscard(logger)}
}

// Render writes every document into outDir and returns the written paths.
func (r *Renderer) Render(doc *Document, outDir string) ([]string, error) {
	if doc == nil {
		return nil, fmt.Errorf("nothing to render")
	}
	if err := ValidateProject(doc.Project); err != nil {
		return nil, err
	}
	if doc.Headers == nil {
		doc.Headers = &model.Headers{}
	}

	var written []string
	for _, kind := range Kinds {
		content, err := r.Execute(kind, doc)
		if err != nil {
			return written, err
		}
		path := filepath.Join(outDir, kind.FileName(doc.Project))
		if err := utils.WriteFile(path, content); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		r.logger.Info("wrote document", "path", path)
		written = append(written, path)
	}
	return written, nil
}

// Execute renders one document to a string.
func (r *Renderer) Execute(kind Kind, doc *Document) (string, error) {
	text, err := r.load(kind.TemplateName())
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(kind.TemplateName()).
		Delims(LeftDelim, RightDelim).
		Funcs(funcs).
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", kind.TemplateName(), err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", kind.TemplateName(), err)
	}
	return buf.String(), nil
}

func (r *Renderer) load(name string) (string, error) {
	if r.dir != "" {
		content, err := os.ReadFile(filepath.Join(r.dir, name))
		if err == nil {
			r.logger.Debug("using custom template", "file", name)
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read template %s: %w", name, err)
		}
	}
	content, err := defaults.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("unknown template %q", name)
	}
	return string(content), nil
}

// ValidateProject rejects project names that cannot be part of a file name.
func ValidateProject(project string) error {
	if strings.TrimSpace(project) == "" {
		return fmt.Errorf("project name is required")
	}
	if strings.ContainsAny(project, `/\`) || project == "." || project == ".." {
		return fmt.Errorf("invalid project name %q", project)
	}
	return nil
}

// Init writes the embedded templates into dir. Existing files are kept
// unless reset is set.
func Init(dir string, reset bool) ([]string, error) {
	var written []string
	for _, kind := range Kinds {
		path := filepath.Join(dir, kind.TemplateName())
		if !reset && utils.FileExists(path) {
			continue
		}
		content, err := defaults.ReadFile("templates/" + kind.TemplateName())
		if err != nil {
			return written, err
		}
		if err := utils.WriteFile(path, string(content)); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

var funcs = template.FuncMap{
	"latex":   latex.Escape,
	"join":    strings.Join,
	"first":   first,
	"rest":    rest,
	"lines":   lines,
	"headers": headerTags,
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func rest(values []string) []string {
	if len(values) < 2 {
		return nil
	}
	return values[1:]
}

// lines escapes each value and joins them with LaTeX line breaks.
func lines(values []string) string {
	return strings.Join(latex.EscapeAll(values), `\\ `)
}

// headerTags renders each header field as a command, e.g. \name{Jane}{Doe}.
func headerTags(h *model.Headers) string {
	if h == nil {
		return ""
	}
	var out []string
	for _, f := range h.Fields {
		if f.Key == "" || len(f.Values) == 0 {
			continue
		}
		var b strings.Builder
		b.WriteString(`\` + f.Key)
		for _, v := range f.Values {
			b.WriteString("{" + v + "}")
		}
		out = append(out, b.String())
	}
	return strings.Join(out, "\n")
}
