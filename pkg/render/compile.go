package render

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/xrsl/texcv/pkg/log"
)

// DefaultEngine typesets the awesome-cv class, which needs fontspec.
const DefaultEngine = "xelatex"

// Compiler runs a LaTeX engine on written documents.
type Compiler struct {
	Command string
	// Passes defaults to 2 so cross-references resolve.
	Passes int
	Logger *slog.Logger
}

// Compile typesets path in its own directory.
func (c Compiler) Compile(ctx context.Context, path string) error {
	command := c.Command
	if command == "" {
		command = DefaultEngine
	}
	passes := c.Passes
	if passes <= 0 {
		passes = 2
	}
	logger := log.OrDiscard(c.Logger)

	for pass := 1; pass <= passes; pass++ {
		logger.Debug("typesetting", "file", path, "pass", pass)
		cmd := exec.CommandContext(ctx, command, "-interaction=nonstopmode", filepath.Base(path))
		cmd.Dir = filepath.Dir(path)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("%s failed on %s (pass %d): %w\n%s", command, filepath.Base(path), pass, err, tail(string(out), 20))
		}
	}
	return nil
}

// CompileAll compiles every path. Failures are logged and do not stop the
// remaining documents; the number of failures is returned.
func (c Compiler) CompileAll(ctx context.Context, paths []string) int {
	logger := log.OrDiscard(c.Logger)
	failed := 0
	for _, path := range paths {
		if err := c.Compile(ctx, path); err != nil {
			logger.Warn("typesetting failed", "file", path, "error", err)
			failed++
		}
	}
	return failed
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
