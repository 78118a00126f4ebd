package utils

import (
	"os"
	"path/filepath"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// EnsureGitignore creates <dir>/.gitignore ignoring everything but the
// customized prompts and templates.
func EnsureGitignore(dir string) error {
	gitignorePath := filepath.Join(dir, ".gitignore")

	if FileExists(gitignorePath) {
		return nil
	}
	return WriteFile(gitignorePath, "*\n!.gitignore\n!prompts/\n!templates/\n")
}
