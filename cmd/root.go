package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/xrsl/texcv/pkg/log"
	"github.com/xrsl/texcv/pkg/style"
)

var (
	quiet   bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "texcv",
	Short: "Tailored LaTeX résumés and cover letters from your career data",
	Long: `texcv turns structured career data (jobs, education, skills, achievements)
and a job posting into a tailored résumé and cover letter typeset with LaTeX.

Content is generated by a language model (Anthropic, OpenAI, Gemini or any
OpenAI-compatible endpoint). Without network access texcv still writes both
documents, using placeholder text where generation failed.`,
	SilenceUsage: true,
}

func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Grouped, colored help pages
	style.SetupHelp(rootCmd)

	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug output")
}

// newLogger builds the logger handed to every component of a run.
func newLogger() *slog.Logger {
	return log.New(os.Stderr, log.Options{Verbose: verbose, Quiet: quiet})
}

// printf writes progress output unless --quiet is set.
func printf(format string, a ...any) {
	if quiet {
		return
	}
	fmt.Printf(format, a...)
}
