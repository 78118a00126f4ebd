package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xrsl/texcv/pkg/config"
	"github.com/xrsl/texcv/pkg/datastore"
	"github.com/xrsl/texcv/pkg/prompts"
	"github.com/xrsl/texcv/pkg/render"
	"github.com/xrsl/texcv/pkg/style"
	"github.com/xrsl/texcv/pkg/utils"
)

var initResetFlag bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write editable prompts and templates",
	Long: `Initialize texcv in the current directory.

Creates:
  .texcv/prompts/      Prompts sent to the model
  .texcv/templates/    LaTeX templates for the résumé and cover letter
  data/                Directory for your career data (YAML)

Files in .texcv/ replace the built-in defaults of the same name. Existing
files are kept unless --reset is given.`,
	GroupID: style.GroupSetup,
	RunE:    runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initResetFlag, "reset", "r", false, "Overwrite existing prompts and templates with the defaults")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	promptFiles, err := prompts.Init(cfg.PromptsDir, initResetFlag)
	if err != nil {
		return fmt.Errorf("failed to write prompts: %w", err)
	}
	templateFiles, err := render.Init(cfg.TemplatesDir, initResetFlag)
	if err != nil {
		return fmt.Errorf("failed to write templates: %w", err)
	}
	if err := utils.EnsureGitignore(config.Dir); err != nil {
		printf("%s Could not write %s/.gitignore: %v\n", style.Warn(), config.Dir, err)
	}

	written := append(promptFiles, templateFiles...)
	for _, path := range written {
		printf("%s Wrote %s\n", style.Check(), style.C(style.Cyan, path))
	}
	if len(written) == 0 {
		printf("%s Already initialized (use --reset to restore the defaults)\n", style.Check())
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}
	missing := 0
	for _, name := range datastore.Files {
		if !utils.FileExists(cfg.DataDir + "/" + name) {
			missing++
		}
	}
	if missing == len(datastore.Files) {
		printf("\n%s Add your career data to %s: %v\n", style.Arrow(), style.C(style.Cyan, cfg.DataDir), datastore.Files)
	}

	printf("\n%s Try: %s\n\n", style.B(style.C(style.Green, "Ready!")), style.C(style.Cyan, "texcv generate <posting> <project>"))
	return nil
}
