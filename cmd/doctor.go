package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/xrsl/texcv/pkg/ai"
	"github.com/xrsl/texcv/pkg/config"
	"github.com/xrsl/texcv/pkg/datastore"
	"github.com/xrsl/texcv/pkg/style"
	"github.com/xrsl/texcv/pkg/utils"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Short:   "Check system setup for texcv generate",
	Long:    `Verify the credentials, LaTeX engine and data files needed by texcv generate.`,
	GroupID: style.GroupSetup,
	RunE:    runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Printf("%s Checking texcv setup\n\n", style.Arrow())

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	allGood := true

	// Check 1: provider credentials
	switch env := ai.CredentialEnv(cfg.Provider); {
	case cfg.Provider == ai.Stub:
		fmt.Printf("%s Provider stub needs no credentials\n", style.Check())
	case env == "":
		fmt.Printf("%s Unknown provider %q (valid: %v)\n", style.Cross(), cfg.Provider, ai.Providers())
		allGood = false
	case os.Getenv(env) == "":
		fmt.Printf("%s %s is not set (provider %s)\n", style.Cross(), env, cfg.Provider)
		fmt.Printf("  Fix: export %s=... or add it to .env\n", env)
		allGood = false
	default:
		model := cfg.Model
		if model == "" {
			model = ai.DefaultModel(cfg.Provider)
		}
		fmt.Printf("%s %s set (provider %s, model %s)\n", style.Check(), env, cfg.Provider, model)
	}
	if cfg.Provider == ai.Custom && cfg.BaseURL == "" {
		fmt.Printf("%s base_url is required for the custom provider\n", style.Cross())
		fmt.Printf("  Fix: texcv config set base_url <url>\n")
		allGood = false
	}

	// Check 2: LaTeX engine
	if _, err := exec.LookPath(cfg.LatexEngine); err != nil {
		fmt.Printf("%s %s not found (only needed for --compile)\n", style.Warn(), cfg.LatexEngine)
	} else {
		fmt.Printf("%s %s installed\n", style.Check(), cfg.LatexEngine)
	}

	// Check 3: data files
	present := datastore.Present(cfg.DataDir)
	found := 0
	for _, name := range datastore.Files {
		if present[name] {
			found++
		}
	}
	switch {
	case found == 0:
		fmt.Printf("%s No data files in %s\n", style.Cross(), cfg.DataDir)
		allGood = false
	default:
		fmt.Printf("%s %d of %d data files in %s\n", style.Check(), found, len(datastore.Files), cfg.DataDir)
		for _, name := range datastore.Files {
			if !present[name] {
				fmt.Printf("  %s\n", style.C(style.Gray, "missing "+name))
			}
		}
		if _, err := datastore.Load(cfg.DataDir, nil); err != nil {
			fmt.Printf("%s %v\n", style.Cross(), err)
			allGood = false
		}
	}

	// Check 4: customizations
	if utils.FileExists(cfg.PromptsDir+"/summary.md") || utils.FileExists(cfg.TemplatesDir+"/resume.tex.tmpl") {
		fmt.Printf("%s Custom prompts/templates in %s\n", style.Check(), config.Dir)
	} else {
		fmt.Printf("%s Using built-in prompts and templates\n", style.Check())
	}

	fmt.Println()
	if allGood {
		fmt.Printf("%s Ready to generate\n", style.Check())
		return nil
	}
	return fmt.Errorf("setup incomplete")
}
