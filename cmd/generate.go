package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xrsl/texcv/pkg/ai"
	"github.com/xrsl/texcv/pkg/config"
	"github.com/xrsl/texcv/pkg/cost"
	"github.com/xrsl/texcv/pkg/datastore"
	"github.com/xrsl/texcv/pkg/orchestrator"
	"github.com/xrsl/texcv/pkg/posting"
	"github.com/xrsl/texcv/pkg/prompts"
	"github.com/xrsl/texcv/pkg/provider"
	"github.com/xrsl/texcv/pkg/render"
	"github.com/xrsl/texcv/pkg/style"
)

var (
	generateData          string
	generateOutput        string
	generateCompile       bool
	generateNoCost        bool
	generateStub          bool
	generateFetch         bool
	generateProvider      string
	generateModel         string
	generateStoredSummary bool
)

var generateCmd = &cobra.Command{
	Use:     "generate <posting> <project>",
	Aliases: []string{"build"},
	GroupID: style.GroupDocuments,
	Short:   "Generate a tailored résumé and cover letter",
	Long: `Generate resume.<project>.tex and coverletter.<project>.tex for a job posting.

<posting> is a URL or the path of a file holding the posting text. A URL is
passed to the model as-is unless --fetch is given, which downloads the page
and extracts its text.

Every generation step falls back to placeholder text when the model is
unreachable or answers with something unusable, so both documents are always
written. Warnings explain each fallback.`,
	Example: `  texcv generate https://example.com/jobs/42 acme
  texcv generate posting.txt acme --compile
  texcv generate posting.txt acme -p openai -m gpt-4o-mini
  texcv generate posting.txt acme --stub        # no API calls`,
	Args: cobra.ExactArgs(2),
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&generateData, "data", "d", "", "Data directory (default from config: data)")
	f.StringVarP(&generateOutput, "output", "o", "", "Output directory (default from config: .)")
	f.BoolVarP(&generateCompile, "compile", "c", false, "Typeset the documents with the LaTeX engine")
	f.BoolVar(&generateNoCost, "no-cost", false, "Disable cost tracking")
	f.BoolVar(&generateStub, "stub", false, "Use placeholder content instead of a model")
	f.BoolVar(&generateFetch, "fetch", false, "Download a posting URL and use its text")
	f.StringVarP(&generateProvider, "provider", "p", "", "Model provider: "+fmt.Sprint(ai.Providers()))
	f.StringVarP(&generateModel, "model", "m", "", "Model name (default per provider)")
	f.BoolVar(&generateStoredSummary, "stored-summary", false, "Use the summary from summary.yaml instead of generating one")

	_ = generateCmd.RegisterFlagCompletionFunc("provider", completeProviders)
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input, project := args[0], args[1]

	if err := render.ValidateProject(project); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyGenerateFlags(cmd, cfg)
	logger := newLogger()

	store, err := datastore.Load(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	printf("%s Loaded %d jobs, %d achievements from %s\n",
		style.Arrow(), len(store.Jobs), len(store.CarStories), style.C(style.Cyan, cfg.DataDir))

	p, err := posting.Resolve(ctx, input, generateFetch, nil, logger)
	if err != nil {
		return err
	}

	useStub := generateStub || cfg.Provider == ai.Stub

	var tracker *cost.Tracker
	if cfg.CostTracking && !useStub {
		table := cost.LoadPricing(ctx, cost.PricingOptions{
			File:      cfg.PricingFile,
			Remote:    cfg.PricingRemote,
			RemoteURL: cfg.PricingURL,
		}, logger)
		tracker = cost.NewTracker(table, logger)
	}

	var gen orchestrator.Generator
	if useStub {
		printf("%s Using placeholder content (stub)\n", style.Warn())
		gen = provider.Stub{}
	} else {
		backend, err := ai.NewBackend(ai.Settings{
			Provider:     cfg.Provider,
			Model:        cfg.Model,
			MaxTokens:    cfg.MaxTokens,
			BaseURL:      cfg.BaseURL,
			EndpointPath: cfg.EndpointPath,
		})
		if err != nil {
			return err
		}
		defer backend.Close()
		printf("%s Generating with %s\n", style.Arrow(), style.C(style.Cyan, backend.Name()+"/"+backend.Model()))

		var calls provider.CallTracker
		if tracker != nil {
			calls = tracker
		}
		gen = provider.New(backend, prompts.New(cfg.PromptsDir), calls, logger)
	}

	doc, err := orchestrator.New(store, gen, p, logger, orchestrator.Options{
		Project:          project,
		UseStoredSummary: generateStoredSummary,
	}).Assemble(ctx)
	if err != nil {
		return err
	}

	paths, err := render.New(cfg.TemplatesDir, logger).Render(doc, cfg.OutputDir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		printf("%s Wrote %s\n", style.Check(), style.C(style.Cyan, path))
	}

	if generateCompile {
		compiler := render.Compiler{Command: cfg.LatexEngine, Logger: logger}
		if failed := compiler.CompileAll(ctx, paths); failed > 0 {
			printf("%s %d of %d documents failed to typeset\n", style.Warn(), failed, len(paths))
		} else {
			printf("%s Typeset with %s\n", style.Check(), cfg.LatexEngine)
		}
	}

	if tracker != nil {
		if !quiet {
			tracker.PrintSummary(os.Stdout)
		}
		if _, err := tracker.SaveLog(cfg.CostLogDir, project); err != nil {
			logger.Warn("could not save cost log", "error", err)
		}
	}
	return nil
}

// applyGenerateFlags lets explicitly set flags override the config.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("data") {
		cfg.DataDir = generateData
	}
	if f.Changed("output") {
		cfg.OutputDir = generateOutput
	}
	if f.Changed("no-cost") {
		cfg.CostTracking = !generateNoCost
	}
	if f.Changed("provider") {
		cfg.Provider = generateProvider
		// A model configured for another provider does not carry over.
		if !f.Changed("model") {
			cfg.Model = ""
		}
	}
	if f.Changed("model") {
		cfg.Model = generateModel
	}
}
