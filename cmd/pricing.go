package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xrsl/texcv/pkg/config"
	"github.com/xrsl/texcv/pkg/cost"
	"github.com/xrsl/texcv/pkg/style"
)

var pricingProvider string

var pricingCmd = &cobra.Command{
	Use:   "pricing <model>",
	Short: "Show the price used for a model",
	Long: `Show the per-million-token price the cost tracker applies to a model.

Prices come from pricing.json if present, else the remote price list, else
the built-in table. The provider is inferred from the model name unless
--provider is given.`,
	Example: `  texcv pricing claude-sonnet-4-20250514
  texcv pricing llama3 --provider other`,
	Args:    cobra.ExactArgs(1),
	GroupID: style.GroupDocuments,
	RunE:    runPricing,
}

func init() {
	pricingCmd.Flags().StringVarP(&pricingProvider, "provider", "p", "", "Price table provider (anthropic, openai, google, other, ...)")
	rootCmd.AddCommand(pricingCmd)
}

func runPricing(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	model := args[0]
	provider := pricingProvider
	if provider == "" {
		provider = cost.InferProvider(model)
	}

	table := cost.LoadPricing(cmd.Context(), cost.PricingOptions{
		File:      cfg.PricingFile,
		Remote:    cfg.PricingRemote,
		RemoteURL: cfg.PricingURL,
	}, newLogger())
	price, ok := cost.NewTracker(table, nil).Lookup(provider, model)

	note := style.C(style.Gray, "(matched)")
	if !ok {
		note = style.C(style.Yellow, "(no match, fallback estimate)")
	}
	fmt.Printf("%s/%s %s\n", provider, style.C(style.Cyan, model), note)
	fmt.Println(style.Row("input", fmt.Sprintf("$%.2f per 1M tokens", price.Input), ""))
	fmt.Println(style.Row("output", fmt.Sprintf("$%.2f per 1M tokens", price.Output), ""))
	return nil
}
