package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xrsl/texcv/pkg/ai"
	"github.com/xrsl/texcv/pkg/config"
	"github.com/xrsl/texcv/pkg/style"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage texcv configuration",
	Long: `Read and write texcv settings.

Settings live in .texcv.yaml and can be overridden with TEXCV_<KEY>
environment variables, e.g. TEXCV_PROVIDER=openai. API keys are only read
from the environment (or a .env file):

  ANTHROPIC_API_KEY  OPENAI_API_KEY  CUSTOM_API_KEY  GEMINI_API_KEY`,
	GroupID: style.GroupSetup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configListCmd.RunE(cmd, args)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Example: `  texcv config set provider openai
  texcv config set model gpt-4o-mini
  texcv config set provider custom
  texcv config set base_url http://localhost:11434/v1
  texcv config set cost_tracking false`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeConfigKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if key == "provider" && !isProvider(value) {
			return fmt.Errorf("%w: %q (valid: %v)", ai.ErrUnknownProvider, value, ai.Providers())
		}
		if err := config.Set(key, value); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Get a config value",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeConfigKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.Get(args[0])
		if err != nil {
			return err
		}
		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all config values",
	RunE: func(cmd *cobra.Command, args []string) error {
		all := config.All()

		fmt.Printf("\n%s\n", style.Heading("texcv config", config.Path()))
		for _, key := range config.Keys() {
			hint := ""
			if key == "model" {
				hint = ai.DefaultModel(all["provider"])
			}
			fmt.Println(style.Row(key, all[key], hint))
		}
		fmt.Println()
		return nil
	},
}

func isProvider(name string) bool {
	for _, p := range ai.Providers() {
		if p == name {
			return true
		}
	}
	return false
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
