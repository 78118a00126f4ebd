package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xrsl/texcv/pkg/ai"
	"github.com/xrsl/texcv/pkg/config"
	"github.com/xrsl/texcv/pkg/style"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for texcv.

Bash:
  $ source <(texcv completion bash)

Zsh:
  $ texcv completion zsh > "${fpath[1]}/_texcv"

Fish:
  $ texcv completion fish | source

PowerShell:
  PS> texcv completion powershell | Out-String | Invoke-Expression
`,
	GroupID:               style.GroupSetup,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeProviders completes a --provider flag.
func completeProviders(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return ai.Providers(), cobra.ShellCompDirectiveNoFileComp
}

// completeConfigKeys completes the key argument of config get/set.
func completeConfigKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return config.Keys(), cobra.ShellCompDirectiveNoFileComp
}
