package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/xrsl/texcv/pkg/style"
)

// Version is set at build time with -ldflags "-X github.com/xrsl/texcv/cmd.Version=...".
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print texcv version",
	GroupID: style.GroupSetup,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("texcv %s\n", Version)
		if verbose {
			if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Printf("  %s\n", info.GoVersion)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
