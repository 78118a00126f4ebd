// Package style renders texcv's terminal output: status glyphs, key/value
// rows and grouped help pages.
package style

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"

	Red     = "\033[0;31m"
	Green   = "\033[0;32m"
	Yellow  = "\033[1;33m"
	Blue    = "\033[0;34m"
	Magenta = "\033[0;35m"
	Cyan    = "\033[0;36m"
	Gray    = "\033[90m"
)

// Command groups shown on the root help page.
const (
	GroupDocuments = "documents"
	GroupSetup     = "setup"
)

// NoColor disables all escape codes. It starts out set when NO_COLOR or
// TEXCV_NO_COLOR is present or stdout is not a terminal.
var NoColor = os.Getenv("NO_COLOR") != "" || os.Getenv("TEXCV_NO_COLOR") != "" || !isTerminal(os.Stdout)

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func paint(text string, codes ...string) string {
	if NoColor || len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "") + text + Reset
}

// C wraps text in color.
func C(color, text string) string { return paint(text, color) }

// B makes text bold.
func B(text string) string { return paint(text, Bold) }

// Check marks a passed step.
func Check() string { return C(Green, "✓") }

// Cross marks a failed step.
func Cross() string { return C(Red, "✗") }

// Warn marks a degraded step.
func Warn() string { return C(Yellow, "!") }

// Arrow introduces a step.
func Arrow() string { return C(Blue, "→") }

// Heading is a bold title followed by a gray subtitle line.
func Heading(title, subtitle string) string {
	if subtitle == "" {
		return paint(title, Bold, Cyan) + "\n"
	}
	return paint(title, Bold, Cyan) + "\n" + C(Gray, subtitle) + "\n"
}

// Row formats an indented key/value line. An empty value prints hint in
// gray instead, or "(not set)" when hint is empty too.
func Row(key, value, hint string) string {
	switch {
	case value != "":
		value = C(Green, value)
	case hint != "":
		value = C(Gray, "("+hint+")")
	default:
		value = C(Gray, "(not set)")
	}
	return fmt.Sprintf("  %-15s %s", key, value)
}

// SetupHelp installs the grouped help and usage pages on root and
// registers the command groups used by subcommands.
func SetupHelp(root *cobra.Command) {
	cobra.AddTemplateFunc("heading", func(s string) string { return paint(s, Bold, Magenta) })
	cobra.AddTemplateFunc("command", func(s string) string { return C(Cyan, s) })
	cobra.AddTemplateFunc("padCommand", padCommand)

	root.AddGroup(
		&cobra.Group{ID: GroupDocuments, Title: "Documents:"},
		&cobra.Group{ID: GroupSetup, Title: "Setup:"},
	)
	root.SetUsageTemplate(usageTemplate)
	root.SetHelpTemplate(helpTemplate)
}

// padCommand pads on the raw name so escape codes do not skew columns.
func padCommand(name string, width int) string {
	if pad := width - len(name); pad > 0 {
		return C(Cyan, name) + strings.Repeat(" ", pad)
	}
	return C(Cyan, name)
}

const commandList = `{{range $group := .Groups}}
{{ heading $group.Title }}{{range $.Commands}}{{if (and .IsAvailableCommand (eq .GroupID $group.ID))}}
  {{padCommand .Name .NamePadding }}  {{.Short}}{{end}}{{end}}
{{end}}{{if not .AllChildCommandsHaveGroup}}
{{ heading "Other:" }}{{range .Commands}}{{if (and .IsAvailableCommand (eq .GroupID ""))}}
  {{padCommand .Name .NamePadding }}  {{.Short}}{{end}}{{end}}
{{end}}`

const usageTemplate = `{{ heading "Usage:" }}
  {{ command .UseLine }}{{if .HasAvailableSubCommands}} [command]{{end}}
{{if .HasAvailableSubCommands}}` + commandList + `
Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

const helpTemplate = `{{if .Long}}{{.Long}}

{{else if .Short}}{{.Short}}

{{end}}{{ heading "Usage:" }}
  {{ command .UseLine }}{{if .HasAvailableSubCommands}} [command]{{end}}
{{if .HasExample}}
{{ heading "Examples:" }}
{{.Example}}
{{end}}{{if .HasAvailableSubCommands}}` + commandList + `{{end}}{{if .HasAvailableLocalFlags}}
{{ heading "Options:" }}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableInheritedFlags}}
{{ heading "Global Options:" }}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableSubCommands}}
Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`
