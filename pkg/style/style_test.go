package style

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func withColor(t *testing.T, enabled bool) {
	t.Helper()
	old := NoColor
	NoColor = !enabled
	t.Cleanup(func() { NoColor = old })
}

func TestPaint(t *testing.T) {
	withColor(t, true)
	if got, want := C(Red, "x"), Red+"x"+Reset; got != want {
		t.Errorf("C() = %q, want %q", got, want)
	}
	if got, want := Heading("t", ""), Bold+Cyan+"t"+Reset+"\n"; got != want {
		t.Errorf("Heading() = %q, want %q", got, want)
	}

	withColor(t, false)
	if got := B("x"); got != "x" {
		t.Errorf("B() with NoColor = %q, want plain text", got)
	}
}

func TestRow(t *testing.T) {
	withColor(t, false)
	tests := []struct {
		value, hint, want string
	}{
		{"openai", "", "  provider        openai"},
		{"", "claude-sonnet-4", "  provider        (claude-sonnet-4)"},
		{"", "", "  provider        (not set)"},
	}
	for _, tt := range tests {
		if got := Row("provider", tt.value, tt.hint); got != tt.want {
			t.Errorf("Row(%q, %q) = %q, want %q", tt.value, tt.hint, got, tt.want)
		}
	}
}

func TestPadCommandIgnoresEscapes(t *testing.T) {
	withColor(t, true)
	got := padCommand("init", 8)
	if !strings.HasSuffix(got, Reset+"    ") {
		t.Errorf("padCommand() = %q, want 4 spaces after the colored name", got)
	}
}

func TestSetupHelpGroups(t *testing.T) {
	withColor(t, false)
	root := &cobra.Command{Use: "texcv", Short: "root"}
	SetupHelp(root)
	root.AddCommand(
		&cobra.Command{Use: "generate", Short: "make documents", GroupID: GroupDocuments, Run: func(*cobra.Command, []string) {}},
		&cobra.Command{Use: "doctor", Short: "check setup", GroupID: GroupSetup, Run: func(*cobra.Command, []string) {}},
	)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	help := out.String()
	docs, setup := strings.Index(help, "Documents:"), strings.Index(help, "Setup:")
	if docs < 0 || setup < 0 || docs > setup {
		t.Fatalf("expected Documents then Setup groups in help:\n%s", help)
	}
	if !strings.Contains(help[docs:setup], "generate") {
		t.Errorf("generate should be listed under Documents:\n%s", help)
	}
}
