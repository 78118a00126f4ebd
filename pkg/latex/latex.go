// Package latex escapes generated text for LaTeX documents.
package latex

import "strings"

// escaper replaces every reserved character in a single pass, so the braces
// emitted for \textbackslash{} and friends are never escaped again.
var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`_`, `\_`,
	`%`, `\%`,
	`&`, `\&`,
	`#`, `\#`,
	`$`, `\$`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
)

// Escape escapes LaTeX reserved characters in s and turns blank-line
// paragraph breaks into \par. Apply it once per string.
func Escape(s string) string {
	s = escaper.Replace(s)
	return strings.ReplaceAll(s, "\n\n", "\n\\par\n")
}

// EscapeAll escapes each element of ss.
func EscapeAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = Escape(s)
	}
	return out
}
