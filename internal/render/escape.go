package render

import "strings"

// escaper neutralizes the characters LaTeX treats as commands or syntax:
// \ { } $ & % # ^ _ ~. Replacement text is never re-scanned.
var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`^`, `\textasciicircum{}`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
)

// Escape makes arbitrary user text safe to interpolate into LaTeX. Every
// scalar entering the template data passes through here, without exception.
func Escape(text string) string {
	return escaper.Replace(text)
}
