package usecase

import (
	"regexp"
	"strings"
)

// Applied in order, one pass each. Spans are non-greedy and do not cross lines.
var markdownRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "$1"},
	{regexp.MustCompile(`\*(.+?)\*`), "$1"},
	{regexp.MustCompile(`__(.+?)__`), "$1"},
	{regexp.MustCompile(`_(.+?)_`), "$1"},
	{regexp.MustCompile(`(?m)^[ \t]*(?:#+[ \t]*)+`), ""},
	{regexp.MustCompile("`(.+?)`"), "$1"},
}

// StripMarkdown removes emphasis, heading and inline-code markers and trims
// surrounding whitespace.
func StripMarkdown(text string) string {
	for _, r := range markdownRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return strings.TrimSpace(text)
}
