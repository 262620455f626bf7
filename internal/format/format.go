// Package format holds the small pure helpers shared by the views: sanitizing
// server-supplied text, timestamps and number formatting.
package format

import (
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// timestampLayouts are tried in order when parsing event timestamps. The API
// emits RFC 3339, but naive ISO timestamps without a zone also show up.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// DisplayLayout is the layout used for rendered timestamps.
const DisplayLayout = "2006-01-02 15:04:05"

var printer = message.NewPrinter(language.English)

// Sanitize strips terminal escape sequences and control characters from
// server-supplied text so it cannot restyle or move the cursor when written
// into the UI. Newlines and tabs survive.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeOr sanitizes s, returning fallback when the result is blank.
func SanitizeOr(s, fallback string) string {
	out := Sanitize(s)
	if strings.TrimSpace(out) == "" {
		return fallback
	}
	return out
}

// markdownEscaper backslash-escapes markdown syntax and folds line breaks so
// the text stays inside the inline element it is written into.
var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"`", "\\`",
	"*", "\\*",
	"_", "\\_",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"#", "\\#",
	">", "\\>",
	"<", "\\<",
	"!", "\\!",
	"|", "\\|",
	"~", "\\~",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	"\t", " ",
)

// EscapeMarkdown sanitizes s and escapes it for use as inline markdown text.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(Sanitize(s))
}

// Timestamp renders an API timestamp in local time. Empty input renders as
// "Unknown"; input that does not parse is returned sanitized and unchanged.
func Timestamp(ts string) string {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return "Unknown"
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Local().Format(DisplayLayout)
		}
	}
	return Sanitize(ts)
}

// Count formats an integer with thousands separators (12,345).
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Percentage returns score/max as a percentage, or 0 when max is not positive.
func Percentage(score, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(score) / float64(max) * 100
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// TabLabel shortens a sub-scenario name for the tab strip:
// "Scenario 2: Data Exfiltration" becomes "Data Exfiltration".
func TabLabel(name string) string {
	label := strings.Replace(name, "Scenario ", "", 1)
	i := 0
	for i < len(label) && label[i] >= '0' && label[i] <= '9' {
		i++
	}
	if i > 0 && i < len(label) && label[i] == ':' {
		label = strings.TrimLeft(label[i+1:], " \t")
	}
	return label
}
