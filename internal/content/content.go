// Package content holds the static training documents and renders them as
// terminal markdown.
package content

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

//go:embed docs
var docs embed.FS

// BackgroundUnavailable is shown for scenarios without background notes.
const BackgroundUnavailable = "Background details are not available for this scenario."

// Learning returns the learning center document.
func Learning() string { return mustRead("docs/learning.md") }

// Rubric returns the scoring rubric document.
func Rubric() string { return mustRead("docs/rubric.md") }

// Background returns the background notes for a scenario id. ok is false
// when none exist and the fallback text is returned instead.
func Background(scenarioID string) (md string, ok bool) {
	if scenarioID == "" || strings.ContainsAny(scenarioID, "/\\.") {
		return BackgroundUnavailable, false
	}
	data, err := docs.ReadFile(path.Join("docs/backgrounds", scenarioID+".md"))
	if err != nil {
		return BackgroundUnavailable, false
	}
	return string(data), true
}

func mustRead(name string) string {
	data, err := docs.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("content: missing embedded %s: %v", name, err))
	}
	return string(data)
}

// Renderer turns markdown into styled terminal text. Output is cached per
// width since documents are static.
type Renderer struct {
	style string

	mu    sync.Mutex
	cache map[cacheKey]string
}

type cacheKey struct {
	width int
	md    string
}

// NewRenderer creates a renderer for a glamour standard style such as
// "dark", "light" or "notty".
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = "dark"
	}
	return &Renderer{style: style, cache: make(map[cacheKey]string)}
}

// Render renders md wrapped to width. On failure the raw markdown is
// returned along with the error so callers can still show something.
func (r *Renderer) Render(md string, width int) (string, error) {
	if width < 20 {
		width = 20
	}
	key := cacheKey{width: width, md: md}

	r.mu.Lock()
	if out, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return out, nil
	}
	r.mu.Unlock()

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md, fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := tr.Render(md)
	if err != nil {
		return md, fmt.Errorf("render markdown: %w", err)
	}
	out = strings.TrimRight(out, "\n")

	r.mu.Lock()
	r.cache[key] = out
	r.mu.Unlock()
	return out, nil
}
