package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/panelhost/canvas/internal/artifact"
)

// markdownConverter is initialized once and reused. The configuration
// never changes and goldmark instances are safe to share.
var (
	markdownConverter goldmark.Markdown
	markdownOnce      sync.Once
)

func getMarkdownConverter() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownConverter = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
			),
		)
	})
	return markdownConverter
}

type markdownRenderer struct{}

func (r *markdownRenderer) Type() artifact.Type { return artifact.TypeMarkdown }

// Render converts markdown to HTML. Goldmark's default (safe) mode is
// kept: raw HTML in the source is dropped, not passed through, so a
// hostile document cannot inject markup.
func (r *markdownRenderer) Render(a *artifact.Artifact) (string, error) {
	md, err := a.DecodeMarkdown()
	if err != nil {
		return "", fmt.Errorf("decoding markdown payload: %w", err)
	}

	var sb strings.Builder
	if err := getMarkdownConverter().Convert([]byte(md.Content), &sb); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}

	return page(a.DisplayTitle(), sb.String()), nil
}
