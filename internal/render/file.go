package render

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/panelhost/canvas/internal/artifact"
	"github.com/panelhost/canvas/internal/textdiff"
)

type fileRenderer struct{}

func (r *fileRenderer) Type() artifact.Type { return artifact.TypeFile }

// Render shows a file body with syntax highlighting. StartLine/EndLine
// select a 1-based inclusive range; line numbering in the output keeps
// the original file's numbers.
func (r *fileRenderer) Render(a *artifact.Artifact) (string, error) {
	file, err := a.DecodeFile()
	if err != nil {
		return "", fmt.Errorf("decoding file payload: %w", err)
	}

	content := file.Content
	startLine := 1
	if file.StartLine > 0 || file.EndLine > 0 {
		content, startLine = sliceLines(content, file.StartLine, file.EndLine)
	}

	var body strings.Builder
	if file.Path != "" {
		body.WriteString("<p><code>")
		body.WriteString(escape(file.Path))
		body.WriteString("</code></p>")
	}

	highlighted, err := highlight(content, file.Language, file.Path, startLine)
	if err != nil {
		// Highlighting is cosmetic; fall back to plain escaped text.
		body.WriteString("<pre>")
		body.WriteString(escape(content))
		body.WriteString("</pre>")
	} else {
		body.WriteString(highlighted)
	}

	title := a.Title
	if title == "" {
		title = file.Path
	}
	if title == "" {
		title = string(artifact.TypeFile)
	}
	return page(title, body.String()), nil
}

// sliceLines cuts a 1-based inclusive line range out of content and
// returns the cut text plus the first retained line's number.
func sliceLines(content string, start, end int) (string, int) {
	lines := textdiff.SplitLines(content)
	if start < 1 {
		start = 1
	}
	if end < start || end > len(lines) {
		end = len(lines)
	}
	if start > len(lines) {
		return "", start
	}
	return strings.Join(lines[start-1:end], "\n"), start
}

// highlight renders source through chroma. The lexer is picked by
// language name first, filename second, plain text last.
func highlight(content, language, path string, baseLine int) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil && path != "" {
		lexer = lexers.Match(path)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return "", fmt.Errorf("tokenizing source: %w", err)
	}

	formatter := chromahtml.New(
		chromahtml.WithLineNumbers(true),
		chromahtml.BaseLineNumber(baseLine),
	)
	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return "", fmt.Errorf("formatting source: %w", err)
	}
	return sb.String(), nil
}
