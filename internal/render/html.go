package render

import (
	"bytes"
	"encoding/json"
	"html"
	"html/template"
	"strings"
)

// pageTemplate is the shared document scaffold around every rendered
// body. It mirrors what an embedded webview expects: self-contained,
// dark-mode aware, no external stylesheet.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 16px; color: #24292f; background: #ffffff; }
pre, code, td.line { font-family: "SF Mono", Consolas, monospace; font-size: 12px; }
pre { background: #f6f8fa; padding: 12px; border-radius: 6px; overflow-x: auto; }
table.grid { border-collapse: collapse; width: 100%; }
table.grid th, table.grid td { border: 1px solid #d0d7de; padding: 4px 8px; text-align: left; }
table.grid th { background: #f6f8fa; }
table.diff { border-collapse: collapse; width: 100%; }
table.diff td { padding: 1px 8px; white-space: pre-wrap; vertical-align: top; }
table.diff td.num { color: #6e7781; text-align: right; user-select: none; width: 1%; }
tr.added td.line { background: #dafbe1; }
tr.removed td.line { background: #ffebe9; }
tr.empty td.line { background: #f6f8fa; }
.diff-stats { color: #6e7781; margin-bottom: 8px; }
.diff-stats .added { color: #1a7f37; }
.diff-stats .removed { color: #cf222e; }
.unknown { border: 1px dashed #d0d7de; padding: 12px; border-radius: 6px; }
@media (prefers-color-scheme: dark) {
  body { color: #e6edf3; background: #0d1117; }
  pre, table.grid th, tr.empty td.line { background: #161b22; }
  table.grid th, table.grid td { border-color: #30363d; }
  tr.added td.line { background: #12261e; }
  tr.removed td.line { background: #25171c; }
}
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// page wraps a rendered body fragment in the shared document scaffold.
// body is trusted markup produced by a renderer; the title is escaped
// by the template engine.
func page(title string, body string) string {
	var sb strings.Builder
	err := pageTemplate.Execute(&sb, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body)})
	if err != nil {
		// The template is static and the data shape fixed; execution
		// cannot fail at runtime. Keep a readable trace just in case.
		return "<!DOCTYPE html><html><body><pre>" + escape(err.Error()) + "</pre></body></html>"
	}
	return sb.String()
}

// escape HTML-escapes free text before it is embedded in markup:
// ampersand, angle brackets, and both quote characters.
func escape(s string) string {
	return html.EscapeString(s)
}

// marshalPretty indents v without encoding/json's HTML escaping, so
// angle brackets survive as text for escape() to handle. Output that
// bypasses escape() must not use this.
func marshalPretty(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
