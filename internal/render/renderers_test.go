package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelhost/canvas/internal/artifact"
)

func renderOne(t *testing.T, r Renderer, typ artifact.Type, title, payload string) string {
	t.Helper()
	out, err := r.Render(&artifact.Artifact{
		Type:  typ,
		Title: title,
		Data:  json.RawMessage(payload),
	})
	require.NoError(t, err)
	return out
}

func TestChartRenderer(t *testing.T) {
	out := renderOne(t, &chartRenderer{}, artifact.TypeChart, "Revenue",
		`{"chartType":"line","labels":["Q1","Q2"],"datasets":[{"label":"<script>","data":[1,2]}]}`)

	assert.Contains(t, out, "new Chart(")
	assert.Contains(t, out, `"line"`)
	// json.Marshal escapes angle brackets inside the embedded config.
	assert.NotContains(t, out, "<script>alert")
	assert.Contains(t, out, `<script>`)
	assert.Contains(t, out, "Revenue")
}

func TestChartRenderer_DefaultsToBar(t *testing.T) {
	out := renderOne(t, &chartRenderer{}, artifact.TypeChart, "",
		`{"labels":["a"],"datasets":[{"label":"x","data":[1]}]}`)
	assert.Contains(t, out, `"bar"`)
}

func TestTableRenderer(t *testing.T) {
	out := renderOne(t, &tableRenderer{}, artifact.TypeTable, "People",
		`{"columns":["name","age"],"rows":[["<img src=x>",30],["bob",25.5]]}`)

	assert.Contains(t, out, "<th>name</th>")
	assert.Contains(t, out, "<td>30</td>")
	assert.Contains(t, out, "<td>25.5</td>")
	assert.Contains(t, out, "&lt;img src=x&gt;")
	assert.NotContains(t, out, "<img src=x>")
}

func TestFileRenderer(t *testing.T) {
	out := renderOne(t, &fileRenderer{}, artifact.TypeFile, "",
		`{"path":"main.go","content":"package main\n\nfunc main() {}\n","language":"go"}`)

	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "package")
}

func TestFileRenderer_LineRange(t *testing.T) {
	out := renderOne(t, &fileRenderer{}, artifact.TypeFile, "",
		`{"path":"f.txt","content":"one\ntwo\nthree\nfour","startLine":2,"endLine":3}`)

	assert.Contains(t, out, "two")
	assert.Contains(t, out, "three")
	assert.NotContains(t, out, "four")
}

func TestDiffRenderer(t *testing.T) {
	out := renderOne(t, &diffRenderer{}, artifact.TypeDiff, "",
		`{"original":"a\nb","modified":"a\nx\nb","originalPath":"old.txt","modifiedPath":"new.txt"}`)

	assert.Contains(t, out, "old.txt")
	assert.Contains(t, out, "new.txt")
	assert.Contains(t, out, `<span class="added">+1</span>`)
	assert.Contains(t, out, `<span class="removed">−0</span>`)
	assert.Contains(t, out, `class="added"`)
}

func TestDiffRenderer_EscapesContent(t *testing.T) {
	out := renderOne(t, &diffRenderer{}, artifact.TypeDiff, "",
		`{"original":"<script>","modified":"<style>"}`)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "&lt;style&gt;")
}

func TestDiffRenderer_OversizedFallsBack(t *testing.T) {
	original := strings.Repeat("line\n", 100)
	payload, err := json.Marshal(map[string]string{"original": original, "modified": "x"})
	require.NoError(t, err)

	r := &diffRenderer{maxLines: 10}
	out, renderErr := r.Render(&artifact.Artifact{Type: artifact.TypeDiff, Data: payload})
	require.NoError(t, renderErr)
	assert.Contains(t, out, "too large")
}

func TestMarkdownRenderer(t *testing.T) {
	out := renderOne(t, &markdownRenderer{}, artifact.TypeMarkdown, "Notes",
		`{"content":"# Title\n\nSome **bold** text."}`)

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>bold</strong>")
}

func TestMarkdownRenderer_RawHTMLNotPassedThrough(t *testing.T) {
	out := renderOne(t, &markdownRenderer{}, artifact.TypeMarkdown, "",
		`{"content":"text <script>alert(1)</script> more"}`)

	assert.NotContains(t, out, "<script>alert(1)</script>")
}

func TestJSONRenderer(t *testing.T) {
	out := renderOne(t, &jsonRenderer{}, artifact.TypeJSON, "",
		`{"content":{"key":"<value>"},"collapsed":true}`)

	assert.Contains(t, out, "<details>")
	assert.Contains(t, out, "&lt;value&gt;")
	assert.NotContains(t, out, "<value>")
	assert.NotContains(t, out, `<`)
}

func TestWebRenderer_HTML(t *testing.T) {
	out := renderOne(t, &webRenderer{}, artifact.TypeWeb, "",
		`{"html":"<h1>dashboard</h1>"}`)

	assert.Contains(t, out, "<h1>dashboard</h1>")
}

func TestWebRenderer_URL(t *testing.T) {
	out := renderOne(t, &webRenderer{}, artifact.TypeWeb, "",
		`{"url":"http://localhost:8080/?a=1&b=2"}`)

	assert.Contains(t, out, "<iframe")
	assert.Contains(t, out, "a=1&amp;b=2")
}

func TestWebRenderer_EmptyPayloadErrors(t *testing.T) {
	_, err := (&webRenderer{}).Render(&artifact.Artifact{
		Type: artifact.TypeWeb,
		Data: json.RawMessage(`{}`),
	})
	assert.Error(t, err)
}

func TestImageRenderer(t *testing.T) {
	out := renderOne(t, &imageRenderer{}, artifact.TypeImage, "Logo",
		`{"src":"data:image/png;base64,iVBORw0KGgo=","alt":"a \"logo\"","width":120}`)

	assert.Contains(t, out, `src="data:image/png;base64,iVBORw0KGgo="`)
	assert.Contains(t, out, "&#34;logo&#34;")
	assert.Contains(t, out, `width="120"`)
}
