package artifact

import (
	"encoding/base64"
	"strings"
)

// Dataset is one series of a chart payload.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
	Color string    `json:"color,omitempty"`
}

// Chart is the payload for TypeChart artifacts.
type Chart struct {
	ChartType string    `json:"chartType"` // "bar", "line", "pie"
	Labels    []string  `json:"labels"`
	Datasets  []Dataset `json:"datasets"`
}

// Table is the payload for TypeTable artifacts. Cells are untyped: the
// remote side may send numbers, booleans or strings per cell.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// File is the payload for TypeFile artifacts. StartLine/EndLine select
// a 1-based inclusive range; zero means the whole file.
type File struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	Language  string `json:"language,omitempty"`
	StartLine int    `json:"startLine,omitempty"`
	EndLine   int    `json:"endLine,omitempty"`
}

// Diff is the payload for TypeDiff artifacts: two full text bodies to
// be aligned line by line.
type Diff struct {
	Original     string `json:"original"`
	Modified     string `json:"modified"`
	OriginalPath string `json:"originalPath,omitempty"`
	ModifiedPath string `json:"modifiedPath,omitempty"`
	Language     string `json:"language,omitempty"`
}

// Web is the payload for TypeWeb artifacts. Exactly one of HTML or URL
// is expected; HTML wins when both are set.
type Web struct {
	HTML string `json:"html,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Markdown is the payload for TypeMarkdown artifacts.
type Markdown struct {
	Content string `json:"content"`
}

// JSON is the payload for TypeJSON artifacts. Content is any
// JSON-serializable value.
type JSON struct {
	Content   any  `json:"content"`
	Collapsed bool `json:"collapsed,omitempty"`
}

// Image is the payload for TypeImage artifacts. Src is either a data
// URL (base64-encoded bytes) or a filesystem path.
type Image struct {
	Src    string `json:"src"`
	Alt    string `json:"alt,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Bytes decodes the raw image bytes when Src is a base64 data URL.
// Returns false for path-style sources or malformed encodings.
func (i Image) Bytes() ([]byte, bool) {
	const marker = ";base64,"
	if !strings.HasPrefix(i.Src, "data:") {
		return nil, false
	}
	idx := strings.Index(i.Src, marker)
	if idx < 0 {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(i.Src[idx+len(marker):])
	if err != nil {
		return nil, false
	}
	return raw, true
}

// Path is the payload for the gateway's "open" action: a file to hand
// to the platform opener.
type Path struct {
	Path string `json:"path"`
}

// DecodeChart narrows the artifact payload to a Chart.
func (a *Artifact) DecodeChart() (Chart, error) {
	var p Chart
	err := a.decode(&p)
	return p, err
}

// DecodeTable narrows the artifact payload to a Table.
func (a *Artifact) DecodeTable() (Table, error) {
	var p Table
	err := a.decode(&p)
	return p, err
}

// DecodeFile narrows the artifact payload to a File.
func (a *Artifact) DecodeFile() (File, error) {
	var p File
	err := a.decode(&p)
	return p, err
}

// DecodeDiff narrows the artifact payload to a Diff.
func (a *Artifact) DecodeDiff() (Diff, error) {
	var p Diff
	err := a.decode(&p)
	return p, err
}

// DecodeWeb narrows the artifact payload to a Web.
func (a *Artifact) DecodeWeb() (Web, error) {
	var p Web
	err := a.decode(&p)
	return p, err
}

// DecodeMarkdown narrows the artifact payload to a Markdown.
func (a *Artifact) DecodeMarkdown() (Markdown, error) {
	var p Markdown
	err := a.decode(&p)
	return p, err
}

// DecodeJSON narrows the artifact payload to a JSON.
func (a *Artifact) DecodeJSON() (JSON, error) {
	var p JSON
	err := a.decode(&p)
	return p, err
}

// DecodeImage narrows the artifact payload to an Image.
func (a *Artifact) DecodeImage() (Image, error) {
	var p Image
	err := a.decode(&p)
	return p, err
}

// DecodePath narrows the artifact payload to a Path.
func (a *Artifact) DecodePath() (Path, error) {
	var p Path
	err := a.decode(&p)
	return p, err
}
