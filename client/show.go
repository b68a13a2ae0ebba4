package client

import (
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Dataset is one labelled series in a chart.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
	Color string    `json:"color,omitempty"`
}

// ShowChart renders a bar, line or pie chart and returns the panel id.
// Pass a non-empty panelID to redraw an existing panel.
func (c *Client) ShowChart(chartType string, labels []string, datasets []Dataset, title, panelID string) (string, error) {
	return renderResult(c.send("render", artifactPayload("chart", title, map[string]any{
		"chartType": chartType,
		"labels":    labels,
		"datasets":  datasets,
	}), panelID))
}

// ShowTable renders a column/row grid and returns the panel id.
func (c *Client) ShowTable(columns []string, rows [][]any, title, panelID string) (string, error) {
	return renderResult(c.send("render", artifactPayload("table", title, map[string]any{
		"columns": columns,
		"rows":    rows,
	}), panelID))
}

// FileOptions tunes ShowFile. Zero values are all valid: empty Content
// reads the file from disk, zero line bounds show the whole file.
type FileOptions struct {
	Content   string
	Language  string
	StartLine int
	EndLine   int
	Title     string
	PanelID   string
}

// ShowFile renders file content with syntax highlighting and returns
// the panel id.
func (c *Client) ShowFile(path string, opts FileOptions) (string, error) {
	content := opts.Content
	if content == "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		content = string(raw)
	}
	title := opts.Title
	if title == "" {
		title = path
	}
	data := map[string]any{
		"path":    path,
		"content": content,
	}
	if opts.Language != "" {
		data["language"] = opts.Language
	}
	if opts.StartLine > 0 {
		data["startLine"] = opts.StartLine
	}
	if opts.EndLine > 0 {
		data["endLine"] = opts.EndLine
	}
	return renderResult(c.send("render", artifactPayload("file", title, data), opts.PanelID))
}

// DiffOptions tunes ShowDiff.
type DiffOptions struct {
	OriginalPath string
	ModifiedPath string
	Language     string
	Title        string
	PanelID      string
}

// ShowDiff renders a side-by-side comparison of two texts and returns
// the panel id.
func (c *Client) ShowDiff(original, modified string, opts DiffOptions) (string, error) {
	title := opts.Title
	if title == "" {
		title = "Diff"
	}
	data := map[string]any{
		"original": original,
		"modified": modified,
	}
	if opts.OriginalPath != "" {
		data["originalPath"] = opts.OriginalPath
	}
	if opts.ModifiedPath != "" {
		data["modifiedPath"] = opts.ModifiedPath
	}
	if opts.Language != "" {
		data["language"] = opts.Language
	}
	return renderResult(c.send("render", artifactPayload("diff", title, data), opts.PanelID))
}

// ImageOptions tunes ShowImage. Data takes precedence over the path;
// when only a path is given the file is read and inlined.
type ImageOptions struct {
	Data     []byte
	MIMEType string
	Alt      string
	Width    int
	Height   int
	Title    string
	PanelID  string
}

// ShowImage renders an image, inlined as a base64 data URL so the host
// can persist the raw bytes. Returns the panel id.
func (c *Client) ShowImage(path string, opts ImageOptions) (string, error) {
	raw := opts.Data
	if raw == nil && path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
	}
	mimeType := opts.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}

	src := path
	if len(raw) > 0 {
		src = fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(raw))
	}

	data := map[string]any{"src": src}
	if opts.Alt != "" {
		data["alt"] = opts.Alt
	}
	if opts.Width > 0 {
		data["width"] = opts.Width
	}
	if opts.Height > 0 {
		data["height"] = opts.Height
	}
	return renderResult(c.send("render", artifactPayload("image", opts.Title, data), opts.PanelID))
}

// ShowMarkdown renders GitHub-flavored markdown and returns the panel id.
func (c *Client) ShowMarkdown(content, title, panelID string) (string, error) {
	return renderResult(c.send("render", artifactPayload("markdown", title, map[string]any{
		"content": content,
	}), panelID))
}

// ShowJSON pretty-prints any JSON-serializable value and returns the
// panel id.
func (c *Client) ShowJSON(content any, collapsed bool, title, panelID string) (string, error) {
	return renderResult(c.send("render", artifactPayload("json", title, map[string]any{
		"content":   content,
		"collapsed": collapsed,
	}), panelID))
}

// ShowWeb renders raw HTML, or embeds a URL when html is empty.
// Returns the panel id.
func (c *Client) ShowWeb(html, url, title, panelID string) (string, error) {
	data := map[string]any{}
	if html != "" {
		data["html"] = html
	}
	if url != "" {
		data["url"] = url
	}
	return renderResult(c.send("render", artifactPayload("web", title, data), panelID))
}

// ShowCSV parses CSV text (or the file at path when content is empty)
// and renders it as a table. The first record becomes the header row.
func (c *Client) ShowCSV(path, content, title, panelID string) (string, error) {
	if content == "" && path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		content = string(raw)
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parsing csv: %w", err)
	}

	if title == "" {
		title = path
	}
	if len(records) == 0 {
		return c.ShowTable(nil, nil, title, panelID)
	}

	columns := records[0]
	rows := make([][]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]any, len(record))
		for i, field := range record {
			row[i] = field
		}
		rows = append(rows, row)
	}
	return c.ShowTable(columns, rows, title, panelID)
}

// OpenFile asks the host to open a file with the system default
// application.
func (c *Client) OpenFile(path string) error {
	resp, err := c.send("open", map[string]any{
		"type": "open_file",
		"data": map[string]any{"path": path},
	}, "")
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrRequestFailed, resp.Error)
	}
	return nil
}

// ShowExcel opens a spreadsheet with the system default application.
// Spreadsheets render poorly as HTML, so the host hands them off.
func (c *Client) ShowExcel(path string) error {
	return c.OpenFile(path)
}

// ClosePanel disposes a panel by id.
func (c *Client) ClosePanel(panelID string) error {
	resp, err := c.send("close", nil, panelID)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrRequestFailed, resp.Error)
	}
	return nil
}

// ListPanels returns the ids of all open panels in creation order.
func (c *Client) ListPanels() ([]string, error) {
	resp, err := c.send("list", nil, "")
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrRequestFailed, resp.Error)
	}
	raw, _ := resp.Data["panels"].([]any)
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func artifactPayload(kind, title string, data map[string]any) map[string]any {
	payload := map[string]any{
		"type": kind,
		"data": data,
	}
	if title != "" {
		payload["title"] = title
	}
	return payload
}
