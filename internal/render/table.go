package render

import (
	"fmt"
	"strings"

	"github.com/panelhost/canvas/internal/artifact"
)

type tableRenderer struct{}

func (r *tableRenderer) Type() artifact.Type { return artifact.TypeTable }

func (r *tableRenderer) Render(a *artifact.Artifact) (string, error) {
	table, err := a.DecodeTable()
	if err != nil {
		return "", fmt.Errorf("decoding table payload: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(`<table class="grid"><thead><tr>`)
	for _, col := range table.Columns {
		sb.WriteString("<th>")
		sb.WriteString(escape(col))
		sb.WriteString("</th>")
	}
	sb.WriteString("</tr></thead><tbody>")
	for _, row := range table.Rows {
		sb.WriteString("<tr>")
		for _, cell := range row {
			sb.WriteString("<td>")
			sb.WriteString(escape(formatCell(cell)))
			sb.WriteString("</td>")
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody></table>")

	return page(a.DisplayTitle(), sb.String()), nil
}

// formatCell renders one untyped table cell as text. JSON numbers
// arrive as float64; %v prints integral floats without a decimal
// point, which is what a table wants.
func formatCell(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
