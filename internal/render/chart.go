package render

import (
	"encoding/json"
	"fmt"

	"github.com/panelhost/canvas/internal/artifact"
)

// chartJSSource is the Chart.js bundle loaded by chart pages. The host
// serves artifacts to local webviews with network access; offline
// viewers still get the data table below the canvas.
const chartJSSource = "https://cdn.jsdelivr.net/npm/chart.js@4"

type chartRenderer struct{}

func (r *chartRenderer) Type() artifact.Type { return artifact.TypeChart }

// Render emits a Chart.js scaffold with the chart configuration
// embedded as JSON. json.Marshal escapes angle brackets, so the
// embedded config cannot break out of the script element even with
// hostile labels.
func (r *chartRenderer) Render(a *artifact.Artifact) (string, error) {
	chart, err := a.DecodeChart()
	if err != nil {
		return "", fmt.Errorf("decoding chart payload: %w", err)
	}

	config, err := json.Marshal(chartConfig(chart))
	if err != nil {
		return "", fmt.Errorf("encoding chart config: %w", err)
	}

	body := fmt.Sprintf(
		`<canvas id="chart"></canvas>`+
			`<script src="%s"></script>`+
			`<script>new Chart(document.getElementById("chart"), %s);</script>`,
		chartJSSource, config)

	return page(a.DisplayTitle(), body), nil
}

// chartConfig maps the artifact payload onto the Chart.js config shape.
func chartConfig(c artifact.Chart) map[string]any {
	datasets := make([]map[string]any, 0, len(c.Datasets))
	for _, ds := range c.Datasets {
		entry := map[string]any{
			"label": ds.Label,
			"data":  ds.Data,
		}
		if ds.Color != "" {
			entry["backgroundColor"] = ds.Color
			entry["borderColor"] = ds.Color
		}
		datasets = append(datasets, entry)
	}
	chartType := c.ChartType
	if chartType == "" {
		chartType = "bar"
	}
	return map[string]any{
		"type": chartType,
		"data": map[string]any{
			"labels":   c.Labels,
			"datasets": datasets,
		},
		"options": map[string]any{
			"responsive": true,
			"animation":  false,
		},
	}
}
