package artifact

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeChart, "html"},
		{TypeTable, "html"},
		{TypeDiff, "html"},
		{TypeWeb, "html"},
		{TypeFile, "txt"},
		{TypeMarkdown, "md"},
		{TypeJSON, "json"},
		{TypeImage, "png"},
		{TypeCSV, "csv"},
		{TypeXLSX, "xlsx"},
		{Type("hologram"), "txt"},
		{Type(""), "txt"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.typ))
		})
	}
}

func TestDisplayTitle(t *testing.T) {
	a := &Artifact{Type: TypeTable, Title: "Results"}
	assert.Equal(t, "Results", a.DisplayTitle())

	a = &Artifact{Type: TypeTable}
	assert.Equal(t, "table", a.DisplayTitle())
}

func TestDecodeChart(t *testing.T) {
	raw := `{
		"type": "chart",
		"title": "Revenue",
		"data": {
			"chartType": "bar",
			"labels": ["Q1", "Q2"],
			"datasets": [{"label": "2026", "data": [10, 20.5], "color": "#336699"}]
		}
	}`
	var a Artifact
	require.NoError(t, json.Unmarshal([]byte(raw), &a))

	chart, err := a.DecodeChart()
	require.NoError(t, err)
	assert.Equal(t, "bar", chart.ChartType)
	assert.Equal(t, []string{"Q1", "Q2"}, chart.Labels)
	require.Len(t, chart.Datasets, 1)
	assert.Equal(t, "2026", chart.Datasets[0].Label)
	assert.Equal(t, []float64{10, 20.5}, chart.Datasets[0].Data)
}

func TestDecodeTable_MixedCellTypes(t *testing.T) {
	a := Artifact{
		Type: TypeTable,
		Data: json.RawMessage(`{"columns":["name","count","ok"],"rows":[["alpha",3,true]]}`),
	}

	table, err := a.DecodeTable()
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "count", "ok"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "alpha", table.Rows[0][0])
	assert.Equal(t, float64(3), table.Rows[0][1])
	assert.Equal(t, true, table.Rows[0][2])
}

func TestDecode_NoPayload(t *testing.T) {
	a := Artifact{Type: TypeDiff}

	_, err := a.DecodeDiff()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPayload))
}

func TestDecode_MalformedPayload(t *testing.T) {
	a := Artifact{Type: TypeJSON, Data: json.RawMessage(`{"content":`)}

	_, err := a.DecodeJSON()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoPayload))
}
