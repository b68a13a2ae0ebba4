package render

import (
	"fmt"

	"github.com/panelhost/canvas/internal/artifact"
)

type jsonRenderer struct{}

func (r *jsonRenderer) Type() artifact.Type { return artifact.TypeJSON }

func (r *jsonRenderer) Render(a *artifact.Artifact) (string, error) {
	payload, err := a.DecodeJSON()
	if err != nil {
		return "", fmt.Errorf("decoding json payload: %w", err)
	}

	pretty, err := marshalPretty(payload.Content)
	if err != nil {
		return "", fmt.Errorf("formatting json content: %w", err)
	}

	body := "<pre>" + escape(pretty) + "</pre>"
	if payload.Collapsed {
		body = "<details><summary>JSON</summary>" + body + "</details>"
	}

	return page(a.DisplayTitle(), body), nil
}
