package render

import (
	"encoding/json"
	"fmt"

	"github.com/panelhost/canvas/internal/artifact"
)

// fallbackRenderer handles artifacts with no registered renderer. It
// must never fail regardless of payload shape: unknown tags flow
// through the same dispatch path as registered ones and the host
// degrades instead of erroring.
type fallbackRenderer struct{}

// Render labels the output as an unknown type and embeds an escaped
// serialization of the raw payload for debugging on the CLI side.
func (r *fallbackRenderer) Render(a *artifact.Artifact) (string, error) {
	serialized := serializePayload(a.Data)

	body := fmt.Sprintf(
		`<div class="unknown"><h3>Unknown artifact type: %s</h3>`+
			`<p>No renderer is registered for this type. Raw payload:</p>`+
			`<pre>%s</pre></div>`,
		escape(string(a.Type)), escape(serialized))

	return page(a.DisplayTitle(), body), nil
}

// serializePayload pretty-prints the raw payload when it is valid
// JSON, and falls back to the raw text otherwise. Never panics.
func serializePayload(data json.RawMessage) string {
	if len(data) == 0 {
		return "(no payload)"
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	pretty, err := marshalPretty(v)
	if err != nil {
		return string(data)
	}
	return pretty
}
