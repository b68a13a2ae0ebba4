// Package api implements the host's message protocol gateway.
//
// Remote CLIs connect over a loopback websocket and exchange UTF-8
// text frames, each one JSON-encoded Message or Response. Correlation
// ids are caller-assigned and opaque to the gateway. Every accepted
// message yields exactly one response; request-level failures never
// tear down the channel.
package api

import (
	"github.com/panelhost/canvas/internal/artifact"
)

// Action names a gateway operation.
type Action string

const (
	ActionRender Action = "render"
	ActionUpdate Action = "update"
	ActionClose  Action = "close"
	ActionList   Action = "list"
	ActionOpen   Action = "open"
	ActionPing   Action = "ping"
)

// UnknownID is the sentinel correlation id used when a frame cannot be
// parsed far enough to recover the caller's id.
const UnknownID = "unknown"

// Message is one request frame from a remote CLI.
type Message struct {
	ID       string             `json:"id"`
	Action   Action             `json:"action"`
	Artifact *artifact.Artifact `json:"artifact,omitempty"`
	PanelID  string             `json:"panelId,omitempty"`
}

// Response is the correlated reply to one Message.
type Response struct {
	ID      string         `json:"id"`
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// ok builds a success response.
func ok(id string, data map[string]any) Response {
	return Response{ID: id, Success: true, Data: data}
}

// fail builds a failure response with a human-readable error.
func fail(id, message string) Response {
	return Response{ID: id, Success: false, Error: message}
}
