package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/panelhost/canvas/internal/panel"
)

// Handler turns raw message frames into responses. It is safe for use
// from multiple connections; ordering within a connection is the
// caller's concern.
type Handler struct {
	panels *panel.Manager
	logger *slog.Logger
}

func NewHandler(panels *panel.Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{panels: panels, logger: logger}
}

// Handle processes one raw frame and always returns a response. Frames
// that do not parse as JSON get the sentinel id, since the caller's id
// is unrecoverable.
func (h *Handler) Handle(raw []byte) Response {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.logger.Warn("unparseable frame", "error", err)
		return fail(UnknownID, "Invalid JSON")
	}
	return h.dispatch(msg)
}

// dispatch routes a parsed message. A panicking renderer is contained
// here and reported as a failure response on the offending message.
func (h *Handler) dispatch(msg Message) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic during dispatch", "action", msg.Action, "panic", r)
			resp = fail(msg.ID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	switch msg.Action {
	case ActionRender:
		return h.render(msg)
	case ActionUpdate:
		return h.update(msg)
	case ActionClose:
		return h.close(msg)
	case ActionList:
		return h.list(msg)
	case ActionOpen:
		return h.open(msg)
	case ActionPing:
		return ok(msg.ID, nil)
	default:
		return fail(msg.ID, fmt.Sprintf("Unknown action: %s", msg.Action))
	}
}

func (h *Handler) render(msg Message) Response {
	if msg.Artifact == nil {
		return fail(msg.ID, "Missing artifact")
	}
	res, err := h.panels.Show(msg.Artifact, msg.PanelID)
	if err != nil {
		return fail(msg.ID, err.Error())
	}
	return ok(msg.ID, map[string]any{
		"panelId":  res.PanelID,
		"filePath": res.FilePath,
	})
}

func (h *Handler) update(msg Message) Response {
	if msg.PanelID == "" {
		return fail(msg.ID, "Missing panelId")
	}
	if msg.Artifact == nil {
		return fail(msg.ID, "Missing artifact")
	}
	res, err := h.panels.Update(msg.PanelID, msg.Artifact)
	if err != nil {
		if errors.Is(err, panel.ErrNotFound) {
			return fail(msg.ID, fmt.Sprintf("Panel not found: %s", msg.PanelID))
		}
		return fail(msg.ID, err.Error())
	}
	return ok(msg.ID, map[string]any{
		"panelId":  res.PanelID,
		"filePath": res.FilePath,
	})
}

func (h *Handler) close(msg Message) Response {
	if msg.PanelID == "" {
		return fail(msg.ID, "Missing panelId")
	}
	if !h.panels.Close(msg.PanelID) {
		return fail(msg.ID, fmt.Sprintf("Panel not found: %s", msg.PanelID))
	}
	return ok(msg.ID, nil)
}

func (h *Handler) list(msg Message) Response {
	return ok(msg.ID, map[string]any{
		"panels": h.panels.List(),
	})
}

func (h *Handler) open(msg Message) Response {
	if msg.Artifact == nil {
		return fail(msg.ID, "Missing path")
	}
	// The path arrives either nested in the data envelope or flat at
	// the artifact's top level; both shapes are in use.
	path := msg.Artifact.Path
	if p, err := msg.Artifact.DecodePath(); err == nil && p.Path != "" {
		path = p.Path
	}
	if path == "" {
		return fail(msg.ID, "Missing path")
	}
	if err := h.panels.OpenExternal(path); err != nil {
		return fail(msg.ID, err.Error())
	}
	return ok(msg.ID, nil)
}
