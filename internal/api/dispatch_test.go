package api

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelhost/canvas/internal/artifact"
	"github.com/panelhost/canvas/internal/log"
	"github.com/panelhost/canvas/internal/panel"
	"github.com/panelhost/canvas/internal/render"
	"github.com/panelhost/canvas/internal/session"
)

type nopSurface struct{}

func (nopSurface) CreatePanel(id, title string) error { return nil }
func (nopSurface) SetTitle(id, title string) error    { return nil }
func (nopSurface) SetContent(id, markup string) error { return nil }
func (nopSurface) DisposePanel(id string) error       { return nil }
func (nopSurface) OnDisposed(func(string))            {}
func (nopSurface) OpenExternal(path string) error     { return fmt.Errorf("no opener: %s", path) }

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	logger := log.NewNop()
	registry := render.NewDefault(logger, 5000)
	store := session.New(t.TempDir(), "canvas", logger)
	manager := panel.NewManager(nopSurface{}, registry, store, logger)
	return NewHandler(manager, logger)
}

func rawMessage(t *testing.T, msg Message) []byte {
	t.Helper()
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return b
}

func markdownArtifact(content string) *artifact.Artifact {
	data, _ := json.Marshal(map[string]string{"content": content})
	return &artifact.Artifact{Type: artifact.TypeMarkdown, Title: "notes", Data: data}
}

func TestHandleInvalidJSON(t *testing.T) {
	h := newTestHandler(t)

	resp := h.Handle([]byte("{not json"))

	assert.Equal(t, UnknownID, resp.ID)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid JSON", resp.Error)
}

func TestHandlePing(t *testing.T) {
	h := newTestHandler(t)

	resp := h.Handle(rawMessage(t, Message{ID: "p1", Action: ActionPing}))

	assert.Equal(t, Response{ID: "p1", Success: true}, resp)
}

func TestHandleUnknownAction(t *testing.T) {
	h := newTestHandler(t)

	resp := h.Handle(rawMessage(t, Message{ID: "u1", Action: "explode"}))

	assert.False(t, resp.Success)
	assert.Equal(t, "Unknown action: explode", resp.Error)
}

func TestRenderMissingArtifact(t *testing.T) {
	h := newTestHandler(t)

	resp := h.Handle(rawMessage(t, Message{ID: "r1", Action: ActionRender}))

	assert.False(t, resp.Success)
	assert.Equal(t, "Missing artifact", resp.Error)
}

func TestRenderAllocatesPanel(t *testing.T) {
	h := newTestHandler(t)

	resp := h.Handle(rawMessage(t, Message{
		ID:       "r2",
		Action:   ActionRender,
		Artifact: markdownArtifact("# hello"),
	}))

	require.True(t, resp.Success, "error: %s", resp.Error)
	panelID, _ := resp.Data["panelId"].(string)
	assert.Regexp(t, `^panel_\d+_[0-9a-f]{4}$`, panelID)
	assert.NotEmpty(t, resp.Data["filePath"])
}

func TestRenderReusesPanel(t *testing.T) {
	h := newTestHandler(t)

	first := h.Handle(rawMessage(t, Message{ID: "a", Action: ActionRender, Artifact: markdownArtifact("one")}))
	require.True(t, first.Success)
	id := first.Data["panelId"].(string)

	second := h.Handle(rawMessage(t, Message{ID: "b", Action: ActionRender, Artifact: markdownArtifact("two"), PanelID: id}))
	require.True(t, second.Success)
	assert.Equal(t, id, second.Data["panelId"])
}

func TestUpdateValidation(t *testing.T) {
	h := newTestHandler(t)

	resp := h.Handle(rawMessage(t, Message{ID: "u1", Action: ActionUpdate, Artifact: markdownArtifact("x")}))
	assert.Equal(t, "Missing panelId", resp.Error)

	resp = h.Handle(rawMessage(t, Message{ID: "u2", Action: ActionUpdate, PanelID: "panel_1_dead"}))
	assert.Equal(t, "Missing artifact", resp.Error)

	resp = h.Handle(rawMessage(t, Message{ID: "u3", Action: ActionUpdate, PanelID: "panel_1_dead", Artifact: markdownArtifact("x")}))
	assert.Equal(t, "Panel not found: panel_1_dead", resp.Error)
}

func TestCloseValidation(t *testing.T) {
	h := newTestHandler(t)

	resp := h.Handle(rawMessage(t, Message{ID: "c1", Action: ActionClose}))
	assert.Equal(t, "Missing panelId", resp.Error)

	resp = h.Handle(rawMessage(t, Message{ID: "c2", Action: ActionClose, PanelID: "panel_9_beef"}))
	assert.Equal(t, "Panel not found: panel_9_beef", resp.Error)
}

func TestCloseThenListEmpty(t *testing.T) {
	h := newTestHandler(t)

	created := h.Handle(rawMessage(t, Message{ID: "a", Action: ActionRender, Artifact: markdownArtifact("x")}))
	require.True(t, created.Success)
	id := created.Data["panelId"].(string)

	closed := h.Handle(rawMessage(t, Message{ID: "b", Action: ActionClose, PanelID: id}))
	assert.True(t, closed.Success)

	listed := h.Handle(rawMessage(t, Message{ID: "c", Action: ActionList}))
	require.True(t, listed.Success)
	assert.Empty(t, listed.Data["panels"])
}

func TestListPreservesCreationOrder(t *testing.T) {
	h := newTestHandler(t)

	var want []string
	for i := 0; i < 3; i++ {
		resp := h.Handle(rawMessage(t, Message{ID: "r", Action: ActionRender, Artifact: markdownArtifact("x")}))
		require.True(t, resp.Success)
		want = append(want, resp.Data["panelId"].(string))
	}

	listed := h.Handle(rawMessage(t, Message{ID: "l", Action: ActionList}))
	require.True(t, listed.Success)

	got, ok := listed.Data["panels"].([]string)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

type openRecorder struct {
	nopSurface
	path string
}

func (o *openRecorder) OpenExternal(path string) error {
	o.path = path
	return nil
}

func newOpenHandler(t *testing.T) (*Handler, *openRecorder) {
	t.Helper()
	logger := log.NewNop()
	rec := &openRecorder{}
	registry := render.NewDefault(logger, 5000)
	store := session.New("", "canvas", logger)
	manager := panel.NewManager(rec, registry, store, logger)
	return NewHandler(manager, logger), rec
}

func TestOpenNestedPathShape(t *testing.T) {
	h, rec := newOpenHandler(t)

	resp := h.Handle([]byte(`{"id":"o1","action":"open","artifact":{"type":"open_file","data":{"path":"/tmp/report.xlsx"}}}`))

	assert.True(t, resp.Success, "error: %s", resp.Error)
	assert.Equal(t, "/tmp/report.xlsx", rec.path)
}

func TestOpenFlatPathShape(t *testing.T) {
	h, rec := newOpenHandler(t)

	resp := h.Handle([]byte(`{"id":"o2","action":"open","artifact":{"path":"/tmp/report.xlsx"}}`))

	assert.True(t, resp.Success, "error: %s", resp.Error)
	assert.Equal(t, "/tmp/report.xlsx", rec.path)
}

func TestOpenMissingPath(t *testing.T) {
	h := newTestHandler(t)

	resp := h.Handle(rawMessage(t, Message{ID: "o1", Action: ActionOpen}))
	assert.Equal(t, "Missing path", resp.Error)

	empty, _ := json.Marshal(map[string]string{"path": ""})
	resp = h.Handle(rawMessage(t, Message{
		ID:       "o2",
		Action:   ActionOpen,
		Artifact: &artifact.Artifact{Type: "open_file", Data: empty},
	}))
	assert.Equal(t, "Missing path", resp.Error)
}

type panicRenderer struct{}

func (panicRenderer) Type() artifact.Type { return artifact.TypeChart }

func (panicRenderer) Render(*artifact.Artifact) (string, error) { panic("boom") }

func TestDispatchContainsPanic(t *testing.T) {
	logger := log.NewNop()
	registry := render.New(logger)
	registry.Register(panicRenderer{})
	store := session.New("", "canvas", logger)
	manager := panel.NewManager(nopSurface{}, registry, store, logger)
	h := NewHandler(manager, logger)

	data, _ := json.Marshal(map[string]any{"labels": []string{"a"}})
	resp := h.Handle(rawMessage(t, Message{
		ID:       "x1",
		Action:   ActionRender,
		Artifact: &artifact.Artifact{Type: artifact.TypeChart, Data: data},
	}))

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "internal error")
	assert.Equal(t, "x1", resp.ID)
}
