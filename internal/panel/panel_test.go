package panel

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelhost/canvas/internal/artifact"
	"github.com/panelhost/canvas/internal/log"
	"github.com/panelhost/canvas/internal/render"
	"github.com/panelhost/canvas/internal/session"
)

// fakeSurface records calls and lets tests fire disposal notifications.
type fakeSurface struct {
	mu        sync.Mutex
	created   []string
	disposed  []string
	opened    []string
	content   map[string]string
	titles    map[string]string
	onDispose func(id string)
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		content: make(map[string]string),
		titles:  make(map[string]string),
	}
}

func (s *fakeSurface) CreatePanel(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, id)
	s.titles[id] = title
	return nil
}

func (s *fakeSurface) SetTitle(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles[id] = title
	return nil
}

func (s *fakeSurface) SetContent(id, markup string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[id] = markup
	return nil
}

func (s *fakeSurface) DisposePanel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = append(s.disposed, id)
	return nil
}

func (s *fakeSurface) OnDisposed(callback func(id string)) { s.onDispose = callback }

func (s *fakeSurface) OpenExternal(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append(s.opened, path)
	return nil
}

func newTestManager(t *testing.T) (*Manager, *fakeSurface) {
	t.Helper()
	surface := newFakeSurface()
	registry := render.NewDefault(log.NewNop(), 0)
	store := session.New(t.TempDir(), "canvas", log.NewNop())
	return NewManager(surface, registry, store, log.NewNop()), surface
}

func markdownArtifact(title, content string) *artifact.Artifact {
	data, _ := json.Marshal(map[string]string{"content": content})
	return &artifact.Artifact{Type: artifact.TypeMarkdown, Title: title, Data: data}
}

func TestShow_AllocatesUniqueIDs(t *testing.T) {
	m, surface := newTestManager(t)

	seen := make(map[string]struct{})
	for range 20 {
		res, err := m.Show(markdownArtifact("t", "# hi"), "")
		require.NoError(t, err)
		_, dup := seen[res.PanelID]
		require.False(t, dup, "panel id %s reused", res.PanelID)
		seen[res.PanelID] = struct{}{}
	}
	assert.Len(t, m.List(), 20)
	assert.Len(t, surface.created, 20)
}

func TestShow_PersistsRender(t *testing.T) {
	m, _ := newTestManager(t)

	res, err := m.Show(markdownArtifact("notes", "# hi"), "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.FilePath)

	p, ok := m.Get(res.PanelID)
	require.True(t, ok)
	assert.Equal(t, res.FilePath, p.FilePath)
	assert.Contains(t, p.LastMarkup, "<h1")
}

func TestShow_ReusesExistingPanel(t *testing.T) {
	m, surface := newTestManager(t)

	first, err := m.Show(markdownArtifact("v1", "one"), "")
	require.NoError(t, err)

	second, err := m.Show(markdownArtifact("v2", "two"), first.PanelID)
	require.NoError(t, err)

	assert.Equal(t, first.PanelID, second.PanelID)
	assert.Len(t, m.List(), 1, "reuse must not grow the panel set")
	assert.Len(t, surface.created, 1)
	assert.Equal(t, "v2", surface.titles[first.PanelID])
	assert.Contains(t, surface.content[first.PanelID], "two")
	assert.NotEqual(t, first.FilePath, second.FilePath, "each render persists a new file")
}

func TestShow_UnknownPanelIDAllocatesFresh(t *testing.T) {
	m, _ := newTestManager(t)

	res, err := m.Show(markdownArtifact("t", "x"), "panel_never_existed")
	require.NoError(t, err)
	assert.NotEqual(t, "panel_never_existed", res.PanelID)
}

func TestUpdate(t *testing.T) {
	m, surface := newTestManager(t)

	created, err := m.Show(markdownArtifact("t", "one"), "")
	require.NoError(t, err)

	res, err := m.Update(created.PanelID, markdownArtifact("t2", "two"))
	require.NoError(t, err)
	assert.Equal(t, created.PanelID, res.PanelID)
	assert.Contains(t, surface.content[created.PanelID], "two")
}

func TestUpdate_NotFound(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Update("panel_missing", markdownArtifact("t", "x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClose(t *testing.T) {
	m, surface := newTestManager(t)

	res, err := m.Show(markdownArtifact("t", "x"), "")
	require.NoError(t, err)

	assert.True(t, m.Close(res.PanelID))
	assert.Empty(t, m.List())
	assert.Equal(t, []string{res.PanelID}, surface.disposed)

	// Closing again reports inactive.
	assert.False(t, m.Close(res.PanelID))
}

func TestList_CreationOrder(t *testing.T) {
	m, _ := newTestManager(t)

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		res, err := m.Show(markdownArtifact(title, "x"), "")
		require.NoError(t, err)
		ids = append(ids, res.PanelID)
	}
	assert.Equal(t, ids, m.List())
}

// A user dismissing a panel must purge it from the manager without a
// DisposePanel round-trip back to the surface.
func TestUserDisposalPurgesEntry(t *testing.T) {
	m, surface := newTestManager(t)

	res, err := m.Show(markdownArtifact("t", "x"), "")
	require.NoError(t, err)

	surface.onDispose(res.PanelID)

	assert.Empty(t, m.List())
	assert.Empty(t, surface.disposed)

	// The id is gone for good; an update now fails.
	_, err = m.Update(res.PanelID, markdownArtifact("t", "y"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShow_ImagePersistsRawBytes(t *testing.T) {
	m, _ := newTestManager(t)

	a := &artifact.Artifact{
		Type: artifact.TypeImage,
		Data: json.RawMessage(`{"src":"data:image/png;base64,iVBORw0KGgo=","alt":"logo"}`),
	}
	res, err := m.Show(a, "")
	require.NoError(t, err)
	require.NotEmpty(t, res.FilePath)
	assert.Contains(t, res.FilePath, ".png")
}

func TestOpenExternal(t *testing.T) {
	m, surface := newTestManager(t)
	require.NoError(t, m.OpenExternal("/tmp/report.xlsx"))
	assert.Equal(t, []string{"/tmp/report.xlsx"}, surface.opened)
}
