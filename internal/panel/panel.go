// Package panel manages the set of live visual panels.
//
// The Manager owns panel identity and state; the actual display —
// webview, browser, terminal — is behind the Surface interface, so the
// core never knows which display technology the host runs. Panel ids
// are unique for the process lifetime and never reused after disposal.
package panel

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/panelhost/canvas/internal/artifact"
	"github.com/panelhost/canvas/internal/render"
	"github.com/panelhost/canvas/internal/session"
)

// ErrNotFound is returned when the panel id is not active.
var ErrNotFound = errors.New("panel not found")

// Surface is the host-owned display capability the manager drives.
// Implementations must tolerate being called from the manager's
// single-writer path and must deliver disposal notifications through
// the callback set by OnDisposed.
type Surface interface {
	// CreatePanel makes a new visual panel addressable by id.
	CreatePanel(id, title string) error

	// SetTitle retitles an existing panel.
	SetTitle(id, title string) error

	// SetContent replaces the markup displayed by an existing panel.
	SetContent(id, markup string) error

	// DisposePanel destroys the visual panel.
	DisposePanel(id string) error

	// OnDisposed registers the callback invoked whenever the user
	// dismisses a panel outside any host-driven call.
	OnDisposed(callback func(id string))

	// OpenExternal hands a file to the platform's default opener.
	OpenExternal(path string) error
}

// Panel is one live visual panel's state. The display surface holds
// only a handle keyed by ID; everything else lives here.
type Panel struct {
	ID         string
	Title      string
	LastMarkup string
	FilePath   string // newest persisted render; "" when not persisted
	CreatedAt  time.Time
}

// ShowResult is the outcome of a Show or Update.
type ShowResult struct {
	PanelID  string
	FilePath string
}

// Manager owns the live panel set. All mutations — gateway-driven
// renders and asynchronous disposal notifications from the surface —
// funnel through one mutex, so a disposal can never race an update
// into a lost entry.
type Manager struct {
	surface  Surface
	registry *render.Registry
	store    *session.Store
	logger   *slog.Logger

	mu     sync.Mutex
	panels map[string]*Panel
	order  []string // creation order of live ids
}

// NewManager wires the manager to its collaborators and registers for
// disposal notifications.
func NewManager(surface Surface, registry *render.Registry, store *session.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		surface:  surface,
		registry: registry,
		store:    store,
		logger:   logger,
		panels:   make(map[string]*Panel),
	}
	surface.OnDisposed(m.handleDisposed)
	return m
}

// Show renders the artifact into a panel. An empty or unknown panelID
// allocates a fresh panel; a live one is reused in place, so repeated
// shows against the same id never grow the panel set.
func (m *Manager) Show(a *artifact.Artifact, panelID string) (ShowResult, error) {
	markup, err := m.registry.Render(a)
	if err != nil {
		return ShowResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	title := a.DisplayTitle()
	existing, ok := m.panels[panelID]
	if panelID != "" && ok {
		return m.refresh(existing, a, title, markup)
	}

	id := newPanelID()
	if err := m.surface.CreatePanel(id, title); err != nil {
		return ShowResult{}, fmt.Errorf("creating panel: %w", err)
	}
	if err := m.surface.SetContent(id, markup); err != nil {
		return ShowResult{}, fmt.Errorf("setting panel content: %w", err)
	}

	p := &Panel{
		ID:         id,
		Title:      title,
		LastMarkup: markup,
		FilePath:   m.persist(a, markup),
		CreatedAt:  time.Now(),
	}
	m.panels[id] = p
	m.order = append(m.order, id)

	m.logger.Info("panel created", "panel", id, "type", string(a.Type))
	return ShowResult{PanelID: id, FilePath: p.FilePath}, nil
}

// Update re-renders an existing panel. Unlike Show it refuses to
// allocate: an inactive id is an error.
func (m *Manager) Update(panelID string, a *artifact.Artifact) (ShowResult, error) {
	markup, err := m.registry.Render(a)
	if err != nil {
		return ShowResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.panels[panelID]
	if !ok {
		return ShowResult{}, fmt.Errorf("%w: %s", ErrNotFound, panelID)
	}
	return m.refresh(p, a, a.DisplayTitle(), markup)
}

// refresh pushes new content into a live panel. Caller holds m.mu.
func (m *Manager) refresh(p *Panel, a *artifact.Artifact, title, markup string) (ShowResult, error) {
	if err := m.surface.SetTitle(p.ID, title); err != nil {
		return ShowResult{}, fmt.Errorf("retitling panel: %w", err)
	}
	if err := m.surface.SetContent(p.ID, markup); err != nil {
		return ShowResult{}, fmt.Errorf("setting panel content: %w", err)
	}

	p.Title = title
	p.LastMarkup = markup
	if path := m.persist(a, markup); path != "" {
		p.FilePath = path
	}

	m.logger.Debug("panel updated", "panel", p.ID, "type", string(a.Type))
	return ShowResult{PanelID: p.ID, FilePath: p.FilePath}, nil
}

// persist writes this render to the session store. Image artifacts
// carrying base64 data are stored as raw bytes; everything else stores
// the rendered markup. An empty result means not persisted, which is a
// normal, non-fatal condition.
func (m *Manager) persist(a *artifact.Artifact, markup string) string {
	if a.Type == artifact.TypeImage {
		if img, err := a.DecodeImage(); err == nil {
			if raw, ok := img.Bytes(); ok {
				return m.store.SaveBytes(artifact.TypeImage, raw)
			}
		}
	}
	return m.store.Save(a.Type, markup)
}

// Close disposes a panel. Returns false when the id is not active.
func (m *Manager) Close(panelID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.panels[panelID]; !ok {
		return false
	}
	if err := m.surface.DisposePanel(panelID); err != nil {
		m.logger.Warn("disposing panel", "panel", panelID, "error", err)
	}
	m.remove(panelID)
	m.logger.Info("panel closed", "panel", panelID)
	return true
}

// List returns the active panel ids in creation order.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids
}

// Get returns a copy of a panel's state.
func (m *Manager) Get(panelID string) (Panel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[panelID]
	if !ok {
		return Panel{}, false
	}
	return *p, true
}

// OpenExternal forwards a path to the surface's platform opener.
func (m *Manager) OpenExternal(path string) error {
	return m.surface.OpenExternal(path)
}

// handleDisposed purges a panel dismissed by the user. The surface
// already destroyed the visual panel, so this only drops the entry —
// exactly what Close does minus the DisposePanel call.
func (m *Manager) handleDisposed(panelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.panels[panelID]; !ok {
		return
	}
	m.remove(panelID)
	m.logger.Info("panel dismissed by user", "panel", panelID)
}

// remove deletes id from the map and order slice. Caller holds m.mu.
func (m *Manager) remove(panelID string) {
	delete(m.panels, panelID)
	for i, id := range m.order {
		if id == panelID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// newPanelID allocates a process-unique panel id from the current time
// plus fresh randomness.
func newPanelID() string {
	return fmt.Sprintf("panel_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:4])
}
