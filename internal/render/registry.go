// Package render turns artifacts into HTML markup.
//
// A Registry maps artifact type tags to Renderer implementations. At
// most one renderer is registered per tag and the last registration
// wins. Dispatching an unregistered tag falls back to a renderer that
// never fails, escapes everything, and labels the output as unknown —
// unknown tags are legal and must degrade gracefully.
//
// Renderers are pure: no side effects, no artifact mutation. All free
// text from a payload is HTML-escaped before it is embedded, so hostile
// artifact content cannot inject markup. A renderer's error propagates
// to the caller untouched; the protocol gateway is the single place
// failures become response-level errors.
package render

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/panelhost/canvas/internal/artifact"
)

// Renderer turns one artifact type into markup.
type Renderer interface {
	// Type is the artifact tag this renderer handles.
	Type() artifact.Type

	// Render produces HTML for a well-formed artifact of this
	// renderer's type. It must not mutate the artifact.
	Render(a *artifact.Artifact) (string, error)
}

// Registry dispatches artifacts to renderers by type tag.
//
// Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu        sync.RWMutex
	renderers map[artifact.Type]Renderer
	fallback  *fallbackRenderer
	logger    *slog.Logger
}

// New creates an empty registry. Use NewDefault for one pre-populated
// with the built-in renderers.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		renderers: make(map[artifact.Type]Renderer),
		fallback:  &fallbackRenderer{},
		logger:    logger,
	}
}

// NewDefault creates a registry with all built-in renderers registered.
// maxDiffLines caps each side of a diff render; 0 disables the cap.
func NewDefault(logger *slog.Logger, maxDiffLines int) *Registry {
	r := New(logger)
	r.Register(&chartRenderer{})
	r.Register(&tableRenderer{})
	r.Register(&fileRenderer{})
	r.Register(&diffRenderer{maxLines: maxDiffLines})
	r.Register(&webRenderer{})
	r.Register(&markdownRenderer{})
	r.Register(&jsonRenderer{})
	r.Register(&imageRenderer{})
	return r
}

// Register adds a renderer, unconditionally replacing any renderer
// previously registered for the same type tag.
func (r *Registry) Register(renderer Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, replaced := r.renderers[renderer.Type()]; replaced {
		r.logger.Debug("replacing renderer", "type", string(renderer.Type()))
	}
	r.renderers[renderer.Type()] = renderer
}

// Unregister removes the renderer for a type tag, if any.
func (r *Registry) Unregister(t artifact.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.renderers, t)
}

// Get returns the renderer for a type tag.
func (r *Registry) Get(t artifact.Type) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[t]
	return renderer, ok
}

// Has reports whether a renderer is registered for the type tag.
func (r *Registry) Has(t artifact.Type) bool {
	_, ok := r.Get(t)
	return ok
}

// Types returns the registered type tags, sorted.
func (r *Registry) Types() []artifact.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]artifact.Type, 0, len(r.renderers))
	for t := range r.renderers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Render dispatches the artifact to its renderer. Unregistered types go
// to the fallback, which cannot fail; a registered renderer's error is
// returned as-is.
func (r *Registry) Render(a *artifact.Artifact) (string, error) {
	renderer, ok := r.Get(a.Type)
	if !ok {
		r.logger.Debug("no renderer registered, using fallback", "type", string(a.Type))
		return r.fallback.Render(a)
	}
	return renderer.Render(a)
}
