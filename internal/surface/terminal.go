// Package surface provides display surface implementations for the
// panel manager.
//
// The Terminal surface is the headless default: it announces panel
// lifecycle on the host's terminal and relies on the session store's
// persisted files as the viewable output. A richer host (editor
// webview, browser) plugs in by implementing panel.Surface instead.
package surface

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	createdStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	updatedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	disposedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle    = lipgloss.NewStyle().Bold(true)
)

// Terminal is a panel.Surface that reports panel activity as styled
// terminal lines.
//
// Terminal is safe for concurrent use by multiple goroutines.
type Terminal struct {
	out io.Writer

	mu     sync.Mutex
	titles map[string]string
}

// NewTerminal creates a terminal surface writing to out; nil means
// os.Stdout.
func NewTerminal(out io.Writer) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	return &Terminal{
		out:    out,
		titles: make(map[string]string),
	}
}

func (t *Terminal) CreatePanel(id, title string) error {
	t.mu.Lock()
	t.titles[id] = title
	t.mu.Unlock()
	fmt.Fprintf(t.out, "%s %s %s\n", createdStyle.Render("●"), titleStyle.Render(title), disposedStyle.Render("("+id+")"))
	return nil
}

func (t *Terminal) SetTitle(id, title string) error {
	t.mu.Lock()
	t.titles[id] = title
	t.mu.Unlock()
	return nil
}

func (t *Terminal) SetContent(id, markup string) error {
	t.mu.Lock()
	title := t.titles[id]
	t.mu.Unlock()
	fmt.Fprintf(t.out, "%s %s %s\n", updatedStyle.Render("↻"), titleStyle.Render(title), disposedStyle.Render(fmt.Sprintf("(%d bytes)", len(markup))))
	return nil
}

func (t *Terminal) DisposePanel(id string) error {
	t.mu.Lock()
	title := t.titles[id]
	delete(t.titles, id)
	t.mu.Unlock()
	fmt.Fprintf(t.out, "%s %s\n", disposedStyle.Render("✕"), disposedStyle.Render(title))
	return nil
}

// OnDisposed is a no-op: a terminal surface has no user gesture that
// dismisses a panel outside host control.
func (t *Terminal) OnDisposed(func(id string)) {}

// OpenExternal hands the path to the platform's default opener.
func (t *Terminal) OpenExternal(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching opener for %s: %w", path, err)
	}
	// The opener is fire-and-forget; reap it without blocking.
	go cmd.Wait()
	return nil
}
