// Package session persists rendered artifacts into a per-run session
// directory.
//
// Exactly one session exists per host process. The session directory
// lives at <root>/tmp/<namespace>/<sessionID> and is created lazily on
// the first successful save. Artifact files are write-once: every
// render produces a new file and nothing is ever overwritten.
//
// Persistence is best-effort by policy. A store constructed without a
// storage root stays inactive and every save returns an empty path;
// write failures likewise degrade to an empty path with a warning log.
// Callers treat an empty path as "not persisted", never as an error.
package session

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/panelhost/canvas/internal/artifact"
)

// subPath is the fixed directory segment between the storage root and
// the namespace.
const subPath = "tmp"

// saveAttempts bounds filename collision retries. Collisions require
// the same millisecond, type, and random suffix; one retry is already
// overkill.
const saveAttempts = 3

// Info describes one session directory under the namespace root.
type Info struct {
	ID        string
	Path      string
	FileCount int
}

// Store owns the per-process session directory.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	root      string // base storage root; "" = persistence disabled
	namespace string
	id        string
	logger    *slog.Logger

	mu  sync.Mutex
	dir string // session directory; "" until first successful save
}

// New creates a Store for one host run. root may be empty, in which
// case the store never persists anything. The session id is fixed here:
// second-resolution timestamp plus a random suffix so two host starts
// within the same second cannot collide.
func New(root, namespace string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		root:      root,
		namespace: namespace,
		id:        time.Now().Format("20060102_150405") + "_" + randomSuffix(),
		logger:    logger,
	}
}

// ID returns the session identifier generated at construction.
func (s *Store) ID() string { return s.id }

// Active reports whether the store has a storage root to persist into.
func (s *Store) Active() bool { return s.root != "" }

// Dir returns the session directory path, or "" before the first
// successful save.
func (s *Store) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// namespaceDir is <root>/tmp/<namespace>, the parent of all sessions.
func (s *Store) namespaceDir() string {
	return filepath.Join(s.root, subPath, s.namespace)
}

// Save persists text content for one artifact render and returns the
// absolute file path, or "" when persistence is unavailable or fails.
func (s *Store) Save(t artifact.Type, content string) string {
	return s.SaveBytes(t, []byte(content))
}

// SaveBytes is the binary variant of Save, used for raw image bytes.
func (s *Store) SaveBytes(t artifact.Type, data []byte) string {
	if s.root == "" {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dir == "" {
		dir := filepath.Join(s.namespaceDir(), s.id)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			s.logger.Warn("cannot create session directory", "dir", dir, "error", err)
			return ""
		}
		s.dir = dir
		s.logger.Info("session directory created", "session", s.id, "dir", dir)
	}

	name := ""
	for attempt := 0; attempt < saveAttempts; attempt++ {
		name = artifactFilename(t, time.Now())
		path := filepath.Join(s.dir, name)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
		if os.IsExist(err) {
			continue // new random suffix next attempt
		}
		if err != nil {
			s.logger.Warn("cannot create artifact file", "path", path, "error", err)
			return ""
		}
		if _, err := file.Write(data); err != nil {
			file.Close()
			s.logger.Warn("cannot write artifact file", "path", path, "error", err)
			return ""
		}
		if err := file.Close(); err != nil {
			s.logger.Warn("cannot close artifact file", "path", path, "error", err)
			return ""
		}
		s.logger.Debug("artifact persisted", "path", path, "bytes", len(data))
		return path
	}

	s.logger.Warn("artifact filename collided repeatedly", "session", s.id, "type", string(t))
	return ""
}

// List returns the artifact filenames of the current session sorted
// descending, which is newest-first given the time-prefixed naming.
// Dotfiles are excluded. A session with no directory yet lists empty.
func (s *Store) List() ([]string, error) {
	dir := s.Dir()
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading session directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Sessions returns all session directories under the namespace root,
// newest first.
func (s *Store) Sessions() ([]Info, error) {
	if s.root == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(s.namespaceDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading namespace directory: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(s.namespaceDir(), entry.Name())
		infos = append(infos, Info{
			ID:        entry.Name(),
			Path:      path,
			FileCount: countFiles(path),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID > infos[j].ID })
	return infos, nil
}

// countFiles counts the artifact files directly inside a session
// directory, skipping subdirectories and dotfiles. An unreadable
// directory counts as empty.
func countFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		count++
	}
	return count
}

// Cleanup deletes all but the keep newest sessions and returns how many
// were removed. The currently active session is never deleted, even
// when it falls outside the retained window. A file lock on the
// namespace root serializes sweeps across host processes.
func (s *Store) Cleanup(keep int) (int, error) {
	if s.root == "" {
		return 0, nil
	}
	if keep < 0 {
		keep = 0
	}

	lock := flock.New(filepath.Join(s.namespaceDir(), ".cleanup.lock"))
	if locked, err := lock.TryLock(); err == nil && locked {
		defer lock.Unlock()
	}

	infos, err := s.Sessions()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for i, info := range infos {
		if i < keep || info.ID == s.id {
			continue
		}
		if err := os.RemoveAll(info.Path); err != nil {
			s.logger.Warn("cannot delete session", "session", info.ID, "error", err)
			continue
		}
		s.logger.Info("deleted old session", "session", info.ID)
		deleted++
	}
	return deleted, nil
}

// artifactFilename builds <HHmmssSSS>_<type>_<rand4>.<ext>. The
// millisecond time prefix keeps lexical order equal to creation order
// within a session; the random suffix disambiguates same-millisecond
// saves.
func artifactFilename(t artifact.Type, now time.Time) string {
	stamp := now.Format("150405") + fmt.Sprintf("%03d", now.Nanosecond()/int(time.Millisecond))
	return fmt.Sprintf("%s_%s_%s.%s", stamp, sanitizeType(t), randomSuffix(), artifact.Extension(t))
}

// sanitizeType makes an artifact type tag safe to embed in a filename.
// Type tags come from untrusted remote messages; anything outside
// [a-zA-Z0-9_-] becomes an underscore and overlong tags are truncated.
func sanitizeType(t artifact.Type) string {
	const maxLen = 32
	runes := []rune(string(t))
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	out := make([]rune, len(runes))
	for i, r := range runes {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			out[i] = r
		default:
			out[i] = '_'
		}
	}
	if len(out) == 0 {
		return "artifact"
	}
	return string(out)
}

// randomSuffix returns 4 hex characters of fresh randomness.
func randomSuffix() string {
	return uuid.NewString()[:4]
}
