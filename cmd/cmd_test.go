package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandNames(c *cobra.Command) []string {
	var names []string
	for _, sub := range c.Commands() {
		names = append(names, sub.Name())
	}
	return names
}

func TestRootCommandsRegistered(t *testing.T) {
	names := commandNames(rootCmd)
	for _, want := range []string{"serve", "sessions", "send", "version", "ping", "panels", "open"} {
		assert.Contains(t, names, want)
	}
}

func TestSendSubcommandsRegistered(t *testing.T) {
	names := commandNames(sendCmd)
	for _, want := range []string{"markdown", "file", "csv", "json", "image", "diff"} {
		assert.Contains(t, names, want)
	}
}

func TestSessionsSubcommandsRegistered(t *testing.T) {
	names := commandNames(sessionsCmd)
	assert.Contains(t, names, "list")
	assert.Contains(t, names, "cleanup")
}

func TestReadArgFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# title\n"), 0o644))

	got, err := readArg([]string{path})
	require.NoError(t, err)
	assert.Equal(t, "# title\n", got)
}

func TestReadArgMissingFile(t *testing.T) {
	_, err := readArg([]string{filepath.Join(t.TempDir(), "absent.md")})
	assert.Error(t, err)
}
