package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TruncatesExistingLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dry_run.log")
	require.NoError(t, os.WriteFile(path, []byte("stale line\n"), 0o644))

	log, closer, err := New(path, "debug")
	require.NoError(t, err)
	log.WithField("step", "create").Info("Creating KinD cluster 'dry-run'...")
	log.Debug("debug line")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.NotContains(t, content, "stale line")
	assert.Contains(t, content, "Creating KinD cluster 'dry-run'...")
	assert.Contains(t, content, "step=create")
	assert.Contains(t, content, "run_id=")
	assert.Contains(t, content, "debug line")
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "load.log")

	log, closer, err := New(path, "warn")
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "hidden"))
	assert.True(t, strings.Contains(string(data), "shown"))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(filepath.Join(t.TempDir(), "x.log"), "chatty")
	assert.Error(t, err)
}

func TestNew_EmptyPathDiscards(t *testing.T) {
	log, closer, err := New("", "")
	require.NoError(t, err)
	log.Info("nowhere")
	assert.NoError(t, closer.Close())
}

func TestDiscard(t *testing.T) {
	log := Discard()
	require.NotNil(t, log)
	log.Error("dropped")
}
