package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kruize/kruize-load/internal/config"
)

const inputDir = "../../inputs"

func newKruizeServer(t *testing.T, profileStatus int) (*httptest.Server, *atomic.Int64) {
	var experiments atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		switch r.URL.Path {
		case "/createMetricProfile":
			w.WriteHeader(profileStatus)
		case "/createExperiment":
			experiments.Add(1)
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusCreated)
		}
	}))
	t.Cleanup(server.Close)
	return server, &experiments
}

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadCmd_EndToEnd(t *testing.T) {
	server, experiments := newKruizeServer(t, http.StatusCreated)
	logFile := filepath.Join(t.TempDir(), "load.log")

	out, err := executeRoot(t, "load",
		"--url", server.URL,
		"--threads", "2",
		"--total", "4",
		"--input-dir", inputDir,
		"--log-file", logFile,
		"--log-level", "debug",
		"--no-color",
	)
	require.NoError(t, err)

	assert.Equal(t, int64(4), experiments.Load())
	assert.Contains(t, out, " ✓ Successfully created Metric Profile\n")
	assert.True(t, strings.HasSuffix(out, "✓ All experiments created successfully!\n"), "got %q", out)

	log, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(log), "run finished")
	assert.Contains(t, string(log), "created=4")
}

func TestLoadCmd_ProfileRejected(t *testing.T) {
	server, experiments := newKruizeServer(t, http.StatusBadRequest)

	out, err := executeRoot(t, "load",
		"--url", server.URL,
		"--threads", "2",
		"--total", "4",
		"--input-dir", inputDir,
		"--log-file", filepath.Join(t.TempDir(), "load.log"),
		"--no-color",
	)
	require.Error(t, err)
	assert.Zero(t, experiments.Load())
	assert.Contains(t, out, "✗ Error creating Metrics Profile\n")
}

func TestLoadCmd_MissingInputs(t *testing.T) {
	server, experiments := newKruizeServer(t, http.StatusCreated)

	out, err := executeRoot(t, "load",
		"--url", server.URL,
		"--input-dir", t.TempDir(),
		"--log-file", "",
		"--no-color",
	)
	require.Error(t, err)
	assert.Zero(t, experiments.Load())
	assert.Contains(t, out, "✗ Error reading metrics profile\n")
}

func TestLoadCmd_InvalidSettings(t *testing.T) {
	_, err := executeRoot(t, "load", "--threads", "0", "--log-file", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threads must be at least 1")
}

func resolveWith(t *testing.T, args ...string) (config.Settings, error) {
	t.Helper()
	cmd := newLoadCmd()
	cmd.RunE = func(*cobra.Command, []string) error { return nil }
	require.NoError(t, cmd.ParseFlags(args))
	return resolveSettings(cmd)
}

func TestResolveSettings_Defaults(t *testing.T) {
	s, err := resolveWith(t)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), s)
}

func TestResolveSettings_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "load.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
baseUrl: http://from-file:8080
threads: 8
totalExperiments: 800
inputDir: file-inputs
`), 0o644))

	t.Setenv("KRUIZE_LOAD_THREADS", "6")
	t.Setenv("KRUIZE_LOAD_INPUT_DIR", "env-inputs")

	s, err := resolveWith(t, "--config", path, "--input-dir", "flag-inputs")
	require.NoError(t, err)

	assert.Equal(t, "http://from-file:8080", s.BaseURL) // file
	assert.Equal(t, 800, s.TotalExperiments)            // file
	assert.Equal(t, 6, s.Threads)                       // env beats file
	assert.Equal(t, "flag-inputs", s.InputDir)          // flag beats env
	assert.Equal(t, config.DefaultLogFile, s.LogFile)   // default
}

func TestResolveSettings_ConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "load.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threads: 3\n"), 0o644))
	t.Setenv("KRUIZE_LOAD_CONFIG", path)

	s, err := resolveWith(t)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Threads)
}

func TestResolveSettings_MissingConfig(t *testing.T) {
	_, err := resolveWith(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "config file not found")
}
