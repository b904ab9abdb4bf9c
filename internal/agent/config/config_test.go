package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/sharelink/internal/agent/workspace"
	"github.com/dmitrijs2005/sharelink/internal/timex"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("agent", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sharelink.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, DefaultServerURL, c.ServerURL)
	assert.Equal(t, DefaultLiveAddr, c.LiveAddr)
	assert.Equal(t, workspace.DefaultExcludes, c.Exclude)
	assert.Equal(t, int64(workspace.DefaultMaxFileSize), c.MaxFileSize)
	assert.Equal(t, DefaultPollInterval, c.PollInterval.Duration)
	assert.NoError(t, c.Validate())
}

func TestRead(t *testing.T) {
	cfg, err := Read(strings.NewReader(`
server_url = "https://sync.example.com"
poll_interval = "500ms"
exclude = ["vendor/**"]
`))
	require.NoError(t, err)

	want := Default()
	want.ServerURL = "https://sync.example.com"
	want.PollInterval = timex.Duration{Duration: 500 * time.Millisecond}
	want.Exclude = []string{"vendor/**"}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader(`colour = "blue"`))
	assert.ErrorContains(t, err, "unknown config keys")

	_, err = Read(strings.NewReader(`poll_interval = "soon"`))
	assert.Error(t, err)

	_, err = ReadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestWrite_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Workspace = "/tmp/ws"

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cfg))
	assert.Contains(t, buf.String(), `poll_interval = "2s"`)

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(cfg, got))
}

func TestLoad(t *testing.T) {
	ws := t.TempDir()

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(newFlags(t, "--workspace", ws))
		require.NoError(t, err)
		assert.Equal(t, DefaultServerURL, cfg.ServerURL)
		assert.Equal(t, filepath.Join(ws, workspace.StateDir, StateFileName), cfg.StatePath)
	})

	t.Run("flags override file", func(t *testing.T) {
		path := writeConfig(t, `
server_url = "http://file:8080"
live_addr = "file:50051"
max_file_size = 10
`)
		cfg, err := Load(newFlags(t, "-c", path, "-w", ws, "--live", "flag:1", "--exclude", "tmp/**", "--poll-interval", "5s"))
		require.NoError(t, err)
		assert.Equal(t, "http://file:8080", cfg.ServerURL)
		assert.Equal(t, "flag:1", cfg.LiveAddr)
		assert.Equal(t, int64(10), cfg.MaxFileSize)
		assert.Equal(t, 5*time.Second, cfg.PollInterval.Duration)
		assert.Contains(t, cfg.Exclude, "tmp/**")
		assert.Contains(t, cfg.Exclude, "node_modules/**")
	})

	t.Run("explicit state path", func(t *testing.T) {
		cfg, err := Load(newFlags(t, "-w", ws, "--state", "/var/lib/agent.db"))
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/agent.db", cfg.StatePath)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := Load(newFlags(t, "-w", ws, "--server", "ftp://x", "--max-file-size", "0", "--log-level", "loud"))
		require.Error(t, err)
		assert.ErrorContains(t, err, "server_url")
		assert.ErrorContains(t, err, "max_file_size")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(newFlags(t, "-c", filepath.Join(ws, "nope.toml")))
		assert.Error(t, err)
	})
}
