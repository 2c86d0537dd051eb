package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/shepherd/internal/cli"
	"github.com/rshade/shepherd/internal/config"
	"github.com/rshade/shepherd/internal/session"
)

// setupHome isolates SHEPHERD_HOME and writes a config that starts the mock
// API without latency and keeps the label cache off.
func setupHome(t *testing.T) (string, string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvLogLevel, "error")

	cfg := config.New()
	cfg.API.MockLatency = 0
	cfg.Cache.Enabled = false
	path := filepath.Join(home, "test-config.yaml")
	require.NoError(t, cfg.Save(path))
	return home, path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestConfigInit(t *testing.T) {
	home, _ := setupHome(t)

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized at")
	assert.FileExists(t, filepath.Join(home, "config.yaml"))

	_, err = execute(t, "config", "init")
	require.ErrorIs(t, err, cli.ErrConfigExists)

	_, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigShowAppliesEnvironment(t *testing.T) {
	_, path := setupHome(t)
	t.Setenv(config.EnvMaxRetries, "5")

	out, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "max_retries: 5")
	assert.Contains(t, out, "members: /api/members")
}

func TestConfigValidate(t *testing.T) {
	home, path := setupHome(t)

	out, err := execute(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	bad := filepath.Join(home, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("lazy:\n  max_retries: 99\n"), 0o600))
	_, err = execute(t, "--config", bad, "config", "validate")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestBreadcrumbText(t *testing.T) {
	_, path := setupHome(t)

	out, err := execute(t, "--config", path, "breadcrumb", "/members/42")
	require.NoError(t, err)
	assert.Equal(t, "Dashboard › Members › Jane Doe\n", out)
}

func TestBreadcrumbJSON(t *testing.T) {
	_, path := setupHome(t)

	out, err := execute(t, "--config", path, "breadcrumb", "/members/42", "sunday-school/999", "-o", "json")
	require.NoError(t, err)

	var got []struct {
		Path  string `json:"path"`
		Trail struct {
			Items []struct {
				Label         string `json:"label"`
				IsCurrentPage bool   `json:"isCurrentPage"`
			} `json:"items"`
		} `json:"trail"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "/members/42", got[0].Path)
	require.Len(t, got[0].Trail.Items, 2)
	assert.Equal(t, "Jane Doe", got[0].Trail.Items[1].Label)
	assert.True(t, got[0].Trail.Items[1].IsCurrentPage)

	assert.Equal(t, "/sunday-school/999", got[1].Path)
	require.Len(t, got[1].Trail.Items, 2)
	assert.Equal(t, "Sunday School", got[1].Trail.Items[0].Label)
	assert.Equal(t, "Item 999", got[1].Trail.Items[1].Label, "missing record falls back")
}

func TestBreadcrumbRejectsUnknownOutput(t *testing.T) {
	_, path := setupHome(t)
	_, err := execute(t, "--config", path, "breadcrumb", "/members", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output")
}

func TestSessionLifecycle(t *testing.T) {
	home, path := setupHome(t)

	out, err := execute(t, "--config", path, "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "User:         guest")

	out, err = execute(t, "--config", path, "session", "login",
		"--user", "pat", "--role", "treasurer", "--capability", "events:view", "--currency", "eur")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as pat")

	s, err := session.Load(filepath.Join(home, "session.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "EUR", s.Currency)
	assert.True(t, s.Can(session.ViewFinance))
	assert.True(t, s.Can(session.ViewEvents))
	assert.False(t, s.Can(session.ManageCommunications))

	out, err = execute(t, "--config", path, "session", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Capabilities: members:view, finance:view, events:view")

	_, err = execute(t, "--config", path, "session", "logout")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(home, "session.yaml"))
}

func TestSessionLoginValidation(t *testing.T) {
	_, path := setupHome(t)

	_, err := execute(t, "--config", path, "session", "login", "--user", "x", "--role", "bishop")
	require.ErrorIs(t, err, cli.ErrUnknownRole)

	_, err = execute(t, "--config", path, "session", "login", "--user", "x", "--capability", "root")
	require.ErrorIs(t, err, session.ErrUnknownCapability)

	_, err = execute(t, "--config", path, "session", "login", "--user", "x", "--currency", "ZZZ")
	require.Error(t, err)

	_, err = execute(t, "--config", path, "session", "login")
	require.Error(t, err, "--user is required")
}

func TestSetupIsIdempotent(t *testing.T) {
	home, _ := setupHome(t)

	out, err := execute(t, "setup", "--non-interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "[OK] Home directory "+home)
	assert.Contains(t, out, "[OK] Wrote default config")
	assert.Contains(t, out, "[SKIP] No saved session")
	assert.Contains(t, out, "Setup complete!")

	out, err = execute(t, "setup", "--non-interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "[SKIP] Config already exists")
	assert.Contains(t, out, "[OK] Label cache at")
}

func TestDashboardNeedsTerminal(t *testing.T) {
	_, path := setupHome(t)
	_, err := execute(t, "--config", path, "dashboard", "/members")
	require.ErrorIs(t, err, cli.ErrNotInteractive)
}

func TestRootHelp(t *testing.T) {
	setupHome(t)
	out, err := execute(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"dashboard", "breadcrumb", "serve", "config", "session", "setup"} {
		assert.Contains(t, out, sub)
	}
}
