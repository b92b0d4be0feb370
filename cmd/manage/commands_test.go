package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parentrant/parentrant/internal/config"
)

func init() {
	color.NoColor = true
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parent-rant.config.json")
	body := `{"site":{"name":"ParentRant"},"security":{"adminEmails":["a@x.com"],"adminPassword":"pw"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAddAndRemoveAdmin(t *testing.T) {
	path := writeConfig(t)

	out, err := run(t, "add-admin", "b@x.com", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "added b@x.com")

	out, err = run(t, "add-admin", "b@x.com", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "already an admin")

	out, err = run(t, "list-admins", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com\nb@x.com\n", out)

	_, err = run(t, "remove-admin", "a@x.com", "--config", path)
	require.NoError(t, err)

	cfg, err := config.LoadAppConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"b@x.com"}, cfg.AdminEmails())
	assert.Equal(t, "pw", cfg.Security.AdminPassword)
}

func TestAddAdmin_InvalidEmail(t *testing.T) {
	path := writeConfig(t)

	_, err := run(t, "add-admin", "not an email", "--config", path)
	assert.Error(t, err)

	cfg, err := config.LoadAppConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, cfg.AdminEmails())
}

func TestRemoveAdmin_Unknown(t *testing.T) {
	path := writeConfig(t)

	_, err := run(t, "remove-admin", "ghost@x.com", "--config", path)
	assert.ErrorIs(t, err, config.ErrAdminNotFound)
}

func TestListAdmins_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parent-rant.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"security":{"adminEmails":[]}}`), 0o600))

	out, err := run(t, "list-admins", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "no admins configured")
}

func TestListAdmins_MissingFile(t *testing.T) {
	_, err := run(t, "list-admins", "--config", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
