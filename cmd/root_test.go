package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/brix-meter/internal/template"
)

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BRIX_TEST_DOTENV=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("BRIX_TEST_DOTENV") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("BRIX_TEST_DOTENV"))

	assert.NoError(t, loadDotEnv(filepath.Join(dir, "missing.env")))
	assert.NoError(t, loadDotEnv(""))
}

func TestEnvOr(t *testing.T) {
	t.Setenv("BRIX_TEST_ENV_OR", "from-env")

	assert.Equal(t, "flag", envOr("flag", "BRIX_TEST_ENV_OR"))
	assert.Equal(t, "from-env", envOr("", "BRIX_TEST_ENV_OR"))
}

func TestTemplatesListCommand(t *testing.T) {
	cmd := newTemplatesListCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.RunE(cmd, nil))
	assert.Contains(t, out.String(), template.DefaultName+" (default)")
}

func TestScoreCommandRequiresLabels(t *testing.T) {
	cmd := newScoreCmd()
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no labels given")
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	SetBuildInfo("abc123", "2026-01-01")

	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	assert.Contains(t, out.String(), "brix-meter version 1.2.3")
	assert.Contains(t, out.String(), "abc123")
}
