package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, DefaultArtifacts, c.Artifacts)
	assert.Equal(t, DefaultAddress, c.Address)
	assert.Equal(t, "text", c.Format)
	assert.Positive(t, c.Workers)
	assert.NoError(t, c.Validate())
}

func TestLoad_Partial(t *testing.T) {
	path := writeFile(t, "bundle: /srv/model.db\nworkers: 3\n")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/model.db", c.Bundle)
	assert.Equal(t, 3, c.Workers)
	// unset keys keep defaults
	assert.Equal(t, DefaultArtifacts, c.Artifacts)
	assert.Equal(t, DefaultAddress, c.Address)
}

func TestLoad_Empty(t *testing.T) {
	c, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default().Address, c.Address)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "artefacts: x\n"},
		{"bad yaml", "workers: [1\n"},
		{"bad format", "format: xml\n"},
		{"bad workers", "workers: 0\n"},
		{"bad log format", "log_format: logfmt\n"},
		{"bad log level", "log_level: dbg\n"},
		{"no source", "artifacts: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "INFO", "warn", "warning", "error"} {
		c := Default()
		c.LogLevel = lvl
		assert.NoError(t, c.Validate(), lvl)
	}

	c := Default()
	c.LogLevel = "verbose"
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `log_level "verbose"`)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	path := writeFile(t, "format: json\n")
	c, err = LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, "json", c.Format)
}

func TestLoadOrDefault_UserFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := DefaultPath()
	require.NoError(t, err)
	c := Default()
	c.Format = "yaml"
	require.NoError(t, Save(p, c))

	got, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "yaml", got.Format)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	c1 := Default()
	c1.Workers = 7
	c1.LogLevel = "debug"
	c1.Bundle = "model.db"

	require.NoError(t, Save(path, c1))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(fileMode), fi.Mode().Perm())

	c2, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestSave_Invalid(t *testing.T) {
	assert.Error(t, Save("", Default()))
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil))

	c := Default()
	c.Format = "csv"
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), c))
}
