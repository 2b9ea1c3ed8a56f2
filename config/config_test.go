package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	assert.Equal(t, Tunables{SizeExp: 3}, Default())
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	tn, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), tn)
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tunables.toml")
	require.NoError(t, os.WriteFile(path, []byte("size_exp = 6\n"), 0o644))

	tn, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, tn.SizeExp)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Error(t, err)
}
