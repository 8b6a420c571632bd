package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := New()
	assert.Equal(t, 2, c.Int(KeySearchPlies))
	assert.Equal(t, 14, c.Int(KeySearchTopK))
	assert.Equal(t, 5, c.Int(KeySearchBeam))
	assert.Equal(t, 5, c.Int(KeySearchReplyCap))
	assert.True(t, c.Bool(KeySearchCSP))
	assert.Equal(t, 200, c.Int(KeyAutoplayMaxTurns))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TAVLA_SEARCH_TOPK", "9")
	t.Setenv("TAVLA_SEARCH_CSPFILTER", "false")
	c := New()
	assert.Equal(t, 9, c.Int(KeySearchTopK))
	assert.False(t, c.Bool(KeySearchCSP))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yml := []byte("search:\n  beam: 7\nautoplay:\n  maxturns: 50\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tavla.yml"), yml, 0644))

	c := New()
	require.NoError(t, c.Load(dir))
	assert.Equal(t, 7, c.Int(KeySearchBeam))
	assert.Equal(t, 50, c.Int(KeyAutoplayMaxTurns))
	// Untouched keys keep their defaults.
	assert.Equal(t, 14, c.Int(KeySearchTopK))
}

func TestLoadMissingFileIsFine(t *testing.T) {
	c := New()
	require.NoError(t, c.Load(t.TempDir()))
	assert.Equal(t, 14, c.Int(KeySearchTopK))
}

func TestSetWins(t *testing.T) {
	c := New()
	c.Set(KeySearchBeam, 3)
	assert.Equal(t, 3, c.Int(KeySearchBeam))
}
