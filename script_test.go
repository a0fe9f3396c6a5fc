package arcade

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLaunchScript(t *testing.T) {
	cfg := testConfig(t, &fakeRunner{})

	path, err := WriteLaunchScript(cfg, pong())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.WorkDir, "Games", "LaunchScripts", "pong.sh"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\n~/Games/pong/bin/pong\n", string(b))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), fi.Mode().Perm())
}

func TestWriteLaunchScriptSourceDirectory(t *testing.T) {
	cfg := testConfig(t, &fakeRunner{})
	m := pong()
	m.Directory = "game"

	script, err := LaunchScript(cfg, m)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\n~/Games/pong/game/bin/pong\n", script)
}

func TestWriteLaunchScriptResetsMode(t *testing.T) {
	cfg := testConfig(t, &fakeRunner{})
	path := cfg.ScriptPath(pong())
	writeFile(t, path, "stale")

	_, err := WriteLaunchScript(cfg, pong())
	require.NoError(t, err)
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), fi.Mode().Perm())
}

func TestWriteLaunchScriptUnsupportedLanguage(t *testing.T) {
	cfg := testConfig(t, &fakeRunner{})
	m := pong()
	m.Language = "lua"

	_, err := WriteLaunchScript(cfg, m)
	var ue *UnsupportedLanguageError
	assert.True(t, errors.As(err, &ue))
	assert.NoFileExists(t, cfg.ScriptPath(m))
}
