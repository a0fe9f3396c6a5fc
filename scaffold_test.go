package arcade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "space-invaders", Slug("Space Invaders"))
	assert.Equal(t, "pong", Slug(" pong "))
}

func TestWriteManifestLoadsBack(t *testing.T) {
	dir := t.TempDir()
	raw := NewManifestV1("space-invaders", CSharp, "Classic", "https://x/si.git", "main", "game")

	path, err := WriteManifest(dir, raw)
	require.NoError(t, err)

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "space-invaders", m.Name)
	assert.Equal(t, CSharp, m.Language)
	assert.Equal(t, "Classic", m.Description)
	assert.Equal(t, "main", m.Branch)
	assert.Equal(t, "game", m.Directory)

	_, err = WriteManifest(dir, raw)
	assert.ErrorContains(t, err, "already exists")
}

func TestWriteManifestOmitsEmptyOptionals(t *testing.T) {
	raw := NewManifestV1("pong", CPP, "", "https://x/pong.git", "", "")
	b, err := EncodeManifest(raw)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "description")
	assert.NotContains(t, string(b), "branch")
	assert.NotContains(t, string(b), "emulationstation")
}

func TestWriteManifestValidates(t *testing.T) {
	_, err := WriteManifest(t.TempDir(), NewManifestV1("pong", CPP, "", "", "", ""))
	var me *ManifestError
	assert.ErrorAs(t, err, &me)
}
