package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jugglevault/jugglevault/pkg/types"
)

func setupDir(t *testing.T) *Dir {
	t.Helper()
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)
	return d
}

func TestStoreAndResolveAsset(t *testing.T) {
	d := setupDir(t)

	ref, err := d.StoreAsset("cascade.mp4", []byte("video bytes"))
	require.NoError(t, err)
	assert.Equal(t, "cascade.mp4", ref)
	assert.True(t, d.AssetExists(ref))

	data, err := d.ResolveAsset(ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("video bytes"), data)
}

func TestResolveMissingAsset(t *testing.T) {
	d := setupDir(t)

	_, err := d.ResolveAsset("nothing.mp4")
	assert.ErrorIs(t, err, types.ErrAssetMissing)
	assert.False(t, d.AssetExists("nothing.mp4"))
}

func TestRefPathRejectsEscape(t *testing.T) {
	d := setupDir(t)

	_, err := d.ResolveAsset("../outside.mp4")
	assert.Error(t, err)
	_, err = d.StoreAsset("/etc/passwd", []byte("x"))
	assert.Error(t, err)
	assert.False(t, d.AssetExists("../outside.mp4"))
}

func TestStoreAssetCreatesParentDirs(t *testing.T) {
	d := setupDir(t)

	ref, err := d.StoreAsset("sessions/2026/v.mp4", []byte("nested bytes"))
	require.NoError(t, err)
	assert.Equal(t, "sessions/2026/v.mp4", ref)

	data, err := d.ResolveAsset(ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("nested bytes"), data)
}

func TestStoreAssetOverwrites(t *testing.T) {
	d := setupDir(t)

	_, err := d.StoreAsset("a.mp4", []byte("one"))
	require.NoError(t, err)
	_, err = d.StoreAsset("a.mp4", []byte("two"))
	require.NoError(t, err)

	data, err := d.ResolveAsset("a.mp4")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
}
