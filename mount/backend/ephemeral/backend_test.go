package ephemeral_test

import (
	"testing"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/mount"
	"github.com/mwantia/craftos/mount/backend/ephemeral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEphemeralBackend(t *testing.T) {
	ctx := t.Context()

	m, err := mount.NewObjectMount(ctx, ephemeral.NewEphemeralBackend(), mount.WithLocation("tmp"))
	require.NoError(t, err)

	assert.Equal(t, "tmp", m.Name())
	assert.Equal(t, []string{"tmp"}, m.Location())

	require.NoError(t, m.MakeDir(ctx, "x/y"))
	require.NoError(t, m.Write(ctx, "x/y/z", []byte("zz")))
	require.NoError(t, m.Write(ctx, "x/w", []byte("w")))

	names, err := m.List(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"w", "y"}, names)

	free, err := m.FreeSpace(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(mount.DefaultCapacity-3), free)

	require.NoError(t, m.Delete(ctx, "x/y"))
	exists, err := mount.Exists(ctx, m, "x/y/z")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = m.Read(ctx, "x/y/z")
	assert.ErrorIs(t, err, data.ErrNotExist)
}
