package host_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/mount"
	"github.com/mwantia/craftos/mount/backend/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHostMount(t *testing.T, opts ...mount.MountOption) (*host.HostMount, string) {
	t.Helper()

	root := filepath.Join(t.TempDir(), "computer")
	hm, err := host.NewHostMount(root, opts...)
	require.NoError(t, err)

	return hm, root
}

func TestHostMount_CreatesRoot(t *testing.T) {
	_, root := newHostMount(t)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestHostMount_RoundTrip(t *testing.T) {
	ctx := t.Context()
	hm, _ := newHostMount(t)

	for _, content := range [][]byte{{}, []byte("hello"), {0, 1, 2, 255, '\n'}} {
		require.NoError(t, hm.Write(ctx, "file.bin", content))

		got, err := hm.Read(ctx, "file.bin")
		require.NoError(t, err)
		assert.Equal(t, content, got)
	}
}

func TestHostMount_StatAndList(t *testing.T) {
	ctx := t.Context()
	hm, _ := newHostMount(t)

	require.NoError(t, hm.MakeDir(ctx, "b/nested/deep"))
	require.NoError(t, hm.Write(ctx, "c.txt", []byte("abc")))
	require.NoError(t, hm.Write(ctx, "a.txt", []byte("a")))

	names, err := hm.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b", "c.txt"}, names)

	attr, err := hm.Stat(ctx, "c.txt")
	require.NoError(t, err)
	require.NotNil(t, attr)
	assert.Equal(t, int64(3), attr.Size)
	assert.False(t, attr.IsDir)
	assert.NotZero(t, attr.Modified)

	attr, err = hm.Stat(ctx, "b/nested")
	require.NoError(t, err)
	require.NotNil(t, attr)
	assert.True(t, attr.IsDir)

	attr, err = hm.Stat(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, attr)

	attr, err = hm.Stat(ctx, "c.txt/below")
	require.NoError(t, err)
	assert.Nil(t, attr)

	_, err = hm.List(ctx, "c.txt")
	assert.ErrorIs(t, err, data.ErrNotDirectory)
}

func TestHostMount_RejectsTraversal(t *testing.T) {
	ctx := t.Context()
	hm, root := newHostMount(t)

	outside := filepath.Join(filepath.Dir(root), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	_, err := hm.Read(ctx, "../secret.txt")
	assert.ErrorIs(t, err, data.ErrNotExist)

	attr, err := hm.Stat(ctx, "../../secret.txt")
	require.NoError(t, err)
	assert.Nil(t, attr)

	require.NoError(t, hm.Write(ctx, "../escaped.txt", []byte("x")))
	_, err = os.Stat(filepath.Join(root, "escaped.txt"))
	assert.NoError(t, err, "parent references are clamped to the mount root")
	_, err = os.Stat(filepath.Join(filepath.Dir(root), "escaped.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestHostMount_ReadOnly(t *testing.T) {
	ctx := t.Context()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), []byte("data"), 0o644))

	hm, err := host.NewHostMount(root, mount.WithReadOnly(true))
	require.NoError(t, err)

	assert.ErrorIs(t, hm.Write(ctx, "file.txt", []byte("x")), data.ErrPermission)
	assert.ErrorIs(t, hm.Delete(ctx, "file.txt"), data.ErrPermission)
	assert.ErrorIs(t, hm.MakeDir(ctx, "dir"), data.ErrPermission)
	assert.ErrorIs(t, hm.Move(ctx, "file.txt", "other.txt"), data.ErrPermission)
	assert.ErrorIs(t, hm.Copy(ctx, "file.txt", "other.txt"), data.ErrPermission)

	_, err = hm.Open(ctx, "file.txt", data.OpenWrite)
	assert.ErrorIs(t, err, data.ErrPermission)

	h, err := hm.Open(ctx, "file.txt", 0)
	require.NoError(t, err)
	defer h.Close()

	attr, err := hm.Stat(ctx, "file.txt")
	require.NoError(t, err)
	assert.True(t, attr.IsReadOnly)
}

func TestHostMount_Equal(t *testing.T) {
	root := t.TempDir()

	a, err := host.NewHostMount(root)
	require.NoError(t, err)
	b, err := host.NewHostMount(root, mount.WithLocation("disk"))
	require.NoError(t, err)
	c, err := host.NewHostMount(root, mount.WithReadOnly(true))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestHostMount_MoveAndCopy(t *testing.T) {
	ctx := t.Context()
	hm, _ := newHostMount(t)

	require.NoError(t, hm.MakeDir(ctx, "src/sub"))
	require.NoError(t, hm.Write(ctx, "src/sub/file.txt", []byte("payload")))

	require.NoError(t, hm.Copy(ctx, "src", "copy"))
	got, err := hm.Read(ctx, "copy/sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	assert.ErrorIs(t, hm.Copy(ctx, "src", "copy"), data.ErrExist)
	assert.ErrorIs(t, hm.Move(ctx, "src", "src/sub/inner"), data.ErrIntoItself)
	assert.ErrorIs(t, hm.Move(ctx, "missing", "other"), data.ErrNotExist)

	require.NoError(t, hm.Move(ctx, "src", "moved"))
	exists, err := mount.Exists(ctx, hm, "src")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, hm.Delete(ctx, "moved"))
	assert.ErrorIs(t, hm.Delete(ctx, "moved"), data.ErrNotExist)
}

func TestHostMount_OpenModes(t *testing.T) {
	ctx := t.Context()
	hm, _ := newHostMount(t)

	_, err := hm.Open(ctx, "missing.txt", 0)
	assert.ErrorIs(t, err, data.ErrNotExist)

	_, err = hm.Open(ctx, "missing.txt", data.OpenReadPlus)
	assert.ErrorIs(t, err, data.ErrNotExist)

	w, err := hm.Open(ctx, "log.txt", data.OpenWrite)
	require.NoError(t, err)
	writer := w.(mount.WritableHandle)
	require.NoError(t, writer.WriteLine([]byte("first")))
	require.NoError(t, mount.WriteValue(writer, 65))
	require.NoError(t, writer.Close())

	a, err := hm.Open(ctx, "log.txt", data.OpenAppend)
	require.NoError(t, err)
	_, err = a.(mount.WritableHandle).Write([]byte("\nsecond"))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	r, err := hm.Open(ctx, "log.txt", 0)
	require.NoError(t, err)
	reader := r.(mount.ReadableHandle)

	line, err := reader.ReadLine(false)
	require.NoError(t, err)
	assert.Equal(t, "first", string(line))

	line, err = reader.ReadLine(true)
	require.NoError(t, err)
	assert.Equal(t, "A\n", string(line))

	rest, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "second", string(rest))

	_, err = reader.ReadAll()
	assert.ErrorIs(t, err, io.EOF)
	require.NoError(t, reader.Close())

	rw, err := hm.Open(ctx, "log.txt", data.OpenReadPlus)
	require.NoError(t, err)
	_, err = rw.(mount.WritableHandle).Write([]byte("FIRST"))
	require.NoError(t, err)
	pos, err := rw.SeekTo("set", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
	line, err = rw.(mount.ReadableHandle).ReadLine(false)
	require.NoError(t, err)
	assert.Equal(t, "FIRST", string(line))
	require.NoError(t, rw.Close())

	w, err = hm.Open(ctx, "log.txt", data.OpenWrite)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	content, err := hm.Read(ctx, "log.txt")
	require.NoError(t, err)
	assert.Empty(t, content)

	require.NoError(t, hm.MakeDir(ctx, "dir"))
	_, err = hm.Open(ctx, "dir", 0)
	assert.ErrorIs(t, err, data.ErrIsDirectory)
}

func TestHostMount_Capacity(t *testing.T) {
	ctx := t.Context()
	hm, _ := newHostMount(t, mount.WithCapacity(1000))

	require.NoError(t, hm.Write(ctx, "file", make([]byte, 100)))

	capacity, err := hm.Capacity(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), capacity)

	free, err := hm.FreeSpace(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(900), free)
}
