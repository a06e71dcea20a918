package memory_test

import (
	"io"
	"testing"
	"testing/fstest"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/mount"
	"github.com/mwantia/craftos/mount/backend/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newROM(t *testing.T) *memory.MemoryMount {
	t.Helper()

	root := memory.Dir(map[string]*memory.Node{
		"motd.txt": memory.Text("Hello\nWorld"),
		"programs": memory.Dir(map[string]*memory.Node{
			"shell": memory.Text("shell"),
			"edit":  memory.Text("edit"),
		}),
		"empty": memory.Dir(nil),
	})

	mm, err := memory.NewMemoryMount(root, mount.WithLocation("rom"))
	require.NoError(t, err)
	return mm
}

func TestMemoryMount_ListAndStat(t *testing.T) {
	ctx := t.Context()
	mm := newROM(t)

	assert.Equal(t, []string{"rom"}, mm.Location())
	assert.Equal(t, "rom", mm.Name())

	names, err := mm.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"empty", "motd.txt", "programs"}, names)

	names, err = mm.List(ctx, "programs")
	require.NoError(t, err)
	assert.Equal(t, []string{"edit", "shell"}, names)

	_, err = mm.List(ctx, "motd.txt")
	assert.ErrorIs(t, err, data.ErrNotDirectory)
	_, err = mm.List(ctx, "missing")
	assert.ErrorIs(t, err, data.ErrNotDirectory)

	attr, err := mm.Stat(ctx, "motd.txt")
	require.NoError(t, err)
	require.NotNil(t, attr)
	assert.Equal(t, int64(11), attr.Size)
	assert.True(t, attr.IsReadOnly)
	assert.Zero(t, attr.Created)

	attr, err = mm.Stat(ctx, "motd.txt/below")
	require.NoError(t, err)
	assert.Nil(t, attr)
}

func TestMemoryMount_ReadOnly(t *testing.T) {
	ctx := t.Context()
	mm := newROM(t)

	assert.ErrorIs(t, mm.Write(ctx, "new.txt", []byte("x")), data.ErrPermission)
	assert.ErrorIs(t, mm.Delete(ctx, "motd.txt"), data.ErrPermission)
	assert.ErrorIs(t, mm.MakeDir(ctx, "dir"), data.ErrPermission)
	assert.ErrorIs(t, mm.Move(ctx, "motd.txt", "x"), data.ErrPermission)
	assert.ErrorIs(t, mm.Copy(ctx, "motd.txt", "x"), data.ErrPermission)

	for _, mode := range []string{"w", "a", "r+"} {
		flags, err := data.ParseMode(mode)
		require.NoError(t, err)

		_, err = mm.Open(ctx, "motd.txt", flags)
		assert.ErrorIs(t, err, data.ErrPermission, mode)
	}

	capacity, err := mm.Capacity(ctx)
	require.NoError(t, err)
	assert.Zero(t, capacity)
}

func TestMemoryMount_Open(t *testing.T) {
	ctx := t.Context()
	mm := newROM(t)

	_, err := mm.Open(ctx, "programs", 0)
	assert.ErrorIs(t, err, data.ErrNotDirectory)

	_, err = mm.Open(ctx, "missing", 0)
	assert.ErrorIs(t, err, data.ErrNotExist)

	_, err = mm.Read(ctx, "motd.txt/x")
	assert.ErrorIs(t, err, data.ErrNotDirectory)

	h, err := mm.Open(ctx, "motd.txt", 0)
	require.NoError(t, err)
	reader := h.(mount.ReadableHandle)

	line, err := reader.ReadLine(false)
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(line))

	pos, err := reader.SeekTo("end", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(9), pos)

	rest, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "ld", string(rest))

	require.NoError(t, reader.Close())
	_, err = reader.Read(1)
	assert.ErrorIs(t, err, data.ErrClosed)
}

func TestMemoryMount_Equal(t *testing.T) {
	a := newROM(t)
	b := newROM(t)

	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
}

func TestFromFS(t *testing.T) {
	ctx := t.Context()

	fsys := fstest.MapFS{
		"rom/help/intro.txt": &fstest.MapFile{Data: []byte("intro")},
		"rom/motd.txt":       &fstest.MapFile{Data: []byte("motd")},
	}

	root, err := memory.FromFS(fsys, "rom")
	require.NoError(t, err)

	mm, err := memory.NewMemoryMount(root)
	require.NoError(t, err)

	names, err := mm.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"help", "motd.txt"}, names)

	content, err := mm.Read(ctx, "help/intro.txt")
	require.NoError(t, err)
	assert.Equal(t, "intro", string(content))

	_, err = mm.Read(ctx, "help")
	assert.ErrorIs(t, err, data.ErrIsDirectory)

	h, err := mm.Open(ctx, "motd.txt", data.OpenBinary)
	require.NoError(t, err)
	defer h.Close()

	b, err := h.(mount.ReadableHandle).Read(10)
	require.NoError(t, err)
	assert.Equal(t, "motd", string(b))

	_, err = h.(mount.ReadableHandle).Read(1)
	assert.ErrorIs(t, err, io.EOF)
}
