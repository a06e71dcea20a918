package vfs_test

import (
	"testing"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/mount"
	"github.com/mwantia/craftos/mount/backend/ephemeral"
	"github.com/mwantia/craftos/mount/backend/host"
	"github.com/mwantia/craftos/mount/backend/memory"
	"github.com/mwantia/craftos/mount/backend/sqlite"
	"github.com/mwantia/craftos/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestRootFactory func(t *testing.T) mount.Mount

func GetTestRootFactories() map[string]TestRootFactory {
	return map[string]TestRootFactory{
		"host": func(t *testing.T) mount.Mount {
			hm, err := host.NewHostMount(t.TempDir())
			require.NoError(t, err)
			return hm
		},
		"ephemeral": func(t *testing.T) mount.Mount {
			om, err := mount.NewObjectMount(t.Context(), ephemeral.NewEphemeralBackend())
			require.NoError(t, err)
			return om
		},
		"sqlite": func(t *testing.T) mount.Mount {
			storage, err := sqlite.NewSQLiteBackend(":memory:")
			require.NoError(t, err)

			om, err := mount.NewObjectMount(t.Context(), storage)
			require.NoError(t, err)
			t.Cleanup(func() {
				om.Close(t.Context())
			})
			return om
		},
	}
}

func newManager(t *testing.T, root mount.Mount) *vfs.Manager {
	t.Helper()

	m, err := vfs.NewManager(root)
	require.NoError(t, err)
	return m
}

func newROM(t *testing.T, location string, root *memory.Node) *memory.MemoryMount {
	t.Helper()

	mm, err := memory.NewMemoryMount(root, mount.WithLocation(location))
	require.NoError(t, err)
	return mm
}

// TestAllRoots_RoundTrip verifies that written content reads back unchanged on every root mount kind.
func TestAllRoots_RoundTrip(t *testing.T) {
	for name, factory := range GetTestRootFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			m := newManager(t, factory(t))

			for _, content := range [][]byte{{}, []byte("hello"), {0, 1, 2, 255}} {
				require.NoError(t, m.Write(ctx, "/file.bin", content))

				read, err := m.Read(ctx, "file.bin")
				require.NoError(t, err)
				assert.Equal(t, content, read)
			}

			require.NoError(t, m.MakeDir(ctx, "a/b/c"))
			isDir, err := m.IsDir(ctx, "a/b")
			require.NoError(t, err)
			assert.True(t, isDir)

			names, err := m.List(ctx, "/")
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "file.bin"}, names)

			size, err := m.GetSize(ctx, "file.bin")
			require.NoError(t, err)
			assert.Equal(t, int64(4), size)

			_, err = m.GetSize(ctx, "missing")
			assert.ErrorIs(t, err, data.ErrNotExist)

			_, err = m.List(ctx, "file.bin")
			assert.ErrorIs(t, err, data.ErrNotDirectory)

			require.NoError(t, m.Delete(ctx, "a"))
			exists, err := m.Exists(ctx, "a/b/c")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestManager_RequiresRoot(t *testing.T) {
	_, err := vfs.NewManager(newROM(t, "rom", nil))
	assert.ErrorIs(t, err, data.ErrNotMounted)
}

func TestManager_LongestPrefix(t *testing.T) {
	ctx := t.Context()
	root := GetTestRootFactories()["ephemeral"](t)
	m := newManager(t, root)

	require.NoError(t, m.MakeDir(ctx, "foo/bar"))

	foo := newROM(t, "foo", memory.Dir(map[string]*memory.Node{
		"bar": memory.Text("from foo"),
	}))
	m.Add(foo)

	mnts, inner := m.FindMounts(data.Split("foo/bar"))
	require.Len(t, mnts, 1)
	assert.True(t, mnts[0].Equal(foo))
	assert.Equal(t, "bar", inner)

	attr, err := m.Stat(ctx, "foo/bar")
	require.NoError(t, err)
	require.NotNil(t, attr)
	assert.False(t, attr.IsDir)
	assert.True(t, attr.IsReadOnly)

	content, err := m.Read(ctx, "foo/bar")
	require.NoError(t, err)
	assert.Equal(t, "from foo", string(content))

	mnts, inner = m.FindMounts(data.Split("food"))
	require.Len(t, mnts, 1)
	assert.True(t, mnts[0].Equal(root))
	assert.Equal(t, "food", inner)
}

func TestManager_MissingAncestorTieBreak(t *testing.T) {
	ctx := t.Context()
	m := newManager(t, GetTestRootFactories()["ephemeral"](t))

	b := newROM(t, "foo", memory.Dir(map[string]*memory.Node{
		"x": memory.Dir(nil),
	}))
	a := newROM(t, "foo", memory.Dir(map[string]*memory.Node{
		"x": memory.Dir(map[string]*memory.Node{
			"y": memory.Dir(nil),
		}),
	}))

	// Registration order favors b; a still wins by having fewer missing segments.
	m.Add(b)
	m.Add(a)

	mnts, _ := m.FindMounts(data.Split("foo/x/y/z"))
	assert.Len(t, mnts, 2)

	mnt, inner, err := m.FindMount(ctx, data.Split("foo/x/y/z"))
	require.NoError(t, err)
	assert.True(t, mnt.Equal(a))
	assert.Equal(t, "x/y/z", inner)

	// Both have foo/x, so registration order decides.
	mnt, _, err = m.FindMount(ctx, data.Split("foo/x"))
	require.NoError(t, err)
	assert.True(t, mnt.Equal(b))
}

func TestManager_ListUnion(t *testing.T) {
	ctx := t.Context()
	m := newManager(t, GetTestRootFactories()["ephemeral"](t))

	require.NoError(t, m.MakeDir(ctx, "shared"))
	require.NoError(t, m.Write(ctx, "startup", nil))

	m.Add(newROM(t, "rom", memory.Dir(map[string]*memory.Node{
		"motd.txt": memory.Text("hi"),
	})))
	m.Add(newROM(t, "shared", memory.Dir(map[string]*memory.Node{
		"one": memory.Text("1"),
		"two": memory.Text("2"),
	})))
	m.Add(newROM(t, "shared", memory.Dir(map[string]*memory.Node{
		"two":   memory.Text("2"),
		"three": memory.Text("3"),
	})))
	m.Add(newROM(t, "disk/nested", nil))

	names, err := m.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"rom", "shared", "startup"}, names)

	names, err = m.List(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "three", "two"}, names)

	// Only the direct parent of a mount lists it.
	names, err = m.List(ctx, "disk")
	require.NoError(t, err)
	assert.Equal(t, []string{"nested"}, names)

	_, err = m.List(ctx, "missing")
	assert.ErrorIs(t, err, data.ErrNotDirectory)
}

func TestManager_ListNestedMount(t *testing.T) {
	ctx := t.Context()
	m := newManager(t, GetTestRootFactories()["ephemeral"](t))
	m.Add(newROM(t, "a/b", nil))

	names, err := m.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	exists, err := m.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)

	names, err = m.List(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)

	require.NoError(t, m.MakeDir(ctx, "a"))
	names, err = m.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)
}

func TestManager_Remove(t *testing.T) {
	root := GetTestRootFactories()["ephemeral"](t)
	m := newManager(t, root)

	rom := newROM(t, "rom", nil)
	m.Add(rom)
	m.Add(newROM(t, "rom", nil))
	m.Add(newROM(t, "disk", nil))

	assert.ErrorIs(t, m.Remove(root), data.ErrRootMount)
	assert.ErrorIs(t, m.RemovePath("/"), data.ErrRootMount)
	assert.ErrorIs(t, m.RemovePath("missing"), data.ErrNotMounted)

	require.NoError(t, m.Remove(rom))
	assert.ErrorIs(t, m.Remove(rom), data.ErrNotMounted)
	assert.Len(t, m.Mounts(), 3)

	require.NoError(t, m.RemovePath("rom"))
	infos := m.Mounts()
	require.Len(t, infos, 2)
	assert.Equal(t, "", infos[0].Path)
	assert.Equal(t, "disk", infos[1].Path)
	assert.Equal(t, "rom", infos[1].Drive)
	assert.True(t, infos[1].ReadOnly)
}

func TestManager_ReadOnly(t *testing.T) {
	ctx := t.Context()
	hm, err := host.NewHostMount(t.TempDir(), mount.WithLocation("ro"), mount.WithReadOnly(true))
	require.NoError(t, err)

	m := newManager(t, GetTestRootFactories()["ephemeral"](t))
	m.Add(hm)
	m.Add(newROM(t, "rom", memory.Dir(map[string]*memory.Node{
		"file": memory.Text("x"),
	})))

	for _, base := range []string{"ro", "rom"} {
		assert.ErrorIs(t, m.Write(ctx, base+"/file", []byte("x")), data.ErrPermission, base)
		assert.ErrorIs(t, m.MakeDir(ctx, base+"/dir"), data.ErrPermission, base)
		assert.ErrorIs(t, m.Delete(ctx, base+"/file"), data.ErrPermission, base)
		assert.ErrorIs(t, m.Copy(ctx, base+"/file", base+"/copy"), data.ErrPermission, base)
		assert.ErrorIs(t, m.Move(ctx, base+"/file", base+"/moved"), data.ErrPermission, base)

		readOnly, err := m.IsReadOnly(ctx, base+"/file")
		require.NoError(t, err)
		assert.True(t, readOnly, base)
	}

	assert.ErrorIs(t, m.Move(ctx, "rom/file", "file"), data.ErrPermission)
	assert.ErrorIs(t, m.Move(ctx, "rom", "elsewhere"), data.ErrPermission)

	readOnly, err := m.IsReadOnly(ctx, "anything")
	require.NoError(t, err)
	assert.False(t, readOnly)
}

func TestManager_CrossMountTransfer(t *testing.T) {
	ctx := t.Context()
	m := newManager(t, GetTestRootFactories()["host"](t))

	tmp, err := mount.NewObjectMount(ctx, ephemeral.NewEphemeralBackend(), mount.WithLocation("tmp"))
	require.NoError(t, err)
	m.Add(tmp)
	m.Add(newROM(t, "rom", memory.Dir(map[string]*memory.Node{
		"programs": memory.Dir(map[string]*memory.Node{
			"hello": memory.Text("print('hello')"),
			"lib": memory.Dir(map[string]*memory.Node{
				"util": memory.Text("util"),
			}),
		}),
	})))

	require.NoError(t, m.Copy(ctx, "rom/programs", "programs"))
	content, err := m.Read(ctx, "programs/lib/util")
	require.NoError(t, err)
	assert.Equal(t, "util", string(content))

	assert.ErrorIs(t, m.Copy(ctx, "rom/programs", "programs"), data.ErrExist)

	require.NoError(t, m.Move(ctx, "programs/hello", "tmp/hello"))
	exists, err := m.Exists(ctx, "programs/hello")
	require.NoError(t, err)
	assert.False(t, exists)

	drive, err := m.GetDrive(ctx, "tmp/hello")
	require.NoError(t, err)
	assert.Equal(t, "tmp", drive)

	require.NoError(t, m.Move(ctx, "programs", "tmp/programs"))
	content, err = m.Read(ctx, "tmp/programs/lib/util")
	require.NoError(t, err)
	assert.Equal(t, "util", string(content))

	assert.ErrorIs(t, m.Move(ctx, "tmp/programs", "tmp/programs/inner"), data.ErrIntoItself)
	assert.ErrorIs(t, m.Copy(ctx, "missing", "tmp/missing"), data.ErrNotExist)

	drive, err = m.GetDrive(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, drive)
}

func TestManager_Find(t *testing.T) {
	ctx := t.Context()
	m := newManager(t, GetTestRootFactories()["ephemeral"](t))

	require.NoError(t, m.MakeDir(ctx, "programs/fun"))
	require.NoError(t, m.Write(ctx, "programs/edit", nil))
	require.NoError(t, m.Write(ctx, "programs/fun/worm", nil))
	require.NoError(t, m.Write(ctx, "programs/fun/adventure", nil))
	m.Add(newROM(t, "rom", memory.Dir(map[string]*memory.Node{
		"programs": memory.Dir(map[string]*memory.Node{
			"shell": memory.Text(""),
		}),
	})))

	tests := []struct {
		pattern string
		want    []string
	}{
		{"programs/edit", []string{"programs/edit"}},
		{"programs/missing", []string{}},
		{"programs/*", []string{"programs/edit", "programs/fun"}},
		{"*/programs/*", []string{"rom/programs/shell"}},
		{"programs/fun/*o*", []string{"programs/fun/worm"}},
		{"*/*/shell", []string{"rom/programs/shell"}},
	}

	for _, tt := range tests {
		got, err := m.Find(ctx, tt.pattern)
		require.NoError(t, err, tt.pattern)
		assert.Equal(t, tt.want, got, tt.pattern)
	}
}

func TestManager_Capacity(t *testing.T) {
	ctx := t.Context()
	m := newManager(t, GetTestRootFactories()["ephemeral"](t))
	m.Add(newROM(t, "rom", nil))

	capacity, err := m.Capacity(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(mount.DefaultCapacity), capacity)

	require.NoError(t, m.Write(ctx, "file", []byte("1234")))
	free, err := m.FreeSpace(ctx, "file")
	require.NoError(t, err)
	assert.Equal(t, int64(mount.DefaultCapacity-4), free)

	free, err = m.FreeSpace(ctx, "rom")
	require.NoError(t, err)
	assert.Zero(t, free)

	require.NoError(t, m.Close(ctx))
}
