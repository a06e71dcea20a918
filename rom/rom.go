package rom

import (
	"embed"
	"io/fs"

	"github.com/mwantia/craftos/mount"
	"github.com/mwantia/craftos/mount/backend/memory"
)

// Location is where the ROM is mounted.
const Location = "rom"

//go:embed files
var files embed.FS

// FS returns the built-in ROM content.
func FS() fs.FS {
	sub, err := fs.Sub(files, "files")
	if err != nil {
		panic(err)
	}
	return sub
}

// New returns the built-in ROM as a read-only mount at Location.
func New(opts ...mount.MountOption) (*memory.MemoryMount, error) {
	root, err := memory.FromFS(FS(), ".")
	if err != nil {
		return nil, err
	}

	opts = append([]mount.MountOption{mount.WithLocation(Location)}, opts...)
	return memory.NewMemoryMount(root, opts...)
}
