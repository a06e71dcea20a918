package memory

import (
	"bytes"
	"context"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/mount"
)

// MemoryMount serves an immutable tree built once at construction.
// Every entry is read-only and every mutation fails with data.ErrPermission.
type MemoryMount struct {
	root    *Node
	options *mount.MountOptions
}

func NewMemoryMount(root *Node, opts ...mount.MountOption) (*MemoryMount, error) {
	options, err := mount.ApplyOptions(opts...)
	if err != nil {
		return nil, err
	}
	if options.Name == "" {
		options.Name = "rom"
	}
	if root == nil {
		root = Dir(nil)
	}
	if !root.IsDir() {
		return nil, data.ErrNotDirectory
	}

	return &MemoryMount{
		root:    root,
		options: options,
	}, nil
}

func (mm *MemoryMount) Location() []string {
	return mm.options.Location
}

func (mm *MemoryMount) Name() string {
	return mm.options.Name
}

func (mm *MemoryMount) ReadOnly() bool {
	return true
}

func (mm *MemoryMount) Equal(other mount.Mount) bool {
	o, ok := other.(*MemoryMount)
	return ok && o == mm
}

// lookup walks the tree; traversing through a file fails with ErrNotDirectory.
func (mm *MemoryMount) lookup(path string) (*Node, error) {
	node := mm.root
	for _, component := range data.Split(path) {
		if !node.IsDir() {
			return nil, data.ErrNotDirectory
		}

		child, ok := node.child(component)
		if !ok {
			return nil, data.ErrNotExist
		}
		node = child
	}

	return node, nil
}

func (mm *MemoryMount) List(ctx context.Context, path string) ([]string, error) {
	node, err := mm.lookup(path)
	if err != nil || !node.IsDir() {
		return nil, data.ErrNotDirectory
	}

	return node.Names(), nil
}

func (mm *MemoryMount) Stat(ctx context.Context, path string) (*data.Attributes, error) {
	node, err := mm.lookup(path)
	if err != nil {
		return nil, nil
	}

	return &data.Attributes{
		Size:       node.Size(),
		IsDir:      node.IsDir(),
		IsReadOnly: true,
	}, nil
}

func (mm *MemoryMount) MakeDir(ctx context.Context, path string) error {
	return data.ErrPermission
}

func (mm *MemoryMount) Move(ctx context.Context, from, to string) error {
	return data.ErrPermission
}

func (mm *MemoryMount) Copy(ctx context.Context, from, to string) error {
	return data.ErrPermission
}

func (mm *MemoryMount) Delete(ctx context.Context, path string) error {
	return data.ErrPermission
}

func (mm *MemoryMount) Write(ctx context.Context, path string, content []byte) error {
	return data.ErrPermission
}

func (mm *MemoryMount) Read(ctx context.Context, path string) ([]byte, error) {
	node, err := mm.lookup(path)
	if err != nil {
		return nil, err
	}
	if node.IsDir() {
		return nil, data.ErrIsDirectory
	}

	return bytes.Clone(node.content), nil
}

func (mm *MemoryMount) Open(ctx context.Context, path string, flags data.OpenFlags) (mount.Handle, error) {
	if flags.IsWritable() {
		return nil, data.ErrPermission
	}

	node, err := mm.lookup(path)
	if err != nil {
		return nil, err
	}
	if node.IsDir() {
		return nil, data.ErrNotDirectory
	}

	return mount.NewBufferHandle(node.content), nil
}

func (mm *MemoryMount) Capacity(ctx context.Context) (int64, error) {
	return 0, nil
}

func (mm *MemoryMount) FreeSpace(ctx context.Context) (int64, error) {
	return 0, nil
}
