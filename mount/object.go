package mount

import (
	"context"
	"errors"
	"slices"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/log"
	"github.com/mwantia/craftos/mount/backend"
)

// ObjectMount adapts an ObjectStorage backend to the Mount contract.
type ObjectMount struct {
	options *MountOptions
	storage backend.ObjectStorage
	log     *log.Logger
}

// NewObjectMount opens storage and returns a mount serving it.
func NewObjectMount(ctx context.Context, storage backend.ObjectStorage, opts ...MountOption) (*ObjectMount, error) {
	options, err := ApplyOptions(opts...)
	if err != nil {
		return nil, err
	}

	if options.Name == "" {
		options.Name = storage.Name()
	}
	if options.Capacity == 0 {
		options.Capacity = DefaultCapacity
	}

	if err := storage.Open(ctx); err != nil {
		return nil, err
	}

	return &ObjectMount{
		options: options,
		storage: storage,
		log:     options.Logger.Named(options.Name),
	}, nil
}

func (m *ObjectMount) Location() []string {
	return m.options.Location
}

func (m *ObjectMount) Name() string {
	return m.options.Name
}

func (m *ObjectMount) ReadOnly() bool {
	return m.options.ReadOnly
}

// Storage returns the backend serving this mount.
func (m *ObjectMount) Storage() backend.ObjectStorage {
	return m.storage
}

func (m *ObjectMount) Close(ctx context.Context) error {
	return m.storage.Close(ctx)
}

func (m *ObjectMount) Equal(other Mount) bool {
	o, ok := other.(*ObjectMount)
	if !ok {
		return false
	}
	return o.storage == m.storage && o.options.ReadOnly == m.options.ReadOnly
}

func (m *ObjectMount) head(ctx context.Context, key string) (*data.Attributes, error) {
	if key == "" {
		return &data.Attributes{IsDir: true, IsReadOnly: m.options.ReadOnly}, nil
	}

	attr, err := m.storage.HeadObject(ctx, key)
	if errors.Is(err, data.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	attr.IsReadOnly = attr.IsReadOnly || m.options.ReadOnly
	return attr, nil
}

// parentDir verifies the directory that would contain key.
func (m *ObjectMount) parentDir(ctx context.Context, key string) error {
	parent, err := m.head(ctx, backend.ParentKey(key))
	if err != nil {
		return err
	}
	if parent == nil {
		return data.ErrNotExist
	}
	if !parent.IsDir {
		return data.ErrNotDirectory
	}
	return nil
}

func (m *ObjectMount) Stat(ctx context.Context, path string) (*data.Attributes, error) {
	return m.head(ctx, key(path))
}

func (m *ObjectMount) List(ctx context.Context, path string) ([]string, error) {
	k := key(path)

	attr, err := m.head(ctx, k)
	if err != nil {
		return nil, err
	}
	if attr == nil || !attr.IsDir {
		return nil, data.ErrNotDirectory
	}

	names, err := m.storage.ListObjects(ctx, k)
	if err != nil {
		return nil, err
	}

	slices.Sort(names)
	return names, nil
}

func (m *ObjectMount) MakeDir(ctx context.Context, path string) error {
	if m.options.ReadOnly {
		return data.ErrPermission
	}

	components := data.Split(path)
	for i := 1; i <= len(components); i++ {
		k := data.Join(components[:i])

		attr, err := m.head(ctx, k)
		if err != nil {
			return err
		}
		if attr == nil {
			m.log.Debug("MakeDir: creating directory %s", k)
			if err := m.storage.CreateDirectory(ctx, k); err != nil {
				return err
			}
			continue
		}
		if !attr.IsDir {
			return data.ErrExist
		}
	}

	return nil
}

func (m *ObjectMount) Read(ctx context.Context, path string) ([]byte, error) {
	k := key(path)

	attr, err := m.head(ctx, k)
	if err != nil {
		return nil, err
	}
	if attr == nil {
		return nil, data.ErrNotExist
	}
	if attr.IsDir {
		return nil, data.ErrIsDirectory
	}

	return m.storage.ReadObject(ctx, k)
}

func (m *ObjectMount) Write(ctx context.Context, path string, content []byte) error {
	if m.options.ReadOnly {
		return data.ErrPermission
	}

	k := key(path)
	if k == "" {
		return data.ErrIsDirectory
	}

	attr, err := m.head(ctx, k)
	if err != nil {
		return err
	}

	var previous int64
	if attr != nil {
		if attr.IsDir {
			return data.ErrIsDirectory
		}
		previous = attr.Size
	} else if err := m.parentDir(ctx, k); err != nil {
		return err
	}

	free, err := m.FreeSpace(ctx)
	if err != nil {
		return err
	}
	if int64(len(content))-previous > free {
		return data.ErrNoSpace
	}

	m.log.Debug("Write: writing %d bytes to %s", len(content), k)
	return m.storage.WriteObject(ctx, k, content)
}

func (m *ObjectMount) Delete(ctx context.Context, path string) error {
	if m.options.ReadOnly {
		return data.ErrPermission
	}

	k := key(path)
	if k == "" {
		return data.ErrPermission
	}

	attr, err := m.head(ctx, k)
	if err != nil {
		return err
	}
	if attr == nil {
		return data.ErrNotExist
	}

	m.log.Debug("Delete: removing %s", k)
	return m.storage.DeleteObject(ctx, k)
}

func (m *ObjectMount) Copy(ctx context.Context, from, to string) error {
	if m.options.ReadOnly {
		return data.ErrPermission
	}

	src, dst := key(from), key(to)
	if err := m.checkTransfer(ctx, src, dst); err != nil {
		return err
	}

	return m.copyTree(ctx, src, dst)
}

func (m *ObjectMount) Move(ctx context.Context, from, to string) error {
	if m.options.ReadOnly {
		return data.ErrPermission
	}

	src, dst := key(from), key(to)
	if src == "" {
		return data.ErrPermission
	}
	if err := m.checkTransfer(ctx, src, dst); err != nil {
		return err
	}

	if err := m.copyTree(ctx, src, dst); err != nil {
		return err
	}
	return m.storage.DeleteObject(ctx, src)
}

func (m *ObjectMount) checkTransfer(ctx context.Context, src, dst string) error {
	attr, err := m.head(ctx, src)
	if err != nil {
		return err
	}
	if attr == nil {
		return data.ErrNotExist
	}

	if attr.IsDir && data.HasPrefix(data.Split(dst), data.Split(src)) {
		return data.ErrIntoItself
	}

	existing, err := m.head(ctx, dst)
	if err != nil {
		return err
	}
	if existing != nil {
		return data.ErrExist
	}

	return m.parentDir(ctx, dst)
}

func (m *ObjectMount) copyTree(ctx context.Context, src, dst string) error {
	attr, err := m.head(ctx, src)
	if err != nil {
		return err
	}
	if attr == nil {
		return data.ErrNotExist
	}

	if !attr.IsDir {
		content, err := m.storage.ReadObject(ctx, src)
		if err != nil {
			return err
		}
		return m.Write(ctx, dst, content)
	}

	if err := m.storage.CreateDirectory(ctx, dst); err != nil {
		return err
	}

	names, err := m.storage.ListObjects(ctx, src)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := m.copyTree(ctx, backend.ChildKey(src, name), backend.ChildKey(dst, name)); err != nil {
			return err
		}
	}

	return nil
}

func (m *ObjectMount) Open(ctx context.Context, path string, flags data.OpenFlags) (Handle, error) {
	if flags.IsWritable() && m.options.ReadOnly {
		return nil, data.ErrPermission
	}

	k := key(path)
	attr, err := m.head(ctx, k)
	if err != nil {
		return nil, err
	}
	if attr != nil && attr.IsDir {
		return nil, data.ErrIsDirectory
	}

	if !flags.IsWritable() {
		if attr == nil {
			return nil, data.ErrNotExist
		}

		content, err := m.storage.ReadObject(ctx, k)
		if err != nil {
			return nil, err
		}
		return NewBufferHandle(content), nil
	}

	var content []byte
	if attr == nil {
		if flags.IsRead() {
			return nil, data.ErrNotExist
		}
		if err := m.parentDir(ctx, k); err != nil {
			return nil, err
		}
	} else if !flags.IsWrite() {
		if content, err = m.storage.ReadObject(ctx, k); err != nil {
			return nil, err
		}
	}

	// The handle outlives the call that opened it.
	commitCtx := context.WithoutCancel(ctx)
	return NewSpoolHandle(content, flags, func(b []byte) error {
		return m.Write(commitCtx, k, b)
	})
}

func (m *ObjectMount) Capacity(ctx context.Context) (int64, error) {
	return m.options.Capacity, nil
}

func (m *ObjectMount) FreeSpace(ctx context.Context) (int64, error) {
	used, err := m.storage.Usage(ctx)
	if err != nil {
		return 0, err
	}
	return max(m.options.Capacity-used, 0), nil
}

// key normalizes an inner path into a storage key.
func key(path string) string {
	return data.Join(data.Split(path))
}
