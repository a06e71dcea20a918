package vfs

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/log"
	"github.com/mwantia/craftos/mount"
)

// Manager combines an ordered list of mounts into a single virtual path tree.
// The first mount is the root; it has an empty location and is never removed.
type Manager struct {
	mu     sync.RWMutex
	mounts []mount.Mount
	log    *log.Logger
}

// MountInfo describes a registered mount.
type MountInfo struct {
	Path     string
	Drive    string
	ReadOnly bool
}

func NewManager(root mount.Mount, opts ...ManagerOption) (*Manager, error) {
	options := newDefaultManagerOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	if root == nil || len(root.Location()) != 0 {
		return nil, data.ErrNotMounted
	}

	return &Manager{
		mounts: []mount.Mount{root},
		log:    options.Logger.Named("vfs"),
	}, nil
}

// Add registers mnt after every existing mount.
func (m *Manager) Add(mnt mount.Mount) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Info("Mounting %s at /%s", mnt.Name(), data.Join(mnt.Location()))
	m.mounts = append(m.mounts, mnt)
}

// Remove unregisters every mount equal to mnt.
func (m *Manager) Remove(mnt mount.Mount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mnt.Equal(m.mounts[0]) {
		return data.ErrRootMount
	}

	before := len(m.mounts)
	m.mounts = slices.DeleteFunc(m.mounts, func(other mount.Mount) bool {
		return other.Equal(mnt)
	})
	if len(m.mounts) == before {
		return data.ErrNotMounted
	}

	m.log.Info("Unmounted %s from /%s", mnt.Name(), data.Join(mnt.Location()))
	return nil
}

// RemovePath unregisters every mount registered exactly at path.
func (m *Manager) RemovePath(path string) error {
	components := data.Split(path)
	if len(components) == 0 {
		return data.ErrRootMount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.mounts)
	m.mounts = slices.DeleteFunc(m.mounts, func(mnt mount.Mount) bool {
		return slices.Equal(mnt.Location(), components)
	})
	if len(m.mounts) == before {
		return data.ErrNotMounted
	}

	m.log.Info("Unmounted %d mount(s) from /%s", before-len(m.mounts), data.Join(components))
	return nil
}

// Mounts returns a snapshot of the mount table in registration order.
func (m *Manager) Mounts() []MountInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]MountInfo, 0, len(m.mounts))
	for _, mnt := range m.mounts {
		infos = append(infos, MountInfo{
			Path:     data.Join(mnt.Location()),
			Drive:    mnt.Name(),
			ReadOnly: mnt.ReadOnly(),
		})
	}
	return infos
}

// FindMounts returns every mount whose location is the longest prefix of
// components, together with the remaining inner path.
func (m *Manager) FindMounts(components []string) ([]mount.Mount, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.findMounts(components)
}

func (m *Manager) findMounts(components []string) ([]mount.Mount, string) {
	depth := 0
	var matches []mount.Mount
	for _, mnt := range m.mounts {
		location := mnt.Location()
		if len(location) < depth || !data.HasPrefix(components, location) {
			continue
		}

		if len(location) > depth {
			depth = len(location)
			matches = matches[:0]
		}
		matches = append(matches, mnt)
	}

	return matches, data.Join(components[depth:])
}

// FindMount resolves components to a single mount. Among the mounts sharing
// the longest prefix, the one with the fewest missing trailing segments wins;
// ties go to the earliest registered.
func (m *Manager) FindMount(ctx context.Context, components []string) (mount.Mount, string, error) {
	m.mu.RLock()
	candidates, inner := m.findMounts(components)
	m.mu.RUnlock()

	match := candidates[0]
	if len(candidates) == 1 {
		return match, inner, nil
	}

	segments := data.Split(inner)
	best := len(segments) + 1
	for _, mnt := range candidates {
		missing := 0
		for ; missing < len(segments); missing++ {
			exists, err := mount.Exists(ctx, mnt, data.Join(segments[:len(segments)-missing]))
			if err != nil {
				return nil, "", err
			}
			if exists {
				break
			}
		}

		if missing < best {
			match, best = mnt, missing
		}
	}

	return match, inner, nil
}

func (m *Manager) resolve(ctx context.Context, path string) (mount.Mount, string, error) {
	return m.FindMount(ctx, data.Split(path))
}

// List returns the union of the directory listings of every mount sharing
// the longest prefix of path, plus the name of every mount grafted directly below it.
func (m *Manager) List(ctx context.Context, path string) ([]string, error) {
	components := data.Split(path)

	m.mu.RLock()
	candidates, inner := m.findMounts(components)
	var children []string
	for _, mnt := range m.mounts {
		location := mnt.Location()
		if len(location) == len(components)+1 && data.HasPrefix(location, components) {
			children = append(children, location[len(components)])
		}
	}
	m.mu.RUnlock()

	found := len(children) > 0
	names := children
	for _, mnt := range candidates {
		attr, err := mnt.Stat(ctx, inner)
		if err != nil {
			return nil, err
		}
		if attr == nil || !attr.IsDir {
			continue
		}

		entries, err := mnt.List(ctx, inner)
		if err != nil {
			return nil, err
		}
		names = append(names, entries...)
		found = true
	}

	if !found {
		return nil, data.ErrNotDirectory
	}

	slices.Sort(names)
	return slices.Compact(names), nil
}

func (m *Manager) Stat(ctx context.Context, path string) (*data.Attributes, error) {
	mnt, inner, err := m.resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	return mnt.Stat(ctx, inner)
}

// Attributes is Stat failing with ErrNotExist for missing paths.
func (m *Manager) Attributes(ctx context.Context, path string) (*data.Attributes, error) {
	attr, err := m.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	if attr == nil {
		return nil, data.ErrNotExist
	}
	return attr, nil
}

func (m *Manager) Exists(ctx context.Context, path string) (bool, error) {
	attr, err := m.Stat(ctx, path)
	return attr != nil, err
}

func (m *Manager) IsDir(ctx context.Context, path string) (bool, error) {
	attr, err := m.Stat(ctx, path)
	return attr != nil && attr.IsDir, err
}

func (m *Manager) IsReadOnly(ctx context.Context, path string) (bool, error) {
	mnt, inner, err := m.resolve(ctx, path)
	if err != nil {
		return false, err
	}
	if mnt.ReadOnly() {
		return true, nil
	}

	attr, err := mnt.Stat(ctx, inner)
	return attr != nil && attr.IsReadOnly, err
}

func (m *Manager) GetSize(ctx context.Context, path string) (int64, error) {
	attr, err := m.Attributes(ctx, path)
	if err != nil {
		return 0, err
	}
	return attr.Size, nil
}

// GetDrive returns the name of the mount serving path, or "" if path does not exist.
func (m *Manager) GetDrive(ctx context.Context, path string) (string, error) {
	mnt, inner, err := m.resolve(ctx, path)
	if err != nil {
		return "", err
	}

	exists, err := mount.Exists(ctx, mnt, inner)
	if err != nil || !exists {
		return "", err
	}
	return mnt.Name(), nil
}

func (m *Manager) Capacity(ctx context.Context, path string) (int64, error) {
	mnt, _, err := m.resolve(ctx, path)
	if err != nil {
		return 0, err
	}
	return mnt.Capacity(ctx)
}

func (m *Manager) FreeSpace(ctx context.Context, path string) (int64, error) {
	mnt, _, err := m.resolve(ctx, path)
	if err != nil {
		return 0, err
	}
	return mnt.FreeSpace(ctx)
}

func (m *Manager) MakeDir(ctx context.Context, path string) error {
	mnt, inner, err := m.resolve(ctx, path)
	if err != nil {
		return err
	}
	return mnt.MakeDir(ctx, inner)
}

func (m *Manager) Delete(ctx context.Context, path string) error {
	mnt, inner, err := m.resolve(ctx, path)
	if err != nil {
		return err
	}
	return mnt.Delete(ctx, inner)
}

func (m *Manager) Open(ctx context.Context, path string, flags data.OpenFlags) (mount.Handle, error) {
	mnt, inner, err := m.resolve(ctx, path)
	if err != nil {
		return nil, err
	}

	m.log.Debug("Open: %s (%s) on %s", path, flags, mnt.Name())
	return mnt.Open(ctx, inner, flags)
}

func (m *Manager) Read(ctx context.Context, path string) ([]byte, error) {
	mnt, inner, err := m.resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	return mnt.Read(ctx, inner)
}

func (m *Manager) Write(ctx context.Context, path string, content []byte) error {
	mnt, inner, err := m.resolve(ctx, path)
	if err != nil {
		return err
	}
	return mnt.Write(ctx, inner, content)
}

// Move delegates to the mount when both paths resolve to the same one.
// Otherwise the entry is copied across and then deleted from the source.
func (m *Manager) Move(ctx context.Context, from, to string) error {
	src, srcPath, dst, dstPath, err := m.resolveTransfer(ctx, from, to)
	if err != nil {
		return err
	}
	if srcPath == "" {
		// Mount points cannot be moved away
		return data.ErrPermission
	}

	if src.Equal(dst) {
		return src.Move(ctx, srcPath, dstPath)
	}

	if src.ReadOnly() {
		return data.ErrPermission
	}
	if err := m.transfer(ctx, src, srcPath, dst, dstPath); err != nil {
		return err
	}
	return src.Delete(ctx, srcPath)
}

// Copy delegates to the mount when both paths resolve to the same one.
// Otherwise the entry is read from the source and written to the destination.
func (m *Manager) Copy(ctx context.Context, from, to string) error {
	src, srcPath, dst, dstPath, err := m.resolveTransfer(ctx, from, to)
	if err != nil {
		return err
	}

	if src.Equal(dst) {
		return src.Copy(ctx, srcPath, dstPath)
	}
	return m.transfer(ctx, src, srcPath, dst, dstPath)
}

func (m *Manager) resolveTransfer(ctx context.Context, from, to string) (mount.Mount, string, mount.Mount, string, error) {
	fromComponents, toComponents := data.Split(from), data.Split(to)
	if data.HasPrefix(toComponents, fromComponents) {
		isDir, err := m.IsDir(ctx, from)
		if err != nil {
			return nil, "", nil, "", err
		}
		if isDir {
			return nil, "", nil, "", data.ErrIntoItself
		}
	}

	src, srcPath, err := m.FindMount(ctx, fromComponents)
	if err != nil {
		return nil, "", nil, "", err
	}
	dst, dstPath, err := m.FindMount(ctx, toComponents)
	if err != nil {
		return nil, "", nil, "", err
	}

	return src, srcPath, dst, dstPath, nil
}

// transfer copies an entry between two different mounts, recursively for directories.
func (m *Manager) transfer(ctx context.Context, src mount.Mount, srcPath string, dst mount.Mount, dstPath string) error {
	attr, err := src.Stat(ctx, srcPath)
	if err != nil {
		return err
	}
	if attr == nil {
		return data.ErrNotExist
	}

	exists, err := mount.Exists(ctx, dst, dstPath)
	if err != nil {
		return err
	}
	if exists {
		return data.ErrExist
	}

	if !attr.IsDir {
		content, err := src.Read(ctx, srcPath)
		if err != nil {
			return err
		}
		return dst.Write(ctx, dstPath, content)
	}

	if err := dst.MakeDir(ctx, dstPath); err != nil {
		return err
	}

	names, err := src.List(ctx, srcPath)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := m.transfer(ctx, src, data.Combine(srcPath, name), dst, data.Combine(dstPath, name)); err != nil {
			return err
		}
	}

	return nil
}

// Close closes every mount holding resources. The manager is unusable afterwards.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs data.Errors
	for _, mnt := range m.mounts {
		if closer, ok := mnt.(mount.Closer); ok {
			if err := closer.Close(ctx); err != nil {
				errs.Add(fmt.Errorf("failed to close %s: %w", mnt.Name(), err))
			}
		}
	}

	return errs.Errors()
}
