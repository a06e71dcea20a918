package host

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/log"
	"github.com/mwantia/craftos/mount"
)

// HostMount provides access to a directory of the host filesystem.
// Every inner path is resolved against root and may never leave it.
type HostMount struct {
	mu      sync.RWMutex
	root    string
	options *mount.MountOptions
	log     *log.Logger
}

// NewHostMount creates a mount serving root, creating the directory if it is missing.
func NewHostMount(root string, opts ...mount.MountOption) (*HostMount, error) {
	options, err := mount.ApplyOptions(opts...)
	if err != nil {
		return nil, err
	}
	if options.Name == "" {
		options.Name = "hdd"
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, mapError(err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, mapError(err)
	}
	if !info.IsDir() {
		return nil, data.ErrNotDirectory
	}

	return &HostMount{
		root:    abs,
		options: options,
		log:     options.Logger.Named(options.Name),
	}, nil
}

func (hm *HostMount) Location() []string {
	return hm.options.Location
}

func (hm *HostMount) Name() string {
	return hm.options.Name
}

func (hm *HostMount) ReadOnly() bool {
	return hm.options.ReadOnly
}

// Root returns the absolute host directory backing this mount.
func (hm *HostMount) Root() string {
	return hm.root
}

func (hm *HostMount) Equal(other mount.Mount) bool {
	o, ok := other.(*HostMount)
	if !ok {
		return false
	}
	return o.root == hm.root && o.options.ReadOnly == hm.options.ReadOnly
}

// resolvePath joins the mount root with the inner path and verifies the
// result stays inside the root.
func (hm *HostMount) resolvePath(path string) (string, error) {
	full := filepath.Join(hm.root, filepath.FromSlash(filepath.Clean("/"+path)))

	rel, err := filepath.Rel(hm.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		hm.log.Warn("resolvePath: rejected path %s escaping %s", path, hm.root)
		return "", data.ErrNotExist
	}

	return full, nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return data.ErrNotExist
	case errors.Is(err, fs.ErrExist):
		return data.ErrExist
	case errors.Is(err, fs.ErrPermission):
		return data.ErrPermission
	default:
		return err
	}
}

func (hm *HostMount) Stat(ctx context.Context, path string) (*data.Attributes, error) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	full, err := hm.resolvePath(path)
	if err != nil {
		return nil, nil
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscallNotDir) {
			return nil, nil
		}
		return nil, mapError(err)
	}

	return hm.attributes(info), nil
}

func (hm *HostMount) attributes(info fs.FileInfo) *data.Attributes {
	readOnly := hm.options.ReadOnly || isReadOnly(info)
	created := createTime(info)

	if info.IsDir() {
		return data.NewDirAttributes(readOnly, created, info.ModTime())
	}
	return data.NewFileAttributes(info.Size(), readOnly, created, info.ModTime())
}

func (hm *HostMount) List(ctx context.Context, path string) ([]string, error) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	full, err := hm.resolvePath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, mapError(err)
	}
	if !info.IsDir() {
		return nil, data.ErrNotDirectory
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, mapError(err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	slices.Sort(names)
	return names, nil
}

func (hm *HostMount) MakeDir(ctx context.Context, path string) error {
	if hm.options.ReadOnly {
		return data.ErrPermission
	}

	hm.mu.Lock()
	defer hm.mu.Unlock()

	full, err := hm.resolvePath(path)
	if err != nil {
		return err
	}

	hm.log.Debug("MakeDir: creating %s", full)
	if err := os.MkdirAll(full, 0o755); err != nil {
		if errors.Is(err, syscallNotDir) {
			return data.ErrExist
		}
		return mapError(err)
	}
	return nil
}

func (hm *HostMount) Read(ctx context.Context, path string) ([]byte, error) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	full, err := hm.resolvePath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, mapError(err)
	}
	if info.IsDir() {
		return nil, data.ErrIsDirectory
	}

	content, err := os.ReadFile(full)
	return content, mapError(err)
}

func (hm *HostMount) Write(ctx context.Context, path string, content []byte) error {
	if hm.options.ReadOnly {
		return data.ErrPermission
	}

	hm.mu.Lock()
	defer hm.mu.Unlock()

	full, err := hm.resolvePath(path)
	if err != nil {
		return err
	}

	if info, err := os.Stat(full); err == nil && info.IsDir() {
		return data.ErrIsDirectory
	}

	hm.log.Debug("Write: writing %d bytes to %s", len(content), full)
	return mapError(os.WriteFile(full, content, 0o644))
}

func (hm *HostMount) Delete(ctx context.Context, path string) error {
	if hm.options.ReadOnly {
		return data.ErrPermission
	}

	hm.mu.Lock()
	defer hm.mu.Unlock()

	full, err := hm.resolvePath(path)
	if err != nil {
		return err
	}
	if full == hm.root {
		return data.ErrPermission
	}

	if _, err := os.Lstat(full); err != nil {
		return mapError(err)
	}

	hm.log.Debug("Delete: removing %s", full)
	return mapError(os.RemoveAll(full))
}

func (hm *HostMount) Move(ctx context.Context, from, to string) error {
	if hm.options.ReadOnly {
		return data.ErrPermission
	}

	hm.mu.Lock()
	defer hm.mu.Unlock()

	src, dst, err := hm.resolveTransfer(from, to)
	if err != nil {
		return err
	}
	if src == hm.root {
		return data.ErrPermission
	}

	hm.log.Debug("Move: renaming %s to %s", src, dst)
	return mapError(os.Rename(src, dst))
}

func (hm *HostMount) Copy(ctx context.Context, from, to string) error {
	if hm.options.ReadOnly {
		return data.ErrPermission
	}

	hm.mu.Lock()
	defer hm.mu.Unlock()

	src, dst, err := hm.resolveTransfer(from, to)
	if err != nil {
		return err
	}

	hm.log.Debug("Copy: copying %s to %s", src, dst)
	return copyTree(src, dst)
}

// resolveTransfer validates the source and destination of a move or copy.
func (hm *HostMount) resolveTransfer(from, to string) (string, string, error) {
	src, err := hm.resolvePath(from)
	if err != nil {
		return "", "", err
	}
	dst, err := hm.resolvePath(to)
	if err != nil {
		return "", "", err
	}

	info, err := os.Stat(src)
	if err != nil {
		return "", "", mapError(err)
	}
	if _, err := os.Lstat(dst); err == nil {
		return "", "", data.ErrExist
	}

	if info.IsDir() {
		rel, err := filepath.Rel(src, dst)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", "", data.ErrIntoItself
		}
	}

	return src, dst, nil
}

func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return mapError(err)
	}

	if !info.IsDir() {
		return copyFile(src, dst, info.Mode().Perm())
	}

	if err := os.Mkdir(dst, info.Mode().Perm()|0o700); err != nil {
		return mapError(err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return mapError(err)
	}
	for _, entry := range entries {
		if err := copyTree(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return mapError(err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return mapError(err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (hm *HostMount) Open(ctx context.Context, path string, flags data.OpenFlags) (mount.Handle, error) {
	if flags.IsWritable() && hm.options.ReadOnly {
		return nil, data.ErrPermission
	}

	hm.mu.RLock()
	defer hm.mu.RUnlock()

	full, err := hm.resolvePath(path)
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(full); err == nil && info.IsDir() {
		return nil, data.ErrIsDirectory
	}

	var mode int
	switch {
	case flags.IsReadWrite() && flags.IsRead():
		mode = os.O_RDWR
	case flags.IsReadWrite() && flags.IsWrite():
		mode = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	case flags.IsReadWrite():
		mode = os.O_RDWR | os.O_CREATE
	case flags.IsRead():
		mode = os.O_RDONLY
	case flags.IsWrite():
		mode = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	default:
		mode = os.O_WRONLY | os.O_CREATE
	}

	file, err := os.OpenFile(full, mode, 0o644)
	if err != nil {
		return nil, mapError(err)
	}

	if flags.IsAppend() {
		if _, err := file.Seek(0, io.SeekEnd); err != nil {
			file.Close()
			return nil, err
		}
	}

	hm.log.Debug("Open: opened %s with mode %s", full, flags)
	return mount.NewFileHandle(file, flags), nil
}

func (hm *HostMount) Capacity(ctx context.Context) (int64, error) {
	if hm.options.Capacity > 0 {
		return hm.options.Capacity, nil
	}

	total, _, err := diskUsage(hm.root)
	return total, err
}

func (hm *HostMount) FreeSpace(ctx context.Context) (int64, error) {
	if hm.options.Capacity > 0 {
		used, err := dirSize(hm.root)
		if err != nil {
			return 0, err
		}
		return max(hm.options.Capacity-used, 0), nil
	}

	_, free, err := diskUsage(hm.root)
	return free, err
}

// dirSize sums the size of every regular file below root.
func dirSize(root string) (int64, error) {
	var size int64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			size += info.Size()
		}
		return nil
	})
	return size, err
}
