package computer

import (
	"context"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/mount"
)

// FS is the filesystem API of a guest. Errors carry the virtual path and
// render with data.Message.
type FS struct {
	computer *Computer
}

func (f *FS) List(ctx context.Context, path string) ([]string, error) {
	names, err := f.computer.fs.List(ctx, path)
	return names, data.WrapPath("list", data.Sanitize(path, false), err)
}

func (f *FS) Combine(base string, parts ...string) string {
	return data.Combine(base, parts...)
}

func (f *FS) GetName(path string) string {
	return data.GetName(path)
}

func (f *FS) GetDir(path string) string {
	return data.GetDir(path)
}

func (f *FS) GetSize(ctx context.Context, path string) (int64, error) {
	size, err := f.computer.fs.GetSize(ctx, path)
	return size, data.WrapPath("getSize", data.Sanitize(path, false), err)
}

func (f *FS) Exists(ctx context.Context, path string) bool {
	exists, err := f.computer.fs.Exists(ctx, path)
	return err == nil && exists
}

func (f *FS) IsDir(ctx context.Context, path string) bool {
	dir, err := f.computer.fs.IsDir(ctx, path)
	return err == nil && dir
}

func (f *FS) IsReadOnly(ctx context.Context, path string) bool {
	readOnly, err := f.computer.fs.IsReadOnly(ctx, path)
	return err == nil && readOnly
}

func (f *FS) MakeDir(ctx context.Context, path string) error {
	return data.WrapPath("makeDir", data.Sanitize(path, false), f.computer.fs.MakeDir(ctx, path))
}

func (f *FS) Move(ctx context.Context, from, to string) error {
	return data.WrapPath("move", data.Sanitize(from, false), f.computer.fs.Move(ctx, from, to))
}

func (f *FS) Copy(ctx context.Context, from, to string) error {
	return data.WrapPath("copy", data.Sanitize(from, false), f.computer.fs.Copy(ctx, from, to))
}

func (f *FS) Delete(ctx context.Context, path string) error {
	return data.WrapPath("delete", data.Sanitize(path, false), f.computer.fs.Delete(ctx, path))
}

// Open opens path with a mode string such as "r", "wb" or "r+". The handle
// is tracked and closed when the computer stops.
func (f *FS) Open(ctx context.Context, path string, mode string) (mount.Handle, error) {
	flags, err := data.ParseMode(mode)
	if err != nil {
		return nil, err
	}

	h, err := f.computer.fs.Open(ctx, path, flags)
	if err != nil {
		return nil, data.WrapPath("open", data.Sanitize(path, false), err)
	}

	f.computer.handles.Add(h)
	return h, nil
}

// ReadFile returns the whole content of path.
func (f *FS) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := f.computer.fs.Read(ctx, path)
	return content, data.WrapPath("read", data.Sanitize(path, false), err)
}

// WriteFile replaces the content of path.
func (f *FS) WriteFile(ctx context.Context, path string, content []byte) error {
	return data.WrapPath("write", data.Sanitize(path, false), f.computer.fs.Write(ctx, path, content))
}

// GetDrive returns the drive serving path; ok is false if path does not exist.
func (f *FS) GetDrive(ctx context.Context, path string) (string, bool) {
	drive, err := f.computer.fs.GetDrive(ctx, path)
	if err != nil || drive == "" {
		return "", false
	}
	return drive, true
}

func (f *FS) GetFreeSpace(ctx context.Context, path string) (int64, error) {
	free, err := f.computer.fs.FreeSpace(ctx, path)
	return free, data.WrapPath("getFreeSpace", data.Sanitize(path, false), err)
}

func (f *FS) GetCapacity(ctx context.Context, path string) (int64, error) {
	capacity, err := f.computer.fs.Capacity(ctx, path)
	return capacity, data.WrapPath("getCapacity", data.Sanitize(path, false), err)
}

func (f *FS) Attributes(ctx context.Context, path string) (*data.Attributes, error) {
	attr, err := f.computer.fs.Attributes(ctx, path)
	return attr, data.WrapPath("attributes", data.Sanitize(path, false), err)
}

func (f *FS) Find(ctx context.Context, pattern string) ([]string, error) {
	return f.computer.fs.Find(ctx, pattern)
}
