//go:build !linux && !darwin

package host

import (
	"errors"
	"io/fs"
	"time"

	"github.com/mwantia/craftos/mount"
)

var syscallNotDir = errors.New("not a directory")

func isReadOnly(info fs.FileInfo) bool {
	return info.Mode().Perm()&0o200 == 0
}

func createTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}

// diskUsage reports the default emulated capacity where statfs is unavailable.
func diskUsage(path string) (int64, int64, error) {
	used, err := dirSize(path)
	if err != nil {
		return 0, 0, err
	}
	return mount.DefaultCapacity, max(mount.DefaultCapacity-used, 0), nil
}
