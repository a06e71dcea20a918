//go:build linux || darwin

package host

import (
	"io/fs"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

var syscallNotDir error = unix.ENOTDIR

// isReadOnly checks the write bit that applies to the current user: the
// owner bit for entries owned by the user, the others bit for everything else.
func isReadOnly(info fs.FileInfo) bool {
	perm := info.Mode().Perm()

	if st, ok := info.Sys().(*unix.Stat_t); ok && int(st.Uid) != os.Getuid() {
		return perm&0o002 == 0
	}
	return perm&0o200 == 0
}

// createTime falls back to the modification time, unix has no portable birth time.
func createTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}

// diskUsage returns the total and free bytes of the filesystem holding path.
func diskUsage(path string) (int64, int64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, mapError(err)
	}

	return int64(st.Blocks) * int64(st.Bsize), int64(st.Bavail) * int64(st.Bsize), nil
}
