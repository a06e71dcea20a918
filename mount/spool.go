package mount

import (
	"errors"
	"io"
	"os"

	"github.com/mwantia/craftos/data"
)

// NewSpoolHandle opens a writable handle for stores that only accept whole
// objects. Writes go to a temporary file which is handed to commit on every
// Flush and on Close. content is the current object content; it is dropped
// for "w" and kept for "r+" and "a".
func NewSpoolHandle(content []byte, flags data.OpenFlags, commit func([]byte) error) (Handle, error) {
	file, err := os.CreateTemp("", "craftos-spool-*")
	if err != nil {
		return nil, err
	}

	cleanup := func() error {
		return errors.Join(file.Close(), os.Remove(file.Name()))
	}

	if !flags.IsWrite() && len(content) > 0 {
		if _, err := file.Write(content); err != nil {
			return nil, errors.Join(err, cleanup())
		}
	}

	whence := io.SeekStart
	if flags.IsAppend() {
		whence = io.SeekEnd
	}
	if _, err := file.Seek(0, whence); err != nil {
		return nil, errors.Join(err, cleanup())
	}

	sync := func() error {
		info, err := file.Stat()
		if err != nil {
			return err
		}

		buf := make([]byte, info.Size())
		if _, err := file.ReadAt(buf, 0); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return commit(buf)
	}

	closer := func() error {
		return errors.Join(sync(), cleanup())
	}

	// A "w" handle creates the object right away, even if nothing is written.
	if flags.IsWrite() {
		if err := sync(); err != nil {
			return nil, errors.Join(err, cleanup())
		}
	}

	return newFileHandle(file, flags, closer, sync), nil
}
