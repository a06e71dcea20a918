package mount

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/mwantia/craftos/data"
)

// Handle is the surface shared by every open file.
type Handle interface {
	// SeekTo moves the cursor relative to "set", "cur" or "end" and returns the new position.
	// For "end" the offset is subtracted from the length.
	SeekTo(whence string, offset int64) (int64, error)

	// Close releases the handle. Every later operation fails with ErrClosed.
	Close() error
}

// ReadableHandle is implemented by handles opened for reading.
// Every read returns io.EOF once the stream is exhausted.
type ReadableHandle interface {
	Handle

	// Read returns up to count bytes.
	Read(count int) ([]byte, error)

	// ReadByte returns a single byte.
	ReadByte() (byte, error)

	// ReadAll returns the remaining bytes.
	ReadAll() ([]byte, error)

	// ReadLine returns the bytes up to the next line-feed.
	// The line-feed is only included if withNewline is set.
	ReadLine(withNewline bool) ([]byte, error)
}

// WritableHandle is implemented by handles opened for writing.
type WritableHandle interface {
	Handle

	Write(p []byte) (int, error)

	WriteByte(c byte) error

	// WriteLine writes p followed by a line-feed.
	WriteLine(p []byte) error

	// Flush forces buffered content into the backing store.
	Flush() error
}

// handle holds the seek and close behaviour composed into every concrete handle.
type handle struct {
	mu     sync.Mutex
	seeker io.Seeker
	closer func() error
	closed bool
	hooks  []func()
}

func (h *handle) SeekTo(whence string, offset int64) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, data.ErrClosed
	}

	var pos int64
	var err error
	switch whence {
	case "set":
		pos, err = h.seeker.Seek(offset, io.SeekStart)
	case "cur":
		pos, err = h.seeker.Seek(offset, io.SeekCurrent)
	case "end":
		pos, err = h.seeker.Seek(-offset, io.SeekEnd)
	default:
		return 0, data.ErrInvalidWhence
	}

	if err != nil {
		return 0, data.ArgumentError("Position is negative")
	}
	return pos, nil
}

func (h *handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return data.ErrClosed
	}

	h.closed = true
	hooks := h.hooks
	h.hooks = nil

	var err error
	if h.closer != nil {
		err = h.closer()
	}
	h.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
	return err
}

// OnClose registers fn to run once the handle has been closed.
func (h *handle) OnClose(fn func()) {
	h.mu.Lock()
	if !h.closed {
		h.hooks = append(h.hooks, fn)
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	fn()
}

// Closed reports whether Close has been called.
func (h *handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.closed
}

type reading struct {
	*handle
	src io.Reader
}

func (r *reading) Read(count int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, data.ErrClosed
	}
	if count < 0 {
		return nil, data.ArgumentError("Cannot read a negative number of bytes")
	}

	buf := make([]byte, count)
	n, err := io.ReadFull(r.src, buf)
	if n == 0 && count > 0 {
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}

	return buf[:n], nil
}

func (r *reading) ReadByte() (byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, data.ErrClosed
	}
	return r.readByte()
}

func (r *reading) readByte() (byte, error) {
	if br, ok := r.src.(io.ByteReader); ok {
		return br.ReadByte()
	}

	var b [1]byte
	for {
		n, err := r.src.Read(b[:])
		if n == 1 {
			return b[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

func (r *reading) ReadAll() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, data.ErrClosed
	}

	content, err := io.ReadAll(r.src)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, io.EOF
	}
	return content, nil
}

func (r *reading) ReadLine(withNewline bool) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, data.ErrClosed
	}

	var line []byte
	for {
		b, err := r.readByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if b == '\n' {
			if withNewline {
				line = append(line, b)
			}
			return line, nil
		}
		line = append(line, b)
	}

	if len(line) == 0 {
		return nil, io.EOF
	}
	return line, nil
}

type writing struct {
	*handle
	dst  io.Writer
	sync func() error
}

func (w *writing) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, data.ErrClosed
	}
	return w.dst.Write(p)
}

func (w *writing) WriteByte(c byte) error {
	_, err := w.Write([]byte{c})
	return err
}

func (w *writing) WriteLine(p []byte) error {
	line := make([]byte, 0, len(p)+1)
	line = append(line, p...)
	line = append(line, '\n')

	_, err := w.Write(line)
	return err
}

func (w *writing) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return data.ErrClosed
	}
	if w.sync == nil {
		return nil
	}
	return w.sync()
}

// ReadHandle is a descriptor-backed handle opened for reading.
type ReadHandle struct {
	reading
}

// WriteHandle is a descriptor-backed handle opened for writing or appending.
type WriteHandle struct {
	writing
}

// ReadWriteHandle is a descriptor-backed handle opened with "+".
type ReadWriteHandle struct {
	*handle
	reading
	writing
}

// BufferHandle reads from a fixed in-memory buffer.
type BufferHandle struct {
	reading
}

// NewFileHandle wraps an already positioned file according to flags.
// The handle owns file and closes it on Close.
func NewFileHandle(file *os.File, flags data.OpenFlags) Handle {
	return newFileHandle(file, flags, file.Close, file.Sync)
}

func newFileHandle(file *os.File, flags data.OpenFlags, closer, sync func() error) Handle {
	h := &handle{
		seeker: file,
		closer: closer,
	}

	switch {
	case flags.IsReadWrite():
		return &ReadWriteHandle{
			handle:  h,
			reading: reading{handle: h, src: file},
			writing: writing{handle: h, dst: file, sync: sync},
		}
	case flags.IsReadable():
		return &ReadHandle{reading{handle: h, src: file}}
	default:
		return &WriteHandle{writing{handle: h, dst: file, sync: sync}}
	}
}

// NewBufferHandle returns a readable handle over a copy of content.
func NewBufferHandle(content []byte) *BufferHandle {
	reader := bytes.NewReader(bytes.Clone(content))

	return &BufferHandle{
		reading{
			handle: &handle{seeker: reader},
			src:    reader,
		},
	}
}

// WriteValue writes a guest value to w: numbers are written as a single
// byte, strings and byte slices as-is. Anything else is an argument error.
func WriteValue(w WritableHandle, value any) error {
	switch v := value.(type) {
	case byte:
		return w.WriteByte(v)
	case int:
		return w.WriteByte(byte(v))
	case int64:
		return w.WriteByte(byte(v))
	case float64:
		return w.WriteByte(byte(int64(v)))
	case string:
		_, err := w.Write([]byte(v))
		return err
	case []byte:
		_, err := w.Write(v)
		return err
	default:
		return data.ErrInvalidValue
	}
}

// OnClose registers fn on handles that support close notifications.
// It reports whether the hook was registered.
func OnClose(h Handle, fn func()) bool {
	notifier, ok := h.(interface{ OnClose(func()) })
	if !ok {
		return false
	}

	notifier.OnClose(fn)
	return true
}
