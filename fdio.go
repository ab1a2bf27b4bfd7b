// Package fdio provides a thin, stateless facade over operating system
// file descriptor primitives: positioned and streaming reads and writes,
// scatter/gather I/O, byte-range locking, truncation, zero-copy transfer,
// and a handful of descriptor queries.
//
// The facade never owns descriptor lifetime. Descriptors are plain uintptr
// values (a HANDLE on Windows) obtained from [OS.Open], from [os.File.Fd],
// or from anywhere else, and remain the caller's responsibility.
//
// This package supports Linux, Windows, macOS, and FreeBSD. On unsupported platforms,
// every operation returns ErrPlatformUnsupported.
//
// Concurrent calls on different descriptors never interact. Concurrent calls on
// the same descriptor follow OS semantics: a Seek racing a Read observes whatever
// the shared file position happens to be. Use [OS.ReadAt] and [OS.WriteAt] when
// you need reads and writes at a fixed offset.
package fdio

import (
	"errors"
	"io"
	"os"
	"syscall"
	"unsafe"
)

var (
	ErrPlatformUnsupported = errors.New("fdio does not support this platform")
	ErrFileNotFound        = errors.New("file not found or cannot be created")
	ErrInvalidRange        = errors.New("invalid buffer or file range")
	ErrInvalidVector       = errors.New("scatter/gather arrays are shorter than the segment count")
)

// Whence selects the origin of a seek.
type Whence int

const (
	SeekStart   Whence = io.SeekStart
	SeekCurrent Whence = io.SeekCurrent
	SeekEnd     Whence = io.SeekEnd
)

// OpenMode is a set of flags controlling how [OS.Open] opens a file.
// It is translated to the platform's own open flags at call time.
type OpenMode uint32

const (
	ModeRead OpenMode = 1 << iota
	ModeWrite
	ModeAppend
	ModeCreate
	ModeExclusive
	ModeTruncate
	ModeSync

	ModeReadWrite = ModeRead | ModeWrite
)

// OpenError is returned by [OS.Open] when the path cannot be opened or created
// with the requested mode. It always matches [ErrFileNotFound] with [errors.Is],
// and unwraps to the underlying OS error.
type OpenError struct {
	Path string
	Mode OpenMode
	Err  error
}

func (e *OpenError) Error() string {
	return "open " + e.Path + ": " + e.Err.Error()
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

func (e *OpenError) Is(target error) bool {
	return target == ErrFileNotFound
}

// FileSystem is the set of raw descriptor operations.
// [OS] is the only implementation in this package.
type FileSystem interface {
	// AllocationGranularity returns the granularity for virtual memory allocation.
	// On Windows this differs from the page size (64K and 4K respectively).
	AllocationGranularity() int

	// Length returns the current size of the file.
	Length(fd uintptr) (int64, error)

	// Lock acquires a shared (read) or exclusive (write) lock on the byte range.
	// A length of 0 extends the range to the end of the file and beyond.
	//
	// If wait is false and the range is held elsewhere, Lock returns (false, nil).
	// An error is only returned for I/O faults.
	Lock(fd uintptr, start, length int64, shared, wait bool) (bool, error)

	// Unlock releases a lock previously acquired over the same range.
	Unlock(fd uintptr, start, length int64) error

	// Seek sets the file position and returns the new position.
	Seek(fd uintptr, offset int64, whence Whence) (int64, error)

	// ReadDirect reads up to length bytes into the memory at address+offset.
	ReadDirect(fd uintptr, address unsafe.Pointer, offset, length int) (int64, error)

	// WriteDirect writes length bytes from the memory at address+offset.
	WriteDirect(fd uintptr, address unsafe.Pointer, offset, length int) (int64, error)

	// Read reads up to length bytes into b[offset:offset+length].
	Read(fd uintptr, b []byte, offset, length int) (int64, error)

	// Write writes b[offset:offset+length].
	Write(fd uintptr, b []byte, offset, length int) (int64, error)

	// ReadAt reads into b starting at file position pos without moving the file position.
	ReadAt(fd uintptr, b []byte, pos int64) (int64, error)

	// WriteAt writes b starting at file position pos without moving the file position.
	WriteAt(fd uintptr, b []byte, pos int64) (int64, error)

	// Readv scatters a single read across count segments. Segment i is the
	// lengths[i] bytes of memory at addresses[i]+offsets[i].
	Readv(fd uintptr, addresses []unsafe.Pointer, offsets, lengths []int, count int) (int64, error)

	// Writev gathers count segments into a single write. Segments are described as in Readv.
	Writev(fd uintptr, addresses []unsafe.Pointer, offsets, lengths []int, count int) (int64, error)

	// ReadvBuffers scatters a single read across bufs.
	ReadvBuffers(fd uintptr, bufs [][]byte) (int64, error)

	// WritevBuffers gathers bufs into a single write.
	WritevBuffers(fd uintptr, bufs [][]byte) (int64, error)

	// Truncate sets the file size, discarding trailing data or zero-filling.
	Truncate(fd uintptr, size int64) error

	// Open opens the file at path. Failures are returned as *OpenError.
	Open(path string, mode OpenMode) (uintptr, error)

	// Transfer copies count bytes of fd starting at offset to dst.
	// The file position of fd is not changed.
	Transfer(fd, dst uintptr, offset, count int64) (int64, error)

	// Available returns the number of bytes that can be read without blocking.
	Available(fd uintptr) (int, error)

	// Close closes the descriptor.
	Close(fd uintptr) error

	// SetBlocking puts the descriptor in blocking or non-blocking mode.
	SetBlocking(fd uintptr, blocking bool) error
}

// OS is the [FileSystem] backed by the host operating system.
// The zero value is ready to use and carries no state.
//
// Reads return (0, io.EOF) at end of stream and (0, nil) when a non-blocking
// descriptor has no data yet. Short reads and writes are not errors;
// callers loop as they would with an [io.Reader] or [io.Writer].
type OS struct{}

// Default is the process-wide [FileSystem].
var Default FileSystem = OS{}

var _ FileSystem = OS{}

func (OS) AllocationGranularity() int {
	return allocationGranularity() // fdio_unix.go, fdio_windows.go, fdio_stub.go
}

func (OS) Length(fd uintptr) (int64, error) {
	return length(fd)
}

func (OS) Lock(fd uintptr, start, length int64, shared, wait bool) (bool, error) {
	if start < 0 || length < 0 {
		return false, ErrInvalidRange
	}
	return lock(fd, start, length, shared, wait) // lock_unix.go, lock_windows.go, fdio_stub.go
}

func (OS) Unlock(fd uintptr, start, length int64) error {
	if start < 0 || length < 0 {
		return ErrInvalidRange
	}
	return unlock(fd, start, length) // lock_unix.go, lock_windows.go, fdio_stub.go
}

func (OS) Seek(fd uintptr, offset int64, whence Whence) (int64, error) {
	return seek(fd, offset, int(whence))
}

func (OS) ReadDirect(fd uintptr, address unsafe.Pointer, offset, length int) (int64, error) {
	b, err := addressRange(address, offset, length)
	if err != nil {
		return 0, err
	}
	n, err := read(fd, b)
	return int64(n), err
}

func (OS) WriteDirect(fd uintptr, address unsafe.Pointer, offset, length int) (int64, error) {
	b, err := addressRange(address, offset, length)
	if err != nil {
		return 0, err
	}
	n, err := write(fd, b)
	return int64(n), err
}

func (OS) Read(fd uintptr, b []byte, offset, length int) (int64, error) {
	if !validRange(len(b), offset, length) {
		return 0, ErrInvalidRange
	}
	n, err := read(fd, b[offset:offset+length])
	return int64(n), err
}

func (OS) Write(fd uintptr, b []byte, offset, length int) (int64, error) {
	if !validRange(len(b), offset, length) {
		return 0, ErrInvalidRange
	}
	n, err := write(fd, b[offset:offset+length])
	return int64(n), err
}

func (OS) ReadAt(fd uintptr, b []byte, pos int64) (int64, error) {
	if pos < 0 {
		return 0, ErrInvalidRange
	}
	n, err := pread(fd, b, pos)
	return int64(n), err
}

func (OS) WriteAt(fd uintptr, b []byte, pos int64) (int64, error) {
	if pos < 0 {
		return 0, ErrInvalidRange
	}
	n, err := pwrite(fd, b, pos)
	return int64(n), err
}

func (fs OS) Readv(fd uintptr, addresses []unsafe.Pointer, offsets, lengths []int, count int) (int64, error) {
	bufs, err := vectorBuffers(addresses, offsets, lengths, count)
	if err != nil {
		return 0, err
	}
	return fs.ReadvBuffers(fd, bufs)
}

func (fs OS) Writev(fd uintptr, addresses []unsafe.Pointer, offsets, lengths []int, count int) (int64, error) {
	bufs, err := vectorBuffers(addresses, offsets, lengths, count)
	if err != nil {
		return 0, err
	}
	return fs.WritevBuffers(fd, bufs)
}

func (OS) ReadvBuffers(fd uintptr, bufs [][]byte) (int64, error) {
	return readv(fd, bufs) // vectored_linux.go, vectored_generic.go
}

func (OS) WritevBuffers(fd uintptr, bufs [][]byte) (int64, error) {
	return writev(fd, bufs) // vectored_linux.go, vectored_generic.go
}

func (OS) Truncate(fd uintptr, size int64) error {
	if size < 0 {
		return ErrInvalidRange
	}
	return truncate(fd, size)
}

func (OS) Open(path string, mode OpenMode) (uintptr, error) {
	fd, err := open(path, mode)
	if err != nil {
		return 0, &OpenError{Path: path, Mode: mode, Err: err}
	}
	return fd, nil
}

func (OS) Transfer(fd, dst uintptr, offset, count int64) (int64, error) {
	if offset < 0 || count < 0 {
		return 0, ErrInvalidRange
	}
	if count == 0 {
		return 0, nil
	}
	return transfer(fd, dst, offset, count) // transfer_bsd+linux.go, transfer_windows.go, fdio_stub.go
}

func (OS) Available(fd uintptr) (int, error) {
	return available(fd)
}

func (OS) Close(fd uintptr) error {
	return closeFD(fd)
}

func (OS) SetBlocking(fd uintptr, blocking bool) error {
	return setBlocking(fd, blocking)
}

func validRange(size, offset, length int) bool {
	return offset >= 0 && length >= 0 && offset <= size && length <= size-offset
}

func addressRange(address unsafe.Pointer, offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, ErrInvalidRange
	}
	if length == 0 {
		return nil, nil
	}
	if address == nil {
		return nil, ErrInvalidRange
	}
	return unsafe.Slice((*byte)(unsafe.Add(address, offset)), length), nil
}

func vectorBuffers(addresses []unsafe.Pointer, offsets, lengths []int, count int) ([][]byte, error) {
	if count < 0 || len(addresses) < count || len(offsets) < count || len(lengths) < count {
		return nil, ErrInvalidVector
	}
	bufs := make([][]byte, count)
	for i := range bufs {
		b, err := addressRange(addresses[i], offsets[i], lengths[i])
		if err != nil {
			return nil, err
		}
		bufs[i] = b
	}
	return bufs, nil
}

// wrapSyscallError takes an error and a syscall name. If the error is
// a syscall.Errno, it wraps it in a os.SyscallError using the syscall name.
func wrapSyscallError(name string, err error) error {
	if _, ok := err.(syscall.Errno); ok {
		err = os.NewSyscallError(name, err)
	}
	return err
}
