//go:build darwin || freebsd || linux

package fdio

import (
	"io"

	"golang.org/x/sys/unix"
)

const defaultPerm = 0o666

func allocationGranularity() int {
	return unix.Getpagesize()
}

func length(fd uintptr) (int64, error) {
	var st unix.Stat_t
	if err := ignoringEINTR(func() error {
		return unix.Fstat(int(fd), &st)
	}); err != nil {
		return 0, wrapSyscallError("fstat", err)
	}
	return st.Size, nil
}

func seek(fd uintptr, offset int64, whence int) (int64, error) {
	pos, err := unix.Seek(int(fd), offset, whence)
	if err != nil {
		return 0, wrapSyscallError("lseek", err)
	}
	return pos, nil
}

func read(fd uintptr, b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	n, err := ignoringEINTRIO(unix.Read, int(fd), b)
	return readResult("read", n, err)
}

func write(fd uintptr, b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	n, err := ignoringEINTRIO(unix.Write, int(fd), b)
	return writeResult("write", n, err)
}

func pread(fd uintptr, b []byte, pos int64) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	var n int
	err := ignoringEINTR(func() (err error) {
		n, err = unix.Pread(int(fd), b, pos)
		return err
	})
	return readResult("pread", n, err)
}

func pwrite(fd uintptr, b []byte, pos int64) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	var n int
	err := ignoringEINTR(func() (err error) {
		n, err = unix.Pwrite(int(fd), b, pos)
		return err
	})
	return writeResult("pwrite", n, err)
}

// readResult maps a raw read result to the facade's convention:
// EAGAIN is (0, nil), zero bytes is io.EOF.
func readResult(name string, n int, err error) (int, error) {
	switch {
	case err == unix.EAGAIN:
		return 0, nil
	case err != nil:
		return 0, wrapSyscallError(name, err)
	case n == 0:
		return 0, io.EOF
	}
	return n, nil
}

func writeResult(name string, n int, err error) (int, error) {
	switch {
	case err == unix.EAGAIN:
		return 0, nil
	case err != nil:
		return 0, wrapSyscallError(name, err)
	}
	return n, nil
}

func truncate(fd uintptr, size int64) error {
	if err := ignoringEINTR(func() error {
		return unix.Ftruncate(int(fd), size)
	}); err != nil {
		return wrapSyscallError("ftruncate", err)
	}
	return nil
}

func openFlags(mode OpenMode) int {
	var flags int
	switch mode & ModeReadWrite {
	case ModeWrite:
		flags = unix.O_WRONLY
	case ModeReadWrite:
		flags = unix.O_RDWR
	default:
		flags = unix.O_RDONLY
	}
	if mode&ModeAppend != 0 {
		flags |= unix.O_APPEND
	}
	if mode&ModeCreate != 0 {
		flags |= unix.O_CREAT
	}
	if mode&ModeExclusive != 0 {
		flags |= unix.O_EXCL
	}
	if mode&ModeTruncate != 0 {
		flags |= unix.O_TRUNC
	}
	if mode&ModeSync != 0 {
		flags |= unix.O_SYNC
	}
	return flags | unix.O_CLOEXEC
}

func open(path string, mode OpenMode) (uintptr, error) {
	var fd int
	if err := ignoringEINTR(func() (err error) {
		fd, err = unix.Open(path, openFlags(mode), defaultPerm)
		return err
	}); err != nil {
		return 0, err
	}

	// Directories open fine with O_RDONLY, but no operation here makes sense on them.
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		unix.Close(fd)
		return 0, err
	}
	if st.Mode&unix.S_IFMT == unix.S_IFDIR {
		unix.Close(fd)
		return 0, unix.EISDIR
	}
	return uintptr(fd), nil
}

func available(fd uintptr) (int, error) {
	n, err := unix.IoctlGetInt(int(fd), fionread) // fdio_linux.go, fdio_bsd.go
	if err != nil {
		if err == unix.ENOTTY {
			// The descriptor does not report readiness. That's fine.
			return 0, nil
		}
		return 0, wrapSyscallError("ioctl(FIONREAD)", err)
	}
	return n, nil
}

func closeFD(fd uintptr) error {
	if err := unix.Close(int(fd)); err != nil {
		return wrapSyscallError("close", err)
	}
	return nil
}

func setBlocking(fd uintptr, blocking bool) error {
	if err := unix.SetNonblock(int(fd), !blocking); err != nil {
		return wrapSyscallError("fcntl(O_NONBLOCK)", err)
	}
	return nil
}

// ignoringEINTR makes a function call and repeats it if it returns an EINTR error.
func ignoringEINTR(fn func() error) error {
	for {
		err := fn()
		if err != unix.EINTR {
			return err
		}
	}
}

// ignoringEINTRIO is like ignoringEINTR, but just for adding a length return value.
func ignoringEINTRIO(fn func(fd int, p []byte) (int, error), fd int, p []byte) (int, error) {
	for {
		n, err := fn(fd, p)
		if err != unix.EINTR {
			return n, err
		}
	}
}
