package fdio

import (
	"io"

	"github.com/database64128/fdio-go/kernel32"
	"golang.org/x/sys/windows"
)

const defaultPerm = 0o666

// maxRW is the largest buffer passed to a single ReadFile or WriteFile.
const maxRW = 1 << 30

func allocationGranularity() int {
	return int(kernel32.GetSystemInfo().AllocationGranularity)
}

func length(fd uintptr) (int64, error) {
	var fi windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(windows.Handle(fd), &fi); err != nil {
		return 0, wrapSyscallError("GetFileInformationByHandle", err)
	}
	return int64(fi.FileSizeHigh)<<32 | int64(fi.FileSizeLow), nil
}

func seek(fd uintptr, offset int64, whence int) (int64, error) {
	pos, err := windows.Seek(windows.Handle(fd), offset, whence)
	if err != nil {
		return 0, wrapSyscallError("SetFilePointerEx", err)
	}
	return pos, nil
}

func read(fd uintptr, b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if len(b) > maxRW {
		b = b[:maxRW]
	}
	// windows.Read reports a broken pipe as (0, nil).
	n, err := windows.Read(windows.Handle(fd), b)
	if err != nil {
		return 0, wrapSyscallError("ReadFile", err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func write(fd uintptr, b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if len(b) > maxRW {
		b = b[:maxRW]
	}
	n, err := windows.Write(windows.Handle(fd), b)
	if err != nil {
		return 0, wrapSyscallError("WriteFile", err)
	}
	return n, nil
}

func overlappedAt(pos int64) *windows.Overlapped {
	return &windows.Overlapped{
		Offset:     uint32(pos),
		OffsetHigh: uint32(pos >> 32),
	}
}

// pread reads at pos. On a synchronous handle ReadFile with an OVERLAPPED
// offset also moves the file pointer, so the pointer is saved and restored
// around the call, as internal/poll does. Nothing guards the pair against
// a concurrent Seek on the same handle.
func pread(fd uintptr, b []byte, pos int64) (n int, err error) {
	if len(b) == 0 {
		return 0, nil
	}
	if len(b) > maxRW {
		b = b[:maxRW]
	}
	h := windows.Handle(fd)
	restore, err := keepFilePointer(h)
	if err != nil {
		return 0, err
	}
	defer func() {
		if rerr := restore(); rerr != nil && err == nil {
			n, err = 0, rerr
		}
	}()

	var done uint32
	err = windows.ReadFile(h, b, &done, overlappedAt(pos))
	switch {
	case err == windows.ERROR_HANDLE_EOF:
		return 0, io.EOF
	case err != nil:
		return 0, wrapSyscallError("ReadFile", err)
	case done == 0:
		return 0, io.EOF
	}
	return int(done), nil
}

func pwrite(fd uintptr, b []byte, pos int64) (n int, err error) {
	if len(b) == 0 {
		return 0, nil
	}
	if len(b) > maxRW {
		b = b[:maxRW]
	}
	h := windows.Handle(fd)
	restore, err := keepFilePointer(h)
	if err != nil {
		return 0, err
	}
	defer func() {
		if rerr := restore(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	var done uint32
	if err = windows.WriteFile(h, b, &done, overlappedAt(pos)); err != nil {
		return 0, wrapSyscallError("WriteFile", err)
	}
	return int(done), nil
}

// keepFilePointer records the current file pointer of h and returns
// a function that moves it back.
func keepFilePointer(h windows.Handle) (restore func() error, err error) {
	cur, err := windows.Seek(h, 0, io.SeekCurrent)
	if err != nil {
		return nil, wrapSyscallError("SetFilePointerEx", err)
	}
	return func() error {
		if _, err := windows.Seek(h, cur, io.SeekStart); err != nil {
			return wrapSyscallError("SetFilePointerEx", err)
		}
		return nil
	}, nil
}

func truncate(fd uintptr, size int64) error {
	if err := windows.Ftruncate(windows.Handle(fd), size); err != nil {
		return wrapSyscallError("SetEndOfFile", err)
	}
	return nil
}

func openFlags(mode OpenMode) int {
	var flags int
	switch mode & ModeReadWrite {
	case ModeWrite:
		flags = windows.O_WRONLY
	case ModeReadWrite:
		flags = windows.O_RDWR
	default:
		flags = windows.O_RDONLY
	}
	if mode&ModeAppend != 0 {
		flags |= windows.O_APPEND
	}
	if mode&ModeCreate != 0 {
		flags |= windows.O_CREAT
	}
	if mode&ModeExclusive != 0 {
		flags |= windows.O_EXCL
	}
	if mode&ModeTruncate != 0 {
		flags |= windows.O_TRUNC
	}
	if mode&ModeSync != 0 {
		flags |= windows.O_SYNC
	}
	return flags | windows.O_CLOEXEC
}

func open(path string, mode OpenMode) (uintptr, error) {
	h, err := windows.Open(path, openFlags(mode), defaultPerm)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func available(fd uintptr) (int, error) {
	h := windows.Handle(fd)
	t, err := windows.GetFileType(h)
	if err != nil {
		return 0, wrapSyscallError("GetFileType", err)
	}

	switch t {
	case windows.FILE_TYPE_PIPE:
		n, err := kernel32.PeekNamedPipe(h)
		if err != nil {
			if err == windows.ERROR_BROKEN_PIPE {
				return 0, nil
			}
			return 0, wrapSyscallError("PeekNamedPipe", err)
		}
		return int(n), nil

	case windows.FILE_TYPE_DISK:
		size, err := length(fd)
		if err != nil {
			return 0, err
		}
		pos, err := seek(fd, 0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		if pos >= size {
			return 0, nil
		}
		return int(min(size-pos, maxRW)), nil

	default:
		return 0, nil
	}
}

func closeFD(fd uintptr) error {
	if err := windows.CloseHandle(windows.Handle(fd)); err != nil {
		return wrapSyscallError("CloseHandle", err)
	}
	return nil
}

// setBlocking only accepts blocking mode: handles opened here are synchronous
// and there is no per-handle switch to make them otherwise.
func setBlocking(fd uintptr, blocking bool) error {
	if blocking {
		return nil
	}
	return ErrPlatformUnsupported
}
