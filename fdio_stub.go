//go:build !darwin && !freebsd && !linux && !windows

package fdio

import "os"

func allocationGranularity() int {
	return os.Getpagesize()
}

func length(fd uintptr) (int64, error) {
	return 0, ErrPlatformUnsupported
}

func lock(fd uintptr, start, length int64, shared, wait bool) (bool, error) {
	return false, ErrPlatformUnsupported
}

func unlock(fd uintptr, start, length int64) error {
	return ErrPlatformUnsupported
}

func seek(fd uintptr, offset int64, whence int) (int64, error) {
	return 0, ErrPlatformUnsupported
}

func read(fd uintptr, b []byte) (int, error) {
	return 0, ErrPlatformUnsupported
}

func write(fd uintptr, b []byte) (int, error) {
	return 0, ErrPlatformUnsupported
}

func pread(fd uintptr, b []byte, pos int64) (int, error) {
	return 0, ErrPlatformUnsupported
}

func pwrite(fd uintptr, b []byte, pos int64) (int, error) {
	return 0, ErrPlatformUnsupported
}

func truncate(fd uintptr, size int64) error {
	return ErrPlatformUnsupported
}

func open(path string, mode OpenMode) (uintptr, error) {
	return 0, ErrPlatformUnsupported
}

func transfer(fd, dst uintptr, offset, count int64) (int64, error) {
	return 0, ErrPlatformUnsupported
}

func available(fd uintptr) (int, error) {
	return 0, ErrPlatformUnsupported
}

func closeFD(fd uintptr) error {
	return ErrPlatformUnsupported
}

func setBlocking(fd uintptr, blocking bool) error {
	return ErrPlatformUnsupported
}
