//go:build darwin || freebsd || linux

package fdio

import (
	"io"

	"golang.org/x/sys/unix"
)

// POSIX record locks are owned by the process, not the descriptor.
// Locking a range the process already holds always succeeds, and closing
// any descriptor of the file releases every lock the process holds on it.

func lock(fd uintptr, start, length int64, shared, wait bool) (bool, error) {
	lk := unix.Flock_t{
		Type:   unix.F_WRLCK,
		Whence: io.SeekStart,
		Start:  start,
		Len:    length,
	}
	if shared {
		lk.Type = unix.F_RDLCK
	}

	cmd := unix.F_SETLK
	if wait {
		cmd = unix.F_SETLKW
	}

	err := ignoringEINTR(func() error {
		return unix.FcntlFlock(fd, cmd, &lk)
	})
	switch {
	case err == nil:
		return true, nil
	case !wait && (err == unix.EAGAIN || err == unix.EACCES):
		return false, nil
	default:
		return false, wrapSyscallError("fcntl(F_SETLK)", err)
	}
}

func unlock(fd uintptr, start, length int64) error {
	lk := unix.Flock_t{
		Type:   unix.F_UNLCK,
		Whence: io.SeekStart,
		Start:  start,
		Len:    length,
	}
	// Releasing a record lock never waits.
	if err := ignoringEINTR(func() error {
		return unix.FcntlFlock(fd, unix.F_SETLK, &lk)
	}); err != nil {
		return wrapSyscallError("fcntl(F_UNLCK)", err)
	}
	return nil
}
