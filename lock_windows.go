package fdio

import "golang.org/x/sys/windows"

// LockFileEx locks are owned by the handle. Unlike POSIX record locks, two
// handles of the same file in one process do conflict.

// lockRange converts a lock length to the LockFileEx byte count.
// Zero means the whole 64-bit range, as it does for fcntl.
func lockRange(length int64) (low, high uint32) {
	if length == 0 {
		return ^uint32(0), ^uint32(0)
	}
	return uint32(length), uint32(length >> 32)
}

func lock(fd uintptr, start, length int64, shared, wait bool) (bool, error) {
	var flags uint32
	if !shared {
		flags |= windows.LOCKFILE_EXCLUSIVE_LOCK
	}
	if !wait {
		flags |= windows.LOCKFILE_FAIL_IMMEDIATELY
	}

	low, high := lockRange(length)
	err := windows.LockFileEx(windows.Handle(fd), flags, 0, low, high, overlappedAt(start))
	switch {
	case err == nil:
		return true, nil
	case !wait && err == windows.ERROR_LOCK_VIOLATION:
		return false, nil
	default:
		return false, wrapSyscallError("LockFileEx", err)
	}
}

func unlock(fd uintptr, start, length int64) error {
	low, high := lockRange(length)
	if err := windows.UnlockFileEx(windows.Handle(fd), 0, low, high, overlappedAt(start)); err != nil {
		return wrapSyscallError("UnlockFileEx", err)
	}
	return nil
}
