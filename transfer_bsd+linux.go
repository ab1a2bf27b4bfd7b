//go:build darwin || freebsd || linux

package fdio

import "golang.org/x/sys/unix"

// maxSendfileSize is the largest count Linux accepts in a single sendfile(2).
const maxSendfileSize = 0x7ffff000

// sendfileCanFallback returns whether err from sendfile(2) means the kernel
// refuses this descriptor pair, as opposed to an I/O failure.
//
// Linux returns -EINVAL for pairs it cannot splice. macOS and FreeBSD only
// send to sockets and return -ENOTSOCK otherwise.
func sendfileCanFallback(err error) bool {
	return err == unix.EINVAL || err == unix.ENOSYS || err == unix.ENOTSOCK || err == unix.EOPNOTSUPP
}

func transfer(fd, dst uintptr, offset, count int64) (int64, error) {
	if runtimeSendfileSupport.load() == sendfileSupportNone {
		return copyRange(fd, dst, offset, count)
	}

	var total int64
	for total < count {
		// sendfile(2) may or may not advance off depending on the platform,
		// so pass a copy and keep our own position.
		off := offset + total
		n, err := unix.Sendfile(int(dst), int(fd), &off, int(min(count-total, maxSendfileSize)))
		if n > 0 {
			total += int64(n)
		}
		switch {
		case err == nil:
			if n == 0 {
				return total, nil
			}
		case err == unix.EINTR:
		case err == unix.EAGAIN:
			return total, nil
		case n <= 0 && sendfileCanFallback(err):
			if err == unix.ENOSYS {
				runtimeSendfileSupport.storeNone()
			}
			n, err := copyRange(fd, dst, offset+total, count-total)
			return total + n, err
		default:
			return total, wrapSyscallError("sendfile", err)
		}
	}
	return total, nil
}
