//go:build darwin || freebsd || linux || windows

package fdio

import (
	"io"
	"sync/atomic"
)

// transferBufferSize is the buffer size of the read/write copy loop.
const transferBufferSize = 32 * 1024

type sendfileSupport uint32

const (
	sendfileSupportDefault sendfileSupport = iota
	sendfileSupportNone
)

// atomicSendfileSupport records whether the kernel implements sendfile(2) at all.
// Once a call reports that it does not, every later transfer goes straight to
// the copy loop.
type atomicSendfileSupport struct {
	v atomic.Uint32
}

func (a *atomicSendfileSupport) load() sendfileSupport {
	return sendfileSupport(a.v.Load())
}

func (a *atomicSendfileSupport) storeNone() {
	a.v.Store(uint32(sendfileSupportNone))
}

var runtimeSendfileSupport atomicSendfileSupport

// copyRange copies up to count bytes of src starting at offset to dst
// with positioned reads and plain writes.
//
// It returns early without error if dst would block or src ends.
func copyRange(src, dst uintptr, offset, count int64) (int64, error) {
	buf := make([]byte, min(count, transferBufferSize))
	var total int64
	for total < count {
		b := buf[:min(count-total, int64(len(buf)))]
		nr, err := pread(src, b, offset+total)
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
		if nr == 0 {
			return total, nil
		}

		for written := 0; written < nr; {
			nw, err := write(dst, b[written:nr])
			if err != nil {
				return total + int64(written), err
			}
			if nw == 0 {
				return total + int64(written), nil
			}
			written += nw
		}
		total += int64(nr)
	}
	return total, nil
}
