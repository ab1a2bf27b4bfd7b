package fdio

import (
	"io"

	"golang.org/x/sys/unix"
)

// maxIovecs is IOV_MAX on Linux. Longer vectors are split into several calls.
const maxIovecs = 1024

func readv(fd uintptr, bufs [][]byte) (int64, error) {
	var total int64
	for len(bufs) > 0 {
		batch := bufs[:min(len(bufs), maxIovecs)]
		bufs = bufs[len(batch):]

		want := buffersLen(batch)
		if want == 0 {
			continue
		}

		var n int
		err := ignoringEINTR(func() (err error) {
			n, err = unix.Readv(int(fd), batch)
			return err
		})
		n, err = readResult("readv", n, err)
		if err != nil {
			if err == io.EOF && total > 0 {
				return total, nil
			}
			return total, err
		}
		total += int64(n)
		if int64(n) < want {
			break
		}
	}
	return total, nil
}

func writev(fd uintptr, bufs [][]byte) (int64, error) {
	var total int64
	for len(bufs) > 0 {
		batch := bufs[:min(len(bufs), maxIovecs)]
		bufs = bufs[len(batch):]

		want := buffersLen(batch)
		if want == 0 {
			continue
		}

		var n int
		err := ignoringEINTR(func() (err error) {
			n, err = unix.Writev(int(fd), batch)
			return err
		})
		n, err = writeResult("writev", n, err)
		if err != nil {
			return total, err
		}
		total += int64(n)
		if int64(n) < want {
			break
		}
	}
	return total, nil
}

func buffersLen(bufs [][]byte) (n int64) {
	for _, b := range bufs {
		n += int64(len(b))
	}
	return n
}
