//go:build !linux

package fdio

import "io"

// readv fills bufs in order with one read per segment, stopping at the first
// short read. Only Linux gets a real readv(2) here.
func readv(fd uintptr, bufs [][]byte) (int64, error) {
	var total int64
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		n, err := read(fd, b)
		if err != nil {
			if err == io.EOF && total > 0 {
				return total, nil
			}
			return total, err
		}
		total += int64(n)
		if n < len(b) {
			break
		}
	}
	return total, nil
}

func writev(fd uintptr, bufs [][]byte) (int64, error) {
	var total int64
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		n, err := write(fd, b)
		if err != nil {
			return total, err
		}
		total += int64(n)
		if n < len(b) {
			break
		}
	}
	return total, nil
}
