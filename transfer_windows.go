package fdio

// TransmitFile only sends to sockets, and only on overlapped handles,
// so Windows always uses the copy loop.
func transfer(fd, dst uintptr, offset, count int64) (int64, error) {
	return copyRange(fd, dst, offset, count)
}
