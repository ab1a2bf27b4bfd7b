package fdio

import "golang.org/x/sys/unix"

// fionread is FIONREAD, which x/sys/unix only exports as TIOCINQ on Linux.
const fionread = unix.TIOCINQ
