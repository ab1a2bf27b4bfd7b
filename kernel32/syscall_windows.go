// Package kernel32 exposes the few kernel32.dll procedures that
// golang.org/x/sys/windows does not wrap.
package kernel32

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Do the interface allocations only once for common
// Errno values.
var (
	errERROR_EINVAL error = syscall.EINVAL

	modkernel32       = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemInfo = modkernel32.NewProc("GetSystemInfo")
	procPeekNamedPipe = modkernel32.NewProc("PeekNamedPipe")
)

// errnoErr returns common boxed Errno values, to prevent
// allocations at runtime.
func errnoErr(e syscall.Errno) error {
	switch e {
	case 0:
		return errERROR_EINVAL
	}
	return e
}

// SystemInfo is SYSTEM_INFO.
type SystemInfo struct {
	ProcessorArchitecture     uint16
	Reserved                  uint16
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       uintptr
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

// GetSystemInfo cannot fail.
func GetSystemInfo() (si SystemInfo) {
	syscall.Syscall(procGetSystemInfo.Addr(), 1, uintptr(unsafe.Pointer(&si)), 0, 0)
	return
}

// PeekNamedPipe returns the number of bytes available to read from the pipe
// without removing any of them.
func PeekNamedPipe(pipe windows.Handle) (avail uint32, err error) {
	r1, _, e1 := syscall.Syscall6(procPeekNamedPipe.Addr(), 6, uintptr(pipe), 0, 0, 0, uintptr(unsafe.Pointer(&avail)), 0)
	if r1 == 0 {
		err = errnoErr(e1)
	}
	return
}
