package intercept

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"
)

// resolveIoctl locates the libc ioctl this library shadows via the
// preload mechanism. The resolved address is kept for the process
// lifetime.
func resolveIoctl() (Forward, error) {
	libc, err := purego.Dlopen("libc.so.6", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen libc: %w", err)
	}

	sym, err := purego.Dlsym(libc, "ioctl")
	if err != nil {
		return nil, fmt.Errorf("dlsym ioctl: %w", err)
	}

	return func(fd int, request uint64, argp unsafe.Pointer) int {
		r1, _, _ := purego.SyscallN(sym, uintptr(fd), uintptr(request), uintptr(argp))

		return int(int32(uint32(r1)))
	}, nil
}

// syscallForward issues the ioctl directly. It backs the disabled state
// when symbol resolution failed, so the host process keeps running.
func syscallForward(fd int, request uint64, argp unsafe.Pointer) int {
	r1, _, errno := unix.Syscall(unix.SYS_IOCTL,
		uintptr(fd), uintptr(request), uintptr(argp))
	if errno != 0 {
		return -int(errno)
	}

	return int(r1)
}
