// govgpu is built with -buildmode=c-shared and dropped into the vGPU
// management daemons through LD_PRELOAD. The exported ioctl symbol
// shadows libc's and routes every device-control call through the
// interception engine.
//
//	go build -buildmode=c-shared -o libvgpu_unlock.so .
package main

import (
	"unsafe"

	"github.com/vgpu-unlock/govgpu/intercept"
)

import "C"

//export ioctl
func ioctl(fd C.int, request C.ulong, argp unsafe.Pointer) C.int {
	return C.int(intercept.Intercept(int(fd), uint64(request), argp))
}

func main() {}
