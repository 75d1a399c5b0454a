package nvctl

import (
	"fmt"
	"unsafe"
)

// EnvelopeSize is the byte size of NVOS54_PARAMETERS on 64-bit hosts.
const EnvelopeSize = 32

// Envelope mirrors NVOS54_PARAMETERS, the in/out argument of
// NV_ESC_RM_CONTROL. The caller owns the memory; an *Envelope obtained
// from an intercepted call must not be retained past that call.
type Envelope struct {
	HClient uint32
	HObject uint32
	Cmd     uint32
	Flags   uint32
	// Params points at a command-specific structure of ParamsSize bytes,
	// written by the driver.
	Params     uintptr
	ParamsSize uint32
	// Status is the RM status code written by the driver, independent of
	// the ioctl return value.
	Status uint32
}

// EnvelopeFromPointer reinterprets the argp of an intercepted
// NV_ESC_RM_CONTROL call.
func EnvelopeFromPointer(argp unsafe.Pointer) *Envelope {
	return (*Envelope)(argp)
}

// ParamsBytes returns the command parameter area as a byte slice, or nil
// if the call carries none.
func (e *Envelope) ParamsBytes() []byte {
	if e.Params == 0 || e.ParamsSize == 0 {
		return nil
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(e.Params)), e.ParamsSize)
}

// UUID is the 16-byte mdev device UUID as the RM hands it over.
type UUID struct {
	TimeLow  uint32
	TimeMid  uint16
	TimeHi   uint16
	ClockSeq [2]uint8
	Node     [6]uint8
}

func (u UUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		u.TimeLow, u.TimeMid, u.TimeHi,
		u.ClockSeq[0], u.ClockSeq[1],
		u.Node[0], u.Node[1], u.Node[2], u.Node[3], u.Node[4], u.Node[5])
}

// StartDataSize is the byte size of NV0000_CTRL_VGPU_GET_START_DATA_PARAMS.
const StartDataSize = 0x420

// StartData mirrors NV0000_CTRL_VGPU_GET_START_DATA_PARAMS, delivered to
// nvidia-vgpu-mgr when a vGPU instance starts.
type StartData struct {
	MdevUUID     UUID
	ConfigParams [1024]byte
	QemuPid      uint32
	GpuPciID     uint32
	VgpuID       uint16
	_            uint16
	GpuPciBdf    uint32
}

// StartDataFromBytes reinterprets a CmdVgpuGetStartData parameter area.
// The slice must be at least StartDataSize long.
func StartDataFromBytes(params []byte) (*StartData, error) {
	if len(params) < StartDataSize {
		return nil, fmt.Errorf("start data: %d bytes, want %d: %w",
			len(params), StartDataSize, ErrTruncated)
	}

	return (*StartData)(unsafe.Pointer(&params[0])), nil
}
