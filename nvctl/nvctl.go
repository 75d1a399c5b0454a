// Package nvctl describes the ioctl interface that the NVIDIA vGPU
// management daemons use to talk to the resource manager in the kernel
// driver. Command codes and structure layouts follow the open-gpu-kernel-
// modules headers (nvos.h, nv-ioctl-numbers.h and the ctrl/ directory).
package nvctl

const (
	iocWrite = 1
	iocRead  = 2

	// NVIDIA ioctl magic, nv-ioctl-numbers.h.
	Magic = 'F'
)

// IOWR packs a read-write ioctl request code the way _IOWR does.
func IOWR(magic, nr, size uint64) uint64 {
	return (iocRead|iocWrite)<<30 | size<<16 | magic<<8 | nr
}

// EscRMControl is the request code for NV_ESC_RM_CONTROL, the escape both
// nvidia-vgpud and nvidia-vgpu-mgr use for every RM control command. The
// argument is a pointer to an Envelope. Equals IOWR(Magic, 0x2a,
// EnvelopeSize).
const EscRMControl = 0xc020462a

// RM control command codes observed in the vGPU daemons.
const (
	// Params is a StartData.
	CmdVgpuGetStartData = 0xc01

	// Params is a NV0080_CTRL_GPU_GET_VIRTUALIZATION_MODE_PARAMS; the
	// first word is the virtualization mode.
	CmdGetVirtualizationMode = 0x800289

	// Params is a NV2080_CTRL_BUS_GET_PCI_INFO_PARAMS.
	CmdBusGetPCIInfo = 0x20801801

	// Params is the legacy host vGPU device type info record.
	CmdHostVgpuDeviceGetVgpuTypeInfo = 0xa0820102

	// Params is the A081 vGPU config type info record, used starting with
	// vGPU 15.0 (525.60.12).
	CmdVgpuConfigGetVgpuTypeInfo = 0xa0810103

	// Params is a single byte holding the migration capability.
	CmdVgpuConfigGetMigrationCap = 0xa0810112

	// Commands that are only touched for status cleanup.
	CmdHostVgpuDeviceGetVgpuTypeInfo2 = 0xa0820104
	CmdGetZBCClearTable               = 0x90960103
	CmdGetInforomObjectVersion        = 0x2080014b
)

// The daemons expect this virtualization mode for a vGPU capable GPU.
const VirtualizationModeHost = 3

// RM status codes, nvstatuscodes.h.
const (
	StatusOK             = 0x00
	StatusBusyRetry      = 0x03
	StatusNotSupported   = 0x56
	StatusObjectNotFound = 0x57
)
