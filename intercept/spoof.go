package intercept

import (
	"encoding/binary"

	"github.com/sirupsen/logrus"
	"github.com/vgpu-unlock/govgpu/nvctl"
	"github.com/vgpu-unlock/govgpu/pci"
)

// spoofVirtualizationMode reports the GPU as a vGPU host. The mode is
// the first word of NV0080_CTRL_GPU_GET_VIRTUALIZATION_MODE_PARAMS.
func spoofVirtualizationMode(params []byte) {
	if len(params) < 4 {
		return
	}

	binary.LittleEndian.PutUint32(params, nvctl.VirtualizationModeHost)
}

// spoofPCIInfo replaces the PCI device and subsystem IDs with those of a
// vGPU certified board of the same generation. The IDs sit in the upper
// halves of the first two words of NV2080_CTRL_BUS_GET_PCI_INFO_PARAMS.
func spoofPCIInfo(params []byte) {
	if len(params) < 8 {
		return
	}

	le := binary.LittleEndian

	dev := le.Uint16(params[2:])
	subsys := le.Uint16(params[6:])

	newDev, newSubsys := pci.Spoof(dev, subsys)
	if newDev == dev && newSubsys == subsys {
		return
	}

	logrus.Debugf("spoofing %s PCI ID %04x:%04x -> %04x:%04x",
		pci.GenerationOf(dev), dev, subsys, newDev, newSubsys)

	le.PutUint16(params[2:], newDev)
	le.PutUint16(params[6:], newSubsys)
}
