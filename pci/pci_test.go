package pci_test

import (
	"testing"

	"github.com/vgpu-unlock/govgpu/pci"
)

func TestGenerationOf(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		dev  uint16
		want pci.Generation
	}{
		{0x1340, pci.Maxwell},
		{0x13bd, pci.Maxwell},
		{0x13c0, pci.Maxwell2},
		{0x17c8, pci.Maxwell2}, // GTX 980 Ti
		{0x1b06, pci.Pascal},   // GTX 1080 Ti
		{0x1d81, pci.Volta},    // TITAN V
		{0x1e87, pci.Turing},   // RTX 2080
		{0x2204, pci.Ampere},   // RTX 3090
		{0x0fc6, pci.Unknown},
	} {
		if got := pci.GenerationOf(tc.dev); got != tc.want {
			t.Errorf("GenerationOf(%#x) = %v, want %v", tc.dev, got, tc.want)
		}
	}
}

func TestSpoof(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		dev, subsys         uint16
		wantDev, wantSubsys uint16
	}{
		{0x1340, 0x0001, 0x13bd, 0x1160}, // Maxwell forces the M10 subsystem
		{0x13c2, 0x0002, 0x13f2, 0x0002}, // Maxwell 2.0 keeps the subsystem
		{0x1b06, 0x0003, 0x1b38, 0x0003},
		{0x1dba, 0x0004, 0x1db6, 0x0004},
		{0x1e87, 0x0005, 0x1e30, 0x12ba}, // Turing forces the RTX 6000 subsystem
		{0x2204, 0x0006, 0x2230, 0x0006},
		{0x0fc6, 0x0007, 0x0fc6, 0x0007}, // unknown stays put
	} {
		dev, subsys := pci.Spoof(tc.dev, tc.subsys)
		if dev != tc.wantDev || subsys != tc.wantSubsys {
			t.Errorf("Spoof(%#x, %#x) = %#x, %#x, want %#x, %#x",
				tc.dev, tc.subsys, dev, subsys, tc.wantDev, tc.wantSubsys)
		}
	}
}
