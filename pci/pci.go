// Package pci knows just enough about NVIDIA PCI identity to stand in a
// vGPU certified board for a consumer one of the same GPU generation.
package pci

// Generation is the GPU architecture a device ID belongs to.
type Generation int

const (
	Unknown Generation = iota
	Maxwell
	Maxwell2
	Pascal
	Volta
	Turing
	Ampere
)

func (g Generation) String() string {
	switch g {
	case Maxwell:
		return "Maxwell"
	case Maxwell2:
		return "Maxwell 2.0"
	case Pascal:
		return "Pascal"
	case Volta:
		return "Volta"
	case Turing:
		return "Turing"
	case Ampere:
		return "Ampere"
	default:
		return "unknown"
	}
}

// GenerationOf classifies a PCI device ID by its architecture's ID
// range.
func GenerationOf(dev uint16) Generation {
	switch {
	case dev >= 0x1340 && dev <= 0x13bd,
		dev >= 0x174d && dev <= 0x179c:
		return Maxwell
	case dev >= 0x13c0 && dev <= 0x1436,
		dev >= 0x1617 && dev <= 0x1667,
		dev >= 0x17c2 && dev <= 0x17fd:
		return Maxwell2
	case dev == 0x15f0, dev == 0x15f1,
		dev >= 0x1b00 && dev <= 0x1d56,
		dev >= 0x1725 && dev <= 0x172f:
		return Pascal
	case dev == 0x1d81, dev == 0x1dba:
		return Volta
	case dev >= 0x1e02 && dev <= 0x1ff9,
		dev >= 0x2182 && dev <= 0x21d1:
		return Turing
	case dev >= 0x2200 && dev <= 0x2600:
		return Ampere
	}

	return Unknown
}

// Spoof maps a device and subsystem ID pair onto a vGPU capable board of
// the same generation: Tesla M10, Tesla M60, Tesla P40, Tesla V100 32GB
// PCIE, Quadro RTX 6000 or RTX A6000. IDs of unknown generations come
// back unchanged.
func Spoof(dev, subsys uint16) (uint16, uint16) {
	switch GenerationOf(dev) {
	case Maxwell:
		return 0x13bd, 0x1160
	case Maxwell2:
		return 0x13f2, subsys
	case Pascal:
		return 0x1b38, subsys
	case Volta:
		return 0x1db6, subsys
	case Turing:
		return 0x1e30, 0x12ba
	case Ampere:
		return 0x2230, subsys
	}

	return dev, subsys
}
