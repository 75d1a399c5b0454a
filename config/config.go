// Package config loads the two TOML documents that drive the shim: the
// global options document and the per-profile override document. Both
// are optional on disk; a missing file falls back to defaults while a
// present but malformed file is a hard error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	DefaultGlobalPath    = "/etc/vgpu_unlock/config.toml"
	DefaultOverridesPath = "/etc/vgpu_unlock/profile_override.toml"

	EnvGlobalPath    = "VGPU_UNLOCK_CONFIG_PATH"
	EnvOverridesPath = "VGPU_UNLOCK_PROFILE_OVERRIDE_CONFIG_PATH"
)

// GlobalPath returns the location of the global options document,
// honoring the environment override.
func GlobalPath() string {
	if p := os.Getenv(EnvGlobalPath); p != "" {
		return p
	}

	return DefaultGlobalPath
}

// OverridesPath returns the location of the profile override document,
// honoring the environment override.
func OverridesPath() string {
	if p := os.Getenv(EnvOverridesPath); p != "" {
		return p
	}

	return DefaultOverridesPath
}

// Global holds feature toggles not tied to a specific profile.
// Unrecognized keys in the document are ignored.
type Global struct {
	// Unlock enables spoofing the GPU identity towards the vGPU daemons.
	Unlock bool `toml:"unlock"`
	// UnlockMigration forces the migration capability to be reported as
	// available.
	UnlockMigration bool `toml:"unlock_migration"`
}

// DefaultGlobal returns the configuration used when no document exists.
func DefaultGlobal() Global {
	return Global{Unlock: true, UnlockMigration: false}
}

// LoadGlobal reads the global options document. A missing file yields
// the defaults.
func LoadGlobal(path string) (Global, error) {
	g := DefaultGlobal()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return g, nil
		}

		return g, fmt.Errorf("read %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), &g); err != nil {
		return DefaultGlobal(), fmt.Errorf("decode %s: %w", path, err)
	}

	return g, nil
}

// Overrides is the administrator-declared override table, keyed by
// profile identifier ("nvidia-<type>") and, independently, by mdev
// device UUID.
type Overrides struct {
	Profile map[string]Override `toml:"profile"`
	MDev    map[string]Override `toml:"mdev"`
}

// Override is a partial profile record. Only non-nil fields are applied;
// everything else keeps the driver's value.
type Override struct {
	GpuType            *uint32 `toml:"gpu_type"`
	CardName           *string `toml:"card_name"`
	VgpuType           *string `toml:"vgpu_type"`
	Features           *string `toml:"features"`
	MaxInstances       *uint32 `toml:"max_instances"`
	NumDisplays        *uint32 `toml:"num_displays"`
	DisplayWidth       *uint32 `toml:"display_width"`
	DisplayHeight      *uint32 `toml:"display_height"`
	MaxPixels          *uint32 `toml:"max_pixels"`
	FRLConfig          *uint32 `toml:"frl_config"`
	CudaEnabled        *uint32 `toml:"cuda_enabled"`
	ECCSupported       *uint32 `toml:"ecc_supported"`
	MigInstanceSize    *uint32 `toml:"mig_instance_size"`
	MultiVgpuSupported *uint32 `toml:"multi_vgpu_supported"`
	PciID              *uint64 `toml:"pci_id"`
	PciDeviceID        *uint64 `toml:"pci_device_id"`
	Framebuffer        *Size   `toml:"framebuffer"`
	MappableVideoSize  *Size   `toml:"mappable_video_size"`
	FramebufferRes     *Size   `toml:"framebuffer_reservation"`
	EncoderCapacity    *uint32 `toml:"encoder_capacity"`
	BAR1Length         *uint64 `toml:"bar1_length"`
	FRLEnabled         *uint32 `toml:"frl_enabled"`
	AdapterName        *string `toml:"adapter_name"`
	ShortGpuName       *string `toml:"short_gpu_name"`
	LicenseType        *string `toml:"license_type"`
}

// LoadOverrides reads the profile override document. A missing file
// yields empty tables, so no profile is ever rewritten.
func LoadOverrides(path string) (Overrides, error) {
	var o Overrides

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return o, nil
		}

		return o, fmt.Errorf("read %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), &o); err != nil {
		return Overrides{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return o, nil
}
