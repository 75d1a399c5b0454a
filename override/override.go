// Package override merges an administrator-declared partial profile over
// a decoded record. Application is literal: each configured field
// replaces the driver's value and nothing else changes, with no
// consistency checking between fields.
package override

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vgpu-unlock/govgpu/config"
	"github.com/vgpu-unlock/govgpu/profile"
)

// Apply rewrites rec in place from the non-nil fields of ov. A nil ov is
// a no-op. The only possible failure is a string value that does not fit
// its fixed slot; in that case rec may be partially patched and the
// caller must discard it rather than encode it.
func Apply(rec *profile.Record, ov *config.Override) error {
	if ov == nil {
		return nil
	}

	key := rec.Key()

	patchU32(key, "gpu_type", &rec.VgpuType, ov.GpuType)

	if err := patchStr(key, "card_name", rec.VgpuName(), ov.CardName, rec.SetVgpuName); err != nil {
		return err
	}

	if err := patchStr(key, "vgpu_type", rec.VgpuClass(), ov.VgpuType, rec.SetVgpuClass); err != nil {
		return err
	}

	if err := patchStr(key, "features", rec.License(), ov.Features, rec.SetLicense); err != nil {
		return err
	}

	patchU32(key, "max_instances", &rec.MaxInstance, ov.MaxInstances)
	patchU32(key, "num_displays", &rec.NumHeads, ov.NumDisplays)
	patchU32(key, "display_width", &rec.MaxResolutionX, ov.DisplayWidth)
	patchU32(key, "display_height", &rec.MaxResolutionY, ov.DisplayHeight)
	patchU32(key, "max_pixels", &rec.MaxPixels, ov.MaxPixels)
	patchU32(key, "frl_config", &rec.FRLConfig, ov.FRLConfig)
	patchU32(key, "cuda_enabled", &rec.CudaEnabled, ov.CudaEnabled)
	patchU32(key, "ecc_supported", &rec.ECCSupported, ov.ECCSupported)
	patchU32(key, "mig_instance_size", &rec.GPUInstanceSize, ov.MigInstanceSize)
	patchU32(key, "multi_vgpu_supported", &rec.MultiVgpuSupported, ov.MultiVgpuSupported)
	patchU64(key, "pci_id", &rec.VDevID, ov.PciID)
	patchU64(key, "pci_device_id", &rec.PDevID, ov.PciDeviceID)
	patchSize(key, "framebuffer", &rec.FBLength, ov.Framebuffer)
	patchSize(key, "mappable_video_size", &rec.MappableVideoSize, ov.MappableVideoSize)
	patchSize(key, "framebuffer_reservation", &rec.FBReservation, ov.FramebufferRes)
	patchU32(key, "encoder_capacity", &rec.EncoderCapacity, ov.EncoderCapacity)
	patchU64(key, "bar1_length", &rec.BAR1Length, ov.BAR1Length)
	patchU32(key, "frl_enabled", &rec.FRLEnable, ov.FRLEnabled)

	if err := patchStr(key, "adapter_name", rec.AdapterName(), ov.AdapterName, rec.SetAdapterName); err != nil {
		return err
	}

	if err := patchStr(key, "short_gpu_name", rec.ShortGPUName(), ov.ShortGpuName, rec.SetShortGPUName); err != nil {
		return err
	}

	if err := patchStr(key, "license_type", rec.LicensedProductName(), ov.LicenseType,
		rec.SetLicensedProductName); err != nil {
		return err
	}

	return nil
}

// UnlockMigrationCap forces the migration capability byte of a
// CmdVgpuConfigGetMigrationCap response to "supported".
func UnlockMigrationCap(params []byte) error {
	if len(params) < 1 {
		return fmt.Errorf("migration cap params empty: %w", profile.ErrTruncated)
	}

	params[0] = 1

	return nil
}

func patchU32(key, name string, dst *uint32, src *uint32) {
	if src == nil {
		return
	}

	logrus.Infof("patching %s/%s: %d -> %d", key, name, *dst, *src)
	*dst = *src
}

func patchU64(key, name string, dst *uint64, src *uint64) {
	if src == nil {
		return
	}

	logrus.Infof("patching %s/%s: %#x -> %#x", key, name, *dst, *src)
	*dst = *src
}

func patchSize(key, name string, dst *uint64, src *config.Size) {
	if src == nil {
		return
	}

	logrus.Infof("patching %s/%s: %#x -> %#x", key, name, *dst, uint64(*src))
	*dst = uint64(*src)
}

func patchStr(key, name, old string, src *string, set func(string) error) error {
	if src == nil {
		return nil
	}

	if err := set(*src); err != nil {
		return fmt.Errorf("patching %s/%s: %w", key, name, err)
	}

	logrus.Infof("patching %s/%s: %q -> %q", key, name, old, *src)

	return nil
}
