package profile

import (
	"bytes"
	"fmt"
)

// cString reads a NUL-terminated string out of a fixed slot.
func (r *Record) cString(off, n int) string {
	slot := r.raw[off : off+n]
	if i := bytes.IndexByte(slot, 0); i >= 0 {
		slot = slot[:i]
	}

	return string(slot)
}

// setCString zeroes a fixed slot and writes s plus a NUL terminator.
// Bytes after the terminator are cleared, matching how the driver fills
// these slots.
func (r *Record) setCString(name string, off, n int, s string) error {
	if len(s) > n-1 {
		return fmt.Errorf("%s: %d bytes, slot %d: %w", name, len(s), n, ErrStringTooLong)
	}

	slot := r.raw[off : off+n]
	for i := range slot {
		slot[i] = 0
	}

	copy(slot, s)

	return nil
}

func (r *Record) VgpuName() string { return r.cString(r.lay.vgpuName, r.lay.nameLen) }

func (r *Record) SetVgpuName(s string) error {
	return r.setCString("vgpu_name", r.lay.vgpuName, r.lay.nameLen, s)
}

func (r *Record) VgpuClass() string { return r.cString(r.lay.vgpuClass, r.lay.nameLen) }

func (r *Record) SetVgpuClass(s string) error {
	return r.setCString("vgpu_class", r.lay.vgpuClass, r.lay.nameLen, s)
}

func (r *Record) License() string { return r.cString(r.lay.license, licenseLen) }

func (r *Record) SetLicense(s string) error {
	return r.setCString("license", r.lay.license, licenseLen, s)
}

func (r *Record) AdapterName() string { return r.cString(r.lay.adapterName, adapterLen) }

func (r *Record) SetAdapterName(s string) error {
	return r.setCString("adapter_name", r.lay.adapterName, adapterLen, s)
}

func (r *Record) ShortGPUName() string { return r.cString(r.lay.shortGPUName, shortNameLen) }

func (r *Record) SetShortGPUName(s string) error {
	return r.setCString("short_gpu_name", r.lay.shortGPUName, shortNameLen, s)
}

func (r *Record) LicensedProductName() string {
	return r.cString(r.lay.licensedProductName, productLen)
}

func (r *Record) SetLicensedProductName(s string) error {
	return r.setCString("licensed_product_name", r.lay.licensedProductName, productLen, s)
}
