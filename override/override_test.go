package override_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/vgpu-unlock/govgpu/config"
	"github.com/vgpu-unlock/govgpu/nvctl"
	"github.com/vgpu-unlock/govgpu/override"
	"github.com/vgpu-unlock/govgpu/profile"
)

// A082 field slot offsets used by the tests.
const (
	offVgpuType    = 0
	offNumHeads    = 392
	offMaxResX     = 396
	offMaxResY     = 400
	offMaxPixels   = 404
	offCudaEnabled = 412
	offFRLEnable   = 488
)

func u32(v uint32) *uint32 { return &v }

func newRecord(t *testing.T) (*profile.Record, []byte) {
	t.Helper()

	buf := make([]byte, profile.SizeHostVgpuDeviceTypeInfo)

	rng := rand.New(rand.NewSource(7)) //nolint:gosec
	if _, err := rng.Read(buf); err != nil {
		t.Fatal(err)
	}

	le := binary.LittleEndian
	le.PutUint32(buf[offVgpuType:], 55)
	le.PutUint32(buf[offNumHeads:], 2)
	le.PutUint32(buf[offMaxResX:], 1024)
	le.PutUint32(buf[offMaxResY:], 768)
	le.PutUint32(buf[offMaxPixels:], 786432)
	le.PutUint32(buf[offCudaEnabled:], 0)
	le.PutUint32(buf[offFRLEnable:], 1)

	rec, err := profile.Decode(buf, nvctl.CmdHostVgpuDeviceGetVgpuTypeInfo)
	if err != nil {
		t.Fatal(err)
	}

	return rec, buf
}

func TestApplyNilIsNoop(t *testing.T) {
	t.Parallel()

	rec, orig := newRecord(t)

	if err := override.Apply(rec, nil); err != nil {
		t.Fatal(err)
	}

	out := make([]byte, len(orig))
	if err := profile.Encode(rec, out); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(out, orig) {
		t.Fatal("nil override must leave the record unchanged")
	}
}

func TestApplySelectiveFields(t *testing.T) {
	t.Parallel()

	rec, orig := newRecord(t)

	ov := config.Override{
		NumDisplays: u32(1),
		CudaEnabled: u32(1),
	}

	if err := override.Apply(rec, &ov); err != nil {
		t.Fatal(err)
	}

	out := make([]byte, len(orig))
	if err := profile.Encode(rec, out); err != nil {
		t.Fatal(err)
	}

	want := make([]byte, len(orig))
	copy(want, orig)
	binary.LittleEndian.PutUint32(want[offNumHeads:], 1)
	binary.LittleEndian.PutUint32(want[offCudaEnabled:], 1)

	if !bytes.Equal(out, want) {
		t.Fatal("exactly num_displays and cuda_enabled may differ")
	}
}

// The nvidia-55 scenario: every configured value lands, reserved bytes
// stay bit-identical to the driver's response.
func TestApplyFullScenario(t *testing.T) {
	t.Parallel()

	rec, orig := newRecord(t)

	ov := config.Override{
		NumDisplays:   u32(1),
		DisplayWidth:  u32(1920),
		DisplayHeight: u32(1080),
		MaxPixels:     u32(2073600),
		CudaEnabled:   u32(1),
		FRLEnabled:    u32(0),
	}

	if err := override.Apply(rec, &ov); err != nil {
		t.Fatal(err)
	}

	if rec.NumHeads != 1 || rec.MaxResolutionX != 1920 || rec.MaxResolutionY != 1080 ||
		rec.MaxPixels != 2073600 || rec.CudaEnabled != 1 || rec.FRLEnable != 0 {
		t.Fatalf("record = %+v", rec)
	}

	out := make([]byte, len(orig))
	if err := profile.Encode(rec, out); err != nil {
		t.Fatal(err)
	}

	want := make([]byte, len(orig))
	copy(want, orig)

	le := binary.LittleEndian
	le.PutUint32(want[offNumHeads:], 1)
	le.PutUint32(want[offMaxResX:], 1920)
	le.PutUint32(want[offMaxResY:], 1080)
	le.PutUint32(want[offMaxPixels:], 2073600)
	le.PutUint32(want[offCudaEnabled:], 1)
	le.PutUint32(want[offFRLEnable:], 0)

	if !bytes.Equal(out, want) {
		t.Fatal("reserved bytes must be preserved from the original record")
	}
}

func TestApplyStringTooLong(t *testing.T) {
	t.Parallel()

	rec, _ := newRecord(t)

	long := string(bytes.Repeat([]byte{'x'}, 64))
	ov := config.Override{CardName: &long}

	err := override.Apply(rec, &ov)
	if !errors.Is(err, profile.ErrStringTooLong) {
		t.Fatalf("err = %v, want ErrStringTooLong", err)
	}
}

func TestUnlockMigrationCap(t *testing.T) {
	t.Parallel()

	params := []byte{0}
	if err := override.UnlockMigrationCap(params); err != nil {
		t.Fatal(err)
	}

	if params[0] != 1 {
		t.Fatal("migration capability byte not set")
	}

	if err := override.UnlockMigrationCap(nil); err == nil {
		t.Fatal("empty params must error")
	}
}
