package profile_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/vgpu-unlock/govgpu/nvctl"
	"github.com/vgpu-unlock/govgpu/profile"
)

// randomParams fills a parameter area with noise so reserved regions are
// distinguishable from zeroes.
func randomParams(t *testing.T, size int) []byte {
	t.Helper()

	buf := make([]byte, size)

	rng := rand.New(rand.NewSource(42)) //nolint:gosec
	if _, err := rng.Read(buf); err != nil {
		t.Fatal(err)
	}

	return buf
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		cmd  uint32
		size int
	}{
		{"a082", nvctl.CmdHostVgpuDeviceGetVgpuTypeInfo, profile.SizeHostVgpuDeviceTypeInfo},
		{"a081", nvctl.CmdVgpuConfigGetVgpuTypeInfo, profile.SizeVgpuConfigTypeInfo},
	} {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			orig := randomParams(t, tc.size)
			buf := make([]byte, tc.size)
			copy(buf, orig)

			rec, err := profile.Decode(buf, tc.cmd)
			if err != nil {
				t.Fatal(err)
			}

			if err := profile.Encode(rec, buf); err != nil {
				t.Fatal(err)
			}

			if !bytes.Equal(buf, orig) {
				t.Fatal("decode/encode with no mutation must be byte-identical")
			}
		})
	}
}

func TestDecodeTruncated(t *testing.T) {
	t.Parallel()

	buf := make([]byte, profile.SizeHostVgpuDeviceTypeInfo-1)

	_, err := profile.Decode(buf, nvctl.CmdHostVgpuDeviceGetVgpuTypeInfo)
	if !errors.Is(err, profile.ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
}

func TestDecodeUnknownCommand(t *testing.T) {
	t.Parallel()

	_, err := profile.Decode(make([]byte, 0x2000), 0xdeadbeef)
	if !errors.Is(err, profile.ErrUnknownCommand) {
		t.Fatalf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	t.Parallel()

	buf := randomParams(t, profile.SizeVgpuConfigTypeInfo)

	rec, err := profile.Decode(buf, nvctl.CmdVgpuConfigGetVgpuTypeInfo)
	if err != nil {
		t.Fatal(err)
	}

	before := make([]byte, len(buf))
	copy(before, buf)

	rec.NumHeads = 99
	if err := rec.SetVgpuName("mutated"); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(buf, before) {
		t.Fatal("record mutation must not touch the source buffer before Encode")
	}
}

func TestFieldMutationIsInPlace(t *testing.T) {
	t.Parallel()

	buf := randomParams(t, profile.SizeHostVgpuDeviceTypeInfo)
	// num_heads lives at offset 392 in the A082 layout.
	binary.LittleEndian.PutUint32(buf[392:], 2)

	rec, err := profile.Decode(buf, nvctl.CmdHostVgpuDeviceGetVgpuTypeInfo)
	if err != nil {
		t.Fatal(err)
	}

	if rec.NumHeads != 2 {
		t.Fatalf("NumHeads = %d, want 2", rec.NumHeads)
	}

	orig := make([]byte, len(buf))
	copy(orig, buf)

	rec.NumHeads = 4

	if err := profile.Encode(rec, buf); err != nil {
		t.Fatal(err)
	}

	if got := binary.LittleEndian.Uint32(buf[392:]); got != 4 {
		t.Fatalf("num_heads slot = %d, want 4", got)
	}

	// Only the one slot may differ.
	binary.LittleEndian.PutUint32(orig[392:], 4)
	if !bytes.Equal(buf, orig) {
		t.Fatal("bytes outside the mutated slot changed")
	}
}

func TestEncodeShortBuffer(t *testing.T) {
	t.Parallel()

	buf := randomParams(t, profile.SizeHostVgpuDeviceTypeInfo)

	rec, err := profile.Decode(buf, nvctl.CmdHostVgpuDeviceGetVgpuTypeInfo)
	if err != nil {
		t.Fatal(err)
	}

	err = profile.Encode(rec, buf[:16])
	if !errors.Is(err, profile.ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
}

func TestStringSlots(t *testing.T) {
	t.Parallel()

	buf := make([]byte, profile.SizeVgpuConfigTypeInfo)
	copy(buf[12:], "GRID P40-2Q\x00")

	rec, err := profile.Decode(buf, nvctl.CmdVgpuConfigGetVgpuTypeInfo)
	if err != nil {
		t.Fatal(err)
	}

	if got := rec.VgpuName(); got != "GRID P40-2Q" {
		t.Fatalf("VgpuName = %q", got)
	}

	if err := rec.SetVgpuName("GRID P40-4Q"); err != nil {
		t.Fatal(err)
	}

	if err := profile.Encode(rec, buf); err != nil {
		t.Fatal(err)
	}

	if got := string(buf[12 : 12+12]); got != "GRID P40-4Q\x00" {
		t.Fatalf("name slot = %q", got)
	}

	// The A081 name slot is 32 bytes; 31 characters fit, 32 do not.
	long := string(bytes.Repeat([]byte{'x'}, 32))
	if err := rec.SetVgpuName(long); !errors.Is(err, profile.ErrStringTooLong) {
		t.Fatalf("err = %v, want ErrStringTooLong", err)
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	buf := make([]byte, profile.SizeHostVgpuDeviceTypeInfo)
	binary.LittleEndian.PutUint32(buf[0:], 55)

	rec, err := profile.Decode(buf, nvctl.CmdHostVgpuDeviceGetVgpuTypeInfo)
	if err != nil {
		t.Fatal(err)
	}

	if got := rec.Key(); got != "nvidia-55" {
		t.Fatalf("Key = %q, want %q", got, "nvidia-55")
	}
}

func TestBearing(t *testing.T) {
	t.Parallel()

	if !profile.Bearing(nvctl.CmdHostVgpuDeviceGetVgpuTypeInfo) ||
		!profile.Bearing(nvctl.CmdVgpuConfigGetVgpuTypeInfo) {
		t.Fatal("profile-bearing commands not recognized")
	}

	if profile.Bearing(nvctl.CmdBusGetPCIInfo) {
		t.Fatal("PCI info is not profile-bearing")
	}
}
