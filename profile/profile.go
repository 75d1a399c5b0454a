// Package profile encodes and decodes the vGPU type info records that
// the driver returns for profile queries. Two generations of the record
// exist: the legacy host vGPU device form (A082) and the vGPU config
// form introduced with vGPU 15.0 (A081). Both are fixed little-endian
// layouts; everything outside the recognized field slots is carried
// through decode and encode untouched.
package profile

import (
	"encoding/binary"
	"fmt"

	"github.com/vgpu-unlock/govgpu/nvctl"
)

// Parameter area sizes of the two profile-bearing commands.
const (
	SizeHostVgpuDeviceTypeInfo = 0x918
	SizeVgpuConfigTypeInfo     = 0x1360
)

// layout holds the byte offsets of the recognized field slots within the
// parameter area of one profile-bearing command.
type layout struct {
	size    int
	nameLen int // slot length of vgpuName and vgpuClass

	vgpuType            int
	vgpuName            int
	vgpuClass           int
	vgpuSignature       int
	license             int
	maxInstance         int
	numHeads            int
	maxResolutionX      int
	maxResolutionY      int
	maxPixels           int
	frlConfig           int
	cudaEnabled         int
	eccSupported        int
	gpuInstanceSize     int
	multiVgpuSupported  int
	vdevID              int
	pdevID              int
	fbLength            int
	mappableVideoSize   int
	fbReservation       int
	encoderCapacity     int
	bar1Length          int
	frlEnable           int
	adapterName         int
	shortGPUName        int
	licensedProductName int
}

const (
	signatureLen = 128
	licenseLen   = 128
	adapterLen   = 64
	shortNameLen = 64
	productLen   = 128
)

// NVA082_CTRL_CMD_HOST_VGPU_DEVICE_GET_VGPU_TYPE_INFO_PARAMS. The record
// starts at offset 0 and uses 64-byte name slots.
var layoutA082 = layout{
	size:    SizeHostVgpuDeviceTypeInfo,
	nameLen: 64,

	vgpuType:            0,
	vgpuName:            4,
	vgpuClass:           68,
	vgpuSignature:       132,
	license:             260,
	maxInstance:         388,
	numHeads:            392,
	maxResolutionX:      396,
	maxResolutionY:      400,
	maxPixels:           404,
	frlConfig:           408,
	cudaEnabled:         412,
	eccSupported:        416,
	gpuInstanceSize:     420,
	multiVgpuSupported:  424,
	vdevID:              432,
	pdevID:              440,
	fbLength:            448,
	mappableVideoSize:   456,
	fbReservation:       464,
	encoderCapacity:     472,
	bar1Length:          480,
	frlEnable:           488,
	adapterName:         492,
	shortGPUName:        684,
	licensedProductName: 748,
}

// NVA081_CTRL_VGPU_CONFIG_GET_VGPU_TYPE_INFO_PARAMS. The record is
// preceded by the requested vGPU type and four bytes of padding, so every
// offset is shifted by 8; name slots shrink to 32 bytes and a few
// 64-bit fields (profile size, GSP heap size) appear mid-record.
var layoutA081 = layout{
	size:    SizeVgpuConfigTypeInfo,
	nameLen: 32,

	vgpuType:            8,
	vgpuName:            12,
	vgpuClass:           44,
	vgpuSignature:       76,
	license:             204,
	maxInstance:         332,
	numHeads:            336,
	maxResolutionX:      340,
	maxResolutionY:      344,
	maxPixels:           348,
	frlConfig:           352,
	cudaEnabled:         356,
	eccSupported:        360,
	gpuInstanceSize:     364,
	multiVgpuSupported:  368,
	vdevID:              376,
	pdevID:              384,
	fbLength:            400,
	fbReservation:       416,
	mappableVideoSize:   424,
	encoderCapacity:     432,
	bar1Length:          440,
	frlEnable:           448,
	adapterName:         452,
	shortGPUName:        644,
	licensedProductName: 708,
}

var layouts = map[uint32]*layout{
	nvctl.CmdHostVgpuDeviceGetVgpuTypeInfo: &layoutA082,
	nvctl.CmdVgpuConfigGetVgpuTypeInfo:     &layoutA081,
}

// Bearing reports whether cmd returns a profile record this package can
// decode.
func Bearing(cmd uint32) bool {
	_, ok := layouts[cmd]

	return ok
}

// Record is one decoded profile record. Integer fields are plain values;
// string fields stay inside the raw extent and are reached through the
// accessor methods so that unused slot bytes survive a round trip.
type Record struct {
	cmd uint32
	lay *layout
	raw []byte

	VgpuType           uint32
	MaxInstance        uint32
	NumHeads           uint32
	MaxResolutionX     uint32
	MaxResolutionY     uint32
	MaxPixels          uint32
	FRLConfig          uint32
	CudaEnabled        uint32
	ECCSupported       uint32
	GPUInstanceSize    uint32
	MultiVgpuSupported uint32
	VDevID             uint64
	PDevID             uint64
	FBLength           uint64
	MappableVideoSize  uint64
	FBReservation      uint64
	EncoderCapacity    uint32
	BAR1Length         uint64
	FRLEnable          uint32
}

// Decode copies the recognized fields of params out into a Record. The
// record owns a private copy of the full extent, so later mutation never
// touches the caller's buffer until Encode.
func Decode(params []byte, cmd uint32) (*Record, error) {
	lay, ok := layouts[cmd]
	if !ok {
		return nil, fmt.Errorf("cmd %#x: %w", cmd, ErrUnknownCommand)
	}

	if len(params) < lay.size {
		return nil, fmt.Errorf("cmd %#x: %d bytes, want %d: %w",
			cmd, len(params), lay.size, ErrTruncated)
	}

	raw := make([]byte, lay.size)
	copy(raw, params)

	le := binary.LittleEndian

	return &Record{
		cmd: cmd,
		lay: lay,
		raw: raw,

		VgpuType:           le.Uint32(raw[lay.vgpuType:]),
		MaxInstance:        le.Uint32(raw[lay.maxInstance:]),
		NumHeads:           le.Uint32(raw[lay.numHeads:]),
		MaxResolutionX:     le.Uint32(raw[lay.maxResolutionX:]),
		MaxResolutionY:     le.Uint32(raw[lay.maxResolutionY:]),
		MaxPixels:          le.Uint32(raw[lay.maxPixels:]),
		FRLConfig:          le.Uint32(raw[lay.frlConfig:]),
		CudaEnabled:        le.Uint32(raw[lay.cudaEnabled:]),
		ECCSupported:       le.Uint32(raw[lay.eccSupported:]),
		GPUInstanceSize:    le.Uint32(raw[lay.gpuInstanceSize:]),
		MultiVgpuSupported: le.Uint32(raw[lay.multiVgpuSupported:]),
		VDevID:             le.Uint64(raw[lay.vdevID:]),
		PDevID:             le.Uint64(raw[lay.pdevID:]),
		FBLength:           le.Uint64(raw[lay.fbLength:]),
		MappableVideoSize:  le.Uint64(raw[lay.mappableVideoSize:]),
		FBReservation:      le.Uint64(raw[lay.fbReservation:]),
		EncoderCapacity:    le.Uint32(raw[lay.encoderCapacity:]),
		BAR1Length:         le.Uint64(raw[lay.bar1Length:]),
		FRLEnable:          le.Uint32(raw[lay.frlEnable:]),
	}, nil
}

// Encode writes the record back into params. Only the recognized field
// slots change relative to what Decode saw; the extent never grows or
// shrinks.
func Encode(rec *Record, params []byte) error {
	if len(params) < len(rec.raw) {
		return fmt.Errorf("cmd %#x: %d bytes, want %d: %w",
			rec.cmd, len(params), len(rec.raw), ErrTruncated)
	}

	lay := rec.lay
	le := binary.LittleEndian

	le.PutUint32(rec.raw[lay.vgpuType:], rec.VgpuType)
	le.PutUint32(rec.raw[lay.maxInstance:], rec.MaxInstance)
	le.PutUint32(rec.raw[lay.numHeads:], rec.NumHeads)
	le.PutUint32(rec.raw[lay.maxResolutionX:], rec.MaxResolutionX)
	le.PutUint32(rec.raw[lay.maxResolutionY:], rec.MaxResolutionY)
	le.PutUint32(rec.raw[lay.maxPixels:], rec.MaxPixels)
	le.PutUint32(rec.raw[lay.frlConfig:], rec.FRLConfig)
	le.PutUint32(rec.raw[lay.cudaEnabled:], rec.CudaEnabled)
	le.PutUint32(rec.raw[lay.eccSupported:], rec.ECCSupported)
	le.PutUint32(rec.raw[lay.gpuInstanceSize:], rec.GPUInstanceSize)
	le.PutUint32(rec.raw[lay.multiVgpuSupported:], rec.MultiVgpuSupported)
	le.PutUint64(rec.raw[lay.vdevID:], rec.VDevID)
	le.PutUint64(rec.raw[lay.pdevID:], rec.PDevID)
	le.PutUint64(rec.raw[lay.fbLength:], rec.FBLength)
	le.PutUint64(rec.raw[lay.mappableVideoSize:], rec.MappableVideoSize)
	le.PutUint64(rec.raw[lay.fbReservation:], rec.FBReservation)
	le.PutUint32(rec.raw[lay.encoderCapacity:], rec.EncoderCapacity)
	le.PutUint64(rec.raw[lay.bar1Length:], rec.BAR1Length)
	le.PutUint32(rec.raw[lay.frlEnable:], rec.FRLEnable)

	copy(params, rec.raw)

	return nil
}

// Cmd returns the command code the record was decoded for.
func (r *Record) Cmd() uint32 { return r.cmd }

// Size returns the encoded length of the record's parameter area.
func (r *Record) Size() int { return len(r.raw) }

// Key returns the profile identifier the override table is keyed by.
func (r *Record) Key() string {
	return fmt.Sprintf("nvidia-%d", r.VgpuType)
}
