// Package intercept sits between the vGPU management daemons and the
// kernel driver. Every ioctl the host process issues is forwarded to the
// genuine entry point first; recognized RM control responses are then
// rewritten in place according to the loaded configuration. Anything the
// package does not understand, and any internal failure, results in the
// call being returned exactly as the driver produced it.
package intercept

import (
	"sync"
	"unsafe"

	"github.com/sirupsen/logrus"
	"github.com/vgpu-unlock/govgpu/config"
	"github.com/vgpu-unlock/govgpu/nvctl"
	"github.com/vgpu-unlock/govgpu/override"
	"github.com/vgpu-unlock/govgpu/probe"
	"github.com/vgpu-unlock/govgpu/profile"
)

// Forward is the signature of the genuine device-control entry point.
type Forward func(fd int, request uint64, argp unsafe.Pointer) int

// Options wires an Interceptor. Zero values select the production
// behavior: the genuine libc ioctl and the on-disk configuration.
type Options struct {
	// Forward replaces the genuine entry point.
	Forward Forward
	// Global replaces the loaded global options document.
	Global *config.Global
	// Overrides replaces the loaded profile override document.
	Overrides *config.Overrides
}

// Interceptor carries the process-wide hook state: the resolved entry
// point and the loaded configuration, initialized exactly once on the
// first intercepted call and immutable afterwards. Only the last-seen
// mdev UUID mutates after initialization, under its own lock.
type Interceptor struct {
	opts Options

	once     sync.Once
	disabled bool

	forward   Forward
	global    config.Global
	overrides config.Overrides

	mu       sync.Mutex
	lastMdev string
}

func New(opts Options) *Interceptor {
	return &Interceptor{opts: opts}
}

var std = New(Options{})

// Intercept dispatches one call through the default interceptor. This is
// what the exported ioctl symbol calls.
func Intercept(fd int, request uint64, argp unsafe.Pointer) int {
	return std.Intercept(fd, request, argp)
}

// init performs the one-time uninitialized -> active transition. Any
// failure leaves the interceptor disabled: calls still reach the driver,
// no response is ever rewritten.
func (ic *Interceptor) init() {
	ic.forward = ic.opts.Forward
	if ic.forward == nil {
		fwd, err := resolveIoctl()
		if err != nil {
			logrus.Errorf("resolving genuine ioctl: %v", err)

			ic.forward = syscallForward
			ic.disabled = true

			return
		}

		ic.forward = fwd
	}

	if ic.opts.Global != nil {
		ic.global = *ic.opts.Global
	} else {
		g, err := config.LoadGlobal(config.GlobalPath())
		if err != nil {
			logrus.Errorf("loading global config: %v", err)

			ic.disabled = true

			return
		}

		ic.global = g
	}

	if ic.opts.Overrides != nil {
		ic.overrides = *ic.opts.Overrides
	} else {
		o, err := config.LoadOverrides(config.OverridesPath())
		if err != nil {
			logrus.Errorf("loading profile overrides: %v", err)

			ic.disabled = true

			return
		}

		ic.overrides = o
	}

	if version, err := probe.DriverVersion(); err == nil {
		logrus.Debugf("host driver %s", version)
	}

	logrus.Debugf("active: unlock=%v unlock_migration=%v, %d profile and %d mdev overrides",
		ic.global.Unlock, ic.global.UnlockMigration,
		len(ic.overrides.Profile), len(ic.overrides.MDev))
}

// Intercept forwards the call and, for successful RM control responses
// it recognizes, rewrites the response buffer before handing the
// original result back to the caller.
func (ic *Interceptor) Intercept(fd int, request uint64, argp unsafe.Pointer) int {
	ic.once.Do(ic.init)

	ret := ic.forward(fd, request, argp)

	if ic.disabled || ret < 0 || request != nvctl.EscRMControl || argp == nil {
		return ret
	}

	env := nvctl.EnvelopeFromPointer(argp)
	if env.Status == nvctl.StatusBusyRetry {
		// The daemon retries these on its own.
		return ret
	}

	params := env.ParamsBytes()

	if ic.global.Unlock {
		switch env.Cmd {
		case nvctl.CmdGetVirtualizationMode:
			spoofVirtualizationMode(params)
		case nvctl.CmdBusGetPCIInfo:
			spoofPCIInfo(params)
		}
	}

	if ic.global.UnlockMigration && env.Cmd == nvctl.CmdVgpuConfigGetMigrationCap {
		if err := override.UnlockMigrationCap(params); err != nil {
			logrus.Errorf("migration cap: %v", err)
		}
	}

	if env.Status == nvctl.StatusOK {
		switch {
		case env.Cmd == nvctl.CmdVgpuGetStartData:
			ic.recordStartData(params)
		case profile.Bearing(env.Cmd):
			ic.applyOverrides(env.Cmd, params)
		}
	}

	ic.cleanupStatus(env)

	return ret
}

// recordStartData remembers the mdev UUID of the starting vGPU so the
// next profile query can be matched against the mdev override table.
func (ic *Interceptor) recordStartData(params []byte) {
	sd, err := nvctl.StartDataFromBytes(params)
	if err != nil {
		logrus.Errorf("start data: %v", err)

		return
	}

	uuid := sd.MdevUUID.String()
	logrus.Debugf("vGPU start, mdev %s", uuid)

	ic.mu.Lock()
	ic.lastMdev = uuid
	ic.mu.Unlock()
}

// takeLastMdev returns and clears the remembered mdev UUID.
func (ic *Interceptor) takeLastMdev() string {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	uuid := ic.lastMdev
	ic.lastMdev = ""

	return uuid
}

// applyOverrides decodes a profile-bearing response, merges the matching
// override entries over it, and encodes the result back into the same
// buffer. Every failure leaves the buffer exactly as the driver wrote
// it.
func (ic *Interceptor) applyOverrides(cmd uint32, params []byte) {
	rec, err := profile.Decode(params, cmd)
	if err != nil {
		logrus.Errorf("decoding profile record: %v", err)

		return
	}

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.Tracef("cmd %#x response:\n%s", cmd, hexDump(params[:rec.Size()]))
	}

	applied := false

	if ov, ok := ic.overrides.Profile[rec.Key()]; ok {
		logrus.Infof("applying profile %s overrides", rec.Key())

		if err := override.Apply(rec, &ov); err != nil {
			logrus.Errorf("profile %s: %v", rec.Key(), err)

			return
		}

		applied = true
	}

	if mdev := ic.takeLastMdev(); mdev != "" {
		if ov, ok := ic.overrides.MDev[mdev]; ok {
			logrus.Infof("applying mdev %s overrides", mdev)

			if err := override.Apply(rec, &ov); err != nil {
				logrus.Errorf("mdev %s: %v", mdev, err)

				return
			}

			applied = true
		}
	}

	if !applied {
		return
	}

	if err := profile.Encode(rec, params); err != nil {
		logrus.Errorf("encoding profile record: %v", err)
	}
}

// cleanupStatus rewrites the RM status for a couple of commands whose
// failure modes the daemons handle badly: the second type info query and
// the ZBC clear table read are reported as successes, and an
// unsupported inforom read becomes "object not found".
func (ic *Interceptor) cleanupStatus(env *nvctl.Envelope) {
	if env.Status != nvctl.StatusOK {
		switch env.Cmd {
		case nvctl.CmdHostVgpuDeviceGetVgpuTypeInfo2, nvctl.CmdGetZBCClearTable:
			env.Status = nvctl.StatusOK
		default:
			logrus.Debugf("cmd %#x failed with status %#x", env.Cmd, env.Status)
		}
	}

	if env.Cmd == nvctl.CmdGetInforomObjectVersion && env.Status == nvctl.StatusNotSupported {
		env.Status = nvctl.StatusObjectNotFound
	}
}
