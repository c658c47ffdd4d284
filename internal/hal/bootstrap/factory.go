// Package bootstrap wires the hal.Backend interfaces to a concrete
// implementation: the simulator or the physical backend, selected by
// configured or auto-detected environment (spec.md §4.A "Factory"). It is
// a separate package from internal/hal so the leaf interfaces in hal stay
// free of any dependency on the concrete backends, while this package can
// depend on both.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/yusuftiryaki/robot-sub000/internal/hal"
	"github.com/yusuftiryaki/robot-sub000/internal/hal/physical"
	"github.com/yusuftiryaki/robot-sub000/internal/hal/simulator"
	"github.com/yusuftiryaki/robot-sub000/internal/rlog"
)

// Factory selects the concrete Backend implementation from a configured or
// auto-detected hal.BackendKind. Selection is deterministic: "no mixed
// backends are permitted in a single process run" (spec.md §4.A).
type Factory struct {
	kind       hal.BackendKind
	simConfig  simulator.Config
	pinConfig  physical.PinConfig
	withCamera bool
}

// NewFactory builds a Factory. kind == hal.BackendAuto defers to
// hal.DetectEnvironment at Build time.
func NewFactory(kind hal.BackendKind, simConfig simulator.Config, pinConfig physical.PinConfig, withCamera bool) *Factory {
	return &Factory{kind: kind, simConfig: simConfig, pinConfig: pinConfig, withCamera: withCamera}
}

// Build resolves the backend kind and constructs the corresponding
// Backend, starting every device. A physical-backend failure degrades to
// the simulator only if the caller explicitly requested BackendAuto — an
// explicit BackendPhysical request that fails is returned as an error
// (spec.md §7 "HAL init failure").
func (f *Factory) Build(ctx context.Context) (*hal.Backend, hal.BackendKind, error) {
	kind := f.kind
	if kind == hal.BackendAuto {
		kind = hal.DetectEnvironment()
	}

	log := rlog.Named("hal.factory")
	log.Infow("selected hal backend", "kind", kind.String())

	switch kind {
	case hal.BackendSimulation:
		state := simulator.NewState(f.simConfig)
		backend := simulator.NewBackend(state, f.withCamera)
		simulator.StartAll(ctx, backend)
		return backend, hal.BackendSimulation, nil
	case hal.BackendPhysical:
		backend, err := physical.Build(f.pinConfig)
		if err != nil {
			if f.kind == hal.BackendAuto {
				log.Warnw("physical backend init failed, falling back to simulation", "error", err)
				state := simulator.NewState(f.simConfig)
				fallback := simulator.NewBackend(state, f.withCamera)
				simulator.StartAll(ctx, fallback)
				return fallback, hal.BackendSimulation, nil
			}
			return nil, hal.BackendPhysical, fmt.Errorf("hal: physical backend init failed: %w", err)
		}
		for _, d := range []hal.Device{backend.IMU, backend.GPS, backend.Power, backend.Bumper, backend.Encoder, backend.EStop, backend.Motor} {
			d.Start(ctx)
		}
		return backend, hal.BackendPhysical, nil
	default:
		return nil, kind, fmt.Errorf("hal: unknown backend kind %v", kind)
	}
}
