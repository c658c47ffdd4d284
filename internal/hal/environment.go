package hal

import (
	"os"
	"strings"
)

// BackendKind names which concrete backend a Factory selected.
type BackendKind int

const (
	BackendAuto BackendKind = iota
	BackendSimulation
	BackendPhysical
)

func (k BackendKind) String() string {
	switch k {
	case BackendSimulation:
		return "simulation"
	case BackendPhysical:
		return "hardware"
	default:
		return "auto"
	}
}

// deviceModelPath is the file the real firmware checks to detect a
// Raspberry Pi, grounded on original_source/src/core/environment_manager.py's
// environment auto-detection (spec.md SPEC_FULL.md §3 "Supplemented
// features").
const deviceModelPath = "/proc/device-tree/model"

// requiredBusNodes are device nodes that must exist for the physical
// backend to be viable at all.
var requiredBusNodes = []string{"/dev/i2c-1", "/dev/gpiochip0"}

// DetectEnvironment inspects the running machine and returns the backend
// that should be used when configuration says "auto". The selection is a
// pure function of the environment, so Factory.Build's choice is deterministic
// (spec.md §4.A "no mixed backends are permitted in a single process run").
func DetectEnvironment() BackendKind {
	data, err := os.ReadFile(deviceModelPath)
	if err != nil || !strings.Contains(string(data), "Raspberry Pi") {
		return BackendSimulation
	}
	for _, node := range requiredBusNodes {
		if _, err := os.Stat(node); err != nil {
			return BackendSimulation
		}
	}
	return BackendPhysical
}
