package telemetry

import (
	"testing"

	"go.viam.com/test"
)

func TestNewMetricsRegistersWithoutError(t *testing.T) {
	m := NewMetrics()
	m.BatteryPercent.Set(80)
	m.StateTransitions.WithLabelValues("MOWING").Inc()

	families, err := m.Registry().Gather()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(families), test.ShouldBeGreaterThan, 0)
}
