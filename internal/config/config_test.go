package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func writeTestYAML(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "robot.yaml")
	body := `
robot:
  name: mower-01
navigation:
  wheel_diameter: 0.15
  wheel_base: 0.32
safety:
  max_tilt_angle: 30
missions:
  charging:
    battery_low_threshold: 25
boundary_coordinates:
  - latitude: 40.1
    longitude: -74.1
  - latitude: 40.2
    longitude: -74.2
`
	test.That(t, os.WriteFile(path, []byte(body), 0o644), test.ShouldBeNil)
	return path
}

func TestDefaultPopulatesDocumentedDefaults(t *testing.T) {
	c := Default()
	test.That(t, c.Navigation.WheelDiameter, test.ShouldEqual, 0.13)
	test.That(t, c.Safety.MaxTiltAngle, test.ShouldEqual, 25.0)
	test.That(t, c.Missions.Charging.BatteryLowThreshold, test.ShouldEqual, 30.0)
	test.That(t, c.MotorsCfg.Type, test.ShouldEqual, "simulation")
}

func TestLoadOverridesDefaultsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestYAML(t, dir)

	cfg, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Robot.Name, test.ShouldEqual, "mower-01")
	test.That(t, cfg.Navigation.WheelDiameter, test.ShouldEqual, 0.15)
	test.That(t, cfg.Safety.MaxTiltAngle, test.ShouldEqual, 30.0)
	test.That(t, cfg.Missions.Charging.BatteryLowThreshold, test.ShouldEqual, 25.0)
	test.That(t, len(cfg.BoundaryCoordinates), test.ShouldEqual, 2)

	// Fields absent from the file keep their defaults.
	test.That(t, cfg.Sensors.Camera.Width, test.ShouldEqual, 640)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSaveWritesBackupBeforeOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := writeTestYAML(t, dir)

	cfg, err := Load(path)
	test.That(t, err, test.ShouldBeNil)

	cfg.Navigation.WheelBase = 0.4
	test.That(t, SaveCalibration(path, cfg), test.ShouldBeNil)

	_, err = os.Stat(path + ".bak")
	test.That(t, err, test.ShouldBeNil)

	reloaded, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, reloaded.Navigation.WheelBase, test.ShouldEqual, 0.4)
}

func TestSaveWithoutExistingFileSkipsBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calibration.yaml")
	cfg := Default()

	test.That(t, SaveCalibration(path, &cfg), test.ShouldBeNil)
	_, err := os.Stat(path + ".bak")
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
}
