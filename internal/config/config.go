// Package config loads the robot's textual key-value configuration tree
// (spec.md §6) via spf13/viper, grounded on niceyeti-tabular's FromYaml
// pattern (tabular/reinforcement/learning.go: viper.New(), SetConfigType,
// Unmarshal). Calibration results are written back as YAML through
// gopkg.in/yaml.v3 after the previous file is moved to a .bak backup, and a
// fsnotify-backed Watcher
// supports reload-without-restart, grounded on 99souls-ariadne's
// HotReloadSystem.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Robot holds the `robot` section.
type Robot struct {
	Name string `mapstructure:"name" yaml:"name"`
}

// Navigation holds the `navigation` section (spec.md §6).
type Navigation struct {
	WheelDiameter float64 `mapstructure:"wheel_diameter" yaml:"wheel_diameter"`
	WheelBase     float64 `mapstructure:"wheel_base" yaml:"wheel_base"`
	PathPlanning  struct {
		GridResolution  float64 `mapstructure:"grid_resolution" yaml:"grid_resolution"`
		ObstaclePadding float64 `mapstructure:"obstacle_padding" yaml:"obstacle_padding"`
	} `mapstructure:"path_planning" yaml:"path_planning"`
}

// Missions holds the `missions` section.
type Missions struct {
	Mowing struct {
		Overlap    float64 `mapstructure:"overlap" yaml:"overlap"`
		Speed      float64 `mapstructure:"speed" yaml:"speed"`
		BrushWidth float64 `mapstructure:"brush_width" yaml:"brush_width"`
	} `mapstructure:"mowing" yaml:"mowing"`
	Charging struct {
		BatteryLowThreshold  float64 `mapstructure:"battery_low_threshold" yaml:"battery_low_threshold"`
		BatteryFullThreshold float64 `mapstructure:"battery_full_threshold" yaml:"battery_full_threshold"`
		DockGPS              struct {
			Latitude      float64 `mapstructure:"latitude" yaml:"latitude"`
			Longitude     float64 `mapstructure:"longitude" yaml:"longitude"`
			AccuracyRadius float64 `mapstructure:"accuracy_radius" yaml:"accuracy_radius"`
		} `mapstructure:"dock_gps" yaml:"dock_gps"`
	} `mapstructure:"charging" yaml:"charging"`
}

// Safety holds the `safety` section.
type Safety struct {
	MaxTiltAngle      float64 `mapstructure:"max_tilt_angle" yaml:"max_tilt_angle"`
	ObstacleDistance  float64 `mapstructure:"obstacle_distance" yaml:"obstacle_distance"`
	MinBatteryVoltage float64 `mapstructure:"min_battery_voltage" yaml:"min_battery_voltage"`
	WatchdogTimeout   float64 `mapstructure:"watchdog_timeout" yaml:"watchdog_timeout"`
	EmergencyStopPin  int     `mapstructure:"emergency_stop_pin" yaml:"emergency_stop_pin"`
}

// Charging holds the `charging` section (AprilTag + docking tunables).
type Charging struct {
	ApriltagDetectionRange float64 `mapstructure:"apriltag_detection_range" yaml:"apriltag_detection_range"`
	TagFamily              string  `mapstructure:"tag_family" yaml:"tag_family"`
	TagID                  int     `mapstructure:"tag_id" yaml:"tag_id"`
	TagSize                float64 `mapstructure:"tag_size" yaml:"tag_size"`
}

// Sensors holds the `sensors` section.
type Sensors struct {
	Camera struct {
		Width  int    `mapstructure:"width" yaml:"width"`
		Height int    `mapstructure:"height" yaml:"height"`
		FPS    int    `mapstructure:"fps" yaml:"fps"`
		Type   string `mapstructure:"type" yaml:"type"` // auto | simulation | hardware
	} `mapstructure:"camera" yaml:"camera"`
}

// Motors holds the `motors` section.
type Motors struct {
	Type string            `mapstructure:"type" yaml:"type"` // simulation | hardware
	Pins map[string]string `mapstructure:"pins" yaml:"pins"`
}

// WebInterface holds the `web_interface` section (transport is out of
// scope for the core; only the listen tunables are carried).
type WebInterface struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Address string `mapstructure:"address" yaml:"address"`
}

// Logging holds the `logging` section.
type Logging struct {
	Development bool   `mapstructure:"development" yaml:"development"`
	Level       string `mapstructure:"level" yaml:"level"`
}

// LatLon is one boundary polygon vertex.
type LatLon struct {
	Latitude  float64 `mapstructure:"latitude" yaml:"latitude"`
	Longitude float64 `mapstructure:"longitude" yaml:"longitude"`
}

// Config is the full configuration tree (spec.md §6).
type Config struct {
	Robot               Robot        `mapstructure:"robot" yaml:"robot"`
	Navigation          Navigation   `mapstructure:"navigation" yaml:"navigation"`
	Missions            Missions     `mapstructure:"missions" yaml:"missions"`
	Safety              Safety       `mapstructure:"safety" yaml:"safety"`
	Charging            Charging     `mapstructure:"charging" yaml:"charging"`
	Sensors             Sensors      `mapstructure:"sensors" yaml:"sensors"`
	MotorsCfg           Motors       `mapstructure:"motors" yaml:"motors"`
	WebInterface        WebInterface `mapstructure:"web_interface" yaml:"web_interface"`
	LoggingCfg          Logging      `mapstructure:"logging" yaml:"logging"`
	BoundaryCoordinates []LatLon     `mapstructure:"boundary_coordinates" yaml:"boundary_coordinates"`
}

// Default returns every documented default from spec.md §4/§6.
func Default() Config {
	var c Config
	c.Navigation.WheelDiameter = 0.13
	c.Navigation.WheelBase = 0.3
	c.Navigation.PathPlanning.GridResolution = 0.1
	c.Navigation.PathPlanning.ObstaclePadding = 0.15
	c.Missions.Mowing.Overlap = 0.02
	c.Missions.Mowing.Speed = 0.3
	c.Missions.Mowing.BrushWidth = 0.27
	c.Missions.Charging.BatteryLowThreshold = 30
	c.Missions.Charging.BatteryFullThreshold = 95
	c.Safety.MaxTiltAngle = 25
	c.Safety.ObstacleDistance = 0.5
	c.Safety.MinBatteryVoltage = 10.5
	c.Safety.WatchdogTimeout = 5
	c.Charging.ApriltagDetectionRange = 0.5
	c.Charging.TagFamily = "tag36h11"
	c.Charging.TagSize = 0.08
	c.Sensors.Camera.Width = 640
	c.Sensors.Camera.Height = 480
	c.Sensors.Camera.FPS = 30
	c.Sensors.Camera.Type = "auto"
	c.MotorsCfg.Type = "simulation"
	return c
}

// Load reads path via viper and unmarshals it into Config, grounded on
// niceyeti-tabular's FromYaml (viper.New / SetConfigType("yaml") /
// Unmarshal).
func Load(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))

	cfg := Default()
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := vp.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveCalibration writes cfg back to path as YAML, first moving any
// existing file to a ".bak" sibling (spec.md §6 "an atomic backup of the
// previous file"), used for calibration persistence (camera intrinsics,
// encoder pulses-per-meter, wheelbase correction).
func SaveCalibration(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			return fmt.Errorf("config: backup %s: %w", path, err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("config: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("config: rename temp file: %w", err)
	}
	return nil
}
