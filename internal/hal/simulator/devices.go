package simulator

import (
	"context"
	"math"
	"time"

	"go.uber.org/atomic"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// device embeds the Start/Stop/Healthy bookkeeping shared by every
// simulated capability.
type device struct {
	healthy atomic.Bool
}

func (d *device) Start(ctx context.Context) bool {
	d.healthy.Store(true)
	return true
}

func (d *device) Stop() {
	d.healthy.Store(false)
}

func (d *device) Healthy() bool {
	return d.healthy.Load()
}

// IMU reports gravity + speed-proportional acceleration + sinusoidal noise
// (spec.md §4.A).
type IMU struct {
	device
	state *State
}

func NewIMU(s *State) *IMU { return &IMU{state: s} }

func (m *IMU) Read(ctx context.Context) model.IMUReading {
	if !m.Healthy() {
		return model.IMUReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "imu not started"}}
	}
	m.state.mu.RLock()
	v := m.state.commandedV
	w := m.state.commandedW
	t := float64(time.Now().UnixNano()) / 1e9
	m.state.mu.RUnlock()

	noise := 0.02 * math.Sin(t*7)
	roll := 0.0
	pitch := 0.0
	if v != 0 || w != 0 {
		roll = 0.01 * math.Sin(t*3)
		pitch = 0.015 * math.Cos(t*2)
	}

	return model.IMUReading{
		SensorValidity: model.SensorValidity{Valid: true},
		Roll:           roll,
		Pitch:          pitch,
		Yaw:            m.state.Pose().Theta,
		AccelX:         v*0.5 + noise,
		AccelY:         noise,
		AccelZ:         9.81,
		GyroX:          0,
		GyroY:          0,
		GyroZ:          w,
	}
}

// GPS integrates commanded velocity into (lat, lon) via flat-earth
// conversion from the fixed reference established at construction
// (spec.md §4.A).
type GPS struct {
	device
	state *State
}

func NewGPS(s *State) *GPS { return &GPS{state: s} }

func (g *GPS) Read(ctx context.Context) model.GPSReading {
	if !g.Healthy() {
		return model.GPSReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "gps not started"}}
	}
	g.state.mu.Lock()
	if !g.state.haveOrigin {
		g.state.projector = model.NewGeoProjector(g.state.originLat, g.state.originLon)
		g.state.haveOrigin = true
	}
	projector := g.state.projector
	g.state.mu.Unlock()

	pose := g.state.Pose()
	pt := projector.ToGeo(pose.X, pose.Y)

	return model.GPSReading{
		SensorValidity: model.SensorValidity{Valid: true},
		HasFix:         true,
		Lat:            pt.Lat,
		Lon:            pt.Lon,
		AccuracyMeters: 1.5,
	}
}

// Power reports higher drain when moving and integrates the battery
// percentage (spec.md §4.A).
type Power struct {
	device
	state *State
}

func NewPower(s *State) *Power { return &Power{state: s} }

func (p *Power) Read(ctx context.Context) model.PowerReading {
	if !p.Healthy() {
		return model.PowerReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "power not started"}}
	}
	p.state.mu.RLock()
	pct := p.state.batteryPercent
	v := p.state.commandedV
	w := p.state.commandedW
	p.state.mu.RUnlock()

	voltage := 10.0 + 2.6*(pct/100)
	current := 0.8
	if v != 0 || w != 0 {
		current = 2.5 + math.Abs(v)*1.5
	}

	return model.PowerReading{
		SensorValidity: model.SensorValidity{Valid: true},
		Voltage:        voltage,
		CurrentAmps:    current,
		Percent:        pct,
	}
}

// Bumper reports pressed on a deterministic schedule, a disableable test
// hook (spec.md §4.A, §9 open question).
type Bumper struct {
	device
	state   *State
	forced  atomic.Bool
	forceOn atomic.Bool
}

func NewBumper(s *State) *Bumper { return &Bumper{state: s} }

// Force overrides the schedule for deterministic tests.
func (b *Bumper) Force(pressed bool) {
	b.forced.Store(true)
	b.forceOn.Store(pressed)
}

func (b *Bumper) Read(ctx context.Context) model.BumperReading {
	if !b.Healthy() {
		return model.BumperReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "bumper not started"}}
	}
	if b.forced.Load() {
		return model.BumperReading{SensorValidity: model.SensorValidity{Valid: true}, Pressed: b.forceOn.Load()}
	}
	if !b.state.bumperScheduleEnabled {
		return model.BumperReading{SensorValidity: model.SensorValidity{Valid: true}, Pressed: false}
	}
	elapsed := time.Since(b.state.startedAt)
	pressed := elapsed.Seconds() > 0 && int(elapsed.Seconds())%10 == 0
	return model.BumperReading{SensorValidity: model.SensorValidity{Valid: true}, Pressed: pressed}
}

// Encoder accumulates pulses from commanded wheel velocities (spec.md
// §4.A).
type Encoder struct {
	device
	state *State
}

func NewEncoder(s *State) *Encoder { return &Encoder{state: s} }

func (e *Encoder) Read(ctx context.Context) model.EncoderReading {
	if !e.Healthy() {
		return model.EncoderReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "encoder not started"}}
	}
	e.state.mu.RLock()
	defer e.state.mu.RUnlock()
	return model.EncoderReading{
		SensorValidity: model.SensorValidity{Valid: true},
		LeftPulses:     e.state.leftPulses,
		RightPulses:    e.state.rightPulses,
	}
}

// EmergencyStop always reports released unless the test hook asserts it
// (spec.md §4.A).
type EmergencyStop struct {
	device
	state *State
}

func NewEmergencyStop(s *State) *EmergencyStop { return &EmergencyStop{state: s} }

func (e *EmergencyStop) Read(ctx context.Context) model.EStopReading {
	if !e.Healthy() {
		return model.EStopReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "estop not started"}}
	}
	return model.EStopReading{
		SensorValidity: model.SensorValidity{Valid: true},
		Asserted:       e.state.eStopAsserted.Load(),
	}
}

// Motor applies commanded wheel speeds to the shared SimulationState
// (spec.md §4.A).
type Motor struct {
	device
	state *State
}

func NewMotor(s *State) *Motor { return &Motor{state: s} }

func (m *Motor) SetWheelSpeeds(left, right float64) {
	left = clamp(left, -1, 1)
	right = clamp(right, -1, 1)

	m.state.mu.Lock()
	m.state.status.LeftSpeed = left
	m.state.status.RightSpeed = right
	wheelRadius := m.state.wheelRadiusM
	wheelBase := m.state.wheelBaseM
	m.state.mu.Unlock()

	// Convert normalized per-wheel speeds back into a commanded twist using
	// the same differential-drive relation the localizer's odometry uses,
	// assuming a normalized speed of 1.0 corresponds to maxWheelSpeedMPS.
	const maxWheelSpeedMPS = 1.0
	leftMPS := left * maxWheelSpeedMPS
	rightMPS := right * maxWheelSpeedMPS
	v := (leftMPS + rightMPS) / 2
	w := (rightMPS - leftMPS) / wheelBase
	m.state.SetCommandedTwist(v, w)
	m.state.Step(0.1)
	_ = wheelRadius
}

func (m *Motor) SetBrushes(main, left, right bool) {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	m.state.status.MainBrushOn = main
	m.state.status.SideBrushLeftOn = left
	m.state.status.SideBrushRightOn = right
}

func (m *Motor) SetFan(on bool) {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	m.state.status.FanOn = on
}

func (m *Motor) EmergencyStop() {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	m.state.status = model.MotorStatus{}
	m.state.commandedV = 0
	m.state.commandedW = 0
}

func (m *Motor) Status() model.MotorStatus {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	return m.state.status
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
