package physical

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
	"github.com/yusuftiryaki/robot-sub000/internal/rlog"
)

// IMU drives an I2C-attached 6-axis sensor (accelerometer + gyroscope),
// the physical counterpart of the simulator's IMU (spec.md §4.A "Physical
// backend wraps the real bus... I2C for IMU/power").
type IMU struct {
	baseDevice
	bus  I2CHandle
	addr byte
	log  interface {
		Warnw(string, ...interface{})
	}
}

// NewIMU builds a physical IMU driver over an already-opened I2C handle.
func NewIMU(bus I2CHandle, addr byte) *IMU {
	return &IMU{bus: bus, addr: addr, log: rlog.Named("hal.physical.imu")}
}

func (m *IMU) Start(ctx context.Context) bool {
	if m.bus == nil {
		return false
	}
	// A register probe write/read; failure leaves Healthy() false forever.
	probe := make([]byte, 1)
	if err := m.bus.Tx([]byte{0x75}, probe); err != nil {
		m.log.Warnw("imu init probe failed", "error", err)
		return false
	}
	m.healthy.Store(true)
	return true
}

func (m *IMU) Read(ctx context.Context) model.IMUReading {
	if !m.Healthy() {
		return model.IMUReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "imu bus not healthy"}}
	}
	raw := make([]byte, 14)
	if err := m.bus.Tx([]byte{0x3B}, raw); err != nil {
		return model.IMUReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "imu read error: " + err.Error()}}
	}

	const accelScale = 1.0 / 16384.0 * 9.81 // +/-2g range, m/s^2
	const gyroScale = 1.0 / 131.0 * math.Pi / 180.0 // +/-250dps range, rad/s

	ax := float64(int16(binary.BigEndian.Uint16(raw[0:2]))) * accelScale
	ay := float64(int16(binary.BigEndian.Uint16(raw[2:4]))) * accelScale
	az := float64(int16(binary.BigEndian.Uint16(raw[4:6]))) * accelScale
	gx := float64(int16(binary.BigEndian.Uint16(raw[8:10]))) * gyroScale
	gy := float64(int16(binary.BigEndian.Uint16(raw[10:12]))) * gyroScale
	gz := float64(int16(binary.BigEndian.Uint16(raw[12:14]))) * gyroScale

	roll := math.Atan2(ay, az)
	pitch := math.Atan2(-ax, math.Hypot(ay, az))

	return model.IMUReading{
		SensorValidity: model.SensorValidity{Valid: true},
		Roll:           roll,
		Pitch:          pitch,
		AccelX:         ax,
		AccelY:         ay,
		AccelZ:         az,
		GyroX:          gx,
		GyroY:          gy,
		GyroZ:          gz,
	}
}

// Power drives an I2C-attached voltage/current monitor.
type Power struct {
	baseDevice
	bus  I2CHandle
	addr byte
	log  interface {
		Warnw(string, ...interface{})
	}
}

func NewPower(bus I2CHandle, addr byte) *Power {
	return &Power{bus: bus, addr: addr, log: rlog.Named("hal.physical.power")}
}

func (p *Power) Start(ctx context.Context) bool {
	if p.bus == nil {
		return false
	}
	probe := make([]byte, 2)
	if err := p.bus.Tx([]byte{0x02}, probe); err != nil {
		p.log.Warnw("power monitor init probe failed", "error", err)
		return false
	}
	p.healthy.Store(true)
	return true
}

func (p *Power) Read(ctx context.Context) model.PowerReading {
	if !p.Healthy() {
		return model.PowerReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "power bus not healthy"}}
	}
	raw := make([]byte, 4)
	if err := p.bus.Tx([]byte{0x02}, raw); err != nil {
		return model.PowerReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "power read error: " + err.Error()}}
	}
	// INA219-style raw register layout: bus voltage (mV*4), shunt current (mA).
	voltage := float64(binary.BigEndian.Uint16(raw[0:2])>>3) * 0.004
	current := float64(int16(binary.BigEndian.Uint16(raw[2:4]))) / 1000.0

	const fullVoltage = 12.6
	const emptyVoltage = 10.0
	pct := (voltage - emptyVoltage) / (fullVoltage - emptyVoltage) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return model.PowerReading{
		SensorValidity: model.SensorValidity{Valid: true},
		Voltage:        voltage,
		CurrentAmps:    current,
		Percent:        pct,
	}
}
