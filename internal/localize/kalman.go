// Package localize fuses wheel odometry and GPS into a pose/velocity
// estimate via an extended Kalman filter (spec.md §4.B), built over
// gonum.org/v1/gonum/mat the way go.viam.com/rdk's go.mod pulls in gonum
// for its own linear-algebra-heavy planning and kinematics code.
package localize

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
	"github.com/yusuftiryaki/robot-sub000/internal/rlog"
)

// state vector index layout: x, y, theta, vx, vy, vtheta
const (
	idxX = iota
	idxY
	idxTheta
	idxVX
	idxVY
	idxVTheta
	stateDim = 6
)

// Config holds the wheel geometry and noise tuning needed to turn raw
// encoder/GPS readings into Kalman measurements.
type Config struct {
	WheelRadiusM   float64
	WheelBaseM     float64
	TicksPerRev    float64
	ProcessNoise   float64 // diagonal Q scale, default 0.1
	GPSNoise       float64 // diagonal R scale for GPS, default 0.5
	OdometryNoise  float64 // diagonal R scale for odometry, default 0.05
}

// DefaultConfig returns the defaults named in spec.md §4.B.
func DefaultConfig() Config {
	return Config{
		WheelRadiusM:  0.065,
		WheelBaseM:    0.35,
		TicksPerRev:   360,
		ProcessNoise:  0.1,
		GPSNoise:      0.5,
		OdometryNoise: 0.05,
	}
}

// Localizer owns the pose estimate. current_pose() never blocks and never
// returns an estimate older than one tick (spec.md §4.B "Contract").
type Localizer struct {
	cfg Config
	log *zap.SugaredLogger

	mu        sync.RWMutex
	x         *mat.VecDense // state, stateDim x 1
	p         *mat.Dense    // covariance, stateDim x stateDim
	lastTick  time.Time
	hasTick   bool

	projector   *model.GeoProjector
	haveGPSRef  bool

	lastLeftPulses, lastRightPulses int64
	haveEncoderBaseline             bool
}

// New builds a Localizer seeded at the origin with the configured defaults
// if cfg is the zero value. If projector is non-nil it is used as the
// local-frame origin from the first tick onward, instead of lazily
// establishing one from the first GPS fix (spec.md §4.B) - this is how the
// controller keeps the localizer's pose estimate in the same metric frame
// as the garden boundary guard and the coverage planner's grid.
func New(cfg Config, projector *model.GeoProjector) *Localizer {
	if cfg.WheelRadiusM == 0 {
		cfg = DefaultConfig()
	}
	p := mat.NewDense(stateDim, stateDim, nil)
	for i := 0; i < stateDim; i++ {
		p.Set(i, i, 1.0)
	}
	l := &Localizer{
		cfg: cfg,
		log: rlog.Named("localize.kalman"),
		x:   mat.NewVecDense(stateDim, nil),
		p:   p,
	}
	if projector != nil {
		l.projector = projector
		l.haveGPSRef = true
	}
	return l
}

// Projector returns the local-frame projector currently in effect, or nil
// if no GPS fix has been observed yet and none was supplied at New.
func (l *Localizer) Projector() *model.GeoProjector {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.projector
}

// CurrentPose returns the most recent pose estimate.
func (l *Localizer) CurrentPose() model.Pose {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return model.Pose{
		X:       l.x.AtVec(idxX),
		Y:       l.x.AtVec(idxY),
		Theta:   l.x.AtVec(idxTheta),
		StampMS: l.lastTick.UnixMilli(),
	}
}

// CurrentVelocity returns the current velocity estimate (vx, vy, vtheta).
func (l *Localizer) CurrentVelocity() (vx, vy, vtheta float64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.x.AtVec(idxVX), l.x.AtVec(idxVY), l.x.AtVec(idxVTheta)
}

// Tick runs one predict + (possibly) update cycle given the sensor frame.
func (l *Localizer) Tick(now time.Time, frame model.SensorFrame) {
	l.mu.Lock()
	defer l.mu.Unlock()

	dt := 0.1
	if l.hasTick {
		dt = now.Sub(l.lastTick).Seconds()
		if dt <= 0 {
			dt = 0.1
		}
	}
	l.lastTick = now
	l.hasTick = true

	l.predict(dt)

	if frame.Encoders.Valid {
		if l.haveEncoderBaseline {
			dLeft := frame.Encoders.LeftPulses - l.lastLeftPulses
			dRight := frame.Encoders.RightPulses - l.lastRightPulses
			l.updateOdometry(dLeft, dRight)
		}
		l.lastLeftPulses = frame.Encoders.LeftPulses
		l.lastRightPulses = frame.Encoders.RightPulses
		l.haveEncoderBaseline = true
	}

	if frame.GPS.Valid && frame.GPS.HasFix {
		if !l.haveGPSRef {
			l.projector = model.NewGeoProjector(frame.GPS.Lat, frame.GPS.Lon)
			l.haveGPSRef = true
			// First fix establishes the local-frame origin at the robot's
			// current (already-estimated) position; nothing to update.
		} else {
			gx, gy := l.projector.ToLocal(model.GeoPoint{Lat: frame.GPS.Lat, Lon: frame.GPS.Lon})
			l.updateGPS(gx, gy)
		}
	}

	theta := model.NormalizeAngle(l.x.AtVec(idxTheta))
	l.x.SetVec(idxTheta, theta)
}

// predict advances the state by dt using a constant-velocity model and
// grows the covariance by the process noise Q = processNoise*I.
func (l *Localizer) predict(dt float64) {
	x := l.x.AtVec(idxX) + l.x.AtVec(idxVX)*dt
	y := l.x.AtVec(idxY) + l.x.AtVec(idxVY)*dt
	theta := l.x.AtVec(idxTheta) + l.x.AtVec(idxVTheta)*dt
	l.x.SetVec(idxX, x)
	l.x.SetVec(idxY, y)
	l.x.SetVec(idxTheta, model.NormalizeAngle(theta))

	f := mat.NewDense(stateDim, stateDim, nil)
	for i := 0; i < stateDim; i++ {
		f.Set(i, i, 1.0)
	}
	f.Set(idxX, idxVX, dt)
	f.Set(idxY, idxVY, dt)
	f.Set(idxTheta, idxVTheta, dt)

	var fp, fpft mat.Dense
	fp.Mul(f, l.p)
	fpft.Mul(&fp, f.T())

	q := mat.NewDense(stateDim, stateDim, nil)
	for i := 0; i < stateDim; i++ {
		q.Set(i, i, l.cfg.ProcessNoise)
	}
	fpft.Add(&fpft, q)
	l.p = &fpft
}

// updateOdometry computes differential-drive odometry from wheel pulse
// deltas and folds it into the filter as a (x', y', theta') measurement
// via midpoint integration (spec.md §4.B step 2).
func (l *Localizer) updateOdometry(deltaLeftPulses, deltaRightPulses int64) {
	metersPerPulse := 2 * math.Pi * l.cfg.WheelRadiusM / l.cfg.TicksPerRev
	dLeft := float64(deltaLeftPulses) * metersPerPulse
	dRight := float64(deltaRightPulses) * metersPerPulse

	dLinear := (dLeft + dRight) / 2
	dTheta := (dRight - dLeft) / l.cfg.WheelBaseM

	theta0 := l.x.AtVec(idxTheta)
	midTheta := theta0 + dTheta/2

	measX := l.x.AtVec(idxX) + dLinear*math.Cos(midTheta)
	measY := l.x.AtVec(idxY) + dLinear*math.Sin(midTheta)
	measTheta := model.NormalizeAngle(theta0 + dTheta)

	z := mat.NewVecDense(3, []float64{measX, measY, measTheta})
	h := mat.NewDense(3, stateDim, nil)
	h.Set(0, idxX, 1)
	h.Set(1, idxY, 1)
	h.Set(2, idxTheta, 1)
	r := diag(3, l.cfg.OdometryNoise)

	l.kalmanUpdate(z, h, r)
}

// updateGPS folds a flat-earth-projected GPS fix into the filter as an
// (x, y) measurement (spec.md §4.B step 3).
func (l *Localizer) updateGPS(x, y float64) {
	z := mat.NewVecDense(2, []float64{x, y})
	h := mat.NewDense(2, stateDim, nil)
	h.Set(0, idxX, 1)
	h.Set(1, idxY, 1)
	r := diag(2, l.cfg.GPSNoise)

	l.kalmanUpdate(z, h, r)
}

func diag(n int, v float64) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, v)
	}
	return d
}

// kalmanUpdate applies the standard measurement-update equations:
// y = z - Hx; S = HPH' + R; K = PH'S^-1; x += Ky; P = (I-KH)P.
func (l *Localizer) kalmanUpdate(z *mat.VecDense, h, r *mat.Dense) {
	m, _ := h.Dims()

	var hx mat.VecDense
	hx.MulVec(h, l.x)

	y := mat.NewVecDense(m, nil)
	y.SubVec(z, &hx)
	// angle residual (index 2 in the odometry case) needs wrap-aware
	// subtraction; only the 3-row odometry measurement carries a theta row.
	if m == 3 {
		y.SetVec(2, model.NormalizeAngle(y.AtVec(2)))
	}

	var hp mat.Dense
	hp.Mul(h, l.p)
	var hpht mat.Dense
	hpht.Mul(&hp, h.T())
	var s mat.Dense
	s.Add(&hpht, r)

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		l.log.Warnw("innovation covariance not invertible, skipping update", "error", err)
		return
	}

	var pht mat.Dense
	pht.Mul(l.p, h.T())
	var k mat.Dense
	k.Mul(&pht, &sInv)

	var ky mat.VecDense
	ky.MulVec(&k, y)

	var newX mat.VecDense
	newX.AddVec(l.x, &ky)
	l.x = &newX

	var kh mat.Dense
	kh.Mul(&k, h)
	ident := mat.NewDense(stateDim, stateDim, nil)
	for i := 0; i < stateDim; i++ {
		ident.Set(i, i, 1.0)
	}
	var imkh mat.Dense
	imkh.Sub(ident, &kh)
	var newP mat.Dense
	newP.Mul(&imkh, l.p)
	l.p = &newP
}
