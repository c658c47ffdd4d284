package physical

import (
	"context"
	"time"

	"go.uber.org/atomic"
	"periph.io/x/conn/v3/gpio"

	channerics "github.com/niceyeti/channerics/channels"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
)

// edgeEvent is one quadrature edge observed on an interrupt pin. The ISR
// goroutine only ever produces these onto a channel; it never touches
// shared mutable structures directly (spec.md §9 "Interrupt callbacks
// mutating state").
type edgeEvent struct {
	level gpio.Level
}

// wheelEncoder drives a pair of quadrature GPIO interrupt pins for a
// single wheel, decoding signed pulse counts into an atomic accumulator
// (spec.md §4.A "GPIO interrupt for encoders... quadrature decoding for
// signed counts").
type wheelEncoder struct {
	pinA, pinB GPIOHandle
	pulses     atomic.Int64
	healthy    atomic.Bool
	stopCh     chan struct{}
}

func newWheelEncoder(pinA, pinB GPIOHandle) *wheelEncoder {
	return &wheelEncoder{pinA: pinA, pinB: pinB, stopCh: make(chan struct{})}
}

func (w *wheelEncoder) start() bool {
	if w.pinA == nil || w.pinB == nil {
		return false
	}
	if err := w.pinA.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return false
	}
	if err := w.pinB.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return false
	}
	w.healthy.Store(true)

	raw := make(chan edgeEvent)
	go w.watchPinA(raw)

	// channerics.Convert turns the raw ISR edge stream into pulse-count
	// deltas applied to the atomic accumulator, keeping the ISR goroutine
	// itself free of any shared-structure access.
	deltas := channerics.Convert(w.stopCh, raw, func(ev edgeEvent) int64 {
		if w.pinB.Read() == ev.level {
			return -1
		}
		return 1
	})
	go func() {
		for delta := range deltas {
			w.pulses.Add(delta)
		}
	}()
	return true
}

func (w *wheelEncoder) watchPinA(out chan<- edgeEvent) {
	defer close(out)
	for w.healthy.Load() {
		if !w.pinA.WaitForEdge(200 * time.Millisecond) {
			continue
		}
		select {
		case out <- edgeEvent{level: w.pinA.Read()}:
		case <-w.stopCh:
			return
		}
	}
}

func (w *wheelEncoder) stop() {
	w.healthy.Store(false)
	close(w.stopCh)
}

// Encoder combines the left and right wheelEncoders into the single
// hal.Encoder facade the tick loop reads once per tick.
type Encoder struct {
	baseDevice
	left, right *wheelEncoder
}

// NewEncoder builds a two-wheel encoder driver from four GPIO interrupt
// pins (left A/B, right A/B).
func NewEncoder(leftA, leftB, rightA, rightB GPIOHandle) *Encoder {
	return &Encoder{
		left:  newWheelEncoder(leftA, leftB),
		right: newWheelEncoder(rightA, rightB),
	}
}

func (e *Encoder) Start(ctx context.Context) bool {
	okLeft := e.left.start()
	okRight := e.right.start()
	ok := okLeft && okRight
	e.healthy.Store(ok)
	return ok
}

func (e *Encoder) Stop() {
	e.baseDevice.Stop()
	e.left.stop()
	e.right.stop()
}

func (e *Encoder) Read(ctx context.Context) model.EncoderReading {
	if !e.Healthy() {
		return model.EncoderReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "encoder gpio not healthy"}}
	}
	return model.EncoderReading{
		SensorValidity: model.SensorValidity{Valid: true},
		LeftPulses:     e.left.pulses.Load(),
		RightPulses:    e.right.pulses.Load(),
	}
}
