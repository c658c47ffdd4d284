// Package rlog provides the structured logging factory shared by every
// subsystem in the control core. It wraps zap the way the component
// loggers in the reference rdk corpus are named per-resource, so log lines
// from the localizer read differently from log lines out of the docker.
package rlog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	baseMu   sync.Mutex
	base     *zap.Logger
	sugarMap = map[string]*zap.SugaredLogger{}
)

// Init installs the process-wide base logger. dev selects a human-readable
// console encoder (development); false selects JSON (production).
func Init(dev bool) error {
	baseMu.Lock()
	defer baseMu.Unlock()

	var cfg zap.Config
	if dev {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	base = l
	sugarMap = map[string]*zap.SugaredLogger{}
	return nil
}

func ensureBase() *zap.Logger {
	baseMu.Lock()
	defer baseMu.Unlock()
	if base == nil {
		base, _ = zap.NewDevelopment()
	}
	return base
}

// Named returns (creating if necessary) a sugared child logger scoped to
// name, e.g. "navigation.dwa" or "hal.simulator".
func Named(name string) *zap.SugaredLogger {
	baseMu.Lock()
	if l, ok := sugarMap[name]; ok {
		baseMu.Unlock()
		return l
	}
	baseMu.Unlock()

	l := ensureBase().Named(name).Sugar()

	baseMu.Lock()
	sugarMap[name] = l
	baseMu.Unlock()
	return l
}

// Sync flushes all buffered log entries; call on shutdown.
func Sync() {
	baseMu.Lock()
	defer baseMu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
}
