package physical

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/yusuftiryaki/robot-sub000/internal/model"
	"github.com/yusuftiryaki/robot-sub000/internal/rlog"
)

// UARTPort is the narrow contract the GPS driver depends on; any
// io.ReadWriteCloser-backed serial port (e.g. go.bug.st/serial, or a plain
// os.File opened on /dev/ttyAMA0) satisfies it.
type UARTPort interface {
	io.Reader
	io.Closer
}

// GPS drives a UART-attached NMEA receiver, parsing $GPGGA/$GNGGA
// sentences for a fix (spec.md §4.A "UART for GPS").
type GPS struct {
	baseDevice
	port UARTPort

	mu      sync.RWMutex
	scanner *bufio.Scanner
	last    model.GPSReading
}

func NewGPS(port UARTPort) *GPS {
	return &GPS{port: port}
}

func (g *GPS) Start(ctx context.Context) bool {
	if g.port == nil {
		return false
	}
	g.scanner = bufio.NewScanner(g.port)
	g.healthy.Store(true)
	go g.pump()
	return true
}

// pump continuously reads NMEA lines and keeps the latest fix. GPS reads
// tolerate no-fix by returning an invalid reading rather than blocking
// (spec.md §5 "Timeouts").
func (g *GPS) pump() {
	log := rlog.Named("hal.physical.gps")
	for g.Healthy() && g.scanner.Scan() {
		line := g.scanner.Text()
		reading, ok := parseGGA(line)
		if !ok {
			continue
		}
		g.mu.Lock()
		g.last = reading
		g.mu.Unlock()
	}
	if err := g.scanner.Err(); err != nil {
		log.Warnw("gps uart read loop ended", "error", err)
	}
}

func (g *GPS) Read(ctx context.Context) model.GPSReading {
	if !g.Healthy() {
		return model.GPSReading{SensorValidity: model.SensorValidity{Valid: false, Reason: "gps uart not healthy"}}
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.last.Lat == 0 && g.last.Lon == 0 && !g.last.HasFix {
		return model.GPSReading{SensorValidity: model.SensorValidity{Valid: true}, HasFix: false}
	}
	return g.last
}

func (g *GPS) Stop() {
	g.baseDevice.Stop()
	if g.port != nil {
		_ = g.port.Close()
	}
}

// parseGGA parses the fields of a $--GGA NMEA sentence into a GPSReading.
func parseGGA(line string) (model.GPSReading, bool) {
	if !strings.HasPrefix(line, "$GPGGA") && !strings.HasPrefix(line, "$GNGGA") {
		return model.GPSReading{}, false
	}
	fields := strings.Split(strings.SplitN(line, "*", 2)[0], ",")
	if len(fields) < 10 {
		return model.GPSReading{}, false
	}
	fixQuality, _ := strconv.Atoi(fields[6])
	if fixQuality == 0 {
		return model.GPSReading{SensorValidity: model.SensorValidity{Valid: true}, HasFix: false}, true
	}

	lat, okLat := nmeaCoord(fields[2], fields[3])
	lon, okLon := nmeaCoord(fields[4], fields[5])
	if !okLat || !okLon {
		return model.GPSReading{}, false
	}
	accuracy := 2.5
	if hdop, err := strconv.ParseFloat(fields[8], 64); err == nil {
		accuracy = hdop * 2.5
	}

	return model.GPSReading{
		SensorValidity: model.SensorValidity{Valid: true},
		HasFix:         true,
		Lat:            lat,
		Lon:            lon,
		AccuracyMeters: accuracy,
	}, true
}

// nmeaCoord converts an NMEA ddmm.mmmm + hemisphere pair into signed
// decimal degrees.
func nmeaCoord(raw, hemisphere string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	degrees := float64(int(val / 100))
	minutes := val - degrees*100
	decimal := degrees + minutes/60
	if hemisphere == "S" || hemisphere == "W" {
		decimal = -decimal
	}
	return decimal, true
}
