// Package ems decodes the fixed-width payload of a Dynon D120/D180
// engine-monitoring frame into normalized measurements.
package ems

import "fmt"

// Cylinders is the number of EGT/CHT channels carried per frame.
const Cylinders = 6

// PayloadLen is the exact payload length preceding the checksum. Every
// field occupies a fixed number of characters with no delimiters, so
// anything else is a truncated or corrupt frame.
const PayloadLen = 117

// Record holds one frame's normalized engine and fuel measurements. It
// is a plain value: construct once via Decode, never mutate.
type Record struct {
	ManifoldPressureInHg float64
	OilTempF             int
	OilPressurePSI       int
	FuelPressurePSI      float64
	BusVolts             float64
	CurrentAmps          int
	RPM                  int
	FuelFlowGPH          float64
	FuelRemainingGal     float64
	FuelTank1Gal         float64
	FuelTank2Gal         float64
	EGTF                 [Cylinders]int
	CHTF                 [Cylinders]int
	Contact1             int
	Contact2             int
}

// Decode extracts every field of a checksum-validated payload at its
// fixed offset and applies unit scaling. The first field that fails to
// parse aborts the frame; a partial Record is never returned.
func Decode(payload []byte) (Record, error) {
	if len(payload) != PayloadLen {
		return Record{}, fmt.Errorf("payload must be %d bytes, got %d", PayloadLen, len(payload))
	}
	c := cursor{buf: payload}

	// Zulu time hhmmss plus the 1/64-second counter: must parse, but the
	// host display keeps its own clock, so none of it is reported.
	c.uint(2)
	c.uint(2)
	c.uint(2)
	c.uint(2)

	var rec Record
	rec.ManifoldPressureInHg = float64(c.uint(4)) / 100
	rec.OilTempF = c.int(3)
	rec.OilPressurePSI = c.uint(3)
	rec.FuelPressurePSI = float64(c.uint(3)) / 10
	rec.BusVolts = float64(c.uint(3)) / 10
	rec.CurrentAmps = c.int(3)
	rec.RPM = c.uint(3) * 10
	rec.FuelFlowGPH = float64(c.uint(3)) / 10
	rec.FuelRemainingGal = float64(c.uint(4)) / 10
	rec.FuelTank1Gal = float64(c.uint(3)) / 10
	rec.FuelTank2Gal = float64(c.uint(3)) / 10

	// General-purpose inputs and thermocouple: opaque, configuration
	// dependent, skipped without parsing.
	c.skip(8)
	c.skip(8)
	c.skip(8)
	c.skip(4)

	for i := range rec.EGTF {
		rec.EGTF[i] = c.int(4)
	}
	for i := range rec.CHTF {
		rec.CHTF[i] = c.int(3)
	}
	rec.Contact1 = c.uint(1)
	rec.Contact2 = c.uint(1)
	c.skip(2) // product ID

	if c.err != nil {
		return Record{}, c.err
	}
	return rec, nil
}

// cursor consumes fixed-width fields left to right, holding the first
// parse error so decoding can run to the end of the table unconditionally.
type cursor struct {
	buf []byte
	pos int
	err error
}

func (c *cursor) skip(n int) { c.pos += n }

// uint consumes an n-character unsigned decimal field.
func (c *cursor) uint(n int) int {
	return c.field(n, false)
}

// int consumes an n-character decimal field that may carry a leading
// minus inside its width.
func (c *cursor) int(n int) int {
	return c.field(n, true)
}

func (c *cursor) field(n int, signed bool) int {
	start := c.pos
	c.pos += n
	if c.err != nil {
		return 0
	}
	v, err := parseFixed(c.buf[start:start+n], signed)
	if err != nil {
		c.err = fmt.Errorf("field at offset %d: %w", start, err)
		return 0
	}
	return v
}

func parseFixed(f []byte, signed bool) (int, error) {
	digits := f
	neg := false
	if signed && len(f) > 0 && f[0] == '-' {
		neg = true
		digits = f[1:]
	}
	if len(digits) == 0 {
		return 0, fmt.Errorf("empty numeric field %q", f)
	}
	v := 0
	for _, b := range digits {
		if b < '0' || b > '9' {
			return 0, fmt.Errorf("non-digit in numeric field %q", f)
		}
		v = v*10 + int(b-'0')
	}
	if neg {
		v = -v
	}
	return v, nil
}
