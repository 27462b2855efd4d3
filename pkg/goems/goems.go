// Package goems decodes the Dynon D120/D180 EMS serial stream: one
// checksummed fixed-width ASCII line per engine/fuel snapshot.
package goems

import (
	"encoding/json"
	"errors"
	"fmt"

	"gitlab.com/d21d3q/goems/internal/ems"
	"gitlab.com/d21d3q/goems/internal/frame"
)

// ErrMalformed wraps field-level decode failures on frames whose
// checksum already passed. Checksum rejects surface as frame.ErrChecksum
// or frame.ErrTooShort, so callers can count the two separately.
var ErrMalformed = errors.New("malformed frame field")

// Result captures one successfully decoded EMS frame.
type Result struct {
	Record ems.Record
	// Raw is the frame body as received, CR/LF stripped, checksum kept.
	Raw string
}

// DecodeLine validates and decodes one raw serial line. The line may
// carry its CR/LF terminator; it is not retained after the call.
func DecodeLine(line []byte) (Result, error) {
	body := frame.TrimLine(line)
	payload, err := frame.Split(body)
	if err != nil {
		return Result{}, err
	}
	rec, err := ems.Decode(payload)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Result{Record: rec, Raw: string(body)}, nil
}

// DecodeString is DecodeLine for string input.
func DecodeString(s string) (Result, error) {
	return DecodeLine([]byte(s))
}

// Fields flattens the record into display-ready keys. Consumers that
// only want a subset pick what they need and ignore the rest.
func (r Result) Fields() map[string]any {
	rec := r.Record
	fields := map[string]any{
		"map_inhg":      rec.ManifoldPressureInHg,
		"oil_temp_f":    rec.OilTempF,
		"oil_psi":       rec.OilPressurePSI,
		"fuel_psi":      rec.FuelPressurePSI,
		"volts_v":       rec.BusVolts,
		"amps_a":        rec.CurrentAmps,
		"rpm":           rec.RPM,
		"ff_gph":        rec.FuelFlowGPH,
		"fuel_remain_g": rec.FuelRemainingGal,
		"fuel_l1_g":     rec.FuelTank1Gal,
		"fuel_l2_g":     rec.FuelTank2Gal,
		"contact1":      rec.Contact1,
		"contact2":      rec.Contact2,
	}
	for i, v := range rec.EGTF {
		fields[fmt.Sprintf("egt%d_f", i+1)] = v
	}
	for i, v := range rec.CHTF {
		fields[fmt.Sprintf("cht%d_f", i+1)] = v
	}
	return fields
}

// String renders a human-readable representation of the result.
func (r Result) String() string {
	summary := map[string]any{
		"raw":    r.Raw,
		"fields": r.Fields(),
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Sprintf("raw:%s (marshal error: %v)", r.Raw, err)
	}
	return string(data)
}
