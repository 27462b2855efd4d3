// Package frame checks the structural integrity of one EMS serial line.
//
// The D120/D180 stream terminates every frame with a two-character hex
// checksum chosen so that the sum of all payload bytes plus the checksum
// value is zero mod 256.
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrTooShort indicates a frame too small to carry both payload and
	// checksum.
	ErrTooShort = errors.New("frame too short")
	// ErrChecksum indicates a missing, non-hex, or mismatched checksum.
	ErrChecksum = errors.New("frame checksum mismatch")
)

// TrimLine strips a single trailing CR/LF (or lone CR or LF) from a raw
// serial line.
func TrimLine(raw []byte) []byte {
	raw = bytes.TrimSuffix(raw, []byte{'\n'})
	raw = bytes.TrimSuffix(raw, []byte{'\r'})
	return raw
}

// Checksum returns the byte that zeroes the modular sum of payload.
func Checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return -sum
}

// Split verifies the trailing checksum of a CR/LF-stripped frame body
// and returns the payload preceding it. Malformed input yields an error
// wrapping ErrTooShort or ErrChecksum, never a panic.
func Split(body []byte) ([]byte, error) {
	if len(body) < 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooShort, len(body))
	}
	chk, err := strconv.ParseUint(string(body[len(body)-2:]), 16, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: non-hex checksum %q", ErrChecksum, body[len(body)-2:])
	}
	payload := body[:len(body)-2]
	var sum byte
	for _, b := range payload {
		sum += b
	}
	if sum+byte(chk) != 0 {
		return nil, fmt.Errorf("%w: payload sum 0x%02X checksum 0x%02X", ErrChecksum, sum, byte(chk))
	}
	return payload, nil
}

// Valid reports whether body carries a correct checksum.
func Valid(body []byte) bool {
	_, err := Split(body)
	return err == nil
}
