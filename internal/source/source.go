// Package source supplies raw EMS lines from a serial port or a
// captured playback file.
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.bug.st/serial"
)

// Source yields one raw CR/LF-terminated line per call. A nil line with
// a nil error means no data is currently available (live read timeout);
// io.EOF means the stream is exhausted.
type Source interface {
	ReadLine(ctx context.Context) ([]byte, error)
	Close() error
}

// File replays lines from a captured EMS log. With Loop set, reaching
// the end of the file rewinds to the start instead of reporting io.EOF,
// matching how the instrument stream never terminates in flight.
type File struct {
	f    *os.File
	br   *bufio.Reader
	loop bool
}

// OpenFile opens a playback log.
func OpenFile(path string, loop bool) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playback file: %w", err)
	}
	return &File{f: f, br: bufio.NewReader(f), loop: loop}, nil
}

// ReadLine implements Source.
func (s *File) ReadLine(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	line, err := s.br.ReadBytes('\n')
	if err == nil {
		return line, nil
	}
	if !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(line) > 0 {
		// final line without a terminator
		return line, nil
	}
	if !s.loop {
		return nil, io.EOF
	}
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind playback file: %w", err)
	}
	s.br.Reset(s.f)
	line, err = s.br.ReadBytes('\n')
	if len(line) == 0 && errors.Is(err, io.EOF) {
		// empty file: looping would spin forever
		return nil, io.EOF
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return line, nil
}

// Close implements Source.
func (s *File) Close() error { return s.f.Close() }

// Serial reads the live EMS stream from a serial device at 8N1 with a
// one-second read timeout, the instrument's stock wiring.
type Serial struct {
	port    serial.Port
	pending []byte
}

// OpenSerial opens the EMS port.
func OpenSerial(device string, baudrate int) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	if err := port.SetReadTimeout(time.Second); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", device, err)
	}
	return &Serial{port: port}, nil
}

// ReadLine implements Source. Bytes arriving after a line terminator are
// retained for the next call so frame boundaries survive short reads.
func (s *Serial) ReadLine(ctx context.Context) ([]byte, error) {
	buf := make([]byte, 256)
	for {
		if i := bytes.IndexByte(s.pending, '\n'); i >= 0 {
			line := append([]byte(nil), s.pending[:i+1]...)
			s.pending = s.pending[i+1:]
			return line, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := s.port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("serial read: %w", err)
		}
		if n == 0 {
			// read timeout with no complete line buffered
			return nil, nil
		}
		s.pending = append(s.pending, buf[:n]...)
	}
}

// Close implements Source.
func (s *Serial) Close() error { return s.port.Close() }
