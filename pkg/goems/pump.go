package goems

import (
	"context"
	"errors"
	"io"

	"gitlab.com/d21d3q/goems/internal/frame"
)

// LineSource yields raw frames, one CR/LF line per call. A nil line with
// a nil error means no data is available yet; io.EOF ends the pump.
type LineSource interface {
	ReadLine(ctx context.Context) ([]byte, error)
}

// Stats counts per-frame outcomes of a Pump run. Both reject classes are
// skip-and-continue; they are split only for diagnostics.
type Stats struct {
	Accepted    uint64
	BadChecksum uint64
	BadDecode   uint64
}

// Pump reads frames from src until the source drains or ctx is
// cancelled, delivering each decoded record to sink. Corrupt frames are
// counted and skipped; subsequent frame boundaries are unaffected
// because the source delivers whole lines.
func Pump(ctx context.Context, src LineSource, sink func(Result)) (Stats, error) {
	var stats Stats
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line, err := src.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return stats, nil
			}
			return stats, err
		}
		if len(line) == 0 {
			continue
		}
		res, err := DecodeLine(line)
		if err != nil {
			if errors.Is(err, frame.ErrChecksum) || errors.Is(err, frame.ErrTooShort) {
				stats.BadChecksum++
			} else {
				stats.BadDecode++
			}
			continue
		}
		stats.Accepted++
		if sink != nil {
			sink(res)
		}
	}
}
