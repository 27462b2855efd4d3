package goems

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/d21d3q/goems/internal/frame"
	"gitlab.com/d21d3q/goems/internal/testutil"
)

// sliceSource replays a fixed set of lines, then reports EOF.
type sliceSource struct {
	lines [][]byte
}

func (s *sliceSource) ReadLine(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.lines) == 0 {
		return nil, io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestPumpCountsOutcomes(t *testing.T) {
	good := testutil.LoadLine(t, "d120/cruise.txt")

	badSum := append([]byte(nil), good...)
	badSum[0] ^= 0x01

	body := frame.TrimLine(good)
	payload := append([]byte(nil), body[:len(body)-2]...)
	payload[20] = '?'
	badField := append(appendChecksum(payload), '\r', '\n')

	src := &sliceSource{lines: [][]byte{good, nil, badSum, badField, good}}
	var seen []Result
	stats, err := Pump(context.Background(), src, func(r Result) {
		seen = append(seen, r)
	})
	require.NoError(t, err)
	require.Equal(t, Stats{Accepted: 2, BadChecksum: 1, BadDecode: 1}, stats)
	require.Len(t, seen, 2)
	require.Equal(t, seen[0].Record, seen[1].Record)
}

func TestPumpNilSink(t *testing.T) {
	src := &sliceSource{lines: [][]byte{testutil.LoadLine(t, "d120/cruise.txt")}}
	stats, err := Pump(context.Background(), src, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1), stats.Accepted)
}

func TestPumpHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Pump(ctx, &sliceSource{}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
