package frame

import (
	"errors"
	"fmt"
	"testing"
)

func TestSplitValidFrame(t *testing.T) {
	payload := []byte("1234560729501800780521")
	body := appendChecksum(payload)
	got, err := Split(body)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch: %q", got)
	}
	if !Valid(body) {
		t.Fatal("Valid returned false for a well-formed frame")
	}
}

func TestSplitRandomPayloads(t *testing.T) {
	// The checksum invariant must hold regardless of payload content.
	for seed := 0; seed < 64; seed++ {
		payload := make([]byte, 4+seed)
		for i := range payload {
			payload[i] = byte('0' + (seed+i*7)%75)
		}
		body := appendChecksum(payload)
		if !Valid(body) {
			t.Fatalf("seed %d: frame rejected", seed)
		}
	}
}

func TestSplitTooShort(t *testing.T) {
	for _, body := range [][]byte{nil, {}, []byte("A"), []byte("AB"), []byte("ABC")} {
		_, err := Split(body)
		if !errors.Is(err, ErrTooShort) {
			t.Fatalf("body %q: got %v, want ErrTooShort", body, err)
		}
	}
}

func TestSplitNonHexChecksum(t *testing.T) {
	body := []byte("123456ZZ")
	_, err := Split(body)
	if !errors.Is(err, ErrChecksum) {
		t.Fatalf("got %v, want ErrChecksum", err)
	}
}

func TestSplitRejectsEveryPayloadFlip(t *testing.T) {
	payload := []byte("00035029921801231")
	body := appendChecksum(payload)
	for i := range payload {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		if Valid(mutated) {
			t.Fatalf("flip at %d accepted", i)
		}
	}
}

func TestSplitRejectsEveryWrongChecksum(t *testing.T) {
	payload := []byte("0003502992180")
	want := Checksum(payload)
	for v := 0; v < 256; v++ {
		body := append([]byte(nil), payload...)
		body = append(body, []byte(fmt.Sprintf("%02X", v))...)
		if byte(v) == want {
			if !Valid(body) {
				t.Fatalf("correct checksum 0x%02X rejected", v)
			}
			continue
		}
		if Valid(body) {
			t.Fatalf("wrong checksum 0x%02X accepted", v)
		}
	}
}

func TestTrimLine(t *testing.T) {
	cases := []struct{ in, want string }{
		{"ABC\r\n", "ABC"},
		{"ABC\n", "ABC"},
		{"ABC", "ABC"},
		{"ABC\r\n\r\n", "ABC\r\n"},
	}
	for _, tc := range cases {
		if got := TrimLine([]byte(tc.in)); string(got) != tc.want {
			t.Fatalf("TrimLine(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func appendChecksum(payload []byte) []byte {
	return append(append([]byte(nil), payload...), []byte(fmt.Sprintf("%02X", Checksum(payload)))...)
}
