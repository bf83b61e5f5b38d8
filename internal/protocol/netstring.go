package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Netstring framing: ASCII decimal length, ':', payload, ','.
// maxLenDigits bounds the length field so a malformed peer cannot make us
// read digits forever.
const maxLenDigits = 9

// WriteFrame writes one netstring frame carrying payload.
func WriteFrame(w io.Writer, payload []byte) error {
	if _, err := fmt.Fprintf(w, "%d:", len(payload)); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("writing frame payload: %w", err)
	}
	if _, err := w.Write([]byte{','}); err != nil {
		return fmt.Errorf("writing frame terminator: %w", err)
	}
	return nil
}

// ReadFrame reads one netstring frame from r.
// Frames longer than maxLen are rejected without consuming the payload.
func ReadFrame(r *bufio.Reader, maxLen int) ([]byte, error) {
	var digits []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("reading frame length: %w", err)
		}
		if b == ':' {
			break
		}
		if b < '0' || b > '9' {
			return nil, fmt.Errorf("malformed frame: byte %q in length field", b)
		}
		digits = append(digits, b)
		if len(digits) > maxLenDigits {
			return nil, fmt.Errorf("malformed frame: length field too long")
		}
	}
	if len(digits) == 0 {
		return nil, fmt.Errorf("malformed frame: empty length field")
	}

	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return nil, fmt.Errorf("malformed frame length %q: %w", digits, err)
	}
	if n > maxLen {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit %d", n, maxLen)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading frame payload: %w", err)
	}

	term, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading frame terminator: %w", err)
	}
	if term != ',' {
		return nil, fmt.Errorf("malformed frame: terminator %q", term)
	}

	return payload, nil
}
