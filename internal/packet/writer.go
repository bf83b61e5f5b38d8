package packet

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
)

// Writer accumulates length-tagged slots. Each slot is a uint16 LE byte
// count followed by the slot bytes.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter creates a slot writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	w := &Writer{}
	w.buf.Grow(capacity)
	return w
}

func (w *Writer) writeSlot(data []byte) error {
	if len(data) > maxSlotLen {
		return fmt.Errorf("slot of %d bytes exceeds maximum %d", len(data), maxSlotLen)
	}
	var hdr [2]byte
	binary.LittleEndian.PutUint16(hdr[:], uint16(len(data)))
	w.buf.Write(hdr[:])
	w.buf.Write(data)
	return nil
}

// WriteKind writes the message discriminator slot.
func (w *Writer) WriteKind(k Kind) error {
	return w.writeSlot([]byte{byte(k)})
}

// WriteInt writes an int64 slot (8 bytes, LE).
func (w *Writer) WriteInt(val int64) error {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(val))
	return w.writeSlot(tmp[:])
}

// WriteString writes a UTF-8 string slot.
func (w *Writer) WriteString(s string) error {
	return w.writeSlot([]byte(s))
}

// WriteBigInt writes a non-negative big integer slot (big-endian magnitude).
func (w *Writer) WriteBigInt(n *big.Int) error {
	if n == nil || n.Sign() < 0 {
		return fmt.Errorf("big int slot must be non-negative")
	}
	return w.writeSlot(n.Bytes())
}

// WriteDict writes a JSON object slot.
func (w *Writer) WriteDict(m map[string]any) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling dict slot: %w", err)
	}
	return w.writeSlot(data)
}

// Bytes returns the accumulated slots.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the current encoded length.
func (w *Writer) Len() int {
	return w.buf.Len()
}
