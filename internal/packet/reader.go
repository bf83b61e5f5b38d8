package packet

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
)

// maxSlotLen bounds a single slot; the uint16 length tag enforces it on the
// wire, the writer enforces it on encode.
const maxSlotLen = 1<<16 - 1

// Reader consumes length-tagged slots from a decoded frame.
// All multi-byte values are Little-Endian.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a slot reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) readSlot() ([]byte, error) {
	if r.pos+2 > len(r.data) {
		return nil, fmt.Errorf("slot header: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	n := int(binary.LittleEndian.Uint16(r.data[r.pos:]))
	r.pos += 2
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("slot body: not enough data (pos=%d, need=%d, len=%d)", r.pos, n, len(r.data))
	}
	slot := r.data[r.pos : r.pos+n]
	r.pos += n
	return slot, nil
}

// ReadKind reads the message discriminator slot.
func (r *Reader) ReadKind() (Kind, error) {
	slot, err := r.readSlot()
	if err != nil {
		return 0, err
	}
	if len(slot) != 1 {
		return 0, fmt.Errorf("kind slot must be 1 byte, got %d", len(slot))
	}
	return Kind(slot[0]), nil
}

// ReadInt reads an int64 slot.
func (r *Reader) ReadInt() (int64, error) {
	slot, err := r.readSlot()
	if err != nil {
		return 0, err
	}
	if len(slot) != 8 {
		return 0, fmt.Errorf("int slot must be 8 bytes, got %d", len(slot))
	}
	return int64(binary.LittleEndian.Uint64(slot)), nil
}

// ReadString reads a UTF-8 string slot.
func (r *Reader) ReadString() (string, error) {
	slot, err := r.readSlot()
	if err != nil {
		return "", err
	}
	return string(slot), nil
}

// ReadBigInt reads a big integer slot (big-endian magnitude).
func (r *Reader) ReadBigInt() (*big.Int, error) {
	slot, err := r.readSlot()
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(slot), nil
}

// ReadDict reads a JSON object slot.
func (r *Reader) ReadDict() (map[string]any, error) {
	slot, err := r.readSlot()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(slot, &m); err != nil {
		return nil, fmt.Errorf("unmarshaling dict slot: %w", err)
	}
	return m, nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}
