package protocol

import (
	"bufio"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/moonvale/mud/internal/crypto"
)

// ErrUndecryptable marks an inbound frame that failed decryption while the
// transport is in strict mode. Callers drop the frame and keep the
// connection.
var ErrUndecryptable = errors.New("frame failed decryption")

// Transport frames, encrypts and decrypts messages on one byte stream.
// Inbound frames are decrypted with our private key; outbound frames are
// encrypted with the peer's published public key. The ClientKey exchange
// itself travels in cleartext via ReadFrame/WritePlain.
//
// In lax mode an undecryptable inbound frame is handed to the caller as
// cleartext, matching the behaviour of older clients that skip encryption.
type Transport struct {
	br     *bufio.Reader
	w      io.Writer
	priv   *rsa.PrivateKey
	strict bool
	maxLen int

	mu   sync.RWMutex
	peer *rsa.PublicKey
}

// NewTransport wraps rw with framing and encryption.
func NewTransport(rw io.ReadWriter, priv *rsa.PrivateKey, strict bool, maxLen int) *Transport {
	return &Transport{
		br:     bufio.NewReader(rw),
		w:      rw,
		priv:   priv,
		strict: strict,
		maxLen: maxLen,
	}
}

// SetPeerKey stores the peer's public key after its ClientKey announcement.
// From this point strict mode requires every inbound frame to decrypt.
func (t *Transport) SetPeerKey(pub *rsa.PublicKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peer = pub
}

// PeerKey returns the stored peer key, or nil before the handshake.
func (t *Transport) PeerKey() *rsa.PublicKey {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.peer
}

// Read returns the next inbound message payload.
// Frame-level errors (including io.EOF) are fatal to the connection;
// ErrUndecryptable is not.
func (t *Transport) Read() ([]byte, error) {
	frame, err := ReadFrame(t.br, t.maxLen)
	if err != nil {
		return nil, err
	}

	plaintext, decErr := crypto.Decrypt(frame, t.priv)
	if decErr == nil {
		return plaintext, nil
	}

	// Before the peer announces its key the handshake frame is expected in
	// cleartext; afterwards the fallback is a lax-mode compatibility path.
	if t.strict && t.PeerKey() != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecryptable, decErr)
	}
	return frame, nil
}

// Write encrypts payload with the peer key and sends it as one frame.
func (t *Transport) Write(payload []byte) error {
	peer := t.PeerKey()
	if peer == nil {
		return fmt.Errorf("writing encrypted frame: no peer key")
	}
	ciphertext, err := crypto.Encrypt(payload, peer)
	if err != nil {
		return fmt.Errorf("encrypting frame: %w", err)
	}
	return WriteFrame(t.w, ciphertext)
}

// WritePlain sends payload as one cleartext frame. Only the key exchange
// uses this.
func (t *Transport) WritePlain(payload []byte) error {
	return WriteFrame(t.w, payload)
}
