package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Small key keeps the test fast; chunking logic is size-independent.
func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	return priv
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	priv := testKey(t)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("hello")},
		{"exactly one chunk", bytes.Repeat([]byte{0xAB}, priv.Size()-11)},
		{"multi chunk", bytes.Repeat([]byte("moonvale "), 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := Encrypt(tt.data, &priv.PublicKey)
			require.NoError(t, err)
			assert.Zero(t, len(ct)%priv.Size(), "ciphertext must be whole blocks")

			pt, err := Decrypt(ct, priv)
			require.NoError(t, err)
			assert.Equal(t, tt.data, pt)
		})
	}
}

func TestDecryptRejectsPartialBlock(t *testing.T) {
	priv := testKey(t)
	_, err := Decrypt(make([]byte, priv.Size()+1), priv)
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	priv := testKey(t)
	_, err := Decrypt(make([]byte, priv.Size()), priv)
	assert.Error(t, err)
}

func TestPublicKeyFromParts(t *testing.T) {
	priv := testKey(t)

	pub, err := PublicKeyFromParts(priv.N, int64(priv.E))
	require.NoError(t, err)
	assert.Zero(t, pub.N.Cmp(priv.N))
	assert.Equal(t, priv.E, pub.E)

	_, err = PublicKeyFromParts(nil, 65537)
	assert.Error(t, err)
	_, err = PublicKeyFromParts(priv.N, 1)
	assert.Error(t, err)
}
