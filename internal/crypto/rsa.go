package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"math/big"
)

// KeySize is the RSA modulus size in bits for server-generated keys.
const KeySize = 2048

// pkcs1Overhead is the minimum PKCS#1 v1.5 padding per encrypted block.
const pkcs1Overhead = 11

// KeyPair holds the server's RSA key pair.
type KeyPair struct {
	Private *rsa.PrivateKey
}

// GenerateKeyPair generates a fresh RSA key pair for a server process.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, KeySize)
	if err != nil {
		return nil, fmt.Errorf("generating RSA key: %w", err)
	}
	return &KeyPair{Private: priv}, nil
}

// Public returns the public half of the pair.
func (kp *KeyPair) Public() *rsa.PublicKey {
	return &kp.Private.PublicKey
}

// PublicKeyFromParts builds a public key from wire (n, e) values.
func PublicKeyFromParts(n *big.Int, e int64) (*rsa.PublicKey, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, fmt.Errorf("invalid RSA modulus")
	}
	if e < 3 || e > 1<<31-1 {
		return nil, fmt.Errorf("invalid RSA exponent: %d", e)
	}
	return &rsa.PublicKey{N: new(big.Int).Set(n), E: int(e)}, nil
}

// Encrypt encrypts plaintext with the peer's public key, chunking the input
// so payloads larger than one RSA block survive the trip. Each chunk of at
// most k-11 bytes becomes one k-byte PKCS#1 v1.5 block; blocks are
// concatenated in order.
func Encrypt(plaintext []byte, pub *rsa.PublicKey) ([]byte, error) {
	if pub == nil {
		return nil, fmt.Errorf("no public key")
	}

	k := pub.Size()
	chunk := k - pkcs1Overhead
	out := make([]byte, 0, ((len(plaintext)/chunk)+1)*k)

	for off := 0; off < len(plaintext) || off == 0; off += chunk {
		end := min(off+chunk, len(plaintext))
		block, err := rsa.EncryptPKCS1v15(rand.Reader, pub, plaintext[off:end])
		if err != nil {
			return nil, fmt.Errorf("encrypting block at %d: %w", off, err)
		}
		out = append(out, block...)
		if end == len(plaintext) {
			break
		}
	}

	return out, nil
}

// Decrypt reverses Encrypt with the private key. The ciphertext must be a
// whole number of k-byte blocks.
func Decrypt(ciphertext []byte, priv *rsa.PrivateKey) ([]byte, error) {
	k := priv.Size()
	if len(ciphertext) == 0 || len(ciphertext)%k != 0 {
		return nil, fmt.Errorf("ciphertext length %d is not a multiple of block size %d", len(ciphertext), k)
	}

	out := make([]byte, 0, len(ciphertext))
	for off := 0; off < len(ciphertext); off += k {
		block, err := rsa.DecryptPKCS1v15(nil, priv, ciphertext[off:off+k])
		if err != nil {
			return nil, fmt.Errorf("decrypting block at %d: %w", off, err)
		}
		out = append(out, block...)
	}

	return out, nil
}
