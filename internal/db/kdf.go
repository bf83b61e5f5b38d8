package db

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Password digests use PBKDF2-SHA256 in the Django digest format:
// pbkdf2_sha256$<iterations>$<salt>$<base64 digest>.
const (
	kdfAlgorithm  = "pbkdf2_sha256"
	kdfIterations = 600_000
	kdfSaltBytes  = 16
	kdfKeyLen     = 32
)

// HashPassword derives a salted digest string for storage.
func HashPassword(password string) (string, error) {
	raw := make([]byte, kdfSaltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	salt := base64.RawStdEncoding.EncodeToString(raw)

	key := pbkdf2.Key([]byte(password), []byte(salt), kdfIterations, kdfKeyLen, sha256.New)
	digest := base64.StdEncoding.EncodeToString(key)

	return fmt.Sprintf("%s$%d$%s$%s", kdfAlgorithm, kdfIterations, salt, digest), nil
}

// VerifyPassword reports whether password matches the stored digest.
// Malformed digests verify as false, never as an error the caller must
// distinguish from a wrong password.
func VerifyPassword(stored, password string) bool {
	parts := strings.SplitN(stored, "$", 4)
	if len(parts) != 4 || parts[0] != kdfAlgorithm {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	salt := parts[2]
	want, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}

	got := pbkdf2.Key([]byte(password), []byte(salt), iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
