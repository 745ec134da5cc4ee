package security

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// helper that compares a bcrypt hash with a plaintext password.

func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// NewResetToken returns a 32-hex-char opaque token for the password reset flow.
func NewResetToken() (string, error) {
	b := make([]byte, 16)

	_, err := rand.Read(b)

	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

const initialPasswordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewInitialPassword generates a random password for admin-created accounts.
// The plaintext is delivered out-of-band by mail and never persisted.
func NewInitialPassword(length int) (string, error) {
	if length <= 0 {
		length = 12
	}

	out := make([]byte, length)
	max := big.NewInt(int64(len(initialPasswordAlphabet)))

	for i := range out {
		n, err := rand.Int(rand.Reader, max)

		if err != nil {
			return "", err
		}

		out[i] = initialPasswordAlphabet[n.Int64()]
	}

	return string(out), nil
}
