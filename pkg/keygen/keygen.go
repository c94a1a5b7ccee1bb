package keygen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	alphaNumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	requestIDLength = 10
)

// SessionID generates a new login session identifier (UUID v4)
func SessionID() string {
	return uuid.New().String()
}

// IsSessionID reports whether s looks like a value SessionID produced
func IsSessionID(s string) bool {
	id, err := uuid.Parse(s)
	return err == nil && id.Version() == 4
}

// RequestID generates a short identifier attached to every request's log lines
func RequestID() string {
	id, err := randomString(requestIDLength, alphaNumeric)
	if err != nil {
		return uuid.New().String()[:requestIDLength]
	}
	return id
}

// Secret generates n random bytes, hex encoded. Used for signing keys.
func Secret(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("invalid secret length: %d", n)
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// randomString generates a random string of given length from the given charset
func randomString(length int, charset string) (string, error) {
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}

	return string(result), nil
}
