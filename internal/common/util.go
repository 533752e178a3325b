package common

import (
	"crypto/rand"
	"encoding/hex"
)

// randRead is the entropy source, replaced in tests.
var randRead = rand.Read

// MakeRandHexString generates size random bytes and returns them hex encoded,
// so the result is 2*size characters long.
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := randRead(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites b with zeros. Used for passwords read from the
// terminal. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
