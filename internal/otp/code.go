package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"strconv"
)

const (
	codeMin = 1000
	codeMax = 9999
)

// NewCode returns a 4-digit code drawn uniformly from [1000, 9999].
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// equal compares codes in constant time. Empty input never matches.
func equal(stored, submitted string) bool {
	if stored == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
