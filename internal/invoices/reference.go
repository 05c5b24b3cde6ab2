package invoices

import (
	"crypto/rand"
	"math/big"
)

// ReferenceLength is the number of characters in an invoice reference.
const ReferenceLength = 8

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ReferenceGenerator produces candidate invoice references.
type ReferenceGenerator func() (string, error)

// RandomReference returns an 8 character uppercase alphanumeric reference.
func RandomReference() (string, error) {
	limit := big.NewInt(int64(len(referenceAlphabet)))
	buf := make([]byte, ReferenceLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = referenceAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// ValidReference reports whether s has the reference shape.
func ValidReference(s string) bool {
	if len(s) != ReferenceLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
