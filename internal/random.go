package internal

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	minDigits = 1
	maxDigits = 32
)

// RandomDigits returns a decimal string of the given length drawn from
// crypto/rand. It backs both one-time passcodes and handle suffixes.
func RandomDigits(digits int) (string, error) {
	if digits < minDigits || digits > maxDigits {
		return "", errors.New("invalid digit count")
	}

	var b strings.Builder
	b.Grow(digits)

	max := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}
