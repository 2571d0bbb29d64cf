// Package otp generates numeric one-time codes.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generate returns a zero-padded numeric code of the given length.
func Generate(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", fmt.Errorf("otp length %d out of range", digits)
	}
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
