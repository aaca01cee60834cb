package utils

import (
	"crypto/rand"
	"math/big"
)

// OtpDigits is the fixed length of generated one-time codes.
const OtpDigits = 6

// GenerateOtpCode returns a fixed-length numeric one-time code drawn from
// crypto/rand. Leading zeros are kept, so the result is always exactly
// OtpDigits characters long.
func GenerateOtpCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < OtpDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	code := n.String()
	for len(code) < OtpDigits {
		code = "0" + code
	}
	return code, nil
}
