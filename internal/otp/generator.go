package otp

import (
	"crypto/rand"
	"fmt"
)

// DefaultCodeLength matches the width of codes sent in verification emails.
const DefaultCodeLength = 6

// Generate returns a numeric one-time code of the given length, each digit
// drawn from a cryptographically secure source. Codes are short-lived and
// single-use, but guessability still matters, so math/rand is not enough.
func Generate(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("invalid code length %d", length)
	}
	digits := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(digits) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			// 250 is the largest multiple of 10 that fits in a byte;
			// rejecting the tail keeps every digit equally likely.
			if b >= 250 {
				continue
			}
			digits = append(digits, '0'+b%10)
			if len(digits) == length {
				break
			}
		}
	}
	return string(digits), nil
}
