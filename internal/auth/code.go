package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const CodeLength = 4

// GenerateCode creates a 4-digit zero-padded numeric code using crypto/rand.
// Each code is drawn independently and uniformly from [0000, 9999].
func GenerateCode() (string, error) {
	max := big.NewInt(10000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generating random code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
