package scaffold

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// SaltAlphabet is the character set of WordPress keys and salts
const SaltAlphabet = "!@#$%^&*()-_ []{}<>~`+=,.;:/?|abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SaltLength is the length of every generated key and salt
const SaltLength = 64

// SaltNames are the wp-config constants filled from [[NAME]] placeholders
var SaltNames = []string{
	"AUTH_KEY",
	"SECURE_AUTH_KEY",
	"LOGGED_IN_KEY",
	"NONCE_KEY",
	"AUTH_SALT",
	"SECURE_AUTH_SALT",
	"LOGGED_IN_SALT",
	"NONCE_SALT",
}

// GenerateSalt returns SaltLength characters drawn uniformly from SaltAlphabet.
// A nil source uses crypto/rand.
func GenerateSalt(source io.Reader) (string, error) {
	if source == nil {
		source = rand.Reader
	}
	max := big.NewInt(int64(len(SaltAlphabet)))
	b := make([]byte, SaltLength)
	for i := range b {
		n, err := rand.Int(source, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate salt: %w", err)
		}
		b[i] = SaltAlphabet[n.Int64()]
	}
	return string(b), nil
}
