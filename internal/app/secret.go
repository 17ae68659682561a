package app

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// MinSessionSecretBytes is the shortest decoded session secret accepted.
const MinSessionSecretBytes = 32

var errEmptySecret = errors.New("secret is empty")

// DecodeSecret decodes a hex or base64 secret to raw bytes. Anything else is
// used as-is.
func DecodeSecret(value string) ([]byte, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, errEmptySecret
	}

	// runtime defaults are hex encoded
	if len(v)%2 == 0 {
		if decoded, err := hex.DecodeString(v); err == nil {
			return decoded, nil
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(v); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(v); err == nil {
		return decoded, nil
	}
	return []byte(v), nil
}

func validateSessionSecret(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	decoded, err := DecodeSecret(value)
	if err != nil {
		return err
	}
	if len(decoded) < MinSessionSecretBytes {
		return fmt.Errorf("config: auth.session.secret must decode to at least %d bytes, got %d", MinSessionSecretBytes, len(decoded))
	}
	return nil
}
