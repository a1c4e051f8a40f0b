package token

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	linkIDPrefix   = "sl_"
	linkIDBytes    = 16
	linkTokenBytes = 12

	errGenerateRandomBytesFmt = "failed to generate random bytes: %w"
	errLengthPositiveFmt      = "length must be positive"
)

func GenerateHex(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf(errLengthPositiveFmt)
	}

	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf(errGenerateRandomBytesFmt, err)
	}

	return hex.EncodeToString(bytes), nil
}

// GenerateLinkID returns a stable opaque shared-link identifier.
func GenerateLinkID() (string, error) {
	s, err := GenerateHex(linkIDBytes)
	if err != nil {
		return "", err
	}
	return linkIDPrefix + s, nil
}

// GenerateLinkToken returns the random URL segment of a shared link.
func GenerateLinkToken() (string, error) {
	bytes := make([]byte, linkTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf(errGenerateRandomBytesFmt, err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
