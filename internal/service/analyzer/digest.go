package analyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// DigestBytes returns the hex-encoded SHA-256 digest of data. The same bytes
// always produce the same digest, including the empty slice.
func DigestBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Digest streams r through SHA-256 so large payloads never have to be
// memory-resident at once.
func Digest(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to read payload: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
