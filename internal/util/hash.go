package util

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// HashContent computes the sha256 hex digest of a stream. Used for upload
// de-duplication.
func HashContent(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
