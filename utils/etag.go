package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// GenerateETag derives a weak validator from the JSON form of v.
func GenerateETag(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return `W/"` + hex.EncodeToString(sum[:16]) + `"`, nil
}
