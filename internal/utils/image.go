package utils

import (
	"encoding/base64"
	"os"
)

// ImageToBase64 reads the file at path and returns its contents as a
// base64 string.
func ImageToBase64(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
