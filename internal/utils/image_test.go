package utils

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

func TestImageToBase64(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatar.png")
	raw := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	encoded, err := ImageToBase64(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if encoded != base64.StdEncoding.EncodeToString(raw) {
		t.Errorf("unexpected encoding %q", encoded)
	}
}

func TestImageToBase64MissingFile(t *testing.T) {
	if _, err := ImageToBase64(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
