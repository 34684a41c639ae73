package okato

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest returns the hex BLAKE3-256 digest of the file at path. It lets the
// import journal tell re-runs of the same export apart from new exports.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInputAccess, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrInputAccess, path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
