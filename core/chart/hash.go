package chart

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// FingerprintLines returns the BLAKE3 fingerprint of raw source lines.
// Lines are joined with a newline so the fingerprint is independent of
// the platform's line endings.
func FingerprintLines(lines []string) string {
	h := blake3.New()
	for i, line := range lines {
		if i > 0 {
			h.Write([]byte{'\n'})
		}
		h.Write([]byte(line))
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// Fingerprint returns the BLAKE3 fingerprint of the document's rendered
// text. Two documents with identical visible content share a
// fingerprint regardless of how their segments are split.
func (d *Document) Fingerprint() string {
	return FingerprintLines(d.Text())
}
