package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisitorFingerprint(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		a := VisitorFingerprint("203.0.113.7", "Mozilla/5.0 (X11; Linux x86_64)")
		b := VisitorFingerprint("203.0.113.7", "Mozilla/5.0 (X11; Linux x86_64)")
		assert.Equal(t, a, b)
	})

	t.Run("FixedLengthHex", func(t *testing.T) {
		fp := VisitorFingerprint("198.51.100.1", "curl/8.5.0")
		assert.Len(t, fp, 64)
		for _, r := range fp {
			assert.Contains(t, "0123456789abcdef", string(r))
		}
	})

	t.Run("DifferentIPDiffers", func(t *testing.T) {
		a := VisitorFingerprint("203.0.113.7", "curl/8.5.0")
		b := VisitorFingerprint("203.0.113.8", "curl/8.5.0")
		assert.NotEqual(t, a, b)
	})

	t.Run("DifferentUserAgentDiffers", func(t *testing.T) {
		a := VisitorFingerprint("203.0.113.7", "curl/8.5.0")
		b := VisitorFingerprint("203.0.113.7", "curl/8.6.0")
		assert.NotEqual(t, a, b)
	})
}
