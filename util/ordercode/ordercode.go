// Package ordercode generates and normalizes rental order codes. The code is
// the cross-system join key echoed back by the payment provider, so it must be
// short, stable and comparable after provider-side normalization.
package ordercode

import (
	"strings"

	"github.com/google/uuid"
)

const Prefix = "PA"

// New returns a fresh prefixed order code, e.g. "PA3F7A2C91".
func New() string {
	raw := uuid.New()
	return Prefix + strings.ToUpper(raw.String()[:8])
}

// Normalize upper-cases a code and strips the prefix plus any stray
// separators, so provider-truncated codes still match ours.
func Normalize(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	c = strings.ReplaceAll(c, "-", "")
	c = strings.TrimPrefix(c, Prefix)
	return c
}

// Equal reports whether two codes identify the same order after
// normalization on both sides.
func Equal(a, b string) bool {
	return Normalize(a) != "" && Normalize(a) == Normalize(b)
}
