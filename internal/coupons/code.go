package coupons

import (
	"strings"
	"unicode"

	"github.com/harborstay/booking-backend/pkg/security"
)

// NormalizeCode trims and upper-cases a submitted code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeEmail trims and lower-cases a guest email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone keeps digits and a leading plus sign.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

// Fingerprint returns the stored hash and lookup prefix for a plaintext code.
func Fingerprint(h *security.Hasher, code string, prefixLen int) (hash, prefix string) {
	normalized := NormalizeCode(code)
	prefix = normalized
	if prefixLen > 0 && len(prefix) > prefixLen {
		prefix = prefix[:prefixLen]
	}
	return h.CouponCode(normalized), prefix
}

// hashPrefix shortens a code digest for the attempt log.
func hashPrefix(hash string) string {
	const n = 12
	if len(hash) > n {
		return hash[:n]
	}
	return hash
}
