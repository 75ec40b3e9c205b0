package coupons

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborstay/booking-backend/pkg/security"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "SUMMER25", NormalizeCode("  summer25 "))
	assert.Equal(t, "guest@example.com", NormalizeEmail(" Guest@Example.COM "))
	assert.Equal(t, "+15551234567", NormalizePhone("+1 (555) 123-4567"))
	assert.Equal(t, "5551234567", NormalizePhone("555.123.4567"))
	assert.Equal(t, "", NormalizePhone(" + "))
	assert.Equal(t, "15551234", NormalizePhone("1+5551234"))
}

func TestFingerprint(t *testing.T) {
	h, err := security.NewHasher("fingerprint-secret-value")
	require.NoError(t, err)

	hash, prefix := Fingerprint(h, " summer25", 4)
	assert.Equal(t, "SUMM", prefix)
	assert.Equal(t, h.CouponCode("SUMMER25"), hash)

	again, _ := Fingerprint(h, "SUMMER25", 4)
	assert.Equal(t, hash, again)

	_, short := Fingerprint(h, "ab", 4)
	assert.Equal(t, "AB", short)
	assert.Len(t, hashPrefix(hash), 12)
}
