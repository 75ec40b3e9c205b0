package security

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Hash domains keep digests of different kinds of value from colliding.
const (
	DomainCouponCode = "coupon-code"
	DomainIP         = "ip"
	DomainUserAgent  = "user-agent"
	DomainIdentity   = "identity"
)

// ErrEmptySecret is returned when a hasher is built without key material.
var ErrEmptySecret = fmt.Errorf("hash secret cannot be empty")

// Hasher produces keyed BLAKE2b-256 digests. Without the secret, stored digests
// cannot be brute-forced back into coupon codes or client addresses.
type Hasher struct {
	key []byte
}

// NewHasher derives a 32-byte key from secret.
func NewHasher(secret string) (*Hasher, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	key := blake2b.Sum256([]byte(secret))
	return &Hasher{key: key[:]}, nil
}

// Sum returns the hex digest of value under domain.
func (h *Hasher) Sum(domain, value string) string {
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// only reachable with a key over 64 bytes, which NewHasher never builds
		panic(fmt.Sprintf("blake2b: %v", err))
	}
	mac.Write([]byte(domain))
	mac.Write([]byte{0})
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

// CouponCode hashes an already-normalized coupon code.
func (h *Hasher) CouponCode(normalized string) string {
	return h.Sum(DomainCouponCode, normalized)
}

// Optional hashes value when present, returning nil otherwise.
func (h *Hasher) Optional(domain, value string) *string {
	if value == "" {
		return nil
	}
	sum := h.Sum(domain, value)
	return &sum
}

// Equal compares two digests in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
