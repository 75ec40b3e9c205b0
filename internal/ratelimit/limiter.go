package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harborstay/booking-backend/pkg/config"
)

// Policy names used by the booking surface.
const (
	PolicyValidate = "validate"
	PolicyReserve  = "reserve"
	PolicySearch   = "search"
)

// Bucket scopes.
const (
	ScopeOrigin   = "origin"
	ScopeIdentity = "identity"
)

// Store records a hit in a sliding window and returns the hits still inside it.
type Store interface {
	Hit(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error)
}

// Policy is a window and the maximum attempts allowed per bucket inside it.
type Policy struct {
	Name   string
	Window time.Duration
	Max    int
}

func (p Policy) enabled() bool {
	return p.Window > 0 && p.Max > 0
}

// Decision is the outcome of one Allow call. When throttled, Scope names the
// bucket that tripped.
type Decision struct {
	Allowed bool
	Scope   string
	Count   int64
	Limit   int
	Window  time.Duration
}

// Limiter keys every attempt twice: once by origin, once by origin plus guest
// identity. Exceeding either bucket throttles the attempt.
type Limiter struct {
	store    Store
	policies map[string]Policy
	now      func() time.Time
}

// New builds a limiter. A nil clock defaults to time.Now.
func New(store Store, now func() time.Time, policies ...Policy) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("rate limit store required")
	}
	if now == nil {
		now = time.Now
	}
	byName := make(map[string]Policy, len(policies))
	for _, p := range policies {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			return nil, errors.New("rate limit policy name required")
		}
		p.Name = name
		byName[name] = p
	}
	return &Limiter{store: store, policies: byName, now: now}, nil
}

// PoliciesFromConfig maps configuration onto the validate, reserve and search policies.
func PoliciesFromConfig(cfg config.RateLimitConfig) []Policy {
	return []Policy{
		{Name: PolicyValidate, Window: cfg.ValidateWindow, Max: cfg.ValidateMax},
		{Name: PolicyReserve, Window: cfg.ReserveWindow, Max: cfg.ReserveMax},
		{Name: PolicySearch, Window: cfg.SearchWindow, Max: cfg.SearchMax},
	}
}

// Allow records the attempt and reports whether it stays within policy. An
// unknown or disabled policy always allows.
func (l *Limiter) Allow(ctx context.Context, policy, origin, identity string) (Decision, error) {
	p, ok := l.policies[strings.ToLower(policy)]
	if !ok || !p.enabled() {
		return Decision{Allowed: true}, nil
	}

	now := l.now()
	origin = strings.TrimSpace(origin)
	if origin == "" {
		origin = "unknown"
	}

	decision := Decision{Allowed: true, Limit: p.Max, Window: p.Window}

	originCount, err := l.store.Hit(ctx, OriginKey(p.Name, origin), now, p.Window)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s origin bucket: %w", p.Name, err)
	}
	decision.Count = originCount
	if originCount > int64(p.Max) {
		decision.Allowed = false
		decision.Scope = ScopeOrigin
	}

	if identity = strings.TrimSpace(identity); identity != "" {
		idCount, err := l.store.Hit(ctx, IdentityKey(p.Name, origin, identity), now, p.Window)
		if err != nil {
			return Decision{}, fmt.Errorf("rate limit %s identity bucket: %w", p.Name, err)
		}
		if decision.Allowed && idCount > int64(p.Max) {
			decision.Allowed = false
			decision.Scope = ScopeIdentity
			decision.Count = idCount
		}
	}
	return decision, nil
}

// OriginKey is the bucket for every attempt from one network origin.
func OriginKey(policy, origin string) string {
	return policy + ":ip:" + origin
}

// IdentityKey is the bucket for one guest identity from one origin.
func IdentityKey(policy, origin, identity string) string {
	return policy + ":ipid:" + origin + "|" + identity
}
