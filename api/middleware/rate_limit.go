package middleware

import (
	"context"
	"net/http"

	"github.com/harborstay/booking-backend/api/responses"
	"github.com/harborstay/booking-backend/internal/ratelimit"
	pkgerrors "github.com/harborstay/booking-backend/pkg/errors"
	"github.com/harborstay/booking-backend/pkg/logger"
)

type attemptLimiter interface {
	Allow(ctx context.Context, policy, origin, identity string) (ratelimit.Decision, error)
}

// RateLimit throttles a route per client origin under the named policy.
func RateLimit(policy string, limiter attemptLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			decision, err := limiter.Allow(ctx, policy, ClientIP(r), "")
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if !decision.Allowed {
				respondRateLimited(ctx, logg, w, policy, decision)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy string, decision ratelimit.Decision) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"scope":          decision.Scope,
			"policy":         policy,
			"attempts":       decision.Count,
			"limit":          decision.Limit,
			"window_seconds": int(decision.Window.Seconds()),
		})
		logg.Warn(logCtx, "rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}
