package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harborstay/booking-backend/api/controllers"
	"github.com/harborstay/booking-backend/api/middleware"
	"github.com/harborstay/booking-backend/internal/availability"
	"github.com/harborstay/booking-backend/internal/coupons"
	"github.com/harborstay/booking-backend/internal/inventory"
	"github.com/harborstay/booking-backend/internal/ratelimit"
	"github.com/harborstay/booking-backend/pkg/config"
	"github.com/harborstay/booking-backend/pkg/enums"
	"github.com/harborstay/booking-backend/pkg/logger"
	pkgredis "github.com/harborstay/booking-backend/pkg/redis"
)

// Dependencies carries everything the HTTP surface needs. Redis and the
// metrics gatherer are optional.
type Dependencies struct {
	DB           controllers.Pinger
	Redis        controllers.Pinger
	Idempotency  pkgredis.IdempotencyStore
	Limiter      coupons.Limiter
	Gatherer     prometheus.Gatherer
	Availability availability.Service
	Coupons      coupons.Service
	Inventory    inventory.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.RealIP(cfg.Proxy.TrustedNets()),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(ratelimit.PolicySearch, deps.Limiter, logg)).
			Get("/availability", controllers.AvailabilitySearch(deps.Availability, logg))

		r.Route("/coupons", func(r chi.Router) {
			r.Post("/validate", controllers.CouponValidate(deps.Coupons, logg))
			r.Post("/reserve", controllers.CouponReserve(deps.Coupons, logg))
			r.Post("/release", controllers.CouponRelease(deps.Coupons, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		// Inline group so the idempotency rules see the full route pattern.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Idempotency(deps.Idempotency, logg))

			r.With(middleware.RequireRoles(logg, enums.OperatorRoleAdmin, enums.OperatorRoleRevenueManager)).
				Post("/inventory/adjustments", controllers.AdminInventoryAdjust(deps.Inventory, logg))
			r.With(middleware.RequireRoles(logg, enums.OperatorRoleAdmin, enums.OperatorRoleFrontDesk)).
				Post("/coupons/redemptions/{redemptionId}/confirm", controllers.AdminConfirmRedemption(deps.Coupons, logg))
		})
	})

	return r
}
