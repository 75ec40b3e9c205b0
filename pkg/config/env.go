package config

const (
	EnvPrefix = "HARBORSTAY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"

	minHashSecretLen = 16
)

const (
	EnvAppEnv   = "HARBORSTAY_APP_ENV"
	EnvPort     = "HARBORSTAY_APP_PORT"
	EnvLogLevel = "HARBORSTAY_LOG_LEVEL"

	EnvDBDSN  = "HARBORSTAY_DB_DSN"
	EnvDBHost = "HARBORSTAY_DB_HOST"
	EnvDBUser = "HARBORSTAY_DB_USER"
	EnvDBName = "HARBORSTAY_DB_NAME"

	EnvRedisURL = "HARBORSTAY_REDIS_URL"

	EnvJWTSecret = "HARBORSTAY_JWT_SECRET"
	EnvJWTIssuer = "HARBORSTAY_JWT_ISSUER"

	EnvBookingPendingTTL    = "HARBORSTAY_BOOKING_PENDING_TTL"
	EnvCouponReservationTTL = "HARBORSTAY_COUPON_RESERVATION_TTL"
	EnvCouponHashSecret     = "HARBORSTAY_COUPON_HASH_SECRET"

	EnvRateLimitBackend     = "HARBORSTAY_RATE_LIMIT_BACKEND"
	EnvRateLimitReserveMax  = "HARBORSTAY_RATE_LIMIT_RESERVE_MAX"
	EnvRateLimitValidateMax = "HARBORSTAY_RATE_LIMIT_VALIDATE_MAX"

	EnvUseSQLite = "HARBORSTAY_USE_SQLITE"

	EnvTrustedProxies = "HARBORSTAY_TRUSTED_PROXIES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
