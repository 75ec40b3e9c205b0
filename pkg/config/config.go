package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Booking      BookingConfig
	Coupon       CouponConfig
	RateLimit    RateLimitConfig
	Search       SearchConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
	Proxy        ProxyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Coupon.validate(); err != nil {
		return nil, err
	}
	if err := cfg.RateLimit.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Proxy.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HARBORSTAY_APP_ENV" required:"true"`
	Port         string `envconfig:"HARBORSTAY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HARBORSTAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HARBORSTAY_LOG_WARN_STACK" default:"false"`
	// Timezone is the property's local zone, used to decide what "today" is
	// when rejecting stays that start in the past.
	Timezone string `envconfig:"HARBORSTAY_TIMEZONE" default:"UTC"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves Timezone, falling back to UTC for unknown zones.
func (a AppConfig) Location() *time.Location {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

type ServiceConfig struct {
	Kind string `envconfig:"HARBORSTAY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"HARBORSTAY_DB_DSN"`
	Driver string `envconfig:"HARBORSTAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HARBORSTAY_DB_HOST"`
	LegacyPort     int    `envconfig:"HARBORSTAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HARBORSTAY_DB_USER"`
	LegacyPassword string `envconfig:"HARBORSTAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"HARBORSTAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"HARBORSTAY_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"HARBORSTAY_SQLITE_PATH" default:"harborstay.db"`

	MaxOpenConns    int           `envconfig:"HARBORSTAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HARBORSTAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HARBORSTAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HARBORSTAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HARBORSTAY_REDIS_URL"`
	Address      string        `envconfig:"HARBORSTAY_REDIS_ADDR"`
	Password     string        `envconfig:"HARBORSTAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"HARBORSTAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HARBORSTAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HARBORSTAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HARBORSTAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HARBORSTAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HARBORSTAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint has been configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// JWTConfig verifies operator tokens minted by the admin identity service.
type JWTConfig struct {
	Secret            string `envconfig:"HARBORSTAY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"HARBORSTAY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"HARBORSTAY_JWT_EXPIRATION_MINUTES" default:"60"`
}

type BookingConfig struct {
	// PendingTTL is how long a PENDING booking keeps holding inventory.
	PendingTTL time.Duration `envconfig:"HARBORSTAY_BOOKING_PENDING_TTL" default:"30m"`
}

type CouponConfig struct {
	ReservationTTL time.Duration `envconfig:"HARBORSTAY_COUPON_RESERVATION_TTL" default:"15m"`
	HashSecret     string        `envconfig:"HARBORSTAY_COUPON_HASH_SECRET" required:"true"`
	PrefixLength   int           `envconfig:"HARBORSTAY_COUPON_PREFIX_LENGTH" default:"4"`
}

func (c CouponConfig) validate() error {
	if c.ReservationTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvCouponReservationTTL)
	}
	if len(c.HashSecret) < minHashSecretLen {
		return fmt.Errorf("%s must be at least %d characters", EnvCouponHashSecret, minHashSecretLen)
	}
	return nil
}

type RateLimitConfig struct {
	Backend        string        `envconfig:"HARBORSTAY_RATE_LIMIT_BACKEND" default:"memory"`
	ValidateWindow time.Duration `envconfig:"HARBORSTAY_RATE_LIMIT_VALIDATE_WINDOW" default:"10m"`
	ValidateMax    int           `envconfig:"HARBORSTAY_RATE_LIMIT_VALIDATE_MAX" default:"30"`
	ReserveWindow  time.Duration `envconfig:"HARBORSTAY_RATE_LIMIT_RESERVE_WINDOW" default:"10m"`
	ReserveMax     int           `envconfig:"HARBORSTAY_RATE_LIMIT_RESERVE_MAX" default:"10"`
	SearchWindow   time.Duration `envconfig:"HARBORSTAY_RATE_LIMIT_SEARCH_WINDOW" default:"1m"`
	SearchMax      int           `envconfig:"HARBORSTAY_RATE_LIMIT_SEARCH_MAX" default:"120"`
}

// UsesRedis reports whether limiter buckets live in Redis instead of process memory.
func (r RateLimitConfig) UsesRedis() bool {
	return strings.EqualFold(strings.TrimSpace(r.Backend), RateLimitBackendRedis)
}

func (r RateLimitConfig) validate() error {
	backend := strings.ToLower(strings.TrimSpace(r.Backend))
	if backend != RateLimitBackendMemory && backend != RateLimitBackendRedis {
		return fmt.Errorf("%s must be %q or %q", EnvRateLimitBackend, RateLimitBackendMemory, RateLimitBackendRedis)
	}
	return nil
}

type SearchConfig struct {
	MaxNights int `envconfig:"HARBORSTAY_SEARCH_MAX_NIGHTS" default:"30"`
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"HARBORSTAY_CRON_INTERVAL" default:"15m"`
	AttemptLogRetention   time.Duration `envconfig:"HARBORSTAY_CRON_ATTEMPT_LOG_RETENTION" default:"2160h"`
	AttemptLogDeleteBatch int           `envconfig:"HARBORSTAY_CRON_ATTEMPT_LOG_DELETE_BATCH" default:"1000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HARBORSTAY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HARBORSTAY_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"HARBORSTAY_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// ProxyConfig lists the load balancers whose X-Forwarded-For and X-Real-IP
// headers are believed. Entries are CIDRs or bare IPs. Empty trusts no one.
type ProxyConfig struct {
	TrustedProxies []string `envconfig:"HARBORSTAY_TRUSTED_PROXIES"`
}

// TrustedNets parses TrustedProxies, skipping entries that do not parse.
func (p ProxyConfig) TrustedNets() []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(p.TrustedProxies))
	for _, raw := range p.TrustedProxies {
		if n, err := parseNet(raw); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}

func (p ProxyConfig) validate() error {
	for _, raw := range p.TrustedProxies {
		if _, err := parseNet(raw); err != nil {
			return fmt.Errorf("%s: %w", EnvTrustedProxies, err)
		}
	}
	return nil
}

func parseNet(raw string) (*net.IPNet, error) {
	value := strings.TrimSpace(raw)
	if strings.Contains(value, "/") {
		_, n, err := net.ParseCIDR(value)
		if err != nil {
			return nil, fmt.Errorf("invalid cidr %q", value)
		}
		return n, nil
	}
	ip := net.ParseIP(value)
	if ip == nil {
		return nil, fmt.Errorf("invalid ip %q", value)
	}
	bits := 128
	if v4 := ip.To4(); v4 != nil {
		ip, bits = v4, 32
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
