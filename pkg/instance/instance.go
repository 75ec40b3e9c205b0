package instance

import (
	"os"

	"github.com/harborstay/booking-backend/pkg/env"
)

// EnvInstanceID overrides the detected instance identifier.
const EnvInstanceID = "HARBORSTAY_INSTANCE_ID"

// GetID returns the process identifier used in logs, falling back to the
// hostname and then "local".
func GetID() string {
	if id := env.Get(EnvInstanceID, ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
