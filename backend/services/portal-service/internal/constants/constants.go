package constants

import "time"

const (
	// Path parameters
	WizardIDParam = "id"
	CountryParam  = "country"
	StateParam    = "state"

	// MaxRequestBodyBytes bounds every JSON request body.
	MaxRequestBodyBytes = 64 << 10

	// GeoLookupTimeout bounds a single country/state/city lookup made on
	// behalf of a request.
	GeoLookupTimeout = 10 * time.Second

	// RefreshCookiePath scopes the refresh-token cookie. The portal hands the
	// cookie to the auth service's refresh endpoint behind the same origin.
	RefreshCookiePath = "/api/v1/refresh_token"
)
