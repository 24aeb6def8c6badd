package routes

const (
	// Health
	Health = "/health"

	// Registration wizard
	RegisterSessions       = "/api/v1/register/sessions"
	RegisterSession        = "/api/v1/register/sessions/{id}"
	RegisterSessionFields  = "/api/v1/register/sessions/{id}/fields"
	RegisterSessionCountry = "/api/v1/register/sessions/{id}/country"
	RegisterSessionState   = "/api/v1/register/sessions/{id}/state"
	RegisterSessionCity    = "/api/v1/register/sessions/{id}/city"
	RegisterSessionNext    = "/api/v1/register/sessions/{id}/next"
	RegisterSessionBack    = "/api/v1/register/sessions/{id}/back"
	RegisterSessionSubmit  = "/api/v1/register/sessions/{id}/submit"

	// Contact pre-checks
	RegisterEmailValid = "/api/v1/register/email/valid"
	RegisterPhoneValid = "/api/v1/register/phone/valid"

	// Login
	Login = "/api/v1/login"

	// Location lookups
	GeoCountries = "/api/v1/geo/countries"
	GeoStates    = "/api/v1/geo/countries/{country}/states"
	GeoCities    = "/api/v1/geo/countries/{country}/states/{state}/cities"
)
