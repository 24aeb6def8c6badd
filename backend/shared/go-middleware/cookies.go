package middleware

// Cookie names shared by every service that issues or reads CloseAuth tokens.
const (
	AccessTokenCookieName  = "closeauth_access_token"
	RefreshTokenCookieName = "closeauth_refresh_token"
)
