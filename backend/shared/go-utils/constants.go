package utils

const (
	OrganizationName                      = "CloseAuth"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"
)
