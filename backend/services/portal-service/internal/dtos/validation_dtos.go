package dtos

// ------------------------------------------------------------------
//  Requests for "is this contact detail deliverable?" checks.
//  Success ⇒ HTTP 200 with an empty body.
//  Failure ⇒ non-200 with one of the error codes in go-utils/response.go.
// ------------------------------------------------------------------

type ValidateEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ValidatePhoneRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,e164"`
	CountryCode string `json:"countryCode,omitempty" validate:"omitempty,iso3166_1_alpha2"`
}
