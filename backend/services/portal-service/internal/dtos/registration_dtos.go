package dtos

import (
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/forms"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/services"
	"github.com/google/uuid"
)

// ----------------------
// Requests
// ----------------------

// SetFieldsRequest maps field names to their new values, e.g.
// {"fields": {"firstName": "Alice", "pincode": "411001"}}.
type SetFieldsRequest struct {
	Fields map[forms.Field]string `json:"fields" validate:"required,min=1"`
}

type SelectOptionRequest struct {
	Code string `json:"code" validate:"required,max=100"`
}

// ----------------------
// Responses
// ----------------------

type WizardResponse struct {
	ID uuid.UUID `json:"id"`
	services.RegistrationState
	FieldErrors []forms.FieldError `json:"fieldErrors,omitempty"`
}

type SubmitRegistrationResponse struct {
	WizardResponse
	Username           string `json:"username,omitempty"`
	OTPValiditySeconds int    `json:"otpValiditySeconds,omitempty"`
}

func NewWizardResponse(id uuid.UUID, flow *services.RegistrationFlow) WizardResponse {
	return WizardResponse{ID: id, RegistrationState: flow.Snapshot()}
}
