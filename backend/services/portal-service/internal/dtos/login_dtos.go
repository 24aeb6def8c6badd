package dtos

import (
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/forms"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/services"
)

// LoginRequest is decoded straight into the login form; the form validator
// produces the user-facing messages.
type LoginRequest = forms.LoginValues

type LoginUser struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type LoginResponse struct {
	Notifications []services.Notification `json:"notifications"`
	FieldErrors   []forms.FieldError      `json:"fieldErrors,omitempty"`
	User          *LoginUser              `json:"user,omitempty"`
	ExpiresIn     int64                   `json:"expiresIn,omitempty"`
}
