package authapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StatusSuccess is the status value the auth service reports on success.
const StatusSuccess = "success"

type EnterpriseDetails struct {
	EnterpriseName          string `json:"enterpriseName"`
	EnterpriseEmail         string `json:"enterpriseEmail"`
	EnterpriseContactNumber string `json:"enterpriseContactNumber"`
	EnterpriseCountry       string `json:"enterpriseCountry"`
	EnterpriseState         string `json:"enterpriseState"`
	EnterpriseCity          string `json:"enterpriseCity"`
	EnterprisePinCode       string `json:"enterprisePinCode"`
	EnterpriseAddress       string `json:"enterpriseAddress"`
}

type EnterpriseRegistrationRequest struct {
	UserFirstName     string            `json:"userFirstName"`
	UserLastName      string            `json:"userLastName"`
	UserName          string            `json:"userName"`
	UserPassword      string            `json:"userPassword"`
	EnterpriseDetails EnterpriseDetails `json:"enterpriseDetails"`
}

type EnterpriseRegistrationResponse struct {
	Status             string `json:"status"`
	Message            string `json:"message"`
	Username           string `json:"username"`
	OTPValiditySeconds int    `json:"otpValiditySeconds"`
	Timestamp          string `json:"timestamp"`
}

func (r *EnterpriseRegistrationResponse) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}

type EnterpriseLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserID accepts either a JSON string or a JSON number.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("userId must be a string or number: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

type User struct {
	UserID    UserID `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type Auth struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}

type LoginData struct {
	User User `json:"user"`
	Auth Auth `json:"auth"`
}

type EnterpriseLoginResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    LoginData `json:"data"`
}

func (r *EnterpriseLoginResponse) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}
