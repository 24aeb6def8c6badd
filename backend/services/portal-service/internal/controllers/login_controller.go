package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/config"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/constants"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/dtos"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/services"
	portal_utils "github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/authapi"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
)

type LoginController struct {
	loginService services.LoginService
	cfg          *config.Config
}

func NewLoginController(s services.LoginService, cfg *config.Config) *LoginController {
	return &LoginController{loginService: s, cfg: cfg}
}

// Login relays the credentials to the auth service and, on success, stores
// the issued tokens in HttpOnly cookies.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	flow, resp, err := c.loginService.Login(r.Context(), req)
	body := dtos.LoginResponse{Notifications: flow.Notifications()}
	if err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.As(err, &vErr):
			body.FieldErrors = vErr.Fields()
			utils.RespondErrorWithCode(w, http.StatusUnprocessableEntity, utils.ErrCodeValidation, "Validation failed", body, err)
		case errors.Is(err, services.ErrSubmitInProgress):
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, err.Error(), body, err)
		case errors.Is(err, authapi.ErrAPIURLNotConfigured):
			utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeConfiguration, err.Error(), body, err)
		case errors.Is(err, services.ErrLoginRejected):
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, notificationMessage(body.Notifications), body, err)
		default:
			utils.RespondErrorWithCode(w, http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, notificationMessage(body.Notifications), body, err)
		}
		return
	}

	auth := resp.Data.Auth
	accessTTL := portal_utils.AccessTokenTTL(auth.ExpiresIn, auth.AccessToken, time.Now(), portal_utils.DefaultAccessTokenTTL)
	portal_utils.SetAuthCookies(
		w,
		auth.AccessToken,
		auth.RefreshToken,
		accessTTL,
		portal_utils.DefaultRefreshTokenTTL,
		constants.RefreshCookiePath,
		c.cfg.LDFlag_SecureCookiesHighSecurity,
	)

	user := resp.Data.User
	body.User = &dtos.LoginUser{
		UserID:    string(user.UserID),
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
	body.ExpiresIn = int64(accessTTL.Seconds())
	utils.RespondWithJSON(w, http.StatusOK, body)
}

func notificationMessage(notes []services.Notification) string {
	if n := len(notes); n > 0 {
		return notes[n-1].Message
	}
	return "Login failed"
}
