package controllers

import (
	"errors"
	"net/http"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/dtos"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/services"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
)

type ValidationController struct {
	contactService services.ContactValidationService
}

func NewValidationController(s services.ContactValidationService) *ValidationController {
	return &ValidationController{contactService: s}
}

func (c *ValidationController) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	var req dtos.ValidateEmailRequest
	if !decodeAndValidate(w, r, &req, "Invalid email format") {
		return
	}

	if err := c.contactService.ValidateEmail(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidEmail):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Email failed validation checks", nil, err)
		case errors.Is(err, utils.ErrExternalServiceFailure):
			utils.RespondErrorWithCode(w, http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, "Email could not be checked", nil, err)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Server error", nil, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (c *ValidationController) ValidatePhone(w http.ResponseWriter, r *http.Request) {
	var req dtos.ValidatePhoneRequest
	if !decodeAndValidate(w, r, &req, "Invalid phone format") {
		return
	}

	if err := c.contactService.ValidatePhone(r.Context(), req.PhoneNumber, req.CountryCode); err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidPhone):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Phone failed validation checks", nil, err)
		case errors.Is(err, utils.ErrExternalServiceFailure):
			utils.RespondErrorWithCode(w, http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, "Phone could not be checked", nil, err)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Server error", nil, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}
