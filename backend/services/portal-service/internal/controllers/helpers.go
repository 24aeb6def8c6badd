package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/constants"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON reads a size-limited JSON body into dst. It writes the error
// response and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid request payload", nil, err)
		return false
	}
	return true
}

// decodeAndValidate is decodeJSON followed by struct-tag validation.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, publicMessage string) bool {
	if !decodeJSON(w, r, dst) {
		return false
	}
	if err := validate.Struct(dst); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, publicMessage, nil, err)
		return false
	}
	return true
}

func wizardIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)[constants.WizardIDParam]
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Registration wizard not found", nil, err)
		return uuid.Nil, false
	}
	return id, true
}
