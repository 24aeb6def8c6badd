package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/constants"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/dtos"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/services"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/authapi"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
)

type RegistrationController struct {
	registrationService services.RegistrationService
}

func NewRegistrationController(s services.RegistrationService) *RegistrationController {
	return &RegistrationController{registrationService: s}
}

// CreateWizard starts a wizard with the country list preloaded.
func (c *RegistrationController) CreateWizard(w http.ResponseWriter, r *http.Request) {
	id, flow, err := c.registrationService.StartWizard(r.Context())
	if err != nil {
		if errors.Is(err, utils.ErrExternalServiceFailure) {
			err = utils.NewAppError(http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, "Could not load countries", err)
		}
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewWizardResponse(id, flow))
}

func (c *RegistrationController) GetWizard(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := c.loadWizard(w, r)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewWizardResponse(id, flow))
}

// DeleteWizard discards the wizard when the user leaves the page.
func (c *RegistrationController) DeleteWizard(w http.ResponseWriter, r *http.Request) {
	id, ok := wizardIDFromPath(w, r)
	if !ok {
		return
	}
	if err := c.registrationService.DiscardWizard(r.Context(), id); err != nil {
		c.respondWizardLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *RegistrationController) SetFields(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := c.loadWizard(w, r)
	if !ok {
		return
	}
	var req dtos.SetFieldsRequest
	if !decodeAndValidate(w, r, &req, "At least one field is required") {
		return
	}
	if err := flow.SetFields(req.Fields); err != nil {
		respondFlowError(w, id, flow, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewWizardResponse(id, flow))
}

func (c *RegistrationController) SelectCountry(w http.ResponseWriter, r *http.Request) {
	c.selectOption(w, r, func(ctx context.Context, flow *services.RegistrationFlow, code string) error {
		return flow.SelectCountry(ctx, code)
	})
}

func (c *RegistrationController) SelectState(w http.ResponseWriter, r *http.Request) {
	c.selectOption(w, r, func(ctx context.Context, flow *services.RegistrationFlow, code string) error {
		return flow.SelectState(ctx, code)
	})
}

func (c *RegistrationController) SelectCity(w http.ResponseWriter, r *http.Request) {
	c.selectOption(w, r, func(_ context.Context, flow *services.RegistrationFlow, code string) error {
		return flow.SelectCity(code)
	})
}

func (c *RegistrationController) Next(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := c.loadWizard(w, r)
	if !ok {
		return
	}
	if err := flow.Next(); err != nil {
		respondFlowError(w, id, flow, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewWizardResponse(id, flow))
}

func (c *RegistrationController) Back(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := c.loadWizard(w, r)
	if !ok {
		return
	}
	flow.Back()
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewWizardResponse(id, flow))
}

func (c *RegistrationController) Submit(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := c.loadWizard(w, r)
	if !ok {
		return
	}
	resp, err := flow.Submit(r.Context())
	if err != nil {
		respondFlowError(w, id, flow, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SubmitRegistrationResponse{
		WizardResponse:     dtos.NewWizardResponse(id, flow),
		Username:           resp.Username,
		OTPValiditySeconds: resp.OTPValiditySeconds,
	})
}

// ------------------------------------------------------------
// helpers
// ------------------------------------------------------------

func (c *RegistrationController) selectOption(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, flow *services.RegistrationFlow, code string) error,
) {
	id, flow, ok := c.loadWizard(w, r)
	if !ok {
		return
	}
	var req dtos.SelectOptionRequest
	if !decodeAndValidate(w, r, &req, "An option code is required") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.GeoLookupTimeout)
	defer cancel()
	if err := apply(ctx, flow, req.Code); err != nil {
		respondFlowError(w, id, flow, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewWizardResponse(id, flow))
}

func (c *RegistrationController) loadWizard(w http.ResponseWriter, r *http.Request) (uuid.UUID, *services.RegistrationFlow, bool) {
	id, ok := wizardIDFromPath(w, r)
	if !ok {
		return uuid.Nil, nil, false
	}
	flow, err := c.registrationService.Wizard(r.Context(), id)
	if err != nil {
		c.respondWizardLookupError(w, err)
		return uuid.Nil, nil, false
	}
	return id, flow, true
}

func (c *RegistrationController) respondWizardLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrWizardNotFound) {
		err = utils.NewAppError(http.StatusNotFound, utils.ErrCodeNotFound, "Registration wizard not found", err)
	}
	utils.HandleAppError(w, err)
}

// respondFlowError maps a wizard operation error to a status code. The body
// always carries the wizard state so the page can render its notifications.
func respondFlowError(w http.ResponseWriter, id uuid.UUID, flow *services.RegistrationFlow, err error) {
	state := dtos.NewWizardResponse(id, flow)

	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		state.FieldErrors = vErr.Fields()
		utils.RespondErrorWithCode(w, http.StatusUnprocessableEntity, utils.ErrCodeValidation, "Validation failed", state, err)
	case errors.Is(err, services.ErrUnknownField),
		errors.Is(err, services.ErrGeoFieldNotSettable),
		errors.Is(err, services.ErrUnknownOption):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, err.Error(), state, err)
	case errors.Is(err, services.ErrNotOnFinalStep),
		errors.Is(err, services.ErrSubmitInProgress),
		errors.Is(err, services.ErrStaleLookup),
		errors.Is(err, services.ErrCountryNotSelected),
		errors.Is(err, services.ErrStateNotSelected):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, err.Error(), state, err)
	case errors.Is(err, authapi.ErrAPIURLNotConfigured):
		utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeConfiguration, err.Error(), state, err)
	case errors.Is(err, authapi.ErrNetworkResponse),
		errors.Is(err, services.ErrRegistrationRejected):
		utils.RespondErrorWithCode(w, http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, lastMessage(state), state, err)
	default:
		utils.RespondErrorWithCode(w, http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, "Upstream service request failed", state, err)
	}
}

// lastMessage is the newest notification, which is what the page shows for
// a failed remote call.
func lastMessage(state dtos.WizardResponse) string {
	if n := len(state.Notifications); n > 0 {
		return state.Notifications[n-1].Message
	}
	return "Request failed"
}
