package controllers

import (
	"net/http"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/app"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/dtos"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/authapi"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
)

type HealthController struct {
	app *app.App
}

func NewHealthController(app *app.App) *HealthController {
	return &HealthController{app: app}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if !c.app.AuthClient.Configured() {
		utils.RespondErrorWithCode(
			w,
			http.StatusServiceUnavailable,
			utils.ErrCodeConfiguration,
			authapi.ErrAPIURLNotConfigured.Error(),
			nil,
			authapi.ErrAPIURLNotConfigured,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthCheckResponse{Status: "OK"})
}
