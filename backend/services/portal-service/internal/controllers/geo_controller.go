package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/constants"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/dtos"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/geo"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
	"github.com/gorilla/mux"
)

// GeoController exposes the location lists directly, for pages that render
// the selectors before a wizard exists.
type GeoController struct {
	provider geo.Provider
}

func NewGeoController(p geo.Provider) *GeoController {
	return &GeoController{provider: p}
}

func (c *GeoController) Countries(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, func(ctx context.Context) ([]geo.Place, error) {
		return c.provider.Countries(ctx)
	})
}

func (c *GeoController) States(w http.ResponseWriter, r *http.Request) {
	country := mux.Vars(r)[constants.CountryParam]
	c.respond(w, r, func(ctx context.Context) ([]geo.Place, error) {
		return c.provider.States(ctx, country)
	})
}

func (c *GeoController) Cities(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	country, state := vars[constants.CountryParam], vars[constants.StateParam]
	c.respond(w, r, func(ctx context.Context) ([]geo.Place, error) {
		return c.provider.Cities(ctx, country, state)
	})
}

func (c *GeoController) respond(w http.ResponseWriter, r *http.Request, lookup func(ctx context.Context) ([]geo.Place, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.GeoLookupTimeout)
	defer cancel()

	places, err := lookup(ctx)
	if err != nil {
		if errors.Is(err, geo.ErrUnknownCountry) || errors.Is(err, geo.ErrUnknownState) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Location not found", nil, err)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, "Location lookup failed", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.PlacesResponse{Places: places})
}
