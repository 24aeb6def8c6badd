package dtos

import "github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/geo"

type PlacesResponse struct {
	Places []geo.Place `json:"places"`
}
