package geo

import (
	"context"
	"errors"
)

var (
	ErrUnknownCountry = errors.New("unknown country")
	ErrUnknownState   = errors.New("unknown state")
)

// Place is one selectable option of the country/state/city cascade. For cities
// the Code is the city name.
type Place struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Provider supplies the location lists the registration form offers.
type Provider interface {
	Countries(ctx context.Context) ([]Place, error)
	States(ctx context.Context, countryCode string) ([]Place, error)
	Cities(ctx context.Context, countryCode, stateCode string) ([]Place, error)
}

// Find returns the place with the given code.
func Find(places []Place, code string) (Place, bool) {
	for _, p := range places {
		if p.Code == code {
			return p, true
		}
	}
	return Place{}, false
}
