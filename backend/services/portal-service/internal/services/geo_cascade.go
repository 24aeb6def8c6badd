package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/geo"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

// GeoSelection is the chosen country, state and city. An empty Code means
// nothing is selected at that level.
type GeoSelection struct {
	Country geo.Place `json:"country"`
	State   geo.Place `json:"state"`
	City    geo.Place `json:"city"`
}

// GeoState is a copy of the cascade for rendering.
type GeoState struct {
	Countries []geo.Place  `json:"countries"`
	States    []geo.Place  `json:"states"`
	Cities    []geo.Place  `json:"cities"`
	Selection GeoSelection `json:"selection"`
}

// GeoCascade drives the dependent country, state and city selectors of one
// wizard.
//
// Every selection change bumps a generation counter. A lookup remembers the
// generation it was started under and its result is only applied if no other
// selection change happened in the meantime; otherwise the result is dropped
// and the caller gets ErrStaleLookup.
type GeoCascade struct {
	provider geo.Provider

	mu         sync.Mutex
	generation uint64
	countries  []geo.Place
	states     []geo.Place
	cities     []geo.Place
	selection  GeoSelection
}

func NewGeoCascade(provider geo.Provider) *GeoCascade {
	return &GeoCascade{provider: provider}
}

// LoadCountries fills the country list.
func (c *GeoCascade) LoadCountries(ctx context.Context) error {
	countries, err := c.provider.Countries(ctx)
	if err != nil {
		return fmt.Errorf("load countries: %w", err)
	}

	c.mu.Lock()
	c.countries = countries
	c.mu.Unlock()
	return nil
}

// SelectCountry selects a country, clears the state and city and fetches
// the states of the new country.
func (c *GeoCascade) SelectCountry(ctx context.Context, code string) error {
	c.mu.Lock()
	place, ok := geo.Find(c.countries, code)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: country %q", ErrUnknownOption, code)
	}
	c.generation++
	gen := c.generation
	c.selection = GeoSelection{Country: place}
	c.states = nil
	c.cities = nil
	c.mu.Unlock()

	states, err := c.provider.States(ctx, place.Code)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logStale("states", place.Code)
		return ErrStaleLookup
	}
	if err != nil {
		return fmt.Errorf("load states: %w", err)
	}
	c.states = states
	return nil
}

// SelectState selects a state of the selected country, clears the city and
// fetches the cities of the new state.
func (c *GeoCascade) SelectState(ctx context.Context, code string) error {
	c.mu.Lock()
	if c.selection.Country.Code == "" {
		c.mu.Unlock()
		return ErrCountryNotSelected
	}
	place, ok := geo.Find(c.states, code)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: state %q", ErrUnknownOption, code)
	}
	c.generation++
	gen := c.generation
	country := c.selection.Country
	c.selection.State = place
	c.selection.City = geo.Place{}
	c.cities = nil
	c.mu.Unlock()

	cities, err := c.provider.Cities(ctx, country.Code, place.Code)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logStale("cities", country.Code+"/"+place.Code)
		return ErrStaleLookup
	}
	if err != nil {
		return fmt.Errorf("load cities: %w", err)
	}
	c.cities = cities
	return nil
}

// SelectCity selects a city of the selected state.
func (c *GeoCascade) SelectCity(code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selection.State.Code == "" {
		return ErrStateNotSelected
	}
	place, ok := geo.Find(c.cities, code)
	if !ok {
		return fmt.Errorf("%w: city %q", ErrUnknownOption, code)
	}
	c.selection.City = place
	return nil
}

// Reset clears the selection and the dependent lists. The country list is
// kept. Lookups still in flight are discarded when they finish.
func (c *GeoCascade) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.selection = GeoSelection{}
	c.states = nil
	c.cities = nil
}

func (c *GeoCascade) Selection() GeoSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

func (c *GeoCascade) Snapshot() GeoState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GeoState{
		Countries: clonePlaces(c.countries),
		States:    clonePlaces(c.states),
		Cities:    clonePlaces(c.cities),
		Selection: c.selection,
	}
}

func (c *GeoCascade) logStale(kind, key string) {
	utils.Logger.WithFields(logrus.Fields{
		"lookup": kind,
		"key":    key,
	}).Debug("[GeoCascade] discarding stale lookup result")
}

func clonePlaces(in []geo.Place) []geo.Place {
	out := make([]geo.Place, len(in))
	copy(out, in)
	return out
}
