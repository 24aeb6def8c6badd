package geo

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed data/locations.json
var embeddedLocations []byte

type staticState struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Cities []string `json:"cities"`
}

type staticCountry struct {
	Code   string        `json:"code"`
	Name   string        `json:"name"`
	States []staticState `json:"states"`
}

// StaticProvider serves a bundled dataset. It is used when no geo API is
// configured and in tests.
type StaticProvider struct {
	countries []staticCountry
}

// NewStaticProvider loads the bundled dataset.
func NewStaticProvider() (*StaticProvider, error) {
	return NewStaticProviderFromJSON(embeddedLocations)
}

// NewStaticProviderFromJSON parses a dataset of the same shape as the bundled one.
func NewStaticProviderFromJSON(raw []byte) (*StaticProvider, error) {
	var doc struct {
		Countries []staticCountry `json:"countries"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	sort.Slice(doc.Countries, func(i, j int) bool {
		return doc.Countries[i].Name < doc.Countries[j].Name
	})
	return &StaticProvider{countries: doc.Countries}, nil
}

func (p *StaticProvider) Countries(ctx context.Context) ([]Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Place, 0, len(p.countries))
	for _, c := range p.countries {
		out = append(out, Place{Code: c.Code, Name: c.Name})
	}
	return out, nil
}

func (p *StaticProvider) States(ctx context.Context, countryCode string) ([]Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := p.country(countryCode)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, countryCode)
	}
	out := make([]Place, 0, len(c.States))
	for _, s := range c.States {
		out = append(out, Place{Code: s.Code, Name: s.Name})
	}
	return out, nil
}

func (p *StaticProvider) Cities(ctx context.Context, countryCode, stateCode string) ([]Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := p.country(countryCode)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, countryCode)
	}
	for _, s := range c.States {
		if strings.EqualFold(s.Code, stateCode) {
			out := make([]Place, 0, len(s.Cities))
			for _, city := range s.Cities {
				out = append(out, Place{Code: city, Name: city})
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in %q", ErrUnknownState, stateCode, countryCode)
}

func (p *StaticProvider) country(code string) (staticCountry, bool) {
	for _, c := range p.countries {
		if strings.EqualFold(c.Code, code) {
			return c, true
		}
	}
	return staticCountry{}, false
}
