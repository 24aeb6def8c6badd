package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultAPIURL = "https://api.countrystatecity.in/v1"

var errNotFound = errors.New("not found")

// HTTPProvider reads locations from a country-state-city REST API.
type HTTPProvider struct {
	BaseURL    *url.URL
	APIKey     string
	HTTPClient *http.Client
}

type cscPlace struct {
	Name string `json:"name"`
	ISO2 string `json:"iso2"`
}

// NewHTTPProvider builds a provider for the API at baseURL, defaulting to the
// public countrystatecity endpoint.
func NewHTTPProvider(baseURL, apiKey string) (*HTTPProvider, error) {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geo API URL: %w", err)
	}
	return &HTTPProvider{
		BaseURL:    parsed,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (p *HTTPProvider) Countries(ctx context.Context) ([]Place, error) {
	var raw []cscPlace
	if err := p.get(ctx, &raw, "countries"); err != nil {
		return nil, fmt.Errorf("fetch countries: %w", err)
	}
	return toPlaces(raw, false), nil
}

func (p *HTTPProvider) States(ctx context.Context, countryCode string) ([]Place, error) {
	var raw []cscPlace
	if err := p.get(ctx, &raw, "countries", countryCode, "states"); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, countryCode)
		}
		return nil, fmt.Errorf("fetch states of %s: %w", countryCode, err)
	}
	return toPlaces(raw, false), nil
}

func (p *HTTPProvider) Cities(ctx context.Context, countryCode, stateCode string) ([]Place, error) {
	var raw []cscPlace
	if err := p.get(ctx, &raw, "countries", countryCode, "states", stateCode, "cities"); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %q in %q", ErrUnknownState, stateCode, countryCode)
		}
		return nil, fmt.Errorf("fetch cities of %s/%s: %w", countryCode, stateCode, err)
	}
	return toPlaces(raw, true), nil
}

// get fetches the resource named by segments below BaseURL. Segments are
// raw codes; each is escaped exactly once.
func (p *HTTPProvider) get(ctx context.Context, out any, segments ...string) error {
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}
	u := *p.BaseURL
	u.Path = strings.TrimRight(p.BaseURL.Path, "/") + "/" + strings.Join(segments, "/")
	u.RawPath = strings.TrimRight(p.BaseURL.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.APIKey != "" {
		req.Header.Set("X-CSCAPI-KEY", p.APIKey)
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("geo API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// toPlaces keys countries and states by ISO code. Cities have no code in the
// API so the name doubles as one.
func toPlaces(raw []cscPlace, nameIsCode bool) []Place {
	out := make([]Place, 0, len(raw))
	for _, r := range raw {
		code := r.ISO2
		if nameIsCode || code == "" {
			code = r.Name
		}
		out = append(out, Place{Code: code, Name: r.Name})
	}
	return out
}
