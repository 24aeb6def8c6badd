package app

import (
	"fmt"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/config"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/forms"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/authapi"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/geo"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
)

// App bundles the long-lived clients shared by every request.
type App struct {
	Config      *config.Config
	AuthClient  *authapi.Client
	GeoProvider geo.Provider
	Validator   *forms.Validator
}

func NewApp(cfg *config.Config) (*App, error) {
	provider, err := newGeoProvider(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      cfg,
		AuthClient:  authapi.NewClient(cfg.AuthAPIURL, cfg.AuthAPITimeout),
		GeoProvider: provider,
		Validator:   forms.NewValidator(),
	}, nil
}

func (a *App) Close() {
	utils.Logger.Info("Portal service shutting down.")
}

// newGeoProvider uses the remote location API when a key is configured and
// the bundled dataset otherwise.
func newGeoProvider(cfg *config.Config) (geo.Provider, error) {
	if cfg.GeoAPIKey == "" {
		utils.Logger.Info("GEO_API_KEY not set; serving the bundled location dataset")
		static, err := geo.NewStaticProvider()
		if err != nil {
			return nil, fmt.Errorf("load bundled locations: %w", err)
		}
		return static, nil
	}

	remote, err := geo.NewHTTPProvider(cfg.GeoAPIURL, cfg.GeoAPIKey)
	if err != nil {
		return nil, err
	}
	utils.Logger.Infof("Using location API at %s", remote.BaseURL)
	return geo.NewCachedProvider(remote), nil
}
