package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/closeauth/mono-repo/backend/shared/go-utils"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
)

// Config holds all application configuration, including secrets and flags.
type Config struct {
	OrganizationName string
	AppName          string
	Env              string
	AppPort          string
	AppUrl           string
	UniqueRunNumber  string

	// AuthAPIURL may be empty; registration and login then fail fast.
	AuthAPIURL       string
	AuthAPITimeout   time.Duration
	GeoAPIURL        string
	GeoAPIKey        string
	WizardSessionTTL time.Duration

	SendGridAPIKey   string
	TwilioAccountSID string
	TwilioAuthToken  string
	LDSDKKey         string

	// Static flags fetched once from LaunchDarkly
	LDFlag_CORSHighSecurity          bool
	LDFlag_ValidateEmailWithSendGrid bool
	LDFlag_ValidatePhoneWithTwilio   bool
	LDFlag_SecureCookiesHighSecurity bool
}

const (
	OrganizationName           = utils.OrganizationName
	DefaultAuthAPITimeout      = 30 * time.Second
	DefaultWizardSessionTTL    = 30 * time.Minute
	LDConnectionTimeout        = 5 * time.Second
	WizardSessionSweepSchedule = "@every 1m"
	ldServerContextKind        = "service"
)

// Global compile-time overrides.
var (
	AppName         string
	UniqueRunNumber string
)

type secretsFetcher func(projectName string) (map[string]string, error)

// LoadConfig reads the environment, Bitwarden secrets and LaunchDarkly flags.
// Any failure is fatal.
func LoadConfig() *Config {
	if AppName == "" {
		utils.Logger.Fatal("AppName was not overridden with ldflags at build time (or is empty)")
	}
	if UniqueRunNumber == "" {
		UniqueRunNumber = "local"
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	var fetch secretsFetcher
	bws, err := utils.NewBWSSecretsClient()
	switch {
	case err == nil:
		defer bws.Close()
		fetch = bws.GetBWSSecrets
	case errors.Is(err, utils.ErrBWSNotConfigured):
		utils.Logger.Info("BWS not configured; reading secrets from the environment")
	default:
		utils.Logger.WithError(err).Fatal("Failed to initialize BWSSecretsClient")
	}

	cfg, err := loadConfig(AppName, os.Getenv, fetch)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	if cfg.LDSDKKey == "" {
		utils.Logger.Warn("LD_SDK_KEY is empty; using default flag values")
		applyDefaultFlags(cfg)
	} else if err := fetchLDFlags(cfg); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to fetch LaunchDarkly flags")
	}

	if cfg.AuthAPIURL == "" {
		utils.Logger.Warn("API_URL is not set; registration and login will be rejected")
	}
	utils.Logger.Debugf("App can be accessed at: %s", cfg.AppUrl)
	return cfg
}

func loadConfig(appName string, getenv func(string) string, fetch secretsFetcher) (*Config, error) {
	env := strings.TrimSpace(getenv("ENV"))
	if env == "" {
		return nil, errors.New("ENV env var is missing")
	}
	appUrl := strings.TrimSpace(getenv("APP_URL_FROM_ANYWHERE"))
	if appUrl == "" {
		return nil, errors.New("APP_URL_FROM_ANYWHERE env var is missing")
	}
	appPort := strings.TrimSpace(getenv("APP_PORT"))
	if appPort == "" {
		return nil, errors.New("APP_PORT env var is missing")
	}

	authTimeout, err := durationEnv(getenv, "AUTH_API_TIMEOUT", DefaultAuthAPITimeout)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := durationEnv(getenv, "WIZARD_SESSION_TTL", DefaultWizardSessionTTL)
	if err != nil {
		return nil, err
	}

	secrets := map[string]string{}
	if fetch != nil {
		project := fmt.Sprintf("%s-%s", appName, env)
		utils.Logger.Debugf("Fetching app-specific secrets from BWS for %s", project)
		secrets, err = fetch(project)
		if err != nil {
			return nil, fmt.Errorf("fetch secrets for %s: %w", project, err)
		}
	}
	secret := func(key string) string {
		if v, ok := secrets[key]; ok && v != "" {
			return v
		}
		return strings.TrimSpace(getenv(key))
	}

	return &Config{
		OrganizationName: OrganizationName,
		AppName:          appName,
		Env:              env,
		AppPort:          appPort,
		AppUrl:           appUrl,
		UniqueRunNumber:  UniqueRunNumber,
		AuthAPIURL:       strings.TrimRight(strings.TrimSpace(getenv("API_URL")), "/"),
		AuthAPITimeout:   authTimeout,
		GeoAPIURL:        strings.TrimSpace(getenv("GEO_API_URL")),
		GeoAPIKey:        secret("GEO_API_KEY"),
		WizardSessionTTL: sessionTTL,
		SendGridAPIKey:   secret("SENDGRID_API_KEY"),
		TwilioAccountSID: secret("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  secret("TWILIO_AUTH_TOKEN"),
		LDSDKKey:         secret("LD_SDK_KEY"),
	}, nil
}

func durationEnv(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}

// applyDefaultFlags relaxes CORS and cookies only in dev.
func applyDefaultFlags(cfg *Config) {
	highSecurity := cfg.Env != "dev"
	cfg.LDFlag_CORSHighSecurity = highSecurity
	cfg.LDFlag_SecureCookiesHighSecurity = highSecurity
	cfg.LDFlag_ValidateEmailWithSendGrid = false
	cfg.LDFlag_ValidatePhoneWithTwilio = false
}

func fetchLDFlags(cfg *Config) error {
	ldClient, err := ld.MakeClient(cfg.LDSDKKey, LDConnectionTimeout)
	if err != nil {
		return fmt.Errorf("create LaunchDarkly client: %w", err)
	}
	defer ldClient.Close()
	if !ldClient.Initialized() {
		return errors.New("LaunchDarkly client failed to initialize")
	}

	context := ldcontext.NewWithKind(ldcontext.Kind(ldServerContextKind), cfg.AppName)

	flags := []struct {
		key string
		dst *bool
		def bool
	}{
		{"cors_high_security", &cfg.LDFlag_CORSHighSecurity, true},
		{"secure_cookies_high_security", &cfg.LDFlag_SecureCookiesHighSecurity, true},
		{"validate_email_with_sendgrid", &cfg.LDFlag_ValidateEmailWithSendGrid, false},
		{"validate_phone_with_twilio", &cfg.LDFlag_ValidatePhoneWithTwilio, false},
	}
	for _, f := range flags {
		v, err := ldClient.BoolVariation(f.key, context, f.def)
		if err != nil {
			return fmt.Errorf("retrieve %s flag: %w", f.key, err)
		}
		*f.dst = v
		utils.Logger.Debugf("%s flag: %t", f.key, v)
	}
	return nil
}
