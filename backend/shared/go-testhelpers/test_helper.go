package testhelpers

import (
	"context"
	"log"
	"os"
	"testing"
	"time"
)

// TestHelper carries what integration tests need to drive a running service.
type TestHelper struct {
	T       *testing.T
	Ctx     context.Context
	BaseURL string
	Env     string

	// From ldflags
	AppName         string
	UniqueRunNumber string

	// RequestTimeout bounds every request made through NewHTTPClient.
	RequestTimeout time.Duration
}

// NewTestHelper reads the target service location from the environment.
// It's designed to be called once from a TestMain function.
func NewTestHelper(t *testing.T, appName, uniqueRunNum string) *TestHelper {
	baseURL := os.Getenv("APP_URL_FROM_ANYWHERE")
	if baseURL == "" {
		log.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	env := os.Getenv("ENV")
	if env == "" {
		log.Fatal("ENV env var is missing")
	}

	return &TestHelper{
		T:               t,
		Ctx:             context.Background(),
		BaseURL:         baseURL,
		Env:             env,
		AppName:         appName,
		UniqueRunNumber: uniqueRunNum,
		RequestTimeout:  15 * time.Second,
	}
}
