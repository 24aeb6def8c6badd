package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/closeauth/mono-repo/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

var (
	ErrAPIURLNotConfigured = errors.New("API URL is not configured")
	ErrNetworkResponse     = errors.New("Network response was not ok")
)

// RequestError is returned for transport failures and non-2xx responses.
// StatusCode is zero when no response was received.
type RequestError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return ErrNetworkResponse.Error()
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool {
	return target == ErrNetworkResponse
}

// Client talks to the Remote Auth Service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for baseURL. An empty baseURL is allowed; every
// call then fails with ErrAPIURLNotConfigured.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.BaseURL != ""
}

// Register posts an enterprise sign-up to <BaseURL>/register.
func (c *Client) Register(ctx context.Context, req EnterpriseRegistrationRequest) (*EnterpriseRegistrationResponse, error) {
	var out EnterpriseRegistrationResponse
	if err := c.post(ctx, "register", req, &out); err != nil {
		return nil, err
	}
	utils.Logger.WithFields(logrus.Fields{
		"username": req.UserName,
		"status":   out.Status,
	}).Debug("[AuthAPI] Enterprise registration response received")
	return &out, nil
}

// Login posts credentials to <BaseURL>/login.
func (c *Client) Login(ctx context.Context, req EnterpriseLoginRequest) (*EnterpriseLoginResponse, error) {
	var out EnterpriseLoginResponse
	if err := c.post(ctx, "login", req, &out); err != nil {
		return nil, err
	}
	utils.Logger.WithFields(logrus.Fields{
		"email":  req.Email,
		"status": out.Status,
	}).Debug("[AuthAPI] Enterprise login response received")
	return &out, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	if !c.Configured() {
		return ErrAPIURLNotConfigured
	}
	u := c.BaseURL + "/" + endpoint

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		utils.Logger.WithError(err).WithField("endpoint", endpoint).Warn("[AuthAPI] Auth service request failed")
		return &RequestError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		utils.Logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		}).Warn("[AuthAPI] Auth service responded with non-2xx status")
		return &RequestError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}
