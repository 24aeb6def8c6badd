package testhelpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/stretchr/testify/require"
)

// BuildJSONRequest builds a request against BaseURL. A nil body sends no
// payload.
func (h *TestHelper) BuildJSONRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.T, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequestWithContext(h.Ctx, method, strings.TrimSuffix(h.BaseURL, "/")+path, &buf)
	require.NoError(h.T, err)

	req.Header.Set("Accept", "application/json")
	if buf.Len() > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NewHTTPClient creates an HTTP client with a cookie jar for session management.
func (h *TestHelper) NewHTTPClient() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(h.T, err)
	return &http.Client{Jar: jar, Timeout: h.RequestTimeout}
}

// DoRequest performs an HTTP request and asserts that no network-level error occurred.
func (h *TestHelper) DoRequest(req *http.Request, client *http.Client) *http.Response {
	resp, err := client.Do(req)
	require.NoError(h.T, err, "HTTP request failed")
	return resp
}

// ReadBody reads the response body and returns it as a string for logging or inspection.
func (h *TestHelper) ReadBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return "<nil response or body>"
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	// Restore the body so DecodeJSON can still read it.
	resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	require.NoError(h.T, err, "Failed to read response body")
	return string(bodyBytes)
}

// DecodeJSON asserts the status code and decodes the body into dst.
func (h *TestHelper) DecodeJSON(resp *http.Response, wantStatus int, dst any) {
	defer resp.Body.Close()
	body := h.ReadBody(resp)
	require.Equal(h.T, wantStatus, resp.StatusCode, "unexpected status, body: %s", body)
	if dst != nil {
		require.NoError(h.T, json.Unmarshal([]byte(body), dst), "decode body: %s", body)
	}
}
