package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/app"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/config"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/dtos"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/forms"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/repositories"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/routes"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/services"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/authapi"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/geo"
	"github.com/closeauth/mono-repo/backend/shared/go-middleware"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
)

type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details dtos.WizardResponse `json:"details"`
}

type loginErrorBody struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Details dtos.LoginResponse `json:"details"`
}

// fakeAuthService stands in for the Remote Auth Service.
type fakeAuthService struct {
	registerStatus int
	registerBody   string
	loginBody      string
	hits           atomic.Int32
}

func (f *fakeAuthService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	switch r.URL.Path {
	case "/register":
		if f.registerStatus != 0 {
			w.WriteHeader(f.registerStatus)
			return
		}
		w.Write([]byte(f.registerBody))
	case "/login":
		w.Write([]byte(f.loginBody))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type testServer struct {
	router *mux.Router
	auth   *fakeAuthService
}

func newTestServer(t *testing.T, withAuthURL bool) *testServer {
	t.Helper()
	auth := &fakeAuthService{
		registerBody: `{"status":"success","message":"OK ","username":"acme01","otpValiditySeconds":300,"timestamp":"2024-01-01T00:00:00Z"}`,
		loginBody: `{"status":"success","message":"Welcome ","data":{"user":{"userId":7,"username":"acme01","email":"ops@acme.io","firstName":"Alice","lastName":"Smith","role":"ADMIN"},"auth":{"accessToken":"acc","refreshToken":"ref","expiresIn":600}}}`,
	}
	srv := httptest.NewServer(auth)
	t.Cleanup(srv.Close)

	baseURL := ""
	if withAuthURL {
		baseURL = srv.URL
	}
	cfg := &config.Config{AppName: "portal-service", Env: "dev", AuthAPIURL: baseURL, WizardSessionTTL: time.Minute}
	static, err := geo.NewStaticProvider()
	require.NoError(t, err)
	application := &app.App{
		Config:      cfg,
		AuthClient:  authapi.NewClient(baseURL, time.Second),
		GeoProvider: static,
		Validator:   forms.NewValidator(),
	}

	repo := repositories.NewSessionRepository[*services.RegistrationFlow](cfg.WizardSessionTTL)
	reg := NewRegistrationController(services.NewRegistrationService(repo, application.AuthClient, application.GeoProvider, application.Validator))
	login := NewLoginController(services.NewLoginService(application.AuthClient, application.Validator), cfg)
	health := NewHealthController(application)
	geoCtrl := NewGeoController(application.GeoProvider)
	validation := NewValidationController(services.NewContactValidationService(cfg))

	r := mux.NewRouter()
	r.Use(middleware.RequestLoggingMiddleware)
	r.HandleFunc(routes.Health, health.HealthCheckHandler).Methods("GET")
	r.HandleFunc(routes.RegisterSessions, reg.CreateWizard).Methods("POST")
	r.HandleFunc(routes.RegisterSession, reg.GetWizard).Methods("GET")
	r.HandleFunc(routes.RegisterSession, reg.DeleteWizard).Methods("DELETE")
	r.HandleFunc(routes.RegisterSessionFields, reg.SetFields).Methods("PATCH")
	r.HandleFunc(routes.RegisterSessionCountry, reg.SelectCountry).Methods("PUT")
	r.HandleFunc(routes.RegisterSessionState, reg.SelectState).Methods("PUT")
	r.HandleFunc(routes.RegisterSessionCity, reg.SelectCity).Methods("PUT")
	r.HandleFunc(routes.RegisterSessionNext, reg.Next).Methods("POST")
	r.HandleFunc(routes.RegisterSessionBack, reg.Back).Methods("POST")
	r.HandleFunc(routes.RegisterSessionSubmit, reg.Submit).Methods("POST")
	r.HandleFunc(routes.RegisterPhoneValid, validation.ValidatePhone).Methods("POST")
	r.HandleFunc(routes.Login, login.Login).Methods("POST")
	r.HandleFunc(routes.GeoCountries, geoCtrl.Countries).Methods("GET")
	r.HandleFunc(routes.GeoStates, geoCtrl.States).Methods("GET")
	r.HandleFunc(routes.GeoCities, geoCtrl.Cities).Methods("GET")

	return &testServer{router: r, auth: auth}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func wizardPath(id, suffix string) string {
	return strings.Replace(routes.RegisterSession, "{id}", id, 1) + suffix
}

func startWizard(t *testing.T, s *testServer) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, routes.RegisterSessions, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[dtos.WizardResponse](t, rec)
	assert.Equal(t, services.StepOne, resp.Step)
	assert.Equal(t, 50, resp.Progress)
	assert.NotEmpty(t, resp.Geo.Countries)
	return resp.ID.String()
}

func stepOneFields() dtos.SetFieldsRequest {
	return dtos.SetFieldsRequest{Fields: map[forms.Field]string{
		forms.FieldFirstName:          "Alice",
		forms.FieldLastName:           "Smith",
		forms.FieldEnterpriseUsername: "acme01",
		forms.FieldPassword:           "s3cretpass",
		forms.FieldConfirmPassword:    "s3cretpass",
		forms.FieldEnterpriseName:     "Acme",
		forms.FieldEmail:              "ops@acme.io",
	}}
}

func stepTwoFields() dtos.SetFieldsRequest {
	return dtos.SetFieldsRequest{Fields: map[forms.Field]string{
		forms.FieldPincode:       "411001",
		forms.FieldContactNumber: "9876543210",
		forms.FieldAddress:       "1 Main St",
	}}
}

// fillWizard walks a wizard to a submittable step two.
func fillWizard(t *testing.T, s *testServer, id string) {
	t.Helper()
	steps := []struct {
		method, suffix string
		body           any
	}{
		{http.MethodPatch, "/fields", stepOneFields()},
		{http.MethodPost, "/next", nil},
		{http.MethodPut, "/country", dtos.SelectOptionRequest{Code: "IN"}},
		{http.MethodPut, "/state", dtos.SelectOptionRequest{Code: "MH"}},
		{http.MethodPut, "/city", dtos.SelectOptionRequest{Code: "Pune"}},
		{http.MethodPatch, "/fields", stepTwoFields()},
	}
	for _, st := range steps {
		rec := s.do(t, st.method, wizardPath(id, st.suffix), st.body)
		require.Equal(t, http.StatusOK, rec.Code, "%s %s: %s", st.method, st.suffix, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	rec := newTestServer(t, true).do(t, http.MethodGet, routes.Health, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	hook := logtest.NewLocal(utils.Logger)
	defer utils.Logger.ReplaceHooks(make(logrus.LevelHooks))

	rec = newTestServer(t, false).do(t, http.MethodGet, routes.Health, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "API URL is not configured", decode[errorBody](t, rec).Message)

	var logged *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Data["code"] == utils.ErrCodeConfiguration {
			logged = e
		}
	}
	require.NotNil(t, logged, "configuration error should be logged")
	assert.Equal(t, authapi.ErrAPIURLNotConfigured.Error(), logged.Data["error"])
}

func TestResponsesUseCamelCaseKeys(t *testing.T) {
	s := newTestServer(t, true)
	id := startWizard(t, s)

	rec := s.do(t, http.MethodPost, wizardPath(id, "/next"), nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var failed struct {
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &failed))
	assert.Contains(t, failed.Details, "fieldErrors")
	assert.NotContains(t, failed.Details, "field_errors")

	fillWizard(t, s, id)
	rec = s.do(t, http.MethodPost, wizardPath(id, "/submit"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	submitted := decode[map[string]any](t, rec)
	assert.Contains(t, submitted, "otpValiditySeconds")
	assert.NotContains(t, submitted, "otp_validity_seconds")

	rec = s.do(t, http.MethodPost, routes.Login, forms.LoginValues{Email: "ops@acme.io", Password: "s3cretpass"})
	require.Equal(t, http.StatusOK, rec.Code)
	loggedIn := decode[map[string]any](t, rec)
	assert.Contains(t, loggedIn, "expiresIn")
	user, ok := loggedIn["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alice", user["firstName"])
	assert.Equal(t, "7", user["userId"])

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, routes.RegisterPhoneValid, strings.NewReader(`{"phoneNumber":"+919876543210","countryCode":"IN"}`))
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegistrationWizard_HappyPath(t *testing.T) {
	s := newTestServer(t, true)
	id := startWizard(t, s)
	fillWizard(t, s, id)

	rec := s.do(t, http.MethodGet, wizardPath(id, ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[dtos.WizardResponse](t, rec)
	assert.Equal(t, services.StepTwo, state.Step)
	assert.Equal(t, 100, state.Progress)
	assert.Equal(t, "India", state.Values.Country)
	assert.Equal(t, "Pune", state.Values.City)
	assert.Empty(t, state.Values.Password)

	rec = s.do(t, http.MethodPost, wizardPath(id, "/submit"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[dtos.SubmitRegistrationResponse](t, rec)
	assert.Equal(t, "acme01", resp.Username)
	assert.Equal(t, 300, resp.OTPValiditySeconds)
	assert.Equal(t, services.StepOne, resp.Step)
	assert.Equal(t, forms.RegistrationValues{}, resp.Values)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "OK 2024-01-01T00:00:00Z", resp.Notifications[0].Message)
	assert.False(t, resp.Submitting)
}

func TestRegistrationWizard_NextWithInvalidFields(t *testing.T) {
	s := newTestServer(t, true)
	id := startWizard(t, s)

	fields := stepOneFields()
	fields.Fields[forms.FieldConfirmPassword] = "different1"
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPatch, wizardPath(id, "/fields"), fields).Code)

	rec := s.do(t, http.MethodPost, wizardPath(id, "/next"), nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "validation_error", body.Code)
	assert.Equal(t, services.StepOne, body.Details.Step)
	require.Len(t, body.Details.FieldErrors, 1)
	assert.Equal(t, forms.FieldConfirmPassword, body.Details.FieldErrors[0].Field)
	assert.Equal(t, "Passwords do not match", body.Details.FieldErrors[0].Message)
	require.Len(t, body.Details.Notifications, 1)
}

func TestRegistrationWizard_Conflicts(t *testing.T) {
	s := newTestServer(t, true)
	id := startWizard(t, s)

	rec := s.do(t, http.MethodPost, wizardPath(id, "/submit"), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPut, wizardPath(id, "/state"), dtos.SelectOptionRequest{Code: "MH"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPut, wizardPath(id, "/country"), dtos.SelectOptionRequest{Code: "ZZ"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, wizardPath(id, "/fields"), dtos.SetFieldsRequest{Fields: map[forms.Field]string{forms.FieldCity: "Pune"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, s.auth.hits.Load())
}

func TestRegistrationWizard_UnknownSession(t *testing.T) {
	s := newTestServer(t, true)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, wizardPath("not-a-uuid", ""), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, wizardPath("8d3c3a56-6f0e-4c47-9a38-5b8d1f0f4d11", ""), nil).Code)

	id := startWizard(t, s)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, wizardPath(id, ""), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, wizardPath(id, "/next"), nil).Code)
}

func TestRegistrationWizard_RemoteFailureKeepsValues(t *testing.T) {
	s := newTestServer(t, true)
	s.auth.registerStatus = http.StatusInternalServerError
	id := startWizard(t, s)
	fillWizard(t, s, id)

	rec := s.do(t, http.MethodPost, wizardPath(id, "/submit"), nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "Network response was not ok", body.Message)
	assert.Equal(t, services.StepTwo, body.Details.Step)
	assert.Equal(t, "Alice", body.Details.Values.FirstName)
	assert.False(t, body.Details.Submitting)
}

func TestRegistrationWizard_MissingAuthURL(t *testing.T) {
	s := newTestServer(t, false)
	id := startWizard(t, s)
	fillWizard(t, s, id)

	rec := s.do(t, http.MethodPost, wizardPath(id, "/submit"), nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "API URL is not configured", decode[errorBody](t, rec).Message)
	assert.Zero(t, s.auth.hits.Load())
}

func TestLogin_SetsCookies(t *testing.T) {
	s := newTestServer(t, true)
	rec := s.do(t, http.MethodPost, routes.Login, forms.LoginValues{Email: "ops@acme.io", Password: "s3cretpass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[dtos.LoginResponse](t, rec)
	require.NotNil(t, body.User)
	assert.Equal(t, "7", body.User.UserID)
	assert.Equal(t, "Alice", body.User.FirstName)
	assert.EqualValues(t, 600, body.ExpiresIn)
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "Welcome Alice", body.Notifications[0].Message)

	names := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = true
	}
	assert.True(t, names[middleware.AccessTokenCookieName])
	assert.True(t, names[middleware.RefreshTokenCookieName])
}

func TestLogin_Errors(t *testing.T) {
	s := newTestServer(t, true)
	rec := s.do(t, http.MethodPost, routes.Login, forms.LoginValues{Email: "nope", Password: "short"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[loginErrorBody](t, rec)
	assert.Len(t, body.Details.FieldErrors, 2)
	assert.Len(t, body.Details.Notifications, 2)
	assert.Zero(t, s.auth.hits.Load())

	s = newTestServer(t, false)
	rec = s.do(t, http.MethodPost, routes.Login, forms.LoginValues{Email: "ops@acme.io", Password: "s3cretpass"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = s.do(t, http.MethodPost, routes.Login, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeoEndpoints(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodGet, routes.GeoCountries, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[dtos.PlacesResponse](t, rec).Places)

	rec = s.do(t, http.MethodGet, "/api/v1/geo/countries/IN/states/MH/cities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, ok := geo.Find(decode[dtos.PlacesResponse](t, rec).Places, "Pune")
	assert.True(t, ok)

	rec = s.do(t, http.MethodGet, "/api/v1/geo/countries/ZZ/states", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidatePhone(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodPost, routes.RegisterPhoneValid, dtos.ValidatePhoneRequest{PhoneNumber: "+919876543210", CountryCode: "IN"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, routes.RegisterPhoneValid, dtos.ValidatePhoneRequest{PhoneNumber: "9876543210"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
