package services

import (
	"context"
	"errors"
	"testing"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/forms"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/authapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationFlow_NextSurfacesOneNotificationPerField(t *testing.T) {
	f := NewRegistrationFlow(&fakeAuthClient{}, staticProvider(t), nil)
	require.NoError(t, f.SetFields(map[forms.Field]string{
		forms.FieldFirstName: "Al",
		forms.FieldEmail:     "nope",
	}))

	err := f.Next()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, StepOne, f.Step())

	notes := f.Notifications()
	require.Len(t, notes, len(vErr.Errors))
	assert.Equal(t, forms.FieldFirstName, notes[0].Field)
	assert.Equal(t, NotificationError, notes[0].Level)
	assert.Equal(t, "First name must be between 3 and 15 characters", notes[0].Message)

	// a later valid attempt drops the old notifications
	require.NoError(t, f.SetFields(validStepOne()))
	require.NoError(t, f.Next())
	assert.Empty(t, f.Notifications())
	assert.Equal(t, StepTwo, f.Step())
}

func TestRegistrationFlow_SetFieldsRejectsGeoAndUnknown(t *testing.T) {
	f := NewRegistrationFlow(&fakeAuthClient{}, staticProvider(t), nil)

	err := f.SetFields(map[forms.Field]string{forms.FieldFirstName: "Alice", forms.FieldCountry: "India"})
	assert.ErrorIs(t, err, ErrGeoFieldNotSettable)
	assert.Empty(t, f.Values().FirstName)

	err = f.SetFields(map[forms.Field]string{"nickname": "al"})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestRegistrationFlow_GeoValuesFollowSelection(t *testing.T) {
	f := readyFlow(t, &fakeAuthClient{})
	v := f.Values()
	assert.Equal(t, "India", v.Country)
	assert.Equal(t, "Maharashtra", v.State)
	assert.Equal(t, "Pune", v.City)

	require.NoError(t, f.SelectCountry(context.Background(), "US"))
	v = f.Values()
	assert.Equal(t, "United States", v.Country)
	assert.Empty(t, v.State)
	assert.Empty(t, v.City)
}

func TestRegistrationFlow_SubmitRequiresStepTwo(t *testing.T) {
	client := &fakeAuthClient{}
	f := NewRegistrationFlow(client, staticProvider(t), nil)

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotOnFinalStep)
	assert.Zero(t, client.registerCalls)
}

func TestRegistrationFlow_SubmitValidatesStepTwo(t *testing.T) {
	client := &fakeAuthClient{}
	f := NewRegistrationFlow(client, staticProvider(t), nil)
	require.NoError(t, f.SetFields(validStepOne()))
	require.NoError(t, f.Next())

	_, err := f.Submit(context.Background())
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Errors, len(forms.Step2Fields))
	assert.Equal(t, forms.Step2Fields, vErr.Scope)
	assert.Len(t, f.Notifications(), len(forms.Step2Fields))
	assert.Equal(t, StepTwo, f.Step())
	assert.Zero(t, client.registerCalls)
	assert.False(t, f.Submitting())
}

func TestRegistrationFlow_SuccessResetsForm(t *testing.T) {
	client := &fakeAuthClient{registerResp: &authapi.EnterpriseRegistrationResponse{
		Status:    "success",
		Message:   "OK ",
		Username:  "acme01",
		Timestamp: "2024-01-01T00:00:00Z",
	}}
	f := readyFlow(t, client)

	resp, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acme01", resp.Username)

	req := client.lastRegister
	assert.Equal(t, "acme01", req.UserName)
	assert.Equal(t, "s3cretpass", req.UserPassword)
	assert.Equal(t, "ops@acme.io", req.EnterpriseDetails.EnterpriseEmail)
	assert.Equal(t, "India", req.EnterpriseDetails.EnterpriseCountry)
	assert.Equal(t, "Maharashtra", req.EnterpriseDetails.EnterpriseState)
	assert.Equal(t, "Pune", req.EnterpriseDetails.EnterpriseCity)
	assert.Equal(t, "411001", req.EnterpriseDetails.EnterprisePinCode)
	assert.Equal(t, "9876543210", req.EnterpriseDetails.EnterpriseContactNumber)

	notes := f.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, NotificationSuccess, notes[0].Level)
	assert.Equal(t, "OK 2024-01-01T00:00:00Z", notes[0].Message)

	assert.Equal(t, forms.RegistrationValues{}, f.Values())
	assert.Equal(t, StepOne, f.Step())
	assert.False(t, f.Submitting())

	snap := f.Snapshot()
	assert.Equal(t, GeoSelection{}, snap.Geo.Selection)
	assert.NotEmpty(t, snap.Geo.Countries)
}

func TestRegistrationFlow_NetworkFailureKeepsValues(t *testing.T) {
	client := &fakeAuthClient{registerErr: &authapi.RequestError{Endpoint: "register", Err: errors.New("connection refused")}}
	f := readyFlow(t, client)
	before := f.Values()

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, authapi.ErrNetworkResponse)

	assert.Equal(t, before, f.Values())
	assert.Equal(t, StepTwo, f.Step())
	assert.False(t, f.Submitting())

	notes := f.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, NotificationError, notes[0].Level)
	assert.Equal(t, "Network response was not ok", notes[0].Message)
}

func TestRegistrationFlow_MissingBaseURL(t *testing.T) {
	f := readyFlow(t, authapi.NewClient("", 0))

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, authapi.ErrAPIURLNotConfigured)

	notes := f.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "API URL is not configured", notes[0].Message)
	assert.False(t, f.Submitting())
}

func TestRegistrationFlow_FallbackMessage(t *testing.T) {
	f := readyFlow(t, &fakeAuthClient{registerErr: errors.New("")})

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Registration failed", f.Notifications()[0].Message)
}

func TestRegistrationFlow_NonSuccessStatus(t *testing.T) {
	client := &fakeAuthClient{registerResp: &authapi.EnterpriseRegistrationResponse{Status: "error"}}
	f := readyFlow(t, client)
	before := f.Values()

	resp, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrRegistrationRejected)
	require.NotNil(t, resp)
	assert.Equal(t, before, f.Values())
	assert.Equal(t, "Registration failed", f.Notifications()[0].Message)

	client.registerResp = &authapi.EnterpriseRegistrationResponse{Status: "error", Message: "Username already taken"}
	_, err = f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrRegistrationRejected)
	assert.Equal(t, "Username already taken", f.Notifications()[0].Message)
}

func TestRegistrationFlow_SubmitIsExclusive(t *testing.T) {
	client := &fakeAuthClient{
		registerResp: &authapi.EnterpriseRegistrationResponse{Status: "success", Message: "OK"},
		started:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	f := readyFlow(t, client)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	<-client.started
	assert.True(t, f.Submitting())
	assert.True(t, f.Snapshot().Submitting)

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(client.release)
	require.NoError(t, <-done)
	assert.False(t, f.Submitting())
	assert.Equal(t, 1, client.registerCalls)
}

func TestRegistrationFlow_SnapshotHidesPasswords(t *testing.T) {
	f := readyFlow(t, &fakeAuthClient{})
	snap := f.Snapshot()
	assert.Empty(t, snap.Values.Password)
	assert.Empty(t, snap.Values.ConfirmPassword)
	assert.Equal(t, "Alice", snap.Values.FirstName)
	assert.Equal(t, 100, snap.Progress)

	// the flow itself keeps them
	assert.Equal(t, "s3cretpass", f.Values().Password)
}

func TestRegistrationFlow_BackAndReset(t *testing.T) {
	f := readyFlow(t, &fakeAuthClient{})
	f.Back()
	assert.Equal(t, StepOne, f.Step())
	assert.Equal(t, "Alice", f.Values().FirstName)

	f.Reset()
	assert.Equal(t, forms.RegistrationValues{}, f.Values())
}
