package services

import (
	"context"
	"sync"
	"testing"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/forms"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/authapi"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/geo"
	"github.com/stretchr/testify/require"
)

type fakeAuthClient struct {
	mu sync.Mutex

	registerResp  *authapi.EnterpriseRegistrationResponse
	registerErr   error
	registerCalls int
	lastRegister  authapi.EnterpriseRegistrationRequest

	loginResp  *authapi.EnterpriseLoginResponse
	loginErr   error
	loginCalls int
	lastLogin  authapi.EnterpriseLoginRequest

	// when set, calls signal started and then wait on release
	started chan struct{}
	release chan struct{}
}

func (c *fakeAuthClient) wait() {
	if c.started != nil {
		c.started <- struct{}{}
	}
	if c.release != nil {
		<-c.release
	}
}

func (c *fakeAuthClient) Register(ctx context.Context, req authapi.EnterpriseRegistrationRequest) (*authapi.EnterpriseRegistrationResponse, error) {
	c.wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registerCalls++
	c.lastRegister = req
	return c.registerResp, c.registerErr
}

func (c *fakeAuthClient) Login(ctx context.Context, req authapi.EnterpriseLoginRequest) (*authapi.EnterpriseLoginResponse, error) {
	c.wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loginCalls++
	c.lastLogin = req
	return c.loginResp, c.loginErr
}

func staticProvider(t *testing.T) geo.Provider {
	t.Helper()
	p, err := geo.NewStaticProvider()
	require.NoError(t, err)
	return p
}

func validStepOne() map[forms.Field]string {
	return map[forms.Field]string{
		forms.FieldFirstName:          "Alice",
		forms.FieldLastName:           "Smith",
		forms.FieldEnterpriseUsername: "acme01",
		forms.FieldPassword:           "s3cretpass",
		forms.FieldConfirmPassword:    "s3cretpass",
		forms.FieldEnterpriseName:     "Acme",
		forms.FieldEmail:              "ops@acme.io",
	}
}

func validStepTwoInputs() map[forms.Field]string {
	return map[forms.Field]string{
		forms.FieldPincode:       "411001",
		forms.FieldContactNumber: "9876543210",
		forms.FieldAddress:       "1 Main St",
	}
}

// readyFlow returns a flow on step two with every field valid.
func readyFlow(t *testing.T, client RegistrationClient) *RegistrationFlow {
	t.Helper()
	ctx := context.Background()
	f := NewRegistrationFlow(client, staticProvider(t), nil)
	require.NoError(t, f.Init(ctx))
	require.NoError(t, f.SetFields(validStepOne()))
	require.NoError(t, f.Next())
	require.NoError(t, f.SelectCountry(ctx, "IN"))
	require.NoError(t, f.SelectState(ctx, "MH"))
	require.NoError(t, f.SelectCity("Pune"))
	require.NoError(t, f.SetFields(validStepTwoInputs()))
	return f
}
