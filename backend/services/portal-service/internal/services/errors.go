package services

import (
	"errors"
	"fmt"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/forms"
)

var (
	ErrCountryNotSelected   = errors.New("select a country first")
	ErrStateNotSelected     = errors.New("select a state first")
	ErrUnknownOption        = errors.New("option is not in the current list")
	ErrStaleLookup          = errors.New("selection changed before the lookup finished")
	ErrUnknownField         = errors.New("unknown form field")
	ErrGeoFieldNotSettable  = errors.New("country, state and city are set through the location selectors")
	ErrNotOnFinalStep       = errors.New("registration can only be submitted from step two")
	ErrSubmitInProgress     = errors.New("a submission is already in progress")
	ErrRegistrationRejected = errors.New("registration was not accepted")
	ErrLoginRejected        = errors.New("login was not accepted")
)

// ValidationError carries the per-field errors of a rejected form.
type ValidationError struct {
	Errors forms.Errors
	Scope  []forms.Field
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Errors))
}

// Fields returns the errors in scope order.
func (e *ValidationError) Fields() []forms.FieldError {
	return e.Errors.Ordered(e.Scope)
}
