package services

import (
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/forms"
)

// Step is the position of the registration wizard.
type Step int

const (
	StepOne Step = 1
	StepTwo Step = 2
)

// Wizard gates the move from step one to step two on the step-one fields.
// It is not safe for concurrent use; RegistrationFlow serializes access.
type Wizard struct {
	step      Step
	validator *forms.Validator
}

func NewWizard(validator *forms.Validator) *Wizard {
	if validator == nil {
		validator = forms.NewValidator()
	}
	return &Wizard{step: StepOne, validator: validator}
}

func (w *Wizard) Step() Step { return w.step }

// Next advances to step two when the step-one fields of values are valid and
// returns the errors otherwise. On step two it does nothing.
func (w *Wizard) Next(values forms.RegistrationValues) forms.Errors {
	if w.step != StepOne {
		return forms.Errors{}
	}
	errs := w.validator.Registration(values, forms.Step1Fields)
	if len(errs) == 0 {
		w.step = StepTwo
	}
	return errs
}

func (w *Wizard) Back() { w.step = StepOne }

func (w *Wizard) Reset() { w.step = StepOne }

// Progress is the completion percentage shown above the form.
func (w *Wizard) Progress() int {
	if w.step == StepTwo {
		return 100
	}
	return 50
}
