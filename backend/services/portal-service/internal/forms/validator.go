package forms

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	basicEmailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitsRegex     = regexp.MustCompile(`^[0-9]+$`)
)

// Errors maps each invalid field to a human-readable message.
type Errors map[Field]string

// FieldError is one entry of Errors in a stable order.
type FieldError struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

// Ordered lists the errors following scope, so callers surface them in the
// order the inputs appear on the page.
func (e Errors) Ordered(scope []Field) []FieldError {
	out := make([]FieldError, 0, len(e))
	for _, f := range scope {
		if msg, ok := e[f]; ok {
			out = append(out, FieldError{Field: f, Message: msg})
		}
	}
	return out
}

var labels = map[Field]string{
	FieldFirstName:          "First name",
	FieldLastName:           "Last name",
	FieldEnterpriseUsername: "Enterprise username",
	FieldPassword:           "Password",
	FieldConfirmPassword:    "Confirm password",
	FieldEnterpriseName:     "Enterprise name",
	FieldEmail:              "Email",
	FieldCountry:            "Country",
	FieldState:              "State",
	FieldCity:               "City",
	FieldPincode:            "Pincode",
	FieldContactNumber:      "Contact number",
	FieldAddress:            "Address",
}

// messages overrides the generic "<label> is invalid" per field and tag.
var messages = map[Field]map[string]string{
	FieldFirstName: {
		"min": "First name must be between 3 and 15 characters",
		"max": "First name must be between 3 and 15 characters",
	},
	FieldLastName: {
		"min": "Last name must be between 3 and 15 characters",
		"max": "Last name must be between 3 and 15 characters",
	},
	FieldEnterpriseUsername: {
		"alphanum": "Enterprise username must contain only letters and numbers",
	},
	FieldPassword: {
		"min": "Password must be at least 8 characters",
	},
	FieldConfirmPassword: {
		"required": "Please confirm your password",
		"eqfield":  "Passwords do not match",
	},
	FieldEnterpriseName: {
		"min": "Enterprise name must be at least 2 characters",
	},
	FieldEmail: {
		"basic_email": "Email is invalid",
	},
	FieldPincode: {
		"digits": "Pincode must contain only digits",
		"min":    "Pincode must be at least 5 digits",
	},
	FieldContactNumber: {
		"digits": "Contact number must contain only digits",
		"min":    "Contact number must be at least 10 digits",
	},
}

func messageFor(f Field, tag string) string {
	if msg, ok := messages[f][tag]; ok {
		return msg
	}
	label := labels[f]
	if tag == "required" {
		return label + " is required"
	}
	return label + " is invalid"
}

// Validator checks form values against the rules declared on their struct tags.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "basic_email", basicEmailRegex)
	mustRegister(v, "digits", digitsRegex)
	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("forms: register %s validation: %v", tag, err))
	}
}

// Registration validates the fields of scope in v. Fields outside scope are ignored.
func (val *Validator) Registration(v RegistrationValues, scope []Field) Errors {
	return val.partial(&v, scope)
}

// Login validates the fields of scope in v.
func (val *Validator) Login(v LoginValues, scope []Field) Errors {
	return val.partial(&v, scope)
}

func (val *Validator) partial(values any, scope []Field) Errors {
	out := Errors{}

	names := make([]string, 0, len(scope))
	for _, f := range scope {
		if name, ok := structFields[f]; ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return out
	}

	err := val.validate.StructPartial(values, names...)
	if err == nil {
		return out
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// Only reachable with a non-struct argument.
		panic(fmt.Sprintf("forms: unexpected validation failure: %v", err))
	}
	for _, fe := range fieldErrs {
		f, ok := fieldsByStructName[fe.StructField()]
		if !ok {
			continue
		}
		if _, seen := out[f]; !seen {
			out[f] = messageFor(f, fe.Tag())
		}
	}
	return out
}
