package forms

import "slices"

// Field names a single form input. Values match the JSON keys the web page sends.
type Field string

const (
	FieldFirstName          Field = "firstName"
	FieldLastName           Field = "lastName"
	FieldEnterpriseUsername Field = "enterpriseUsername"
	FieldPassword           Field = "password"
	FieldConfirmPassword    Field = "confirmPassword"
	FieldEnterpriseName     Field = "enterpriseName"
	FieldEmail              Field = "email"
	FieldCountry            Field = "country"
	FieldState              Field = "state"
	FieldCity               Field = "city"
	FieldPincode            Field = "pincode"
	FieldContactNumber      Field = "contactNumber"
	FieldAddress            Field = "address"
)

// Field scopes. The validator only looks at the fields it is handed.
var (
	Step1Fields = []Field{
		FieldFirstName,
		FieldLastName,
		FieldEnterpriseUsername,
		FieldPassword,
		FieldConfirmPassword,
		FieldEnterpriseName,
		FieldEmail,
	}
	Step2Fields = []Field{
		FieldCountry,
		FieldState,
		FieldCity,
		FieldPincode,
		FieldContactNumber,
		FieldAddress,
	}
	LoginFields = []Field{
		FieldEmail,
		FieldPassword,
	}
	GeoFields = []Field{
		FieldCountry,
		FieldState,
		FieldCity,
	}
)

// structFields maps each Field to the Go struct field that holds it.
var structFields = map[Field]string{
	FieldFirstName:          "FirstName",
	FieldLastName:           "LastName",
	FieldEnterpriseUsername: "EnterpriseUsername",
	FieldPassword:           "Password",
	FieldConfirmPassword:    "ConfirmPassword",
	FieldEnterpriseName:     "EnterpriseName",
	FieldEmail:              "Email",
	FieldCountry:            "Country",
	FieldState:              "State",
	FieldCity:               "City",
	FieldPincode:            "Pincode",
	FieldContactNumber:      "ContactNumber",
	FieldAddress:            "Address",
}

var fieldsByStructName = func() map[string]Field {
	m := make(map[string]Field, len(structFields))
	for f, s := range structFields {
		m[s] = f
	}
	return m
}()

// Known reports whether f is one of the registration form fields.
func (f Field) Known() bool {
	_, ok := structFields[f]
	return ok
}

// IsGeo reports whether f is filled by the country/state/city cascade.
func (f Field) IsGeo() bool {
	return slices.Contains(GeoFields, f)
}

// RegistrationValues is the two-step sign-up form.
type RegistrationValues struct {
	// Step 1
	FirstName          string `json:"firstName" validate:"required,min=3,max=15"`
	LastName           string `json:"lastName" validate:"required,min=3,max=15"`
	EnterpriseUsername string `json:"enterpriseUsername" validate:"required,alphanum"`
	Password           string `json:"password" validate:"required,min=8"`
	ConfirmPassword    string `json:"confirmPassword" validate:"required,eqfield=Password"`
	EnterpriseName     string `json:"enterpriseName" validate:"required,min=2"`
	Email              string `json:"email" validate:"required,basic_email"`

	// Step 2
	Country       string `json:"country" validate:"required"`
	State         string `json:"state" validate:"required"`
	City          string `json:"city" validate:"required"`
	Pincode       string `json:"pincode" validate:"required,digits,min=5"`
	ContactNumber string `json:"contactNumber" validate:"required,digits,min=10"`
	Address       string `json:"address" validate:"required"`
}

// Get returns the value of f, or "" for unknown fields.
func (v RegistrationValues) Get(f Field) string {
	if p := v.ptr(f); p != nil {
		return *p
	}
	return ""
}

// Set assigns value to f. It reports false for unknown fields.
func (v *RegistrationValues) Set(f Field, value string) bool {
	p := v.ptr(f)
	if p == nil {
		return false
	}
	*p = value
	return true
}

func (v *RegistrationValues) ptr(f Field) *string {
	switch f {
	case FieldFirstName:
		return &v.FirstName
	case FieldLastName:
		return &v.LastName
	case FieldEnterpriseUsername:
		return &v.EnterpriseUsername
	case FieldPassword:
		return &v.Password
	case FieldConfirmPassword:
		return &v.ConfirmPassword
	case FieldEnterpriseName:
		return &v.EnterpriseName
	case FieldEmail:
		return &v.Email
	case FieldCountry:
		return &v.Country
	case FieldState:
		return &v.State
	case FieldCity:
		return &v.City
	case FieldPincode:
		return &v.Pincode
	case FieldContactNumber:
		return &v.ContactNumber
	case FieldAddress:
		return &v.Address
	}
	return nil
}

// LoginValues is the single-step login form.
type LoginValues struct {
	Email    string `json:"email" validate:"required,basic_email"`
	Password string `json:"password" validate:"required,min=8"`
}
