package company

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FormErrors maps form field names to a user-facing message.
type FormErrors map[string]string

// Form binds raw request values onto a Company candidate.
type Form struct {
	Name    string `form:"name" validate:"required,max=255"`
	Code    string `form:"code" validate:"required,max=32,companycode"`
	Email   string `form:"email" validate:"omitempty,max=255,email"`
	Phone   string `form:"phone" validate:"omitempty,max=32"`
	Website string `form:"website" validate:"omitempty,max=255,url"`
	Address string `form:"address" validate:"max=255"`
	Zipcode string `form:"zipcode" validate:"max=16"`
	City    string `form:"city" validate:"max=100"`
	Country string `form:"country" validate:"omitempty,iso3166_1_alpha2"`

	Errors FormErrors `form:"-" validate:"-"`
}

// NewValidator returns a validator that reports errors under form field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("companycode", func(fl validator.FieldLevel) bool {
		return codePattern.MatchString(fl.Field().String())
	})
	return v
}

// NewForm returns a form pre-filled from c.
func NewForm(c Company) *Form {
	return &Form{
		Name:    c.Name,
		Code:    c.Code,
		Email:   c.Email,
		Phone:   c.Phone,
		Website: c.Website,
		Address: c.Address,
		Zipcode: c.Zipcode,
		City:    c.City,
		Country: c.Country,
		Errors:  FormErrors{},
	}
}

// Bind overwrites every field with the submitted values. Missing fields
// become empty, as an unchecked HTML input would.
func (f *Form) Bind(values url.Values) {
	f.Name = clean(values.Get("name"))
	f.Code = clean(values.Get("code"))
	f.Email = strings.ToLower(clean(values.Get("email")))
	f.Phone = clean(values.Get("phone"))
	f.Website = clean(values.Get("website"))
	f.Address = clean(values.Get("address"))
	f.Zipcode = clean(values.Get("zipcode"))
	f.City = clean(values.Get("city"))
	f.Country = strings.ToUpper(clean(values.Get("country")))
}

// Validate runs the field rules and records failures in f.Errors.
func (f *Form) Validate(v *validator.Validate) bool {
	f.Errors = FormErrors{}
	err := v.Struct(f)
	if err == nil {
		return true
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		f.Errors["general"] = err.Error()
		return false
	}
	for _, fe := range fieldErrs {
		if _, seen := f.Errors[fe.Field()]; seen {
			continue
		}
		f.Errors[fe.Field()] = message(fe)
	}
	return false
}

// Valid reports whether the last validation passed.
func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}

// Apply copies the bound values onto c.
func (f *Form) Apply(c *Company) {
	c.Name = f.Name
	c.Code = f.Code
	c.Email = f.Email
	c.Phone = f.Phone
	c.Website = f.Website
	c.Address = f.Address
	c.Zipcode = f.Zipcode
	c.City = f.City
	c.Country = f.Country
}

func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Use at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL, including http:// or https://."
	case "iso3166_1_alpha2":
		return "Use a two-letter country code."
	case "companycode":
		return "Use letters, digits, dashes or underscores only."
	default:
		return "This value is not valid."
	}
}
