package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	slugRegexp       = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	hexColorRegexp   = regexp.MustCompile(`^#[A-Fa-f0-9]{3,6}$`)
	usernameRegexp   = regexp.MustCompile(`^[\w.@+-]+$`)
	personNameRegexp = regexp.MustCompile(`^[а-яА-ЯёЁa-zA-Z -]+$`)
)

// ReservedUsername cannot be registered because it collides with /users/me/.
const ReservedUsername = "me"

// CError represents a single validation error.
type CError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// Validator is a struct that holds the validator instance from the go-playground/validator package
type Validator struct {
	validator *validator.Validate
}

// NewValidator is a function that returns a new instance of the Validator struct
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	CustomValidation(v)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validator: v}
}

// Validate checks the input struct. It returns nil or a 400 CustomError whose
// Fields list every failed constraint.
func (v *Validator) Validate(str interface{}) error {
	err := v.validator.Struct(str)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return Validation("Validation failed", err.Error())
	}

	fields := make([]CError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, CError{Field: fe.Field(), Msg: getErrorMessage(fe)})
	}
	e := Validation("Validation failed")
	e.Fields = fields
	return e
}

// ValidateVar checks a single value against a tag expression.
func (v *Validator) ValidateVar(field string, value interface{}, tag string) error {
	err := v.validator.Var(value, tag)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return Validation("Validation failed", err.Error())
	}
	fe := validationErrors[0]
	e := Validation("Validation failed")
	e.Fields = []CError{{Field: field, Msg: messageFor(field, fe.Tag(), fe.Param(), fe.Kind())}}
	return e
}

func getErrorMessage(fe validator.FieldError) string {
	return messageFor(fe.Field(), fe.Tag(), fe.Param(), fe.Kind())
}

// messageFor returns the error message based on the field and tag
func messageFor(field, tag, param string, kind reflect.Kind) string {
	numeric := kind >= reflect.Int && kind <= reflect.Float64
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if numeric {
			return fmt.Sprintf("%s must be at least %s", field, param)
		}
		if kind == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, param)
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, param)
	case "max":
		if numeric {
			return fmt.Sprintf("%s must be at most %s", field, param)
		}
		return fmt.Sprintf("%s must be at most %s characters long", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	case "slug":
		return fmt.Sprintf("%s may contain only letters, numbers, hyphens and underscores", field)
	case "hexcolor":
		return fmt.Sprintf("%s must be a HEX color like #E26C2D", field)
	case "username":
		return fmt.Sprintf("%s may contain only letters, digits and @/./+/-/_ and cannot be %q", field, ReservedUsername)
	case "personname":
		return fmt.Sprintf("%s may contain only letters, spaces and hyphens", field)
	default:
		return fmt.Sprintf("something wrong on %s; %s", field, tag)
	}
}

// CustomValidation registers the domain specific tags.
func CustomValidation(v *validator.Validate) {
	v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegexp.MatchString(fl.Field().String())
	})
	v.RegisterValidation("hexcolor", func(fl validator.FieldLevel) bool {
		return hexColorRegexp.MatchString(fl.Field().String())
	})
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsValidUsername(fl.Field().String())
	})
	v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNameRegexp.MatchString(fl.Field().String())
	})
}

// IsValidUsername reports whether name uses the allowed character set and is
// not the reserved value.
func IsValidUsername(name string) bool {
	if strings.EqualFold(name, ReservedUsername) {
		return false
	}
	return usernameRegexp.MatchString(name)
}

// IsValidHexColor reports whether color is a #RGB..#RRGGBB code.
func IsValidHexColor(color string) bool {
	return hexColorRegexp.MatchString(color)
}
