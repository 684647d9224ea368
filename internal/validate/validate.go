// Package validate wraps go-playground/validator for request structs.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level validator. Custom registrations happen in init
// before the first call to Struct.
var v = validator.New(validator.WithRequiredStructEnabled())

func init() {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

// FieldError names one failed rule on one field, using the json field name.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

// Errors is the list of failed rules returned by Struct.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field, fe.Tag))
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any failure matches tag.
func (e Errors) Has(tag string) bool {
	for _, fe := range e {
		if fe.Tag == tag {
			return true
		}
	}
	return false
}

// Field returns the first failure for the named field.
func (e Errors) Field(name string) (FieldError, bool) {
	for _, fe := range e {
		if fe.Field == name {
			return fe, true
		}
	}
	return FieldError{}, false
}

// Struct validates s using its validate tags. It returns Errors or nil. A
// non-struct argument is a programming error and is returned unchanged.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := make(Errors, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// Var validates a single value against tag, e.g. "min=3" or "email".
func Var(value any, tag string) error {
	err := v.Var(value, tag)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := make(Errors, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// Blank reports whether any value is empty after trimming whitespace.
func Blank(values ...string) bool {
	for _, s := range values {
		if strings.TrimSpace(s) == "" {
			return true
		}
	}
	return false
}
