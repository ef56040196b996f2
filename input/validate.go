// Package input validates and normalizes raw request parameters before they
// reach query construction.
package input

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// disallowed is the blocklist applied to every charset-checked field:
// quoting, markup, statement separators, escapes and pattern wildcards.
const disallowed = "'\"`<>;\\%"

// strictDisallowed extends disallowed for values embedded into structural
// contexts such as emails in an OR-joined lookup.
const strictDisallowed = disallowed + " \t\r\n()=,&|*!#$^{}[]~?/:"

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsIntegerToken reports whether s is non-empty and made only of ASCII
// decimal digits. Signs and whitespace are rejected.
func IsIntegerToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// HasDisallowedChars reports whether s contains a blocklisted character.
// Control characters are always rejected.
func HasDisallowedChars(s string, strict bool) bool {
	set := disallowed
	if strict {
		set = strictDisallowed
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return strings.ContainsAny(s, set)
}

// Field is one named value to be checked by ValidateAll.
type Field struct {
	Name   string
	Value  string
	Strict bool
}

// Text is a required field checked against the default blocklist.
func Text(name, value string) Field { return Field{Name: name, Value: value} }

// Strict is a required field checked against the extended blocklist.
func Strict(name, value string) Field { return Field{Name: name, Value: value, Strict: true} }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "digits", func(fl validator.FieldLevel) bool {
		return IsIntegerToken(fl.Field().String())
	})
	mustRegister(v, "safetext", func(fl validator.FieldLevel) bool {
		return !HasDisallowedChars(fl.Field().String(), false)
	})
	mustRegister(v, "strictsafe", func(fl validator.FieldLevel) bool {
		return !HasDisallowedChars(fl.Field().String(), true)
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Each subject type carries the rule set of one field kind.
type (
	textValue struct {
		Value string `validate:"required,safetext"`
	}
	strictValue struct {
		Value string `validate:"required,strictsafe"`
	}
	integerValue struct {
		Value string `validate:"required,digits"`
	}
)

func (f Field) subject() any {
	if f.Strict {
		return strictValue{Value: f.Value}
	}
	return textValue{Value: f.Value}
}

// ValidateAll checks fields in order and returns a *ValidationError for the
// first one that is empty or contains a disallowed character. Fields after
// the first failure are not evaluated.
func ValidateAll(fields ...Field) error {
	for _, f := range fields {
		if err := validate.Struct(f.subject()); err != nil {
			return fieldError(f.Name, err)
		}
	}
	return nil
}

// Integer checks that value is present and an integer token.
func Integer(name, value string) error {
	if err := validate.Struct(integerValue{Value: value}); err != nil {
		return fieldError(name, err)
	}
	return nil
}

func fieldError(name string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "required":
			return &ValidationError{Field: name, Reason: "missing"}
		case "digits":
			return &ValidationError{Field: name, Reason: "not an integer"}
		default:
			return &ValidationError{Field: name, Reason: "disallowed characters"}
		}
	}
	return &ValidationError{Field: name, Reason: err.Error()}
}
