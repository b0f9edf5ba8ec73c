package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/sawmill/errors"
)

// FieldError names one rejected parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates problems with a set of parameters so they can be
// reported together. The checks chain and never stop early.
type Validator struct {
	problems []FieldError
}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) AddError(field, message string) {
	v.problems = append(v.problems, FieldError{Field: field, Message: message})
}

func (v *Validator) HasErrors() bool {
	return len(v.problems) > 0
}

func (v *Validator) Errors() []FieldError {
	return v.problems
}

// Validate returns nil, or one MISCONFIGURATION error listing every problem.
func (v *Validator) Validate() error {
	if len(v.problems) == 0 {
		return nil
	}
	return fieldsError(v.problems)
}

func (v *Validator) check(ok bool, field, format string, args ...any) *Validator {
	if !ok {
		v.AddError(field, fmt.Sprintf(format, args...))
	}
	return v
}

// Required rejects an empty value. Whitespace counts as a value.
func (v *Validator) Required(field, value string) *Validator {
	return v.check(value != "", field, "is required")
}

func (v *Validator) Min(field string, value, minVal int) *Validator {
	return v.check(value >= minVal, field, "must be at least %d", minVal)
}

// OneOf rejects a non-empty value outside allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	ok := value == "" || slices.Contains(allowed, value)
	return v.check(ok, field, "must be one of: %s", strings.Join(allowed, ", "))
}

// Custom records message for field unless condition holds.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	return v.check(condition, field, "%s", message)
}

func fieldsError(fields []FieldError) *errors.AppError {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return errors.New(errors.ErrCodeMisconfiguration, strings.Join(parts, "; ")).
		WithDetail("fields", fields)
}
