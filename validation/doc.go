// Package validation checks configuration and command-line parameters.
//
// Struct tag validation (go-playground/validator) is used for configuration
// sections; the programmatic Validator collects errors for flag combinations
// that tags cannot express. Both report failures as MISCONFIGURATION errors
// with a "fields" detail.
//
//	v := validation.New()
//	v.Required("sep", sep).Custom(len(fields) > 0, "fields", "at least one field is required")
//	if err := v.Validate(); err != nil {
//	    return err
//	}
package validation
