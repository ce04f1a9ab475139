// Package validator provides small declarative validation rules used by the
// auth flows: required and length checks, email and URL formats, and the
// password policy enforced before hashing.
//
// Each helper returns a Rule that pairs a Check func with translation-friendly
// error metadata. Apply evaluates rules and aggregates failures into a
// ValidationErrors value that implements error:
//
//	err := validator.Apply(
//	    validator.Required("email", email),
//	    validator.ValidEmail("email", email),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//	    // verrs.Fields(), verrs.Get("email") ...
//	}
//
// ValidationErrors matches ErrValidationFailed via errors.Is, so callers can
// detect a validation failure without losing the field-level details.
//
// The package holds no state and is safe for concurrent use.
package validator
