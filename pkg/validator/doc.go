// Package validator provides rule-based validation of request input.
//
// Each rule is a closure plus the error reported when it fails. Apply runs a
// list of rules and collects every failure into ValidationErrors:
//
//	err := validator.Apply(
//		validator.ValidEmail("email", req.Email),
//		validator.Between("days", req.Days, 1, 365),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//		// errs.Map() is keyed by field
//	}
package validator
