package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// fieldErrors flattens validator errors into a field -> message map for the
// problem response body.
func fieldErrors(verrs validator.ValidationErrors) map[string]any {
	errs := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			errs[field] = "required"
		default:
			errs[field] = "invalid"
		}
	}
	return errs
}
