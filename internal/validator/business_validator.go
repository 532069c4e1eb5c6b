package validator

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

func (v *Validator) registerBusinessRules() {
	// Usernames follow the conventional account charset, at most 150 characters
	_ = v.validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return len(value) <= 150 && usernamePattern.MatchString(value)
	})
}

// ValidateCatalogRow checks one parsed row of a catalog import
func (v *Validator) ValidateCatalogRow(row *CatalogRow) ValidationErrors {
	err := v.Validate(row)
	if err == nil {
		return nil
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return ValidationErrors{{Field: "row", Message: err.Error()}}
}
