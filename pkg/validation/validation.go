// Package validation wires go-playground/validator into echo as the request
// validator. Field failures surface as validator.ValidationErrors, which the
// error handler renders with the offending field list.
package validation

import "github.com/go-playground/validator/v10"

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
