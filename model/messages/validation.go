package messages

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"github.com/evote-ccr/control-component/model/ccr"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// ccrid: 32 lowercase hexadecimal characters
		err := validate.RegisterValidation("ccrid", func(fl validator.FieldLevel) bool {
			return ccr.IsValidIdentifier(fl.Field().String())
		})
		if err != nil {
			panic(fmt.Errorf("could not register identifier validation: %w", err))
		}
	})
	return validate
}

// Validate checks the field constraints of a message. All violations are
// reported in one ccr.ValidationError.
func Validate(message interface{}) error {
	err := getValidator().Struct(message)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ccr.NewValidationErrorf("could not validate message: %w", err)
	}
	var result *multierror.Error
	for _, fe := range fieldErrs {
		result = multierror.Append(result, fmt.Errorf("field %s violates %s%s", fe.Namespace(), fe.Tag(), param(fe.Param())))
	}
	return ccr.NewValidationErrorf("invalid %T: %w", message, result.ErrorOrNil())
}

func param(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}
