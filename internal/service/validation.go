package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/fleetworks/workorder-api/pkg/errors"
)

// NewValidator returns a validator that reports fields by their JSON names,
// so a failing public submission names the offending field as the client
// sent it.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// validationError converts a validator failure into a typed 400 naming the
// first failing field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		var message string
		switch first.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", first.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email", first.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", first.Field(), first.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of %s", first.Field(), first.Param())
		default:
			message = fmt.Sprintf("%s is invalid", first.Field())
		}
		return appErrors.Clone(appErrors.ErrValidation, message)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}

// storageError wraps a backend failure as an opaque internal error, kept
// distinct from domain validation and not-found outcomes.
func storageError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, message)
}
