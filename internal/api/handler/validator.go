package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cadastrahub/registry-api/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in errors are the JSON names clients send.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Only the first failing
// field is reported.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fieldError(ve[0])
	}
	return err
}

// fieldError converts a single validator.FieldError into a domain validation error.
func fieldError(fe validator.FieldError) *domain.ValidationError {
	field := fe.Field()
	if field == "" {
		field = strings.ToLower(fe.StructField())
	}
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(field, "is required")
	case "email":
		return domain.NewValidationError(field, "must be a valid email")
	case "gt":
		return domain.NewValidationError(field, "must be greater than "+fe.Param())
	case "min":
		return domain.NewValidationError(field, "must be at least "+fe.Param())
	case "max":
		return domain.NewValidationError(field, "must be at most "+fe.Param())
	case "oneof":
		return domain.NewValidationError(field, "must be one of: "+fe.Param())
	default:
		return domain.NewValidationError(field, fmt.Sprintf("failed validation (%s)", fe.Tag()))
	}
}
