package command

import (
	"errors"
	"reflect"
	"strings"

	"github.com/example/stock-ledger/internal/domain"
	"github.com/go-playground/validator/v10"
)

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validate checks cmd against its struct tags and returns the first failure
// as a domain.ValidationError
func (h *Handler) validate(cmd any) error {
	err := h.validator.Struct(cmd)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return domain.Invalid(fe.Field(), reason(fe))
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		if fe.Param() == "0" {
			return "must not be negative"
		}
		return "must be at least " + fe.Param()
	case "gt":
		if fe.Param() == "0" {
			return "must be a positive integer"
		}
		return "must be greater than " + fe.Param()
	default:
		return "is invalid"
	}
}
