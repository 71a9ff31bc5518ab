package content

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bilgisen/pressdesk/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// check validates s and reports the first failing field as a validation error
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return apperr.Validation("validate", err.Error())
	}
	f := fields[0]
	switch f.Tag() {
	case "required":
		return apperr.Validation("validate", f.Field()+" is required")
	case "max":
		return apperr.Validation("validate", f.Field()+" allows at most "+f.Param()+" entries")
	default:
		return apperr.Validation("validate", f.Field()+" is invalid")
	}
}

func trim(s string) string { return strings.TrimSpace(s) }
