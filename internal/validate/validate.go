// Package validate checks domain params before any store access and turns the
// first failing rule into a single-sentence apperr.ValidationError.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
)

// MaxMoney is the smallest magnitude a NUMERIC(14,2) column cannot hold.
var MaxMoney = decimal.New(1, 12)

var v = newValidator()

// Money reports whether d is storable as-is: at most two decimal places and
// below MaxMoney in magnitude.
func Money(d decimal.Decimal) bool {
	return d.Equal(d.Round(2)) && d.Abs().LessThan(MaxMoney)
}

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	// Amount rules such as gt=0 compare against the float value.
	val.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}

		return nil
	}, decimal.Decimal{})

	// money runs on the float the type func produced, so it reads the decimal back from the struct.
	if err := val.RegisterValidation("money", money); err != nil {
		panic(err)
	}

	return val
}

func money(fl validator.FieldLevel) bool {
	f := reflect.Indirect(reflect.Indirect(fl.Parent()).FieldByName(fl.StructFieldName()))
	if !f.IsValid() {
		return true
	}

	d, ok := f.Interface().(decimal.Decimal)

	return ok && Money(d)
}

// Struct validates s and returns nil or a *apperr.ValidationError.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return fmt.Errorf("validating: %w", err)
	}

	return &apperr.ValidationError{Message: message(errs[0])}
}

func message(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return capitalize(field) + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", capitalize(field), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", capitalize(field), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", capitalize(field), fe.Param())
	case "money":
		return fmt.Sprintf("%s must have at most 2 decimal places and be below %s", capitalize(field), MaxMoney)
	case "oneof":
		return fmt.Sprintf("%s must be %s", capitalize(field), orList(strings.Fields(fe.Param())))
	default:
		return capitalize(field) + " is invalid"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

func orList(opts []string) string {
	switch len(opts) {
	case 0:
		return ""
	case 1:
		return opts[0]
	default:
		return strings.Join(opts[:len(opts)-1], ", ") + ", or " + opts[len(opts)-1]
	}
}
