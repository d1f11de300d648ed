package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"travelapproval/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// TagName is shared with gin's binding engine so one set of struct tags is
// enforced both at the HTTP edge and inside services.
const TagName = "binding"

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.SetTagName(TagName)
	RegisterRules(v)
	return &Validator{validate: v}
}

// Validate returns a ValidationError describing the first failing field.
func (v *Validator) Validate(i interface{}) error {
	if i == nil {
		return apperror.NewValidationError("Invalid request body")
	}

	if err := v.validate.Struct(i); err != nil {
		return apperror.NewValidationError("%s", Describe(err))
	}
	return nil
}

// RegisterRules installs the project's custom types and rules on v. It is
// called for the service validator and for gin's binding engine.
func RegisterRules(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("money2", money2)
}

// money2 accepts decimal amounts with at most two fractional digits.
func money2(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}
	return HasAtMostTwoDecimals(d)
}

func HasAtMostTwoDecimals(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// Describe turns validator errors into a short human readable message.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "datetime":
			parts = append(parts, fmt.Sprintf("%s must be a date in format %s", fe.Field(), fe.Param()))
		case "money2":
			parts = append(parts, fmt.Sprintf("%s must have at most 2 decimal places", fe.Field()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
