package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Ledger transaction type
	validate.RegisterValidation("txtype", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "purchase", "usage", "bonus":
			return true
		}
		return false
	})

	// Payment processor
	validate.RegisterValidation("processor", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "stripe", "paypal", "pesapal", "":
			return true
		}
		return false
	})

	// ISO currency code (three uppercase letters)
	validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if code == "" {
			return true
		}
		if len(code) != 3 {
			return false
		}
		for _, c := range code {
			if c < 'A' || c > 'Z' {
				return false
			}
		}
		return true
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "txtype":
			errors[field] = "Invalid transaction type. Must be: purchase, usage, or bonus"
		case "processor":
			errors[field] = "Invalid processor. Must be: stripe, paypal, or pesapal"
		case "currency":
			errors[field] = "Invalid currency code"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}
