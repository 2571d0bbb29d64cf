package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator, initialised once at package
// load time. Custom registrations happen in init() before the first Struct call.
var v = validator.New()

func init() {
	_ = v.RegisterValidation("complexpwd", complexPassword)
}

// complexPassword enforces the registration password policy: at least 8
// characters with upper, lower, digit and symbol.
func complexPassword(fl validator.FieldLevel) bool {
	pwd := fl.Field().String()
	if len(pwd) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range pwd {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// Struct validates the given struct using its validate tags.
// Every violated rule is reported, not just the first one.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, message(fe))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", fe.Field())
	case "email":
		return fmt.Sprintf("field '%s' must be a valid email address", fe.Field())
	case "complexpwd":
		return fmt.Sprintf("field '%s' must be at least 8 characters with upper, lower, digit and symbol", fe.Field())
	case "min":
		return fmt.Sprintf("field '%s' must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s characters", fe.Field(), fe.Param())
	case "numeric":
		return fmt.Sprintf("field '%s' must be numeric", fe.Field())
	default:
		return fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag())
	}
}
