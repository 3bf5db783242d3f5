package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Usernames follow the classic "letters, digits and @.+-_" rule
	UsernamePattern = `^[\w.@+\-]+$`

	// Password min length
	PasswordMinLength = 8

	// Username length bounds
	UsernameMinLength = 4
	UsernameMaxLength = 150
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Username *regexp.Regexp
}{
	Username: regexp.MustCompile(UsernamePattern),
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.Username.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String()) == nil
	})
	return v
}

// Struct validates s against its `validate` tags and returns a readable error.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, FormatFieldError(fe))
	}
	return errors.New(strings.Join(messages, "; "))
}

// ValidatePassword checks length and rejects entirely numeric passwords
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters long", PasswordMinLength)
	}

	for _, char := range password {
		if !unicode.IsDigit(char) {
			return nil
		}
	}
	return errors.New("password cannot be entirely numeric")
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param() + " characters"
	case "max":
		return field + " must be at most " + e.Param() + " characters"
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "username":
		return field + " may contain only letters, digits and @/./+/-/_"
	case "password":
		return ValidatePassword(fmt.Sprint(e.Value())).Error()
	default:
		return field + " validation failed: " + e.Tag()
	}
}
