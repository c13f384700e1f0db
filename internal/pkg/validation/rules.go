package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// EmailPattern is the accepted email shape, checked after lower-casing
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the JSON field name the client used
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates the `validate` tags of obj and returns a field-scoped
// *apperrors.ValidationError on failure.
func Struct(obj interface{}) error {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	verr := &apperrors.ValidationError{}
	for _, fe := range fieldErrors {
		verr.Add(fe.Field(), Message(fe))
	}
	return verr
}

// IsEmail reports whether value looks like an email address
func IsEmail(value string) bool {
	return CompiledPatterns.Email.MatchString(strings.ToLower(strings.TrimSpace(value)))
}

// Message creates a human-readable message for a single validation failure
func Message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return "Ensure this value is at least " + e.Param() + "."
	case "max":
		return "Ensure this value is at most " + e.Param() + "."
	case "gte":
		return "Ensure this value is greater than or equal to " + e.Param() + "."
	case "lte":
		return "Ensure this value is less than or equal to " + e.Param() + "."
	case "gt":
		return "Ensure this value is greater than " + e.Param() + "."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "oneof":
		return "Must be one of: " + e.Param() + "."
	default:
		return "Invalid value (" + e.Tag() + ")."
	}
}
