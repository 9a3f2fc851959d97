package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	goerrors "github.com/kbukum/procpipe/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// FieldError describes one failed field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by the key they have in configuration files.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"mapstructure", "yaml", "json"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return toSnakeCase(fld.Name)
		})
	})
	return validate
}

// Validate validates a struct using `validate` struct tags. Failures are
// returned as an INVALID_INPUT AppError whose "fields" detail lists a
// FieldError per failed field, keyed by its configuration name.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return goerrors.Validation("validation failed").WithCause(err)
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		name := fieldPath(e)
		message := formatValidationError(e)
		fieldErrors = append(fieldErrors, FieldError{Field: name, Message: message})
		messages = append(messages, name+": "+message)
	}

	return goerrors.Validation(strings.Join(messages, "; ")).
		WithDetail("fields", fieldErrors)
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read like "profiles[cat].program".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return toSnakeCase(e.Field())
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "contains":
		return "must contain " + e.Param()
	case "file":
		return "must be an existing file"
	case "dir":
		return "must be an existing directory"
	default:
		return "is invalid"
	}
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
