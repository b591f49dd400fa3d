package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "github.com/devkichauhan/reliaquest/pkg/domain-errors"
	s "github.com/devkichauhan/reliaquest/pkg/string"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// Report JSON names so messages match what the caller sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks req against its `validate` tags. Every failing field is
// reported: the message joins them in declaration order and Fields maps each
// JSON field name to its message.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		fields := FieldMessages(err)
		if len(fields) == 0 {
			return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
		}
		return dErrors.NewFields(dErrors.CodeValidation, ErrorMessage(err), fields)
	}
	return nil
}

// ErrorMessage converts a validator error into a human-readable message.
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

// FieldMessages returns one message per failing field, keyed by field name.
// The first failing rule wins when a field breaks several.
func FieldMessages(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}
	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		field := s.ToSnakeCase(fe.Field())
		if _, ok := fields[field]; !ok {
			fields[field] = fieldMessage(fe)
		}
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	field := s.ToSnakeCase(fe.Field())

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
