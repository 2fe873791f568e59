package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Validator checks request DTOs against their validate tags
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so messages match what the client sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates req and maps the first violation to a domain error
func (v *Validator) Struct(req any) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s", entity.ErrMissingField, fe.Field())
	case "uuid", "uuid4":
		return fmt.Errorf("%w: %s must be a UUID", entity.ErrInvalidFormat, fe.Field())
	case "max":
		return fmt.Errorf("%w: %s must be at most %s characters", entity.ErrInvalidParameter, fe.Field(), fe.Param())
	case "gte":
		return fmt.Errorf("%w: %s must be >= %s", entity.ErrInvalidParameter, fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%w: %s failed %s", entity.ErrInvalidParameter, fe.Field(), fe.Tag())
	}
}

// ID validates a path identifier
func (v *Validator) ID(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", entity.ErrMissingField, name)
	}
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("%w: %s must be a UUID", entity.ErrInvalidFormat, name)
	}
	return nil
}

// ResultFormat parses a report format, markdown when empty
func (v *Validator) ResultFormat(value string) (entity.ResultFormat, error) {
	if value == "" {
		return entity.FormatMarkdown, nil
	}
	format := entity.ResultFormat(strings.ToLower(value))
	if !format.IsValid() {
		return "", fmt.Errorf("%w: format %q (allowed: markdown, docx, pdf)", entity.ErrInvalidParameter, value)
	}
	return format, nil
}
