package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/septic-crm/internal/model"
)

// Validator adapts go-playground/validator to echo.Validator.  Failures come
// back as a 400 APIError whose Errors map is keyed by JSON field name.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a Validator that reports fields by their json tag.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// email_or_empty accepts "" so a PATCH can clear an email address.
	_ = v.RegisterValidation("email_or_empty", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || v.Var(s, "email") == nil
	})
	// maxbytes bounds the encoded length rather than the rune count; bcrypt
	// only reads the first 72 bytes of a password.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= n
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.ValidRole(fl.Field().String())
	})
	_ = v.RegisterValidation("activity_type", func(fl validator.FieldLevel) bool {
		return model.ValidActivityType(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &APIError{Message: "Validation failed", StatusCode: http.StatusBadRequest, Errors: map[string][]string{}}
	for _, fe := range verrs {
		out.Errors[fe.Field()] = append(out.Errors[fe.Field()], fieldMessage(fe))
	}
	return out
}

// fieldLabels gives the human name used in messages for fields whose json
// name does not read well on its own.
var fieldLabels = map[string]string{
	"content": "Note content",
	"leadId":  "Lead ID",
	"start":   "Start time",
	"end":     "End time",
}

func fieldLabel(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email", "email_or_empty":
		return "Invalid email address"
	case "min":
		if fe.Kind() == reflect.String && fe.Param() == "1" {
			return label + " cannot be empty"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", label, fe.Param())
	case "role":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(model.Roles, ", "))
	case "activity_type":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(model.ActivityTypes, ", "))
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", label, strings.ToLower(fieldLabel(lowerFirst(fe.Param()))))
	}
	return fmt.Sprintf("%s is invalid", label)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
