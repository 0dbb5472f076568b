package validator

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/taskforge/project-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

func newBusinessValidator(validate *validator.Validate) *BusinessValidator {
	return &BusinessValidator{validate: validate}
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateDateRange checks that a project's end date does not precede its
// start date. Open-ended ranges are allowed.
func (bv *BusinessValidator) ValidateDateRange(start, end *time.Time) ValidationErrors {
	if start == nil || end == nil {
		return nil
	}
	if end.Before(*start) {
		return ValidationErrors{{
			Field:   "end_date",
			Message: "must not be before start_date",
			Rule:    "date_range",
		}}
	}
	return nil
}

func registerCustomRules(validate *validator.Validate) {
	// Stored project roles only; admin is derived and never a valid input.
	// Matching is case-insensitive, the services fold to lowercase on write.
	_ = validate.RegisterValidation("project_role", func(fl validator.FieldLevel) bool {
		role := models.ProjectRole(strings.ToLower(fl.Field().String()))
		return role == "" || role.IsStorable()
	})

	_ = validate.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		return models.TaskStatus(fl.Field().String()).IsValid()
	})

	_ = validate.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		date, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return date.After(time.Now())
	})
}
