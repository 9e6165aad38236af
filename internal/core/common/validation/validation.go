package validation

import (
	"fmt"
	"strings"
	"time"

	errors "github.com/frahmantamala/field-expense/internal"
)

const DateLayout = "2006-01-02"

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

// Field registers a value for validation. The returned pointer is only valid
// until the next call to Field.
func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	v.fields = append(v.fields, FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	})
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) Required() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		case int64:
			if v == 0 {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int, code errors.ErrorCode) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len([]rune(v)) > max {
			return errors.NewValidationFieldError(name, fmt.Sprintf("%s must not exceed %d characters", name, max), code)
		}
		return nil
	})
	return fv
}

// Date requires a YYYY-MM-DD string. Empty strings pass; pair with Required.
func (fv *FieldValidator) Date() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && v != "" {
			if _, err := time.Parse(DateLayout, v); err != nil {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", name), errors.ErrCodeInvalidDate)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) NotAfter(limit time.Time) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(time.Time); ok && v.After(limit) {
			return errors.NewValidationFieldError(name, fmt.Sprintf("%s cannot be in the future", name), errors.ErrCodeInvalidDate)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) OneOf(allowed []string, code errors.ErrorCode) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return errors.NewValidationFieldError(name, fmt.Sprintf("%s must be one of %s", name, strings.Join(allowed, ", ")), code)
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs every registered check and folds failures into one AppError.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
				continue
			}
			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(validationErrors) == 0 {
		return nil
	}

	// A single failure keeps its specific code so callers can match on it.
	code := errors.ErrCodeValidationFailed
	if len(validationErrors) == 1 {
		code = errors.ErrorCode(validationErrors[0].Code)
	}
	return errors.NewValidationError("Validation failed", code).
		WithDetails(errors.ValidationErrors{Errors: validationErrors})
}

func ValidateDescription(field, description string) *errors.AppError {
	validator := NewValidator()
	validator.Field(field, description).
		MaxLength(500, errors.ErrCodeInvalidDescription)
	return validator.Validate()
}

func ValidateMissionName(name string) *errors.AppError {
	validator := NewValidator()
	validator.Field("name", name).
		Required().
		MaxLength(120, errors.ErrCodeInvalidMissionName)
	return validator.Validate()
}

// ParseDate parses a YYYY-MM-DD string into UTC midnight.
func ParseDate(field, s string) (time.Time, *errors.AppError) {
	validator := NewValidator()
	validator.Field(field, s).Required().Date()
	if appErr := validator.Validate(); appErr != nil {
		return time.Time{}, appErr
	}
	t, _ := time.Parse(DateLayout, s)
	return t, nil
}
