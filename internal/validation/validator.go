// Package validation checks decoded request bodies against their struct tags.
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
)

// Validator validates request payloads
type Validator struct {
	validate *validator.Validate
}

var (
	instance *Validator
	once     sync.Once
)

// Default returns the shared validator instance
func Default() *Validator {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New creates a validator that reports fields by their JSON names
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// gender accepts the two values stored on user records
	v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		g := fl.Field().String()
		return g == "male" || g == "female"
	})

	return &Validator{validate: v}
}

// Struct validates s and returns a Validation AppError naming the first
// failing field, with every failing field in the details.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return apperrors.Validation(err.Error())
	}

	appErr := apperrors.Validation(message(fieldErrs[0]))
	for _, fe := range fieldErrs {
		appErr.WithDetail(fieldPath(fe), message(fe))
	}
	return appErr
}

// Var validates a single value against a tag expression
func (v *Validator) Var(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

// fieldPath drops the top-level struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, fe.Param(), unit(fe.Kind()))
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, fe.Param(), unit(fe.Kind()))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "gender":
		return fmt.Sprintf("%s must be male or female", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func unit(k reflect.Kind) string {
	switch k {
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	case reflect.String:
		return " characters"
	default:
		return ""
	}
}
