// SPDX-License-Identifier: MIT
package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a JSON field name to its validation messages
type FieldErrors map[string][]string

// Add appends a message for field
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Empty reports whether there are no errors
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// NewValidator returns a validator reading `binding` tags and reporting JSON
// field names, configured the same way as the server's binding engine.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	ConfigureValidator(v)
	return v
}

// ConfigureValidator makes v report fields by their JSON name
func ConfigureValidator(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// Validate checks item against its binding rules
func Validate(v *validator.Validate, item interface{}) FieldErrors {
	errs := FieldErrors{}
	if err := v.Struct(item); err != nil {
		collect(err, errs)
	}
	return errs
}

// TranslateValidation converts validator errors into FieldErrors. It returns
// nil when err did not come from the validator.
func TranslateValidation(err error) FieldErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	errs := FieldErrors{}
	collect(verrs, errs)
	return errs
}

func collect(err error, errs FieldErrors) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("_", err.Error())
		return
	}
	for _, fe := range verrs {
		errs.Add(fieldPath(fe), message(fe))
	}
}

// fieldPath strips the struct name: "Warehouse.features[0].label" -> "features.0.label"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx != -1 {
		ns = ns[idx+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	return strings.ReplaceAll(ns, "]", "")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
