// Package validate checks request payloads with struct tags and reports
// failures as a common.ValidationError keyed by JSON field name.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/go-playground/validator/v10"
)

// DocumentName matches the file names accepted as policy documents.
var DocumentName = regexp.MustCompile(`(?i)\.(pdf|doc|docx)$`)

// Validator wraps a configured validator.Validate. It is safe for
// concurrent use.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("docname", func(fl validator.FieldLevel) bool {
		return DocumentName.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates s. Rule violations come back as *common.ValidationError;
// any other error means s could not be validated at all.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := &common.ValidationError{}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), message(fe))
	}
	return ve
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "max":
		return fmt.Sprintf("The %s must not be greater than %s characters.", field, fe.Param())
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "datetime":
		return fmt.Sprintf("The %s is not a valid date.", field)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "docname":
		return fmt.Sprintf("The %s must be a file of type: pdf, doc, docx.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}
