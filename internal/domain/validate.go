package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const emptyPatchMessage = "Request body must contain either 'title', 'url', 'description' or 'rating'"

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON name so messages match the request body.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateNew checks a create payload. Fields are checked in declaration
// order and the first failure wins, so a missing title is reported before a
// bad rating.
func ValidateNew(in NewBookmark) error {
	return firstError(validate.Struct(in))
}

// ValidatePatch checks an update payload: at least one field, and a rating
// in range when present.
func ValidatePatch(p BookmarkPatch) error {
	if p.IsEmpty() {
		return &ValidationError{Message: emptyPatchMessage}
	}
	return firstError(validate.Struct(p))
}

func firstError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate payload: %w", err)
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: messageFor(fe)}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Missing '%s' in request body", fe.Field())
	case "min", "max":
		return fmt.Sprintf("'%s' must be a number between %d and %d", fe.Field(), MinRating, MaxRating)
	default:
		return fmt.Sprintf("'%s' is invalid", fe.Field())
	}
}
