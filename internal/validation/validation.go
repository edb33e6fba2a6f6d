// Package validation wraps go-playground/validator with the service's custom
// tags and maps failures to apperr field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"contentops-workflow/internal/domain/apperr"

	"github.com/go-playground/validator/v10"
)

// MaxIdentLen bounds ids issued by other subsystems; columns holding them are varchar(MaxIdentLen).
const MaxIdentLen = 64

var (
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
	reIdent = regexp.MustCompile(fmt.Sprintf(`^[A-Za-z0-9_-]{1,%d}$`, MaxIdentLen))
)

type Validator struct{ v *validator.Validate }

func New() *Validator {
	v := validator.New()

	// report json names so details line up with the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// ids minted here = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return reHex32.MatchString(fl.Field().String())
	})
	// ids from other subsystems: url-safe token, 1..64 chars
	_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return reIdent.MatchString(fl.Field().String())
	})
	// rejects whitespace-only strings
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{v: v}
}

// Validate satisfies echo.Validator and returns raw validator errors.
func (cv *Validator) Validate(i any) error { return cv.v.Struct(i) }

// Check validates i and returns an apperr validation error with field details.
func (cv *Validator) Check(i any) error {
	if err := cv.v.Struct(i); err != nil {
		return apperr.Validation("Please fix the highlighted fields.", ToFieldErrors(err)...)
	}
	return nil
}

// ToFieldErrors maps validator.ValidationErrors to readable field errors.
func ToFieldErrors(err error) []apperr.FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []apperr.FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]apperr.FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required", "notblank":
			out = append(out, apperr.FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, apperr.FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "ident":
			out = append(out, apperr.FieldError{Field: field, Message: "must be a valid identifier"})
		case "url":
			out = append(out, apperr.FieldError{Field: field, Message: "must be a valid URL"})
		case "oneof":
			out = append(out, apperr.FieldError{Field: field, Message: "must be one of " + e.Param()})
		case "datetime":
			out = append(out, apperr.FieldError{Field: field, Message: "must be an RFC3339 timestamp"})
		case "min":
			out = append(out, apperr.FieldError{Field: field, Message: minMaxMessage("at least", e)})
		case "max":
			out = append(out, apperr.FieldError{Field: field, Message: minMaxMessage("at most", e)})
		case "gte":
			out = append(out, apperr.FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, apperr.FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		default:
			out = append(out, apperr.FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}

func minMaxMessage(bound string, e validator.FieldError) string {
	if e.Kind() == reflect.String {
		return "must be " + bound + " " + e.Param() + " characters"
	}
	return "must be " + bound + " " + e.Param()
}
