// Package request decodes and validates JSON request bodies.
package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/chapter-api/internal/types"
)

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// validate is shared: a *validator.Validate caches struct metadata and is
// safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names ("eventId"), not Go names ("EventID").
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// "truthy" applies types.Truthy to values decoded into interface fields.
	if err := v.RegisterValidation("truthy", func(fl validator.FieldLevel) bool {
		return types.Truthy(fl.Field().Interface())
	}); err != nil {
		panic(err)
	}
	return v
}

// DecodeJSON decodes the body of r into v. Numbers are kept as json.Number
// when v holds interface values, so they are stored exactly as sent.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	return err
}

// Validate checks the validate:"..." tags on v. A failed check returns
// validator.ValidationErrors.
func Validate(v any) error {
	return validate.Struct(v)
}

// FailedFields returns the JSON names of the fields a Validate error
// rejected, or nil when err did not come from Validate.
func FailedFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	names := make([]string, 0, len(verrs))
	for _, e := range verrs {
		names = append(names, e.Field())
	}
	return names
}
