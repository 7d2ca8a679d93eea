// SPDX-License-Identifier: MIT

// Package bind decodes and validates request bodies, reporting every
// failure as a *problem.ValidationError.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Symbiot01/medsight/internal/control/http/problem"
)

// MaxBodyBytes bounds the size of a decoded JSON body.
const MaxBodyBytes = 1 << 20

const locBody = "body"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so error locations match what clients sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	return v
}

// JSON decodes the request body into dst (a pointer to struct) and validates
// it with its `validate` tags. Unknown fields and trailing data are rejected.
func JSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return &problem.ValidationError{Errors: []problem.FieldError{decodeError(err)}}
	}
	if dec.More() {
		return &problem.ValidationError{Errors: []problem.FieldError{{
			Loc: []string{locBody}, Msg: "JSON decode error: trailing data", Type: "json_invalid",
		}}}
	}
	return Struct(dst)
}

// Struct validates v and translates validator failures.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := make([]problem.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError(fe))
	}
	return &problem.ValidationError{Errors: out}
}

func decodeError(err error) problem.FieldError {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return problem.FieldError{Loc: []string{locBody}, Msg: "Field required", Type: "missing"}
	case errors.As(err, &maxErr):
		return problem.FieldError{
			Loc:  []string{locBody},
			Msg:  fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit),
			Type: "too_long",
		}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return problem.FieldError{Loc: []string{locBody}, Msg: "JSON decode error", Type: "json_invalid"}
	case errors.As(err, &typeErr):
		loc := []string{locBody}
		if typeErr.Field != "" {
			loc = append(loc, strings.Split(typeErr.Field, ".")...)
		}
		return problem.FieldError{
			Loc:  loc,
			Msg:  fmt.Sprintf("Input should be a valid %s", typeErr.Type.Kind()),
			Type: typeErr.Type.Kind().String() + "_type",
		}
	}
	// encoding/json has no typed error for unknown fields.
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return problem.FieldError{
			Loc:  []string{locBody, strings.Trim(field, `"`)},
			Msg:  "Extra inputs are not permitted",
			Type: "extra_forbidden",
		}
	}
	return problem.FieldError{Loc: []string{locBody}, Msg: err.Error(), Type: "json_invalid"}
}

func fieldError(fe validator.FieldError) problem.FieldError {
	loc := []string{locBody}
	// Namespace is "<Struct>.<field>..."; drop the root struct name.
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		loc = append(loc, strings.Split(rest, ".")...)
	}

	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return problem.FieldError{Loc: loc, Msg: "Field required", Type: "missing"}
	case "min", "gte":
		if isString {
			return problem.FieldError{Loc: loc, Msg: fmt.Sprintf("String should have at least %s characters", fe.Param()), Type: "string_too_short"}
		}
		return problem.FieldError{Loc: loc, Msg: fmt.Sprintf("Input should be greater than or equal to %s", fe.Param()), Type: "greater_than_equal"}
	case "max", "lte":
		if isString {
			return problem.FieldError{Loc: loc, Msg: fmt.Sprintf("String should have at most %s characters", fe.Param()), Type: "string_too_long"}
		}
		return problem.FieldError{Loc: loc, Msg: fmt.Sprintf("Input should be less than or equal to %s", fe.Param()), Type: "less_than_equal"}
	case "oneof":
		return problem.FieldError{Loc: loc, Msg: fmt.Sprintf("Input should be one of %s", fe.Param()), Type: "enum"}
	}
	return problem.FieldError{Loc: loc, Msg: fmt.Sprintf("Failed on the '%s' rule", fe.Tag()), Type: fe.Tag()}
}
