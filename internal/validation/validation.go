// Package validation configures request validation and turns binding
// failures into field level error descriptions.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

var setupOnce sync.Once

// Setup registers field naming and custom rules on gin's validator engine.
// It is safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("validation: gin validator engine is not go-playground/validator")
		}
		Configure(v)
	})
}

// Configure applies the recipe rules to v
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(fieldName)
	mustRegister(v, "difficulty", func(fl validator.FieldLevel) bool {
		return model.CookingDifficulty(fl.Field().String()).Valid()
	})
	mustRegister(v, "notblank", validators.NotBlank)
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

// Struct validates obj with the same engine gin uses for binding
func Struct(obj interface{}) error {
	return binding.Validator.ValidateStruct(obj)
}

// Describe converts a binding or validation error into field errors.
// ok is false when err is not an input problem.
func Describe(err error) (details []types.FieldError, ok bool) {
	var (
		verrs    validator.ValidationErrors
		typeErr  *json.UnmarshalTypeError
		syntax   *json.SyntaxError
		numErr   *strconv.NumError
		fieldErr fieldError
	)

	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			details = append(details, types.FieldError{
				Field:  fieldPath(fe),
				Reason: reason(fe),
			})
		}
		return details, true
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return []types.FieldError{{Field: field, Reason: "must be " + jsonKind(typeErr.Type)}}, true
	case errors.As(err, &syntax):
		return []types.FieldError{{Field: "body", Reason: fmt.Sprintf("malformed JSON at offset %d", syntax.Offset)}}, true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return []types.FieldError{{Field: "body", Reason: "request body is empty or truncated"}}, true
	case errors.As(err, &numErr):
		return []types.FieldError{{Field: "query", Reason: fmt.Sprintf("%q is not a valid number", numErr.Num)}}, true
	case errors.As(err, &fieldErr):
		return []types.FieldError{types.FieldError(fieldErr)}, true
	}
	return nil, false
}

// Field builds a validation error for a single field
func Field(field, reason string) error {
	return fieldError(types.FieldError{Field: field, Reason: reason})
}

type fieldError types.FieldError

func (e fieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// fieldPath drops the root struct name: "CreateRecipeRequest.recipe_ingredients[0]" becomes "recipe_ingredients[0]"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "field required"
	case "notblank":
		return "must not be blank"
	case "difficulty":
		return "must be one of: EASY, MEDIUM, HARD"
	case "gt":
		return "must be greater than " + param
	case "min":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("must contain at least %s item(s)", param)
		}
		if isString(fe.Kind()) {
			return fmt.Sprintf("must be at least %s characters", param)
		}
		return "must be at least " + param
	case "max":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("must contain at most %s items", param)
		}
		if isString(fe.Kind()) {
			return fmt.Sprintf("must be at most %s characters", param)
		}
		return "must be at most " + param
	case "excluded_with":
		return "cannot be combined with " + toSnake(param)
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func isCollection(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array || k == reflect.Map
}

func isString(k reflect.Kind) bool {
	return k == reflect.String
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "a non-negative integer"
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "a list"
	case reflect.Bool:
		return "a boolean"
	default:
		return "a valid " + t.String()
	}
}

// toSnake turns a Go field name such as KitchenName into kitchen_name
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
