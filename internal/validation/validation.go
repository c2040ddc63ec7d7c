// Package validation checks decoded request payloads against the validate tags of their schema.
package validation

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
)

// ErrInvalid is matched by every *Error.
var ErrInvalid = errors.NewSentinel("invalid input")

// Error lists the offending fields of a payload keyed by their JSON path, e.g., "stats.For".
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid //nolint:errorlint // sentinel comparison
}

// Validator is safe for concurrent use. Create one and share it.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator reporting fields by their json tag names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterStructValidation(nodeSchemaRule, models.NodeInput{})
	return &Validator{v: v}
}

// Struct validates s. It returns an *Error when a field breaks its rules.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate struct", slog.String("type", fmt.Sprintf("%T", s)))
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		// Drop the root type name.
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		if _, exists := fields[path]; !exists {
			fields[path] = message(fe)
		}
	}
	return &Error{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return "must be a URL"
	case "datetime":
		return "must be a date formatted as YYYY-MM-DD"
	case "nefield":
		return "must differ from " + fe.Param()
	case "nodetype":
		return "is not allowed in schema " + fe.Param()
	default:
		return "failed rule " + fe.Tag()
	}
}

// nodeSchemaRule keeps the node type within the taxonomy of its schema.
func nodeSchemaRule(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(models.NodeInput)
	if !ok || in.Type == "" {
		return
	}
	schema := in.Schema
	if schema == "" {
		schema = models.NodeSchemaBoard
	}
	if !schema.Allows(in.Type) {
		sl.ReportError(in.Type, "type", "Type", "nodetype", string(schema))
	}
}
