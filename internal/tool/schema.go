package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
)

// ValidationError names the first constraint an argument map violated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("argument %q: %s", e.Field, e.Reason)
}

func (e *ValidationError) InvalidInput() bool {
	return true
}

// Validate checks args against an object schema and returns the first violation.
// Unknown fields are reported first (sorted), then missing required fields in
// declaration order, then per-property type and constraint violations (sorted).
// A nil schema accepts only an empty argument map.
func (s *Schema) Validate(args map[string]any) error {
	if s == nil {
		for name := range args {
			return &ValidationError{Field: name, Reason: "unknown field (tool takes no arguments)"}
		}
		return nil
	}

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := s.Properties[name]; !ok {
			return &ValidationError{Field: name, Reason: "unknown field"}
		}
	}

	for _, name := range s.Required {
		v, ok := args[name]
		if !ok || v == nil {
			return &ValidationError{Field: name, Reason: "required field is missing"}
		}
	}

	for _, name := range names {
		v := args[name]
		if v == nil {
			continue
		}
		if err := s.Properties[name].check(name, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) check(field string, v any) error {
	switch s.Type {
	case TypeString:
		str, ok := v.(string)
		if !ok {
			return typeMismatch(field, s.Type, v)
		}
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, str) {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("must be one of %v, got %q", s.Enum, str)}
		}
	case TypeInteger, TypeNumber:
		n, ok := toFloat(v)
		if !ok {
			return typeMismatch(field, s.Type, v)
		}
		if s.Type == TypeInteger && n != math.Trunc(n) {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("must be an integer, got %v", n)}
		}
		if s.Minimum != nil && n < *s.Minimum {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("must be >= %v, got %v", *s.Minimum, n)}
		}
		if s.Maximum != nil && n > *s.Maximum {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("must be <= %v, got %v", *s.Maximum, n)}
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return typeMismatch(field, s.Type, v)
		}
	case TypeArray:
		items, ok := v.([]any)
		if !ok {
			return typeMismatch(field, s.Type, v)
		}
		if s.Items != nil {
			for i, item := range items {
				if err := s.Items.check(fmt.Sprintf("%s[%d]", field, i), item); err != nil {
					return err
				}
			}
		}
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return typeMismatch(field, s.Type, v)
		}
		if s.Properties != nil {
			if err := s.Validate(obj); err != nil {
				var ve *ValidationError
				if errors.As(err, &ve) {
					return &ValidationError{Field: field + "." + ve.Field, Reason: ve.Reason}
				}
				return err
			}
		}
	}
	return nil
}

func typeMismatch(field string, want Type, v any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("expected %s, got %s", want, jsonTypeName(v))}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
