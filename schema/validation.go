package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ValidationError reports one invalid argument field.
type ValidationError struct {
	Field   string // name of the offending field, empty for document-level errors
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every validation failure for one document.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range e {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Fields returns the names of all offending fields.
func (e ValidationErrors) Fields() []string {
	names := make([]string, 0, len(e))
	for _, err := range e {
		if err.Field != "" {
			names = append(names, err.Field)
		}
	}
	return names
}

// Validate checks raw JSON arguments against the object schema.
// Returns nil when valid, otherwise ValidationErrors listing every
// missing or mismatched field. Fields not declared in the schema are
// ignored.
func (o *Object) Validate(data json.RawMessage) error {
	args := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &args); err != nil {
			return ValidationErrors{{Message: fmt.Sprintf("arguments must be a JSON object: %v", err)}}
		}
	}

	var errs ValidationErrors
	for _, f := range o.fields {
		value, present := args[f.Name]
		if !present {
			if f.Required {
				errs = append(errs, &ValidationError{Field: f.Name, Message: "required field missing"})
			}
			continue
		}
		if value == nil {
			// Explicit null counts as absent.
			if f.Required {
				errs = append(errs, &ValidationError{Field: f.Name, Message: "required field is null"})
			}
			continue
		}
		if msg := checkType(f, value); msg != "" {
			errs = append(errs, &ValidationError{Field: f.Name, Message: msg})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkType(f Field, value any) string {
	switch f.Type {
	case TypeString:
		if _, ok := value.(string); !ok {
			return fmt.Sprintf("expected string, got %s", jsonTypeName(value))
		}
	case TypeInteger:
		n, ok := value.(float64)
		if !ok {
			return fmt.Sprintf("expected integer, got %s", jsonTypeName(value))
		}
		if n != math.Trunc(n) {
			return fmt.Sprintf("expected integer, got %v", n)
		}
	case TypeNumber:
		if _, ok := value.(float64); !ok {
			return fmt.Sprintf("expected number, got %s", jsonTypeName(value))
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Sprintf("expected boolean, got %s", jsonTypeName(value))
		}
	case TypeArray:
		items, ok := value.([]any)
		if !ok {
			return fmt.Sprintf("expected array, got %s", jsonTypeName(value))
		}
		if f.Elem != "" {
			for i, item := range items {
				if msg := checkType(Field{Type: f.Elem}, item); msg != "" {
					return fmt.Sprintf("element %d: %s", i, msg)
				}
			}
		}
	case TypeObject:
		if _, ok := value.(map[string]any); !ok {
			return fmt.Sprintf("expected object, got %s", jsonTypeName(value))
		}
	}
	return ""
}

func jsonTypeName(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
