package schema

import (
	"encoding/json"
	"fmt"
)

// Type is the primitive type of a field.
type Type string

// Supported field types.
const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Field describes one named argument of a tool.
type Field struct {
	Name        string
	Type        Type
	Required    bool
	Description string

	// Elem is the element type when Type is TypeArray.
	Elem Type
}

// Object is the argument schema for a tool: an ordered set of named
// fields. Objects are immutable once built.
type Object struct {
	fields []Field
}

// NewObject builds an Object from the given fields. Field order is
// preserved for documentation purposes; validation is order
// independent.
func NewObject(fields ...Field) *Object {
	o := &Object{fields: make([]Field, len(fields))}
	copy(o.fields, fields)
	return o
}

// Fields returns the declared fields in declaration order.
func (o *Object) Fields() []Field {
	out := make([]Field, len(o.fields))
	copy(out, o.fields)
	return out
}

// MarshalJSON renders the object in JSON Schema form:
//
//	{"type":"object","properties":{...},"required":[...]}
func (o *Object) MarshalJSON() ([]byte, error) {
	type property struct {
		Type        Type           `json:"type"`
		Description string         `json:"description,omitempty"`
		Items       map[string]any `json:"items,omitempty"`
	}

	properties := make(map[string]property, len(o.fields))
	var required []string

	for _, f := range o.fields {
		p := property{Type: f.Type, Description: f.Description}
		if f.Type == TypeArray && f.Elem != "" {
			p.Items = map[string]any{"type": f.Elem}
		}
		properties[f.Name] = p
		if f.Required {
			required = append(required, f.Name)
		}
	}

	return json.Marshal(struct {
		Type       string              `json:"type"`
		Properties map[string]property `json:"properties"`
		Required   []string            `json:"required,omitempty"`
	}{
		Type:       "object",
		Properties: properties,
		Required:   required,
	})
}

// String returns a compact description, useful in error messages.
func (o *Object) String() string {
	return fmt.Sprintf("object with %d fields", len(o.fields))
}
