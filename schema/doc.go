// Package schema provides a small, closed description of tool
// arguments: named fields with a primitive type, a required flag, and
// an optional description.
//
// An Object marshals to the JSON Schema form clients expect from
// tools/list, and validates raw JSON arguments before a tool handler
// runs. Validation reports every missing or mismatched field rather
// than stopping at the first.
package schema
