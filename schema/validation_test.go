package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestObject_Validate(t *testing.T) {
	obj := NewObject(
		Field{Name: "input", Type: TypeString, Required: true},
		Field{Name: "count", Type: TypeInteger},
		Field{Name: "ratio", Type: TypeNumber},
		Field{Name: "verbose", Type: TypeBoolean},
		Field{Name: "tags", Type: TypeArray, Elem: TypeString},
	)

	t.Run("accepts valid arguments", func(t *testing.T) {
		args := json.RawMessage(`{"input":"hello","count":3,"ratio":0.5,"verbose":true,"tags":["a","b"]}`)
		if err := obj.Validate(args); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("accepts required field only", func(t *testing.T) {
		if err := obj.Validate(json.RawMessage(`{"input":""}`)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects missing required field", func(t *testing.T) {
		err := obj.Validate(json.RawMessage(`{}`))
		if err == nil {
			t.Fatal("expected error")
		}

		var errs ValidationErrors
		if !errors.As(err, &errs) {
			t.Fatalf("expected ValidationErrors, got %T", err)
		}
		if len(errs) != 1 || errs[0].Field != "input" {
			t.Errorf("errors = %v, want one error for field input", errs)
		}
	})

	t.Run("rejects null for required field", func(t *testing.T) {
		if err := obj.Validate(json.RawMessage(`{"input":null}`)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects wrong types and names every field", func(t *testing.T) {
		args := json.RawMessage(`{"input":7,"count":"three","verbose":"yes"}`)
		err := obj.Validate(args)
		if err == nil {
			t.Fatal("expected error")
		}

		var errs ValidationErrors
		if !errors.As(err, &errs) {
			t.Fatalf("expected ValidationErrors, got %T", err)
		}
		if len(errs) != 3 {
			t.Fatalf("expected 3 errors, got %d: %v", len(errs), errs)
		}

		fields := errs.Fields()
		for _, want := range []string{"input", "count", "verbose"} {
			found := false
			for _, f := range fields {
				if f == want {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an error for field %q, got %v", want, fields)
			}
		}
	})

	t.Run("rejects fractional value for integer field", func(t *testing.T) {
		if err := obj.Validate(json.RawMessage(`{"input":"x","count":1.5}`)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects mismatched array element", func(t *testing.T) {
		err := obj.Validate(json.RawMessage(`{"input":"x","tags":["ok",1]}`))
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "element 1") {
			t.Errorf("error %q should name the offending element", err)
		}
	})

	t.Run("ignores undeclared fields", func(t *testing.T) {
		if err := obj.Validate(json.RawMessage(`{"input":"x","extra":123}`)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects non-object arguments", func(t *testing.T) {
		if err := obj.Validate(json.RawMessage(`[1,2,3]`)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("empty input validates against optional-only schema", func(t *testing.T) {
		opt := NewObject(Field{Name: "limit", Type: TypeInteger})
		if err := opt.Validate(nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("single error renders inline", func(t *testing.T) {
		errs := ValidationErrors{{Field: "input", Message: "required field missing"}}
		if errs.Error() != "input: required field missing" {
			t.Errorf("Error() = %q", errs.Error())
		}
	})

	t.Run("multiple errors render as a list", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "a", Message: "required field missing"},
			{Field: "b", Message: "expected string, got number"},
		}
		got := errs.Error()
		if !strings.HasPrefix(got, "validation failed:") {
			t.Errorf("Error() = %q", got)
		}
		if !strings.Contains(got, "a: required field missing") || !strings.Contains(got, "b: expected string") {
			t.Errorf("Error() = %q, missing field detail", got)
		}
	})
}
