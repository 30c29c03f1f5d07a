package schema

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestValidate_Success(t *testing.T) {
	s := Schema{
		"message": String(),
		"frames":  Int(),
		"scale":   Float(),
		"enabled": Bool(),
		"tags":    Slice(String()),
	}

	data := map[string]any{
		"message": "hi",
		"frames":  float64(3),
		"scale":   1.5,
		"enabled": true,
		"tags":    []string{"a"},
	}

	if err := Validate(s, data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_MissingFieldIsAllowed(t *testing.T) {
	s := Schema{"frames": Int()}
	if err := Validate(s, map[string]any{}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	s := Schema{
		"frames":  Int(),
		"message": String(),
		"scale":   Float(),
	}

	data := map[string]any{
		"frames":  "three",
		"message": 12,
		"scale":   2.0,
	}

	err := Validate(s, data)
	if err == nil {
		t.Fatal("Validate() should return error")
	}

	errs := ValidationErrors(err)
	if len(errs) != 2 {
		t.Fatalf("Validate() = %d errors, want 2", len(errs))
	}

	var first *ValidationError
	if !errors.As(errs[0], &first) {
		t.Fatalf("error should be *ValidationError, got %T", errs[0])
	}
	if first.Key != "frames" {
		t.Errorf("first error Key = %q, want frames (sorted order)", first.Key)
	}
}

func TestValidateFields(t *testing.T) {
	s := Schema{"frames": Int(), "message": String()}

	if err := ValidateFields(s, map[string]any{"frames": 1}, "frames"); err != nil {
		t.Errorf("ValidateFields() error = %v", err)
	}

	err := ValidateFields(s, map[string]any{}, "frames", "unknown")
	errs := ValidationErrors(err)
	if len(errs) != 2 {
		t.Fatalf("ValidateFields() = %d errors, want 2", len(errs))
	}
}

func TestSchemaJSON(t *testing.T) {
	s := Schema{"frames": Int(), "tags": Slice(String())}
	data, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	var out Schema
	if err := out.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if out["tags"].Name() != "[string]" {
		t.Errorf("tags = %s, want [string]", out["tags"].Name())
	}
}

func TestSchemaYAML(t *testing.T) {
	s := Schema{"frames": Int()}
	data, err := yaml.Marshal(s)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}

	var out Schema
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if out["frames"].Name() != "int" {
		t.Errorf("frames = %s, want int", out["frames"].Name())
	}
}
