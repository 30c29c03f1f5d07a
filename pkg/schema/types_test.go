package schema

import (
	"errors"
	"testing"
)

func TestScalarTypes(t *testing.T) {
	tests := []struct {
		typ      Type
		wantName string
		wantZero any
		value    any
		wantErr  bool
	}{
		{String(), "string", "", "hello", false},
		{String(), "string", "", 42, true},
		{Int(), "int", 0, int64(42), false},
		{Int(), "int", 0, float64(42), false},
		{Int(), "int", 0, 42.5, true},
		{Int(), "int", 0, "42", true},
		{Float(), "float", 0.0, 3.14, false},
		{Float(), "float", 0.0, 3, false},
		{Float(), "float", 0.0, "3.14", true},
		{Bool(), "bool", false, true, false},
		{Bool(), "bool", false, 1, true},
		{Any(), "any", nil, struct{}{}, false},
		{Control(), "control", nil, nil, false},
		{Control(), "control", nil, 1, true},
	}

	for _, tt := range tests {
		if tt.typ.Name() != tt.wantName {
			t.Errorf("Name() = %q, want %q", tt.typ.Name(), tt.wantName)
		}
		if tt.typ.Default() != tt.wantZero {
			t.Errorf("%s Default() = %v, want %v", tt.wantName, tt.typ.Default(), tt.wantZero)
		}
		err := tt.typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s Validate(%v) error = %v, wantErr %v", tt.wantName, tt.value, err, tt.wantErr)
		}
	}
}

func TestVectorType(t *testing.T) {
	v3 := Vector3()
	if v3.Name() != "vector3" {
		t.Errorf("Name() = %q, want vector3", v3.Name())
	}
	if err := v3.Validate([]float64{1, 2, 3}); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := v3.Validate([]any{1, 2.5, 3}); err != nil {
		t.Errorf("Validate() mixed numbers error = %v", err)
	}
	if err := v3.Validate([]float64{1, 2}); err == nil {
		t.Error("Validate() should reject wrong dimension")
	}
	if got := Vector2().Default().([]float64); len(got) != 2 {
		t.Errorf("Default() len = %d, want 2", len(got))
	}
}

func TestSliceType(t *testing.T) {
	tests := []struct {
		typ     Type
		value   any
		wantErr bool
		desc    string
	}{
		{Slice(String()), []string{"a", "b"}, false, "string slice"},
		{Slice(String()), []any{"a", "b"}, false, "any slice with strings"},
		{Slice(String()), []int{1, 2}, true, "ints when expecting strings"},
		{Slice(String()), "not a slice", true, "string instead of slice"},
		{Slice(Int()), []any{1, "2", 3}, true, "mixed slice"},
		{Slice(Slice(String())), [][]string{{"a"}, {"b", "c"}}, false, "nested"},
		{Slice(Int()), nil, true, "nil"},
	}

	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate(%v) error = %v, wantErr %v", tt.desc, tt.value, err, tt.wantErr)
		}
	}
}

func TestCustomType(t *testing.T) {
	even := Custom("even", 0, func(v any) error {
		i, ok := v.(int)
		if !ok || i%2 != 0 {
			return errors.New("not even")
		}
		return nil
	})

	if even.Name() != "even" {
		t.Errorf("Name() = %q, want even", even.Name())
	}
	if even.Default() != 0 {
		t.Errorf("Default() = %v, want 0", even.Default())
	}
	if err := even.Validate(4); err != nil {
		t.Errorf("Validate(4) error = %v", err)
	}
	if err := even.Validate(3); err == nil {
		t.Error("Validate(3) should fail")
	}
}

func TestIdentical(t *testing.T) {
	if !Identical(Int(), Int()) {
		t.Error("int should be identical to int")
	}
	if Identical(Int(), Float()) {
		t.Error("int must not widen to float")
	}
	if !Identical(Slice(String()), MustParseType("[string]")) {
		t.Error("parsed slice should match constructed slice")
	}
	if Identical(nil, Int()) {
		t.Error("nil type is never identical")
	}
	if !IsControl(Control()) || IsControl(Any()) {
		t.Error("IsControl mismatch")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantErr  bool
		wantName string
	}{
		{"string", false, "string"},
		{"int", false, "int"},
		{"float", false, "float"},
		{"bool", false, "bool"},
		{"vector2", false, "vector2"},
		{"vector3", false, "vector3"},
		{"any", false, "any"},
		{"", false, "any"},
		{"control", false, "control"},
		{"[string]", false, "[string]"},
		{"[[int]]", false, "[[int]]"},
		{"invalid", true, ""},
		{"[invalid]", true, ""},
	}

	for _, tt := range tests {
		typ, err := ParseType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && typ.Name() != tt.wantName {
			t.Errorf("ParseType(%q) Name() = %q, want %q", tt.input, typ.Name(), tt.wantName)
		}
	}
}

func TestParseTypeMap(t *testing.T) {
	s, err := ParseTypeMap(map[string]string{"frames": "int", "tags": "[string]"})
	if err != nil {
		t.Fatalf("ParseTypeMap() error = %v", err)
	}
	if s["frames"].Name() != "int" || s["tags"].Name() != "[string]" {
		t.Errorf("ParseTypeMap() = %v", s)
	}

	if _, err := ParseTypeMap(map[string]string{"x": "nope"}); err == nil {
		t.Fatal("ParseTypeMap() should return error for invalid type")
	}
}
