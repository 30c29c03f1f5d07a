package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Type is a runtime type tag for a port or parameter value.
// Two ports are connectable only when their types have the same Name.
type Type interface {
	// Name returns the type tag (e.g., "string", "int", "[float]").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// Default returns the zero value used when a port is reset.
	Default() any
}

// Type tags understood by ParseType.
const (
	NameString  = "string"
	NameInt     = "int"
	NameFloat   = "float"
	NameBool    = "bool"
	NameVector2 = "vector2"
	NameVector3 = "vector3"
	NameAny     = "any"
	NameControl = "control"
)

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return NameString }
func (t *StringType) Default() any { return "" }

// Validate accepts strings and named string types.
func (t *StringType) Validate(value any) error {
	if value == nil || reflect.TypeOf(value).Kind() != reflect.String {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return NameInt }
func (t *IntType) Default() any { return 0 }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		// decoded JSON numbers arrive as float64
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates floating-point values. Integers are accepted.
type FloatType struct{}

func (t *FloatType) Name() string { return NameFloat }
func (t *FloatType) Default() any { return 0.0 }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return NameBool }
func (t *BoolType) Default() any { return false }

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// VectorType validates fixed-size float vectors.
type VectorType struct {
	dim int
}

func (t *VectorType) Name() string { return fmt.Sprintf("vector%d", t.dim) }
func (t *VectorType) Default() any { return make([]float64, t.dim) }

func (t *VectorType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fmt.Errorf("expected %s, got %T", t.Name(), value)
	}
	if rv.Len() != t.dim {
		return fmt.Errorf("expected %d components, got %d", t.dim, rv.Len())
	}
	for i := 0; i < rv.Len(); i++ {
		if err := Float().Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string { return fmt.Sprintf("[%s]", t.elemType.Name()) }
func (t *SliceType) Default() any { return []any{} }

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fmt.Errorf("expected slice, got %T", value)
	}

	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// AnyType is the untyped placeholder used before a parameter is resolved.
type AnyType struct{}

func (t *AnyType) Name() string       { return NameAny }
func (t *AnyType) Default() any       { return nil }
func (t *AnyType) Validate(any) error { return nil }

// ControlType marks sequential ports. They carry no value.
type ControlType struct{}

func (t *ControlType) Name() string { return NameControl }
func (t *ControlType) Default() any { return nil }

func (t *ControlType) Validate(value any) error {
	if value != nil {
		return fmt.Errorf("control ports carry no value, got %T", value)
	}
	return nil
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	zero     any
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }
func (t *CustomType) Default() any { return t.zero }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// String creates a string type.
func String() Type { return &StringType{} }

// Int creates an integer type.
func Int() Type { return &IntType{} }

// Float creates a float type.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type.
func Bool() Type { return &BoolType{} }

// Vector2 creates a two-component vector type.
func Vector2() Type { return &VectorType{dim: 2} }

// Vector3 creates a three-component vector type.
func Vector3() Type { return &VectorType{dim: 3} }

// Slice creates a slice type for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Any creates the untyped placeholder.
func Any() Type { return &AnyType{} }

// Control creates the sequential control type.
func Control() Type { return &ControlType{} }

// Custom creates a custom type with a user-defined validation function and default.
func Custom(name string, zero any, validate func(any) error) Type {
	return &CustomType{name: name, zero: zero, validate: validate}
}

// Identical reports whether two types share a tag. No implicit widening applies.
func Identical(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Name() == b.Name()
}

// IsControl reports whether t is the sequential control type.
func IsControl(t Type) bool {
	return t != nil && t.Name() == NameControl
}

// ParseType converts a type tag to a Type.
// Supports "string", "int", "float", "bool", "vector2", "vector3", "any",
// "control" and slices such as "[string]".
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	switch typeStr {
	case NameString:
		return String(), nil
	case NameInt:
		return Int(), nil
	case NameFloat:
		return Float(), nil
	case NameBool:
		return Bool(), nil
	case NameVector2:
		return Vector2(), nil
	case NameVector3:
		return Vector3(), nil
	case NameAny, "":
		return Any(), nil
	case NameControl:
		return Control(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// MustParseType is ParseType for static declarations.
func MustParseType(typeStr string) Type {
	t, err := ParseType(typeStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTypeMap converts a map of field names to type tags into a Schema.
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema)
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}
