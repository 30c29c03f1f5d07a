package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Coerce validates value against t and normalizes it into the canonical Go
// representation: int for "int", float64 for "float", []float64 for vectors
// and []any for slices. Decoders (JSON, YAML, SQL drivers) hand back numbers in
// different shapes; Coerce makes a reloaded value compare equal to the saved one.
// A nil value yields t.Default().
func Coerce(t Type, value any) (any, error) {
	if t == nil {
		return value, nil
	}
	if value == nil {
		return t.Default(), nil
	}
	if n, ok := value.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			value = i
		} else if f, err := n.Float64(); err == nil {
			value = f
		}
	}

	switch tt := t.(type) {
	case *StringType:
		if err := tt.Validate(value); err != nil {
			return nil, err
		}
		return reflect.ValueOf(value).String(), nil
	case *IntType:
		return toInt(value)
	case *FloatType:
		return toFloat(value)
	case *VectorType:
		if err := tt.Validate(value); err != nil {
			return nil, err
		}
		rv := reflect.ValueOf(value)
		out := make([]float64, rv.Len())
		for i := range out {
			f, err := toFloat(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = f.(float64)
		}
		return out, nil
	case *SliceType:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("expected slice, got %T", value)
		}
		out := make([]any, rv.Len())
		for i := range out {
			elem, err := Coerce(tt.elemType, rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = elem
		}
		return out, nil
	}

	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}

// Assignable reports whether value may be stored in a slot of type t.
func Assignable(t Type, value any) bool {
	_, err := Coerce(t, value)
	return err == nil
}

func toInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		if v > math.MaxInt || v < math.MinInt {
			return nil, fmt.Errorf("int overflow: %d", v)
		}
		return int(v), nil
	case uint:
		if v > math.MaxInt {
			return nil, fmt.Errorf("int overflow: %d", v)
		}
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint64:
		if v > math.MaxInt {
			return nil, fmt.Errorf("int overflow: %d", v)
		}
		return int(v), nil
	case float32:
		if float32(int64(v)) == v {
			return int(v), nil
		}
		return nil, fmt.Errorf("expected int, got float (not a whole number)")
	case float64:
		if float64(int64(v)) == v {
			return int(v), nil
		}
		return nil, fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return nil, fmt.Errorf("expected int, got %T", value)
	}
}

func toFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return nil, fmt.Errorf("expected float, got %T", value)
	}
}
