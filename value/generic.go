package value

import (
	"fmt"
	"reflect"
)

// Interface returns v as plain Go data: nil, bool, float64, string,
// []any or map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.l))
		for i, e := range v.l {
			out[i] = e.Interface()
		}
		return out
	case KindStruct:
		return v.st.Interface()
	default:
		return nil
	}
}

// Interface returns s as a map[string]any.
func (s Struct) Interface() map[string]any {
	out := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		out[k] = v.Interface()
	}
	return out
}

// FromInterface converts generic Go data into a Value. Supported inputs
// are nil, Value, Struct, bool, string, every integer and float kind,
// slices and arrays of supported values, and maps keyed by string.
// Integers are widened to float64. Anything else fails with
// ErrUnsupportedVariant.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null, nil
	case Value:
		return t, nil
	case Struct:
		return t.Value(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int8:
		return Number(float64(t)), nil
	case int16:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint8:
		return Number(float64(t)), nil
	case uint16:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case []any:
		values := make([]Value, len(t))
		for i, e := range t {
			v, err := FromInterface(e)
			if err != nil {
				return Null, fmt.Errorf("index %d: %w", i, err)
			}
			values[i] = v
		}
		return Value{kind: KindList, l: values}, nil
	case map[string]any:
		st, err := StructFromMap(t)
		if err != nil {
			return Null, err
		}
		return st.Value(), nil
	}
	return fromReflect(reflect.ValueOf(x))
}

// StructFromMap converts a generic map into a Struct, dropping nil
// entries.
func StructFromMap(m map[string]any) (Struct, error) {
	b := NewBuilder()
	for k, e := range m {
		v, err := FromInterface(e)
		if err != nil {
			return Struct{}, fmt.Errorf("field %q: %w", k, err)
		}
		b.Set(k, v)
	}
	return b.Build(), nil
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		values := make([]Value, rv.Len())
		for i := range rv.Len() {
			v, err := FromInterface(rv.Index(i).Interface())
			if err != nil {
				return Null, fmt.Errorf("index %d: %w", i, err)
			}
			values[i] = v
		}
		return Value{kind: KindList, l: values}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Null, fmt.Errorf("%w: map key %s", ErrUnsupportedVariant, rv.Type().Key())
		}
		b := NewBuilder()
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			v, err := FromInterface(iter.Value().Interface())
			if err != nil {
				return Null, fmt.Errorf("field %q: %w", key, err)
			}
			b.Set(key, v)
		}
		return b.Build().Value(), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Null, nil
		}
		return FromInterface(rv.Elem().Interface())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	}
	return Null, fmt.Errorf("%w: %s", ErrUnsupportedVariant, rv.Type())
}
