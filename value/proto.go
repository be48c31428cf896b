package value

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToProto encodes v as a google.protobuf.Value. Every variant has exactly
// one encoding.
func (v Value) ToProto() *structpb.Value {
	switch v.kind {
	case KindBool:
		return structpb.NewBoolValue(v.b)
	case KindNumber:
		return structpb.NewNumberValue(v.n)
	case KindString:
		return structpb.NewStringValue(v.s)
	case KindList:
		values := make([]*structpb.Value, len(v.l))
		for i, e := range v.l {
			values[i] = e.ToProto()
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values})
	case KindStruct:
		return structpb.NewStructValue(v.st.ToProto())
	default:
		return structpb.NewNullValue()
	}
}

// FromProto decodes a google.protobuf.Value. A nil message or one with
// no kind set fails with ErrUnsupportedVariant.
func FromProto(pv *structpb.Value) (Value, error) {
	if pv == nil {
		return Null, fmt.Errorf("%w: nil value", ErrUnsupportedVariant)
	}

	switch kind := pv.GetKind().(type) {
	case *structpb.Value_NullValue:
		return Null, nil
	case *structpb.Value_BoolValue:
		return Bool(kind.BoolValue), nil
	case *structpb.Value_NumberValue:
		return Number(kind.NumberValue), nil
	case *structpb.Value_StringValue:
		return String(kind.StringValue), nil
	case *structpb.Value_ListValue:
		elems := kind.ListValue.GetValues()
		values := make([]Value, len(elems))
		for i, e := range elems {
			decoded, err := FromProto(e)
			if err != nil {
				return Null, fmt.Errorf("list index %d: %w", i, err)
			}
			values[i] = decoded
		}
		return Value{kind: KindList, l: values}, nil
	case *structpb.Value_StructValue:
		st, err := StructFromProto(kind.StructValue)
		if err != nil {
			return Null, err
		}
		return st.Value(), nil
	default:
		return Null, fmt.Errorf("%w: %T", ErrUnsupportedVariant, kind)
	}
}

// ToProto encodes s as a google.protobuf.Struct.
func (s Struct) ToProto() *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(s.fields))
	for k, v := range s.fields {
		fields[k] = v.ToProto()
	}
	return &structpb.Struct{Fields: fields}
}

// StructFromProto decodes a google.protobuf.Struct. Null fields are
// dropped; a nil message decodes to EmptyStruct.
func StructFromProto(ps *structpb.Struct) (Struct, error) {
	b := NewBuilder()
	for k, pv := range ps.GetFields() {
		decoded, err := FromProto(pv)
		if err != nil {
			return Struct{}, fmt.Errorf("field %q: %w", k, err)
		}
		b.Set(k, decoded)
	}
	return b.Build(), nil
}
