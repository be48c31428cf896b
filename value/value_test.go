package value_test

import (
	"errors"
	"math"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/eventsender/value"
)

func sample() value.Value {
	return value.NewBuilder().
		SetString("name", "checkout").
		SetNumber("amount", 12.5).
		SetBool("premium", true).
		Set("tags", value.ListOf(value.String("a"), value.Null, value.Number(-0.25))).
		SetBuilder("device", value.NewBuilder().
			SetString("os", "linux").
			SetBuilder("screen", value.NewBuilder().SetNumber("width", 1920))).
		Build().Value()
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind value.Kind
		want string
	}{
		{value.KindNull, "null"},
		{value.KindBool, "bool"},
		{value.KindNumber, "number"},
		{value.KindString, "string"},
		{value.KindList, "list"},
		{value.KindStruct, "struct"},
		{value.Kind(42), "kind(42)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestNull_IsZeroValue(t *testing.T) {
	var zero value.Value
	if !zero.IsNull() {
		t.Error("zero Value should be null")
	}
	if !zero.Equal(value.Null) {
		t.Error("zero Value should equal Null")
	}
}

func TestAccessors(t *testing.T) {
	st := value.NewBuilder().SetString("k", "v").Build()

	tests := []struct {
		name  string
		value value.Value
		kind  value.Kind
	}{
		{"null", value.Null, value.KindNull},
		{"bool", value.Bool(true), value.KindBool},
		{"number", value.Number(3), value.KindNumber},
		{"string", value.String("s"), value.KindString},
		{"list", value.ListOf(value.Bool(false)), value.KindList},
		{"struct", st.Value(), value.KindStruct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.value
			if v.Kind() != tt.kind {
				t.Fatalf("got kind %s, want %s", v.Kind(), tt.kind)
			}

			predicates := map[value.Kind]bool{
				value.KindNull:   v.IsNull(),
				value.KindBool:   v.IsBool(),
				value.KindNumber: v.IsNumber(),
				value.KindString: v.IsString(),
				value.KindList:   v.IsList(),
				value.KindStruct: v.IsStruct(),
			}
			for kind, got := range predicates {
				if got != (kind == tt.kind) {
					t.Errorf("Is%s() = %v", kind, got)
				}
			}

			_, errBool := v.AsBool()
			_, errNumber := v.AsNumber()
			_, errString := v.AsString()
			_, errList := v.AsList()
			_, errStruct := v.AsStruct()

			accessors := map[value.Kind]error{
				value.KindBool:   errBool,
				value.KindNumber: errNumber,
				value.KindString: errString,
				value.KindList:   errList,
				value.KindStruct: errStruct,
			}
			for kind, err := range accessors {
				if kind == tt.kind {
					if err != nil {
						t.Errorf("As%s() unexpected error: %v", kind, err)
					}
					continue
				}
				if !errors.Is(err, value.ErrTypeMismatch) {
					t.Errorf("As%s() error = %v, want ErrTypeMismatch", kind, err)
				}
			}
		})
	}
}

func TestAsList_ReturnsCopy(t *testing.T) {
	v := value.ListOf(value.String("a"), value.String("b"))

	elems, _ := v.AsList()
	elems[0] = value.String("tampered")

	again, _ := v.AsList()
	if s, _ := again[0].AsString(); s != "a" {
		t.Errorf("list element was mutated: got %q, want %q", s, "a")
	}
}

func TestNewList_CopiesInput(t *testing.T) {
	in := []value.Value{value.Number(1)}
	v := value.NewList(in)
	in[0] = value.Number(2)

	elems, _ := v.AsList()
	if n, _ := elems[0].AsNumber(); n != 1 {
		t.Errorf("got %v, want 1", n)
	}
}

func TestRoundTrip_Proto(t *testing.T) {
	tests := []struct {
		name  string
		value value.Value
	}{
		{"null", value.Null},
		{"true", value.Bool(true)},
		{"false", value.Bool(false)},
		{"zero", value.Number(0)},
		{"negative", value.Number(-17.125)},
		{"max float", value.Number(math.MaxFloat64)},
		{"empty string", value.String("")},
		{"unicode", value.String("héllo ✓")},
		{"empty list", value.ListOf()},
		{"list with null", value.ListOf(value.Null, value.Number(1))},
		{"empty struct", value.EmptyStruct.Value()},
		{"nested", sample()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := value.FromProto(tt.value.ToProto())
			if err != nil {
				t.Fatalf("FromProto failed: %v", err)
			}
			if !decoded.Equal(tt.value) {
				t.Errorf("got %s, want %s", decoded, tt.value)
			}
			if decoded.Hash() != tt.value.Hash() {
				t.Errorf("hash changed across round trip")
			}
		})
	}
}

func TestFromProto_UnsupportedVariant(t *testing.T) {
	tests := []struct {
		name  string
		value *structpb.Value
	}{
		{"nil message", nil},
		{"unset kind", &structpb.Value{}},
		{"nested unset kind", structpb.NewListValue(&structpb.ListValue{
			Values: []*structpb.Value{structpb.NewBoolValue(true), {}},
		})},
		{"struct field unset kind", structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{"bad": {}},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := value.FromProto(tt.value)
			if !errors.Is(err, value.ErrUnsupportedVariant) {
				t.Errorf("got error %v, want ErrUnsupportedVariant", err)
			}
		})
	}
}

func TestStructFromProto_DropsNullFields(t *testing.T) {
	ps := &structpb.Struct{Fields: map[string]*structpb.Value{
		"kept":    structpb.NewStringValue("x"),
		"dropped": structpb.NewNullValue(),
	}}

	st, err := value.StructFromProto(ps)
	if err != nil {
		t.Fatalf("StructFromProto failed: %v", err)
	}
	if st.Has("dropped") {
		t.Error("null field should be dropped")
	}
	if !st.Has("kept") {
		t.Error("non-null field should be kept")
	}
}

func TestEqual_Structural(t *testing.T) {
	a := value.NewBuilder().SetString("x", "1").SetNumber("y", 2).Build()
	b := value.NewBuilder().SetNumber("y", 2).SetString("x", "1").Build()

	if !a.Equal(b) {
		t.Errorf("structs with the same fields should be equal: %s vs %s", a, b)
	}
	if a.Value().Hash() != b.Value().Hash() {
		t.Error("equal structs should hash equally")
	}

	c := value.NewBuilder().SetString("x", "1").SetNumber("y", 3).Build()
	if a.Equal(c) {
		t.Error("structs with different values should not be equal")
	}

	if value.String("1").Equal(value.Number(1)) {
		t.Error("string and number should not be equal")
	}
}

func TestValue_String(t *testing.T) {
	v := value.NewBuilder().
		SetString("b", "x").
		Set("a", value.ListOf(value.Number(1.5), value.Null, value.Bool(true))).
		Build().Value()

	want := `{"a": [1.5, null, true], "b": "x"}`
	if got := v.String(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
