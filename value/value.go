// Package value implements the immutable structured value model used for
// every event payload and context field. A Value is a tagged union of
// Null, Bool, Number, String, List and Struct with a total, bit-exact
// mapping to google.protobuf.Value.
//
//	msg := value.NewBuilder().
//		SetString("screen", "home").
//		SetNumber("duration", 1.5).
//		Build()
package value

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
	"google.golang.org/protobuf/proto"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindStruct
)

// String returns the lower-case variant name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Value is an immutable structured value. The zero Value is Null.
// Values are safe to share between goroutines.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	l    []Value
	st   Struct
}

// Null is the shared null value.
var Null = Value{}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number returns a numeric Value.
func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// NewList returns a list Value holding a copy of values. Null elements
// are kept: only Struct fields drop nulls.
func NewList(values []Value) Value {
	return Value{kind: KindList, l: slices.Clone(values)}
}

// ListOf returns a list Value of the given elements.
func ListOf(values ...Value) Value {
	return NewList(values)
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsString() bool { return v.kind == KindString }
func (v Value) IsList() bool   { return v.kind == KindList }
func (v Value) IsStruct() bool { return v.kind == KindStruct }

// AsBool returns the boolean held by v or ErrTypeMismatch.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, mismatch(KindBool, v.kind)
	}
	return v.b, nil
}

// AsNumber returns the number held by v or ErrTypeMismatch.
func (v Value) AsNumber() (float64, error) {
	if v.kind != KindNumber {
		return 0, mismatch(KindNumber, v.kind)
	}
	return v.n, nil
}

// AsString returns the string held by v or ErrTypeMismatch.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", mismatch(KindString, v.kind)
	}
	return v.s, nil
}

// AsList returns a copy of the elements held by v or ErrTypeMismatch.
func (v Value) AsList() ([]Value, error) {
	if v.kind != KindList {
		return nil, mismatch(KindList, v.kind)
	}
	return slices.Clone(v.l), nil
}

// AsStruct returns the Struct held by v or ErrTypeMismatch.
func (v Value) AsStruct() (Struct, error) {
	if v.kind != KindStruct {
		return Struct{}, mismatch(KindStruct, v.kind)
	}
	return v.st, nil
}

func mismatch(want, got Kind) error {
	return fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, want, got)
}

// Equal reports whether v and other have identical canonical wire
// encodings.
func (v Value) Equal(other Value) bool {
	return bytes.Equal(v.canonical(), other.canonical())
}

// Hash returns a structural hash consistent with Equal.
func (v Value) Hash() uint64 {
	sum := blake3.Sum256(v.canonical())
	return binary.LittleEndian.Uint64(sum[:8])
}

// canonical is the deterministic protobuf encoding of v. Deterministic
// marshaling sorts map keys, so insertion order never leaks into it.
func (v Value) canonical() []byte {
	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(v.ToProto())
	if err != nil {
		// structpb.Value always marshals; an error here means the
		// invariant that every Value has a wire form is broken.
		panic("value: canonical encoding failed: " + err.Error())
	}
	return b
}

// String renders v for debugging. Struct keys are printed in sorted
// order.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		sb.WriteString(strconv.FormatFloat(v.n, 'g', -1, 64))
	case KindString:
		sb.WriteString(strconv.Quote(v.s))
	case KindList:
		sb.WriteByte('[')
		for i, e := range v.l {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.write(sb)
		}
		sb.WriteByte(']')
	case KindStruct:
		v.st.write(sb)
	}
}
