package value

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Struct is an immutable string-keyed mapping of non-null Values. The
// zero Struct is empty.
type Struct struct {
	fields map[string]Value
}

// EmptyStruct is the Struct with no fields.
var EmptyStruct = Struct{}

// NewStruct returns a Struct holding a copy of fields. Keys whose value
// is Null are dropped.
func NewStruct(fields map[string]Value) Struct {
	b := NewBuilder()
	for k, v := range fields {
		b.Set(k, v)
	}
	return b.Build()
}

// Value wraps s as a struct Value.
func (s Struct) Value() Value {
	return Value{kind: KindStruct, st: s}
}

// Len returns the number of fields.
func (s Struct) Len() int { return len(s.fields) }

// Has reports whether key is present.
func (s Struct) Has(key string) bool {
	_, ok := s.fields[key]
	return ok
}

// Keys returns the field names in sorted order.
func (s Struct) Keys() []string {
	return slices.Sorted(maps.Keys(s.fields))
}

// AsMap returns a copy of the fields. Mutating the returned map does not
// affect s.
func (s Struct) AsMap() map[string]Value {
	m := make(map[string]Value, len(s.fields))
	maps.Copy(m, s.fields)
	return m
}

// Get resolves a multi-segment path. A missing key yields Null, as does
// descending through a missing intermediate. Descending through a present
// value that is not a Struct fails with ErrInvalidPath. An empty path
// returns s itself.
func (s Struct) Get(path ...string) (Value, error) {
	current := s.Value()
	for i, key := range path {
		switch current.kind {
		case KindStruct:
			current = current.st.fields[key]
		case KindNull:
			return Null, nil
		default:
			return Null, fmt.Errorf("%w: %s is a %s, cannot resolve %q",
				ErrInvalidPath, strings.Join(path[:i], "."), current.kind, key)
		}
	}
	return current, nil
}

// Equal reports structural equality.
func (s Struct) Equal(other Struct) bool {
	return s.Value().Equal(other.Value())
}

// String renders s for debugging.
func (s Struct) String() string {
	var sb strings.Builder
	s.write(&sb)
	return sb.String()
}

func (s Struct) write(sb *strings.Builder) {
	sb.WriteByte('{')
	for i, k := range s.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Quote(k))
		sb.WriteString(": ")
		s.fields[k].write(sb)
	}
	sb.WriteByte('}')
}

// Builder assembles a Struct. Setting a key to Null drops it, including
// any value previously set under that key.
type Builder struct {
	fields map[string]Value
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{fields: make(map[string]Value)}
}

// Set assigns v under key, or removes key when v is Null.
func (b *Builder) Set(key string, v Value) *Builder {
	if v.IsNull() {
		delete(b.fields, key)
		return b
	}
	b.fields[key] = v
	return b
}

func (b *Builder) SetBool(key string, v bool) *Builder {
	return b.Set(key, Bool(v))
}

func (b *Builder) SetNumber(key string, v float64) *Builder {
	return b.Set(key, Number(v))
}

func (b *Builder) SetString(key string, v string) *Builder {
	return b.Set(key, String(v))
}

func (b *Builder) SetStruct(key string, v Struct) *Builder {
	return b.Set(key, v.Value())
}

// SetBuilder builds sub and assigns the result under key. Later changes
// to sub are not reflected.
func (b *Builder) SetBuilder(key string, sub *Builder) *Builder {
	return b.Set(key, sub.Build().Value())
}

// Build returns the assembled Struct. The Builder may be reused; the
// returned Struct does not observe later calls.
func (b *Builder) Build() Struct {
	if len(b.fields) == 0 {
		return EmptyStruct
	}
	return Struct{fields: maps.Clone(b.fields)}
}
