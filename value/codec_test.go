package value_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tailored-agentic-units/eventsender/value"
)

func TestJSON_RoundTrip(t *testing.T) {
	original := sample()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded value.Value
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !decoded.Equal(original) {
		t.Errorf("got %s, want %s", decoded, original)
	}
}

func TestJSON_StructField(t *testing.T) {
	type envelope struct {
		Name    string       `json:"name"`
		Message value.Struct `json:"message"`
	}

	var env envelope
	input := `{"name":"click","message":{"button":"buy","count":2,"gone":null}}`
	if err := json.Unmarshal([]byte(input), &env); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if env.Message.Has("gone") {
		t.Error("null field should be dropped on decode")
	}
	count, _ := env.Message.Get("count")
	if n, _ := count.AsNumber(); n != 2 {
		t.Errorf("got count %v, want 2", n)
	}
}

func TestJSON_NullStruct(t *testing.T) {
	st := value.NewBuilder().SetString("k", "v").Build()
	if err := json.Unmarshal([]byte("null"), &st); err != nil {
		t.Fatalf("Unmarshal null failed: %v", err)
	}
	if st.Len() != 1 {
		t.Errorf("null should leave the struct untouched, got Len %d", st.Len())
	}
}

func TestCBOR_RoundTrip(t *testing.T) {
	original := sample()

	data, err := cbor.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded value.Value
	if err := cbor.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !decoded.Equal(original) {
		t.Errorf("got %s, want %s", decoded, original)
	}
}

func TestCBOR_Deterministic(t *testing.T) {
	a := value.NewBuilder().SetNumber("z", 1).SetNumber("a", 2).SetNumber("m", 3).Build()
	b := value.NewBuilder().SetNumber("m", 3).SetNumber("a", 2).SetNumber("z", 1).Build()

	da, err := a.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR failed: %v", err)
	}
	db, err := b.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR failed: %v", err)
	}

	if string(da) != string(db) {
		t.Errorf("equal structs encoded differently: %x vs %x", da, db)
	}
}

func TestCBOR_StructFromNonStruct(t *testing.T) {
	data, err := value.String("not a struct").MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR failed: %v", err)
	}

	var st value.Struct
	if err := st.UnmarshalCBOR(data); !errors.Is(err, value.ErrTypeMismatch) {
		t.Errorf("got error %v, want ErrTypeMismatch", err)
	}
}

func TestMsgpack_RoundTrip(t *testing.T) {
	original := sample()

	data, err := msgpack.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded value.Value
	if err := msgpack.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !decoded.Equal(original) {
		t.Errorf("got %s, want %s", decoded, original)
	}
}

func TestMsgpack_Struct(t *testing.T) {
	original := value.NewBuilder().SetString("k", "v").SetNumber("n", 7).Build()

	data, err := msgpack.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded value.Struct
	if err := msgpack.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !decoded.Equal(original) {
		t.Errorf("got %s, want %s", decoded, original)
	}
}
