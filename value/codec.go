package value

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// JSON uses the protojson mapping of google.protobuf.Value, so the JSON
// form of a Value is exactly the JSON form of its wire encoding.

func (v Value) MarshalJSON() ([]byte, error) {
	return protojson.Marshal(v.ToProto())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var pv structpb.Value
	if err := protojson.Unmarshal(data, &pv); err != nil {
		return fmt.Errorf("decode json value: %w", err)
	}
	decoded, err := FromProto(&pv)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func (s Struct) MarshalJSON() ([]byte, error) {
	return protojson.Marshal(s.ToProto())
}

func (s *Struct) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var ps structpb.Struct
	if err := protojson.Unmarshal(data, &ps); err != nil {
		return fmt.Errorf("decode json struct: %w", err)
	}
	decoded, err := StructFromProto(&ps)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// CBOR uses Core Deterministic Encoding (RFC 8949 §4.2), so equal values
// always produce identical bytes.
var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("value: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("value: CBOR decoder initialization failed: " + err.Error())
	}
}

func (v Value) MarshalCBOR() ([]byte, error) {
	return cborEnc.Marshal(v.Interface())
}

func (v *Value) UnmarshalCBOR(data []byte) error {
	var x any
	if err := cborDec.Unmarshal(data, &x); err != nil {
		return fmt.Errorf("decode cbor value: %w", err)
	}
	decoded, err := FromInterface(x)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func (s Struct) MarshalCBOR() ([]byte, error) {
	return cborEnc.Marshal(s.Interface())
}

func (s *Struct) UnmarshalCBOR(data []byte) error {
	var v Value
	if err := v.UnmarshalCBOR(data); err != nil {
		return err
	}
	if v.IsNull() {
		*s = EmptyStruct
		return nil
	}
	decoded, err := v.AsStruct()
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(v.Interface())
}

func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	x, err := dec.DecodeInterface()
	if err != nil {
		return fmt.Errorf("decode msgpack value: %w", err)
	}
	decoded, err := FromInterface(x)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func (s Struct) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(s.Interface())
}

func (s *Struct) DecodeMsgpack(dec *msgpack.Decoder) error {
	var v Value
	if err := v.DecodeMsgpack(dec); err != nil {
		return err
	}
	if v.IsNull() {
		*s = EmptyStruct
		return nil
	}
	decoded, err := v.AsStruct()
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}
