// Package message implements the hasup message schema: Capacity,
// Configuration and the Command envelope ("Message" on the wire).
//
// Payloads use the protobuf wire format with fixed field numbers, so
// servers built from the original .proto definitions interoperate with this
// client. Each message type exposes Size, Marshal and Unmarshal; framing is
// the caller's concern (see internal/frame).
package message

import (
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// DecodeError reports a payload that is not a valid encoding of the target
// message.
type DecodeError struct {
	Message string // message type being decoded
	Reason  string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Message, e.Reason, e.Cause)
	}
	return fmt.Sprintf("decode %s: %s", e.Message, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// fieldVisitor handles one decoded field. It returns the number of bytes
// consumed from b, or a negative protowire error code. Returning 0 skips
// the field as unknown.
type fieldVisitor func(num protowire.Number, typ protowire.Type, b []byte) int

// walk iterates the fields of an encoded message.
func walk(name string, b []byte, visit fieldVisitor) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return &DecodeError{Message: name, Reason: "bad field tag", Cause: protowire.ParseError(n)}
		}
		b = b[n:]

		m := visit(num, typ, b)
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return &DecodeError{
				Message: name,
				Reason:  fmt.Sprintf("bad value for field %d", num),
				Cause:   protowire.ParseError(m),
			}
		}
		b = b[m:]
	}
	return nil
}

// consumeVarint decodes a varint field value into dst when wire types match.
func consumeVarint(typ protowire.Type, b []byte, dst func(uint64)) int {
	if typ != protowire.VarintType {
		return 0
	}
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		dst(v)
	}
	return n
}

// consumeString decodes a length-delimited string field into dst. UTF-8
// validity is checked by the message's Unmarshal once walk has finished.
func consumeString(typ protowire.Type, b []byte, dst *string) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		*dst = v
	}
	return n
}

// checkUTF8 rejects string fields that are not valid UTF-8, as proto3 does.
func checkUTF8(name, field, v string) error {
	if !utf8.ValidString(v) {
		return &DecodeError{Message: name, Reason: field + " is not valid UTF-8"}
	}
	return nil
}

// Proto3 omits zero-valued scalars from the encoding.

func sizeVarintField(num protowire.Number, v uint64) int {
	if v == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeVarint(v)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func sizeStringField(num protowire.Number, s string) int {
	if s == "" {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeBytes(len(s))
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// int32 values are sign-extended to 64 bits on the wire.
func int32Wire(v int32) uint64 { return uint64(int64(v)) }
