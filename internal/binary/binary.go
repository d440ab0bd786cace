// Package binary implements the external collaborator "the binary codec"
// (§1): a bidirectional mapping between an expression and a canonical byte
// sequence tagged with a protocol version (§6 "protocol version"). No CBOR
// library is present anywhere in the retrieved example pack, so this is a
// bespoke length-prefixed tagged encoding rather than an adopted one-true
// wire format — see DESIGN.md. It only needs to round-trip fully resolved
// expressions (no ast.Embed / ast.ImportAlt), since that is all the
// resolver or the integrity cache ever hand it.
package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"dhall/internal/ast"
)

// Protocol discriminates wire-format revisions. Bumping it lets a future
// revision change the tag layout without corrupting existing cache entries
// (a mismatched protocol byte is simply a decode failure, not silent
// misinterpretation).
type Protocol byte

const ProtocolV1 Protocol = 1

const (
	tagVar tag = iota
	tagBuiltin
	tagBoolLit
	tagNaturalLit
	tagIntegerLit
	tagTextLit
	tagLambda
	tagPi
	tagApp
	tagBoolEQ
	tagRecordLit
	tagRecordType
	tagListLit
	tagListType
)

type tag byte

// Encode serializes e under the given protocol into a canonical byte
// sequence: a one-byte protocol tag followed by the tagged node encoding.
func Encode(protocol Protocol, e ast.Expr) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte(byte(protocol))
	if err := encodeExpr(buf, e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses bytes produced by Encode back into an expression.
func Decode(data []byte) (Protocol, ast.Expr, error) {
	if len(data) == 0 {
		return 0, nil, fmt.Errorf("binary: empty input")
	}
	protocol := Protocol(data[0])
	if protocol != ProtocolV1 {
		return 0, nil, fmt.Errorf("binary: unsupported protocol %d", protocol)
	}
	r := bytes.NewReader(data[1:])
	e, err := decodeExpr(r)
	if err != nil {
		return 0, nil, err
	}
	if r.Len() != 0 {
		return 0, nil, fmt.Errorf("binary: %d trailing byte(s)", r.Len())
	}
	return protocol, e, nil
}

func writeString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func readUvarint(r io.ByteReader) (uint64, error) {
	return binary.ReadUvarint(r)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readUvarint(r)
	if err != nil {
		return "", err
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return "", err
	}
	return string(out), nil
}

func encodeExpr(buf *bytes.Buffer, e ast.Expr) error {
	switch v := e.(type) {
	case ast.Var:
		buf.WriteByte(byte(tagVar))
		writeString(buf, v.Name)
		writeUvarint(buf, uint64(v.Index))
	case ast.Builtin:
		buf.WriteByte(byte(tagBuiltin))
		writeString(buf, v.Name)
	case ast.BoolLit:
		buf.WriteByte(byte(tagBoolLit))
		if v {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case ast.NaturalLit:
		buf.WriteByte(byte(tagNaturalLit))
		writeUvarint(buf, uint64(v))
	case ast.IntegerLit:
		buf.WriteByte(byte(tagIntegerLit))
		writeUvarint(buf, zigzag(int64(v)))
	case ast.TextLit:
		buf.WriteByte(byte(tagTextLit))
		writeString(buf, v.Chunk)
	case ast.Lambda:
		buf.WriteByte(byte(tagLambda))
		writeString(buf, v.Label)
		if err := encodeExpr(buf, v.Type); err != nil {
			return err
		}
		return encodeExpr(buf, v.Body)
	case ast.Pi:
		buf.WriteByte(byte(tagPi))
		writeString(buf, v.Label)
		if err := encodeExpr(buf, v.Type); err != nil {
			return err
		}
		return encodeExpr(buf, v.Body)
	case ast.App:
		buf.WriteByte(byte(tagApp))
		if err := encodeExpr(buf, v.Fn); err != nil {
			return err
		}
		return encodeExpr(buf, v.Arg)
	case ast.BoolEQ:
		buf.WriteByte(byte(tagBoolEQ))
		if err := encodeExpr(buf, v.L); err != nil {
			return err
		}
		return encodeExpr(buf, v.R)
	case ast.RecordLit:
		buf.WriteByte(byte(tagRecordLit))
		return encodeFields(buf, v.Fields)
	case ast.RecordType:
		buf.WriteByte(byte(tagRecordType))
		return encodeFields(buf, v.Fields)
	case ast.ListLit:
		buf.WriteByte(byte(tagListLit))
		if v.Elem != nil {
			buf.WriteByte(1)
			if err := encodeExpr(buf, v.Elem); err != nil {
				return err
			}
		} else {
			buf.WriteByte(0)
		}
		writeUvarint(buf, uint64(len(v.Elems)))
		for _, el := range v.Elems {
			if err := encodeExpr(buf, el); err != nil {
				return err
			}
		}
	case ast.ListType:
		buf.WriteByte(byte(tagListType))
		return encodeExpr(buf, v.Elem)
	case ast.Embed:
		return fmt.Errorf("binary: cannot encode an unresolved import leaf")
	case ast.ImportAlt:
		return fmt.Errorf("binary: cannot encode an unresolved alternative")
	default:
		return fmt.Errorf("binary: unhandled node %T", e)
	}
	return nil
}

func encodeFields(buf *bytes.Buffer, fields []ast.Field) error {
	writeUvarint(buf, uint64(len(fields)))
	for _, f := range fields {
		writeString(buf, f.Name)
		if err := encodeExpr(buf, f.Value); err != nil {
			return err
		}
	}
	return nil
}

func decodeExpr(r *bytes.Reader) (ast.Expr, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag(tagByte) {
	case tagVar:
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		idx, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		return ast.Var{Name: name, Index: int(idx)}, nil
	case tagBuiltin:
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		return ast.Builtin{Name: name}, nil
	case tagBoolLit:
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return ast.BoolLit(b != 0), nil
	case tagNaturalLit:
		n, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		return ast.NaturalLit(n), nil
	case tagIntegerLit:
		n, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		return ast.IntegerLit(unzigzag(n)), nil
	case tagTextLit:
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		return ast.TextLit{Chunk: s}, nil
	case tagLambda, tagPi:
		label, err := readString(r)
		if err != nil {
			return nil, err
		}
		typ, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		if tag(tagByte) == tagLambda {
			return ast.Lambda{Label: label, Type: typ, Body: body}, nil
		}
		return ast.Pi{Label: label, Type: typ, Body: body}, nil
	case tagApp:
		fn, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		arg, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		return ast.App{Fn: fn, Arg: arg}, nil
	case tagBoolEQ:
		l, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		return ast.BoolEQ{L: l, R: right}, nil
	case tagRecordLit, tagRecordType:
		fields, err := decodeFields(r)
		if err != nil {
			return nil, err
		}
		if tag(tagByte) == tagRecordLit {
			return ast.RecordLit{Fields: fields}, nil
		}
		return ast.RecordType{Fields: fields}, nil
	case tagListLit:
		hasElem, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		var elem ast.Expr
		if hasElem != 0 {
			elem, err = decodeExpr(r)
			if err != nil {
				return nil, err
			}
		}
		n, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		elems := make([]ast.Expr, n)
		for i := range elems {
			elems[i], err = decodeExpr(r)
			if err != nil {
				return nil, err
			}
		}
		return ast.ListLit{Elem: elem, Elems: elems}, nil
	case tagListType:
		elem, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		return ast.ListType{Elem: elem}, nil
	default:
		return nil, fmt.Errorf("binary: unknown tag %d", tagByte)
	}
}

func decodeFields(r *bytes.Reader) ([]ast.Field, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	fields := make([]ast.Field, n)
	for i := range fields {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		fields[i] = ast.Field{Name: name, Value: value}
	}
	return fields, nil
}

func zigzag(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

func unzigzag(u uint64) int64 {
	return int64(u>>1) ^ -(int64(u) & 1)
}
