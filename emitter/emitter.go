// Package emitter implements CLASM's two-pass bytecode emitter: a sizing
// pass that walks each segment's token stream to assign every label's
// output offset without writing a single byte, followed by a writing pass
// that produces the final Data and Code sections, resolving label
// references as it goes. Forward references need no patching because every
// offset is known before the first byte is written.
package emitter

import (
	"encoding/binary"
	"math"

	"github.com/Deji69/cl-toolchain/parser"
	"github.com/Deji69/cl-toolchain/token"
	"github.com/Deji69/cl-toolchain/vocab"
)

// Image is the flat bytecode output of an assembled unit, split at its one
// section boundary: the Data section precedes the Code section in the flat
// image, and label offsets are assigned in that order.
type Image struct {
	Code []byte
	Data []byte
}

// Bytes returns the flat bytecode image: the Data section followed by the
// Code section, the order the sizing pass assigns label offsets in.
func (img Image) Bytes() []byte {
	out := make([]byte, 0, len(img.Data)+len(img.Code))
	out = append(out, img.Data...)
	return append(out, img.Code...)
}

// Emit assigns label offsets and writes the final Data and Code sections
// for info. A single offset counter runs across both sections, Data first,
// so a Code label's offset counts any data bytes emitted before it. Emit
// assumes info came from a Result that reported OK(); an unresolved label
// reference or an unmatched operand width is a parser bug, not something
// Emit re-validates.
func Emit(info *parser.ParseInfo) Image {
	offset := sizeData(info, 0)
	sizeCode(info, offset)

	return Image{
		Data: writeData(info),
		Code: writeCode(info),
	}
}

func sizeData(info *parser.ParseInfo, offset int) int {
	var cur vocab.DataType
	for _, tok := range info.Segments[vocab.SegData] {
		switch tok.Type {
		case token.Label:
			info.Label(tok.Annotation.LabelIndex).Offset = uint32(offset)
		case token.DataType:
			cur = vocab.DataType(tok.Annotation.EnumValue)
		case token.EndOfLine, token.EndOfFile:
		default:
			offset += dataValueSize(cur, tok)
		}
	}
	return offset
}

func sizeCode(info *parser.ParseInfo, offset int) int {
	for _, tok := range info.Segments[vocab.SegCode] {
		switch tok.Type {
		case token.Label:
			info.Label(tok.Annotation.LabelIndex).Offset = uint32(offset)
		case token.Instruction:
			offset++
		case token.EndOfLine, token.EndOfFile:
		default:
			offset += operandByteSize(tok)
		}
	}
	return offset
}

func dataValueSize(dt vocab.DataType, tok token.Token) int {
	if dt == vocab.DTStr {
		return len(tok.Annotation.Str)
	}
	return dt.ElementWidth()
}

// operandByteSize derives an already-resolved operand's encoded width
// straight from its own annotation: the resolver's narrowest-first search
// only ever binds a mnemonic overload whose declared operand width equals
// the operand token's own annotated width, except for label references,
// which are always a 4-byte offset.
func operandByteSize(tok token.Token) int {
	switch tok.Annotation.Kind {
	case token.AnnotationLabelRef:
		return 4
	case token.AnnotationInt:
		return tok.Annotation.IntWidth.Bits() / 8
	case token.AnnotationFloat:
		return tok.Annotation.FloatBits / 8
	default:
		return 0
	}
}

func writeData(info *parser.ParseInfo) []byte {
	var buf []byte
	var cur vocab.DataType
	for _, tok := range info.Segments[vocab.SegData] {
		switch tok.Type {
		case token.Label:
		case token.DataType:
			cur = vocab.DataType(tok.Annotation.EnumValue)
		case token.EndOfLine, token.EndOfFile:
		default:
			buf = appendDataValue(buf, cur, tok)
		}
	}
	return buf
}

func appendDataValue(buf []byte, dt vocab.DataType, tok token.Token) []byte {
	switch dt {
	case vocab.DTStr:
		return append(buf, tok.Annotation.Str...)
	case vocab.DTFloat:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(tok.Annotation.Float)))
		return append(buf, b[:]...)
	case vocab.DTDouble:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(tok.Annotation.Float))
		return append(buf, b[:]...)
	default:
		return appendLittleEndian(buf, signExtend(tok.Annotation), dt.ElementWidth())
	}
}

func writeCode(info *parser.ParseInfo) []byte {
	var buf []byte
	for _, tok := range info.Segments[vocab.SegCode] {
		switch tok.Type {
		case token.Label:
		case token.Instruction:
			inst := vocab.Instruction(tok.Annotation.EnumValue)
			buf = append(buf, inst.Opcode())
		case token.EndOfLine, token.EndOfFile:
		default:
			buf = appendOperand(buf, tok, info)
		}
	}
	return buf
}

func appendOperand(buf []byte, tok token.Token, info *parser.ParseInfo) []byte {
	switch tok.Annotation.Kind {
	case token.AnnotationLabelRef:
		lbl := info.Label(tok.Annotation.LabelIndex)
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], lbl.Offset)
		return append(buf, b[:]...)
	case token.AnnotationFloat:
		if tok.Annotation.FloatBits == 64 {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(tok.Annotation.Float))
			return append(buf, b[:]...)
		}
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(tok.Annotation.Float)))
		return append(buf, b[:]...)
	case token.AnnotationInt:
		return appendLittleEndian(buf, int64(tok.Annotation.IntValue), tok.Annotation.IntWidth.Bits()/8)
	default:
		return buf
	}
}

// signExtend reinterprets a's bit pattern as a signed 64-bit value (per its
// own width and signedness), so a Data value narrower than its declared
// data type still extends correctly when written at the wider width.
func signExtend(a token.Annotation) int64 {
	bits := a.IntValue
	w := a.IntWidth.Bits()
	if w == 0 || w == 64 {
		return int64(bits)
	}
	if !a.IntWidth.Signed() {
		return int64(bits)
	}
	shift := uint(64 - w)
	return int64(bits<<shift) >> shift
}

func appendLittleEndian(buf []byte, v int64, width int) []byte {
	u := uint64(v)
	for b := 0; b < width; b++ {
		buf = append(buf, byte(u>>(8*b)))
	}
	return buf
}
