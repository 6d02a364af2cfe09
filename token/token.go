// Package token defines the classified Token type produced by the lexer
// and refined by the classifier: a Source::Token (offset/length triple)
// plus a TokenType and a tagged-union Annotation. Annotation variants carry
// only data, never behaviour, per the project's closed-sum-type style.
package token

import (
	"fmt"

	"github.com/Deji69/cl-toolchain/source"
	"github.com/Deji69/cl-toolchain/vocab"
)

// Type enumerates the kinds of token that flow through the pipeline. The
// three literal subtypes (HexLiteral, IntegerLiteral, FloatLiteral) are
// transient: they only ever appear on tokens fresh out of the lexer, before
// classification collapses them to Numeric.
type Type int

const (
	EndOfLine Type = iota
	EndOfFile
	WhiteSpace
	Separator
	Directive
	Segment
	String
	Identifier
	Keyword
	Label
	LabelRef
	Mnemonic
	Instruction
	DataType
	Numeric
	HexLiteral
	IntegerLiteral
	FloatLiteral
)

var typeNames = map[Type]string{
	EndOfLine:      "EndOfLine",
	EndOfFile:      "EndOfFile",
	WhiteSpace:     "WhiteSpace",
	Separator:      "Separator",
	Directive:      "Directive",
	Segment:        "Segment",
	String:         "String",
	Identifier:     "Identifier",
	Keyword:        "Keyword",
	Label:          "Label",
	LabelRef:       "LabelRef",
	Mnemonic:       "Mnemonic",
	Instruction:    "Instruction",
	DataType:       "DataType",
	Numeric:        "Numeric",
	HexLiteral:     "HexLiteral",
	IntegerLiteral: "IntegerLiteral",
	FloatLiteral:   "FloatLiteral",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// NumWidth identifies the width and signedness of an integer annotation.
type NumWidth int

const (
	WidthNone NumWidth = iota
	I8
	U8
	I16
	U16
	I32
	U32
	I64
	U64
)

func (w NumWidth) String() string {
	switch w {
	case I8:
		return "int8"
	case U8:
		return "uint8"
	case I16:
		return "int16"
	case U16:
		return "uint16"
	case I32:
		return "int32"
	case U32:
		return "uint32"
	case I64:
		return "int64"
	case U64:
		return "uint64"
	default:
		return "none"
	}
}

// Bits returns the bit width of w (0 for WidthNone).
func (w NumWidth) Bits() int {
	switch w {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32:
		return 32
	case I64, U64:
		return 64
	default:
		return 0
	}
}

// Signed reports whether w is a signed integer width.
func (w NumWidth) Signed() bool {
	switch w {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// AnnotationKind discriminates the Annotation tagged union.
type AnnotationKind int

const (
	AnnotationAbsent AnnotationKind = iota
	AnnotationInt
	AnnotationFloat
	AnnotationString
	AnnotationLabelRef
	AnnotationLabelDef
	AnnotationEnum
)

// EnumVariant identifies which closed vocabulary an AnnotationEnum
// annotation's VariantName names a member of.
type EnumVariant int

const (
	EnumNone EnumVariant = iota
	EnumKeyword
	EnumSegment
	EnumMnemonic
	EnumInstruction
	EnumDataType
)

// Annotation is the tagged union carried by every Token. Exactly the
// field(s) matching Kind are meaningful; all others are zero. The zero
// value (Kind == AnnotationAbsent) is the monostate variant.
type Annotation struct {
	Kind AnnotationKind

	IntWidth NumWidth
	IntValue uint64 // two's-complement bit pattern at IntWidth's width

	FloatBits int // 32 or 64
	Float     float64

	Str string // decoded string literal, or raw label/identifier text

	LabelIndex int // valid when Kind == AnnotationLabelRef or AnnotationLabelDef

	Variant     EnumVariant
	VariantName string // canonical vocabulary name, e.g. "push", "code"
	EnumValue   int    // the vocabulary enum's ordinal value (vocab.Segment, vocab.Keyword, ...)
}

// Token extends source.Token with a classified Type and Annotation.
type Token struct {
	source.Token
	Type       Type
	Annotation Annotation
}

// IsAbsent reports whether the token carries no annotation payload.
func (t Token) IsAbsent() bool { return t.Annotation.Kind == AnnotationAbsent }

// InstructionOpcode returns the vocab.Instruction this token names, valid
// only when Type == Instruction.
func (t Token) InstructionOpcode() (vocab.Instruction, bool) {
	if t.Type != Instruction {
		return 0, false
	}
	inst, ok := vocab.InstructionByName(t.Annotation.VariantName)
	return inst, ok
}
