package parser

import (
	"github.com/Deji69/cl-toolchain/token"
	"github.com/Deji69/cl-toolchain/vocab"
)

// checkOperandType reports whether tok is an acceptable value for want.
// The resolver walks a mnemonic's overloads narrowest first and binds the
// first whose shape accepts every given operand, so a value that fits IMM8
// also fits the wider immediate types but never reaches them.
func checkOperandType(tok token.Token, want vocab.OperandType) bool {
	switch want {
	case vocab.IMM8, vocab.IMM16, vocab.IMM32, vocab.IMM64:
		return tok.Annotation.Kind == token.AnnotationInt && tok.Annotation.IntWidth.Bits() <= operandBits(want)
	case vocab.FLOAT32, vocab.FLOAT64:
		return tok.Annotation.Kind == token.AnnotationFloat && tok.Annotation.FloatBits <= operandBits(want)
	case vocab.S32:
		return tok.Type == token.String
	case vocab.REL32:
		return tok.Type == token.Identifier || tok.Type == token.LabelRef
	case vocab.LV8, vocab.LV16, vocab.LV32, vocab.V16, vocab.V32:
		// Reserved: no current syntax binds to a local/global variable
		// index, so these fail closed regardless of operand shape.
		return false
	default:
		return false
	}
}

func operandBits(t vocab.OperandType) int {
	switch t {
	case vocab.IMM8, vocab.LV8:
		return 8
	case vocab.IMM16, vocab.LV16, vocab.V16:
		return 16
	case vocab.IMM32, vocab.LV32, vocab.V32:
		return 32
	case vocab.IMM64:
		return 64
	case vocab.FLOAT32:
		return 32
	case vocab.FLOAT64:
		return 64
	default:
		return 0
	}
}

// resolveMnemonic matches operands against m's overload list, narrowest to
// widest, and returns the first instruction whose operand shape accepts
// them all. ok is false when no overload matches, including when every
// overload needs a different operand count; the caller reports both cases
// as InvalidMnemonicOperands.
func resolveMnemonic(m vocab.Mnemonic, operands []token.Token) (vocab.Instruction, bool) {
	for _, overload := range vocab.Overloads(m) {
		if shapeMatches(overload.Operands, operands) {
			return overload.Opcode, true
		}
	}
	return 0, false
}

func shapeMatches(shape []vocab.OperandShapeEntry, operands []token.Token) bool {
	if len(shape) == 0 {
		return len(operands) == 0
	}
	last := shape[len(shape)-1]
	if !last.Variadic && len(shape) != len(operands) {
		return false
	}
	if last.Variadic && len(operands) < len(shape)-1 {
		return false
	}
	for i, tok := range operands {
		var entry vocab.OperandShapeEntry
		if i < len(shape) {
			entry = shape[i]
		} else {
			entry = last
		}
		if !checkOperandType(tok, entry.Type) {
			return false
		}
	}
	return true
}
