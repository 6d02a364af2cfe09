package token_test

import (
	"testing"

	"github.com/Deji69/cl-toolchain/token"
	"github.com/Deji69/cl-toolchain/vocab"
	"github.com/stretchr/testify/assert"
)

func TestType_String(t *testing.T) {
	assert.Equal(t, "Mnemonic", token.Mnemonic.String())
	assert.Contains(t, token.Type(999).String(), "Type(999)")
}

func TestNumWidth(t *testing.T) {
	assert.Equal(t, 8, token.I8.Bits())
	assert.Equal(t, 64, token.U64.Bits())
	assert.Equal(t, 0, token.WidthNone.Bits())
	assert.True(t, token.I32.Signed())
	assert.False(t, token.U32.Signed())
	assert.Equal(t, "int8", token.I8.String())
	assert.Equal(t, "none", token.WidthNone.String())
}

func TestToken_IsAbsent(t *testing.T) {
	var tok token.Token
	assert.True(t, tok.IsAbsent())

	tok.Annotation = token.Annotation{Kind: token.AnnotationString, Str: "x"}
	assert.False(t, tok.IsAbsent())
}

func TestToken_InstructionOpcode(t *testing.T) {
	tok := token.Token{Type: token.Instruction}
	tok.Annotation = token.Annotation{VariantName: "nop"}
	inst, ok := tok.InstructionOpcode()
	assert.True(t, ok)
	assert.Equal(t, vocab.Nop, inst)

	tok.Annotation.VariantName = "bogus"
	_, ok = tok.InstructionOpcode()
	assert.False(t, ok)

	notInst := token.Token{Type: token.Mnemonic}
	_, ok = notInst.InstructionOpcode()
	assert.False(t, ok)
}
