package vocab_test

import (
	"testing"

	"github.com/Deji69/cl-toolchain/vocab"
	"github.com/stretchr/testify/assert"
)

func TestKeywordByName(t *testing.T) {
	kw, ok := vocab.KeywordByName("global")
	assert.True(t, ok)
	assert.Equal(t, vocab.KwGlobal, kw)
	assert.Equal(t, "global", kw.String())

	_, ok = vocab.KeywordByName("nope")
	assert.False(t, ok)
}

func TestSegmentByName(t *testing.T) {
	seg, ok := vocab.SegmentByName("code")
	assert.True(t, ok)
	assert.Equal(t, vocab.SegCode, seg)

	_, ok = vocab.SegmentByName("header")
	assert.False(t, ok, "Header is implicit and never spelled in source")
}

func TestMnemonicByName(t *testing.T) {
	mn, ok := vocab.MnemonicByName("push")
	assert.True(t, ok)
	assert.Equal(t, vocab.MnPush, mn)
	assert.Equal(t, "push", mn.String())
}

func TestInstructionByName_OpcodeIsTableIndex(t *testing.T) {
	inst, ok := vocab.InstructionByName("nop")
	assert.True(t, ok)
	assert.Equal(t, vocab.Nop, inst)
	assert.Equal(t, byte(0), inst.Opcode())

	inst, ok = vocab.InstructionByName("pushb")
	assert.True(t, ok)
	assert.Equal(t, vocab.PushB, inst)
}

func TestDataType_ElementWidth(t *testing.T) {
	tests := []struct {
		dt   vocab.DataType
		want int
	}{
		{vocab.DTByte, 1},
		{vocab.DTWord, 2},
		{vocab.DTDword, 4},
		{vocab.DTFloat, 4},
		{vocab.DTQword, 8},
		{vocab.DTDouble, 8},
		{vocab.DTStr, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.dt.ElementWidth())
	}
}

func TestOverloads_PushOrderedNarrowToWide(t *testing.T) {
	overloads := vocab.Overloads(vocab.MnPush)
	want := []vocab.Instruction{
		vocab.PushB, vocab.PushW, vocab.PushD, vocab.PushQ, vocab.PushF, vocab.PushQF,
	}
	assert.Len(t, overloads, len(want))
	for i, w := range want {
		assert.Equal(t, w, overloads[i].Opcode)
	}
}

func TestOperandShape_JmpIsRel32(t *testing.T) {
	shape := vocab.OperandShape(vocab.JmpD)
	assert.Equal(t, []vocab.OperandShapeEntry{{Type: vocab.REL32}}, shape)
}

func TestInstruction_String_Unknown(t *testing.T) {
	assert.Contains(t, vocab.Instruction(999).String(), "Instruction(999)")
}
