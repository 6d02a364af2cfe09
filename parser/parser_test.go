package parser_test

import (
	"testing"

	"github.com/Deji69/cl-toolchain/diag"
	"github.com/Deji69/cl-toolchain/parser"
	"github.com/Deji69/cl-toolchain/source"
	"github.com/Deji69/cl-toolchain/token"
	"github.com/Deji69/cl-toolchain/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, code string) *parser.Result {
	t.Helper()
	src, err := source.New("t.clasm", code)
	require.NoError(t, err)
	p := parser.NewParser(src, nil)
	return p.Parse()
}

func TestParse_EmptyInput(t *testing.T) {
	res := parse(t, "")
	require.True(t, res.OK())
	header := res.Info.Segments[vocab.SegHeader]
	require.Len(t, header, 1)
	assert.Equal(t, token.EndOfFile, header[0].Type)
	assert.Empty(t, res.Info.Segments[vocab.SegCode])
	assert.Empty(t, res.Info.Segments[vocab.SegData])
}

func TestParse_NOP(t *testing.T) {
	res := parse(t, ".code\nnop\n")
	require.True(t, res.OK())
	code := res.Info.Segments[vocab.SegCode]
	require.Len(t, code, 3)
	assert.Equal(t, token.Instruction, code[0].Type)
	assert.Equal(t, token.EndOfLine, code[1].Type)
	assert.Equal(t, token.EndOfFile, code[2].Type)
	inst, ok := code[0].InstructionOpcode()
	require.True(t, ok)
	assert.Equal(t, vocab.Nop, inst)
}

func TestParse_MnemonicResolutionByWidth(t *testing.T) {
	tests := []struct {
		code string
		want vocab.Instruction
	}{
		{".code\npush 0xFF", vocab.PushB},
		{".code\npush 0x8081", vocab.PushW},
		{".code\npush 0x80818283", vocab.PushD},
	}
	for _, tt := range tests {
		res := parse(t, tt.code)
		require.Truef(t, res.OK(), "code: %s", tt.code)
		code := res.Info.Segments[vocab.SegCode]
		require.Len(t, code, 3) // instruction, operand, EndOfFile
		inst, ok := code[0].InstructionOpcode()
		require.True(t, ok)
		assert.Equalf(t, tt.want, inst, "code: %s", tt.code)
	}
}

func TestParse_ForwardLabelReference(t *testing.T) {
	res := parse(t, ".code\njmp target\ntarget:\nnop")
	require.True(t, res.OK())
	code := res.Info.Segments[vocab.SegCode]
	require.Len(t, code, 7) // jmpd, labelref, eol, label-def, eol, nop, eof

	jmp, ok := code[0].InstructionOpcode()
	require.True(t, ok)
	assert.Equal(t, vocab.JmpD, jmp)

	ref := code[1]
	assert.Equal(t, token.LabelRef, ref.Type)
	assert.Equal(t, token.AnnotationLabelRef, ref.Annotation.Kind)

	def := code[3]
	assert.Equal(t, token.Label, def.Type)
	assert.Equal(t, ref.Annotation.LabelIndex, def.Annotation.LabelIndex)

	nop, ok := code[5].InstructionOpcode()
	require.True(t, ok)
	assert.Equal(t, vocab.Nop, nop)
}

func TestParse_LabelRedefinition(t *testing.T) {
	res := parse(t, ".code\nfoo:\nfoo:\n")
	assert.False(t, res.OK())
	require.Len(t, res.Reports, 1)
	assert.Equal(t, diag.LabelRedefinition, res.Reports[0].Code)

	payload, ok := res.Reports[0].Payload.(diag.LabelRedefinitionPayload)
	require.True(t, ok)
	assert.Equal(t, "foo:", payload.FirstDefinition.Text())
}

func TestParse_UnresolvedLabelReference(t *testing.T) {
	res := parse(t, ".code\njmp ghost")
	assert.False(t, res.OK())
	require.Len(t, res.Reports, 1)
	assert.Equal(t, diag.UnresolvedLabelReference, res.Reports[0].Code)
}

func TestParse_DataSegment_Grammar(t *testing.T) {
	res := parse(t, ".data\ncount: dword 42\nmsg: str \"hi\"\n")
	require.True(t, res.OK())
	data := res.Info.Segments[vocab.SegData]

	require.Len(t, data, 9)
	assert.Equal(t, token.Label, data[0].Type)
	assert.Equal(t, token.DataType, data[1].Type)
	assert.Equal(t, vocab.DTDword, vocab.DataType(data[1].Annotation.EnumValue))
	assert.Equal(t, token.Numeric, data[2].Type)
	assert.Equal(t, token.EndOfLine, data[3].Type)
	assert.Equal(t, token.Label, data[4].Type)
	assert.Equal(t, token.DataType, data[5].Type)
	assert.Equal(t, token.String, data[6].Type)
	assert.Equal(t, "hi", data[6].Annotation.Str)
	assert.Equal(t, token.EndOfLine, data[7].Type)
	assert.Equal(t, token.EndOfFile, data[8].Type)
}

func TestParse_DataSegment_MultipleValues(t *testing.T) {
	res := parse(t, ".data\nvals: byte 1, 2, 3\n")
	require.True(t, res.OK())
	data := res.Info.Segments[vocab.SegData]
	require.Len(t, data, 7) // label, type, 1, 2, 3, eol, eof
}

func TestParse_DataSegment_ValueOverflow(t *testing.T) {
	res := parse(t, ".data\nx: byte 300\n")
	assert.False(t, res.OK())
	require.Len(t, res.Reports, 1)
	assert.Equal(t, diag.LiteralValueSizeOverflow, res.Reports[0].Code)
}

func TestParse_DataSegment_ValueKindMismatch(t *testing.T) {
	res := parse(t, ".data\nx: byte \"oops\"\n")
	assert.False(t, res.OK())
	require.Len(t, res.Reports, 1)
	assert.Equal(t, diag.InvalidOperandType, res.Reports[0].Code)
}

func TestParse_DataSegment_DirectiveBoundaryOnSameLine(t *testing.T) {
	res := parse(t, ".data\nx: byte 1 .code\nnop\n")
	require.True(t, res.OK())
	code := res.Info.Segments[vocab.SegCode]
	require.Len(t, code, 3)
	inst, ok := code[0].InstructionOpcode()
	require.True(t, ok)
	assert.Equal(t, vocab.Nop, inst)
}

func TestParse_SegmentStreamsEndWithTerminator(t *testing.T) {
	res := parse(t, ".data\nx: byte 1\n.code\nnop\n")
	require.True(t, res.OK())
	data := res.Info.Segments[vocab.SegData]
	code := res.Info.Segments[vocab.SegCode]
	require.NotEmpty(t, data)
	require.NotEmpty(t, code)
	assert.Equal(t, token.EndOfLine, data[len(data)-1].Type)
	assert.Equal(t, token.EndOfFile, code[len(code)-1].Type)
}

func TestParse_LabelRedefinition_ReferenceCarriesFirstDefinitionSite(t *testing.T) {
	res := parse(t, ".code\nfoo:\nfoo:\n")
	require.Len(t, res.Reports, 1)
	// the reported token is the second (redefining) occurrence
	assert.Equal(t, "foo:", res.Reports[0].Token.Text())
	assert.Equal(t, 11, res.Reports[0].Token.Offset)
	// the payload carries the first definition's token
	payload, ok := res.Reports[0].Payload.(diag.LabelRedefinitionPayload)
	require.True(t, ok)
	assert.Equal(t, 6, payload.FirstDefinition.Offset)
}

func TestParse_GlobalKeyword_EmitsLabelRefs(t *testing.T) {
	res := parse(t, "global entry\n.code\nentry:\nnop\n")
	require.True(t, res.OK())
	header := res.Info.Segments[vocab.SegHeader]
	require.Len(t, header, 3) // keyword, labelref, eol
	assert.Equal(t, token.Keyword, header[0].Type)
	assert.Equal(t, token.LabelRef, header[1].Type)
	assert.Equal(t, token.AnnotationLabelRef, header[1].Annotation.Kind)
}

func TestParse_InvalidMnemonicOperands(t *testing.T) {
	res := parse(t, ".code\npush\n") // push requires exactly one operand
	assert.False(t, res.OK())
	require.Len(t, res.Reports, 1)
	assert.Equal(t, diag.InvalidMnemonicOperands, res.Reports[0].Code)
}

func TestParse_InvalidSegment(t *testing.T) {
	res := parse(t, ".bogus\n")
	assert.False(t, res.OK())
	require.Len(t, res.Reports, 1)
	assert.Equal(t, diag.InvalidSegment, res.Reports[0].Code)
}

func TestParse_UnexpectedSeparator(t *testing.T) {
	res := parse(t, "=\n")
	assert.False(t, res.OK())
	require.Len(t, res.Reports, 1)
	assert.Equal(t, diag.UnexpectedSeparator, res.Reports[0].Code)
}

func TestParse_CommaBeginsEmptySubLine(t *testing.T) {
	// A comma closing an empty sub-line is skipped silently.
	res := parse(t, ",\n")
	assert.True(t, res.OK())
	assert.Empty(t, res.Reports)
}

func TestParse_CommaSeparatesSubLines(t *testing.T) {
	res := parse(t, ".code\nnop, nop\n")
	require.True(t, res.OK())
	code := res.Info.Segments[vocab.SegCode]
	require.Len(t, code, 4) // nop, nop, eol, eof
	i0, _ := code[0].InstructionOpcode()
	i1, _ := code[1].InstructionOpcode()
	assert.Equal(t, vocab.Nop, i0)
	assert.Equal(t, vocab.Nop, i1)
}

func TestParse_SegmentAfterTokens(t *testing.T) {
	res := parse(t, ".code\npush .data\n")
	assert.False(t, res.OK())
	require.Len(t, res.Reports, 1)
	assert.Equal(t, diag.UnexpectedSegmentAfterTokens, res.Reports[0].Code)
}

func TestParse_LabelAfterTokens(t *testing.T) {
	res := parse(t, ".code\npush foo:\n")
	assert.False(t, res.OK())
	require.Len(t, res.Reports, 1)
	assert.Equal(t, diag.UnexpectedLabelAfterTokens, res.Reports[0].Code)
}

func TestParse_LabelSharesLineWithInstruction(t *testing.T) {
	res := parse(t, ".code\nstart: nop\n")
	require.True(t, res.OK())
	code := res.Info.Segments[vocab.SegCode]
	require.Len(t, code, 4) // label def, nop, eol, eof
	assert.Equal(t, token.Label, code[0].Type)
	inst, ok := code[1].InstructionOpcode()
	require.True(t, ok)
	assert.Equal(t, vocab.Nop, inst)
}

func TestParse_Call(t *testing.T) {
	res := parse(t, ".code\nfn:\ncall fn\n")
	require.True(t, res.OK())
	code := res.Info.Segments[vocab.SegCode]
	require.Len(t, code, 6) // label, eol, calld, labelref, eol, eof
	inst, ok := code[2].InstructionOpcode()
	require.True(t, ok)
	assert.Equal(t, vocab.CallD, inst)
	assert.Equal(t, token.LabelRef, code[3].Type)
}

func TestParse_TestForceTokenization_SuppressesExpectedToken(t *testing.T) {
	// "nop" classifies as an Instruction, which may not begin a Data
	// line; the forcing option swallows the ExpectedToken error so the
	// rest of the stream can still be inspected.
	src, err := source.New("t.clasm", ".data\nnop\n")
	require.NoError(t, err)

	strict := parser.NewParser(src, nil).Parse()
	assert.False(t, strict.OK())

	forced := parser.NewParserWithOptions(src, nil, parser.Options{TestForceTokenization: true}).Parse()
	assert.True(t, forced.OK())
	assert.Empty(t, forced.Reports)
}

func TestParse_BareInstructionLine(t *testing.T) {
	res := parse(t, ".code\nadd\nhalt\n")
	require.True(t, res.OK())
	code := res.Info.Segments[vocab.SegCode]
	require.Len(t, code, 5) // add, eol, halt, eol, eof
	i0, _ := code[0].InstructionOpcode()
	i1, _ := code[2].InstructionOpcode()
	assert.Equal(t, vocab.Add, i0)
	assert.Equal(t, vocab.Halt, i1)
}
