package source_test

import (
	"testing"

	"github.com/Deji69/cl-toolchain/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Empty(t *testing.T) {
	src, err := source.New("empty.clasm", "")
	require.NoError(t, err)
	assert.Equal(t, 0, src.Len())
}

func TestNew_InvalidUTF8(t *testing.T) {
	_, err := source.New("bad.clasm", "abc\xff")
	assert.Error(t, err)
}

func TestNew_TruncatedMultibyte(t *testing.T) {
	_, err := source.New("bad.clasm", "x\xe2\x98") // truncated 3-byte sequence
	assert.Error(t, err)
}

func TestLineIndexByOffset(t *testing.T) {
	src, err := source.New("t.clasm", "abc\ndef\nghi")
	require.NoError(t, err)

	tests := []struct {
		offset int
		want   int
	}{
		{0, 0}, {2, 0}, {3, 0}, // '\n' itself belongs to line 0
		{4, 1}, {6, 1}, {7, 1},
		{8, 2}, {10, 2},
	}
	for _, tt := range tests {
		got, err := src.LineIndexByOffset(tt.offset)
		require.NoError(t, err)
		assert.Equalf(t, tt.want, got, "offset %d", tt.offset)
	}
}

func TestLineIndexByOffset_OutOfRange(t *testing.T) {
	src, err := source.New("t.clasm", "abc")
	require.NoError(t, err)
	_, err = src.LineIndexByOffset(-1)
	assert.Error(t, err)
	_, err = src.LineIndexByOffset(100)
	assert.Error(t, err)
}

func TestColumnByOffset_MultibyteAware(t *testing.T) {
	// "é" is 2 bytes (0xC3 0xA9); column counts character starts, not bytes.
	src, err := source.New("t.clasm", "é x")
	require.NoError(t, err)

	col, err := src.ColumnByOffset(0)
	require.NoError(t, err)
	assert.Equal(t, 1, col)

	col, err = src.ColumnByOffset(2) // first byte after the 2-byte 'é'
	require.NoError(t, err)
	assert.Equal(t, 2, col)

	col, err = src.ColumnByOffset(3) // the 'x'
	require.NoError(t, err)
	assert.Equal(t, 3, col)
}

func TestLineByIndex_StripsTrailingNewline(t *testing.T) {
	src, err := source.New("t.clasm", "push 1\nnop\n")
	require.NoError(t, err)

	li, err := src.LineByIndex(0)
	require.NoError(t, err)
	assert.Equal(t, "push 1", li.Text)
	assert.Equal(t, 1, li.Number)

	li, err = src.LineByIndex(1)
	require.NoError(t, err)
	assert.Equal(t, "nop", li.Text)
}

func TestSubstring(t *testing.T) {
	src, err := source.New("t.clasm", "push 123")
	require.NoError(t, err)

	s, err := src.Substring(0, 4)
	require.NoError(t, err)
	assert.Equal(t, "push", s)

	_, err = src.Substring(5, 100)
	assert.Error(t, err)
}

func TestGetToken(t *testing.T) {
	src, err := source.New("t.clasm", "  push 123")
	require.NoError(t, err)

	tok, err := src.GetToken(0)
	require.NoError(t, err)
	assert.Equal(t, "push", tok.Text())

	_, err = src.GetToken(-1)
	assert.Error(t, err)
}

func TestGetTokenSized_Clamped(t *testing.T) {
	src, err := source.New("t.clasm", "push")
	require.NoError(t, err)

	tok, err := src.GetTokenSized(1, 100)
	require.NoError(t, err)
	assert.Equal(t, "ush", tok.Text())
}

func TestToken_Join(t *testing.T) {
	src, err := source.New("t.clasm", "push 123")
	require.NoError(t, err)

	a := source.Token{Src: src, Offset: 0, Length: 4}
	b := source.Token{Src: src, Offset: 5, Length: 3}
	joined := a.Join(b)
	assert.Equal(t, "push 123", joined.Text())
}

func TestToken_Position(t *testing.T) {
	src, err := source.New("t.clasm", ".code\npush 1\n")
	require.NoError(t, err)

	tok := source.Token{Src: src, Offset: 6, Length: 4}
	pos := tok.Position()
	assert.Equal(t, "t.clasm", pos.Filename)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 1, pos.Column)
	assert.Equal(t, "push 1", pos.LineText)
}
