package lexer_test

import (
	"testing"

	"github.com/Deji69/cl-toolchain/lexer"
	"github.com/Deji69/cl-toolchain/source"
	"github.com/Deji69/cl-toolchain/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawTypes(t *testing.T, code string) []token.Type {
	t.Helper()
	src, err := source.New("t.clasm", code)
	require.NoError(t, err)
	lx := lexer.New(src, nil)
	var types []token.Type
	for {
		tok := lx.Next()
		types = append(types, tok.Type)
		if tok.Type == token.EndOfFile {
			break
		}
	}
	return types
}

func TestNext_SkipsWhitespaceAndComments(t *testing.T) {
	types := rawTypes(t, "  ; a comment\n push")
	assert.Equal(t, []token.Type{token.EndOfLine, token.Identifier, token.EndOfFile}, types)
}

func TestNext_NewlineRunIsOneToken(t *testing.T) {
	src, err := source.New("t.clasm", "a\n\n\nb")
	require.NoError(t, err)
	lx := lexer.New(src, nil)

	tok := lx.Next()
	assert.Equal(t, token.Identifier, tok.Type)

	tok = lx.Next()
	assert.Equal(t, token.EndOfLine, tok.Type)
	assert.Equal(t, "\n\n\n", tok.Text())
}

func TestNext_Separators(t *testing.T) {
	types := rawTypes(t, "= : ,")
	assert.Equal(t, []token.Type{token.Separator, token.Separator, token.Separator, token.EndOfFile}, types)
}

func TestNext_Segment(t *testing.T) {
	src, err := source.New("t.clasm", ".code")
	require.NoError(t, err)
	lx := lexer.New(src, nil)
	tok := lx.Next()
	assert.Equal(t, token.Segment, tok.Type)
	assert.Equal(t, ".code", tok.Text())
}

func TestNext_String(t *testing.T) {
	src, err := source.New("t.clasm", `"hello \"world\""`)
	require.NoError(t, err)
	lx := lexer.New(src, nil)
	tok := lx.Next()
	assert.Equal(t, token.String, tok.Type)
	assert.Equal(t, `"hello \"world\""`, tok.Text())
}

func TestNext_UnterminatedString_IsFatal(t *testing.T) {
	src, err := source.New("t.clasm", `"unterminated`)
	require.NoError(t, err)
	lx := lexer.New(src, nil)
	tok := lx.Next()
	assert.Equal(t, token.EndOfFile, tok.Type)
	require.NotNil(t, lx.Fatal())
}

func TestNext_HexLiteral(t *testing.T) {
	src, err := source.New("t.clasm", "0xFF 0x10 -0x1")
	require.NoError(t, err)
	lx := lexer.New(src, nil)

	tok := lx.Next()
	assert.Equal(t, token.HexLiteral, tok.Type)
	assert.Equal(t, "0xFF", tok.Text())

	tok = lx.Next()
	assert.Equal(t, token.HexLiteral, tok.Type)

	tok = lx.Next()
	assert.Equal(t, token.HexLiteral, tok.Type)
	assert.Equal(t, "-0x1", tok.Text())
}

func TestNext_HexLiteralRequiresWordBoundary(t *testing.T) {
	// "0xFFg" has no boundary between the digits and 'g', so the hex rule
	// must not match; nothing else matches a leading digit either, so the
	// lexer reports the whole run as an unexpected lexeme.
	src, err := source.New("t.clasm", "0xFFg")
	require.NoError(t, err)
	lx := lexer.New(src, nil)
	tok := lx.Next()
	assert.Equal(t, token.EndOfFile, tok.Type)
	require.NotNil(t, lx.Fatal())
	assert.Contains(t, lx.Fatal().Message, "0xFFg")
}

func TestNext_IntegerVsFloat(t *testing.T) {
	src, err := source.New("t.clasm", "123 0 -45 1.5 2.0e10")
	require.NoError(t, err)
	lx := lexer.New(src, nil)

	want := []token.Type{
		token.IntegerLiteral, token.IntegerLiteral, token.IntegerLiteral,
		token.FloatLiteral, token.FloatLiteral,
	}
	for i, w := range want {
		tok := lx.Next()
		assert.Equalf(t, w, tok.Type, "token %d", i)
	}
}

func TestNext_LeadingZeroMultiDigitIsNotValidInteger(t *testing.T) {
	// "007" fails the integer rule's leading-zero check; it also isn't a
	// valid identifier start, so the lexer reports UnexpectedLexeme.
	src, err := source.New("t.clasm", "007")
	require.NoError(t, err)
	lx := lexer.New(src, nil)
	tok := lx.Next()
	assert.Equal(t, token.EndOfFile, tok.Type)
	assert.NotNil(t, lx.Fatal())
}

func TestNext_LabelDefinition(t *testing.T) {
	src, err := source.New("t.clasm", "target: nop")
	require.NoError(t, err)
	lx := lexer.New(src, nil)

	tok := lx.Next()
	assert.Equal(t, token.Label, tok.Type)
	assert.Equal(t, "target:", tok.Text())
}

func TestNext_LabelRequiresTrailingWhitespaceOrEOF(t *testing.T) {
	// "foo:bar" doesn't match the label rule (no whitespace/EOF after ':')
	// so "foo" falls through to identifier, then ':' is a Separator.
	types := rawTypes(t, "foo:bar")
	assert.Equal(t, []token.Type{token.Identifier, token.Separator, token.Identifier, token.EndOfFile}, types)
}

func TestNext_LabelAtEndOfInput(t *testing.T) {
	src, err := source.New("t.clasm", "target:")
	require.NoError(t, err)
	lx := lexer.New(src, nil)
	tok := lx.Next()
	assert.Equal(t, token.Label, tok.Type)
}

func TestNext_Identifier(t *testing.T) {
	src, err := source.New("t.clasm", "_foo123")
	require.NoError(t, err)
	lx := lexer.New(src, nil)
	tok := lx.Next()
	assert.Equal(t, token.Identifier, tok.Type)
	assert.Equal(t, "_foo123", tok.Text())
}

func TestNext_UnexpectedLexeme(t *testing.T) {
	src, err := source.New("t.clasm", "@bogus")
	require.NoError(t, err)
	lx := lexer.New(src, nil)
	tok := lx.Next()
	assert.Equal(t, token.EndOfFile, tok.Type)
	require.NotNil(t, lx.Fatal())
	assert.Contains(t, lx.Fatal().Message, "@bogus")
}

func TestNext_EndOfFile_Idempotent(t *testing.T) {
	src, err := source.New("t.clasm", "")
	require.NoError(t, err)
	lx := lexer.New(src, nil)
	first := lx.Next()
	second := lx.Next()
	assert.Equal(t, token.EndOfFile, first.Type)
	assert.Equal(t, token.EndOfFile, second.Type)
}

func TestNext_EmptyInput(t *testing.T) {
	types := rawTypes(t, "")
	assert.Equal(t, []token.Type{token.EndOfFile}, types)
}
