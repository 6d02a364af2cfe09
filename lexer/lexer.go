// Package lexer turns a source.Source into a stream of classified
// token.Token values in two stages: a rule-based raw scan (Next) producing
// untyped-annotation lexemes, followed by a classifier (Classify) that
// attaches the final Type and Annotation. Both stages live in this package
// because the raw scan already commits to most of a token's final Type;
// only Identifier needs a further classification pass against the
// vocabulary tables.
package lexer

import (
	"fmt"

	"github.com/Deji69/cl-toolchain/diag"
	"github.com/Deji69/cl-toolchain/source"
	"github.com/Deji69/cl-toolchain/token"
)

// Lexer scans one Source left to right at a byte cursor, trying an
// ordered list of rules at each position; the first that matches wins.
type Lexer struct {
	src    *source.Source
	text   string
	pos    int
	fatal  *diag.Report
	report diag.Reporter
}

// New creates a Lexer over src. report receives the Fatal UnexpectedLexeme
// diagnostic if the input contains an unrecognised lexeme.
func New(src *source.Source, report diag.Reporter) *Lexer {
	if report == nil {
		report = diag.NopReporter{}
	}
	return &Lexer{src: src, text: src.Text(), report: report}
}

// Fatal returns the fatal diagnostic that halted lexing, if any.
func (l *Lexer) Fatal() *diag.Report { return l.fatal }

func (l *Lexer) tok(typ token.Type, start, length int) token.Token {
	return token.Token{Token: source.Token{Src: l.src, Offset: start, Length: length}, Type: typ}
}

func (l *Lexer) byteAt(i int) byte {
	if i < 0 || i >= len(l.text) {
		return 0
	}
	return l.text[i]
}

// Next returns the next raw lexeme, or an EndOfFile token once the input
// is exhausted. WhiteSpace tokens (including comments) are never returned
// to the caller; Next skips them internally.
func (l *Lexer) Next() token.Token {
	for {
		if l.fatal != nil {
			return l.tok(token.EndOfFile, len(l.text), 0)
		}
		if l.pos >= len(l.text) {
			return l.tok(token.EndOfFile, len(l.text), 0)
		}

		start := l.pos

		if n := l.matchNewlines(start); n > 0 {
			l.pos = start + n
			return l.tok(token.EndOfLine, start, n)
		}
		if n := l.matchComment(start); n > 0 {
			l.pos = start + n
			continue
		}
		if n := l.matchWhitespace(start); n > 0 {
			l.pos = start + n
			continue
		}
		if n, ok := l.matchSeparator(start); ok {
			l.pos = start + n
			return l.tok(token.Separator, start, n)
		}
		if n, ok := l.matchSegment(start); ok {
			l.pos = start + n
			return l.tok(token.Segment, start, n)
		}
		if n, ok := l.matchString(start); ok {
			l.pos = start + n
			return l.tok(token.String, start, n)
		}
		if l.fatal != nil {
			return l.tok(token.EndOfFile, len(l.text), 0)
		}
		if n, ok := l.matchHex(start); ok {
			l.pos = start + n
			return l.tok(token.HexLiteral, start, n)
		}
		if n, ok := l.matchFloat(start); ok {
			l.pos = start + n
			return l.tok(token.FloatLiteral, start, n)
		}
		if n, ok := l.matchInteger(start); ok {
			l.pos = start + n
			return l.tok(token.IntegerLiteral, start, n)
		}
		if n, ok := l.matchLabel(start); ok {
			l.pos = start + n
			return l.tok(token.Label, start, n)
		}
		if n, ok := l.matchIdentifier(start); ok {
			l.pos = start + n
			return l.tok(token.Identifier, start, n)
		}

		// No rule matched: fatal UnexpectedLexeme on the next
		// whitespace-delimited token.
		badTok, _ := l.src.GetToken(start)
		if badTok.Length == 0 {
			badTok, _ = l.src.GetTokenSized(start, 1)
		}
		l.pos = badTok.End()
		r := diag.Report{
			Severity: diag.Fatal,
			Code:     diag.UnexpectedLexeme,
			Token:    badTok,
			Message:  fmt.Sprintf("unexpected lexeme %q", badTok.Text()),
		}
		l.fatal = &r
		l.report.Report(r)
		return l.tok(token.EndOfFile, len(l.text), 0)
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
func isAlpha(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
func isAlnum(b byte) bool { return isAlpha(b) || isDigit(b) }
func isWordBoundaryByte(b byte) bool {
	return !isAlnum(b)
}

// matchNewlines implements rule 1: a maximal run of '\n' bytes. '\r'
// immediately preceding a '\n' is treated as ordinary whitespace, matched
// separately by matchWhitespace.
func (l *Lexer) matchNewlines(i int) int {
	n := 0
	for l.byteAt(i+n) == '\n' {
		n++
	}
	return n
}

// matchComment implements rule 2: ';' through the next '\n', exclusive.
func (l *Lexer) matchComment(i int) int {
	if l.byteAt(i) != ';' {
		return 0
	}
	n := 1
	for {
		b := l.byteAt(i + n)
		if b == 0 || b == '\n' {
			return n
		}
		n++
	}
}

// matchWhitespace implements rule 3: whitespace other than newlines.
func (l *Lexer) matchWhitespace(i int) int {
	n := 0
	for {
		b := l.byteAt(i + n)
		if b == ' ' || b == '\t' || b == '\r' {
			n++
			continue
		}
		return n
	}
}

// matchSeparator implements rule 4: '=', ':', or ','.
func (l *Lexer) matchSeparator(i int) (int, bool) {
	switch l.byteAt(i) {
	case '=', ':', ',':
		return 1, true
	}
	return 0, false
}

// matchSegment implements rule 5: '.' followed by an identifier body.
func (l *Lexer) matchSegment(i int) (int, bool) {
	if l.byteAt(i) != '.' {
		return 0, false
	}
	n, ok := l.matchIdentifier(i + 1)
	if !ok {
		return 0, false
	}
	return n + 1, true
}

// matchString implements rule 6: an opening '"', a closing unescaped '"',
// with '\\' toggling escape state. Unterminated strings are a lex
// failure.
func (l *Lexer) matchString(i int) (int, bool) {
	if l.byteAt(i) != '"' {
		return 0, false
	}
	n := 1
	escaped := false
	for {
		b := l.byteAt(i + n)
		if b == 0 {
			start := i
			tok, _ := l.src.GetTokenSized(start, n)
			r := diag.Report{
				Severity: diag.Fatal,
				Code:     diag.UnexpectedLexeme,
				Token:    tok,
				Message:  "unterminated string literal",
			}
			l.fatal = &r
			l.report.Report(r)
			return 0, false
		}
		n++
		if escaped {
			escaped = false
			continue
		}
		if b == '\\' {
			escaped = true
			continue
		}
		if b == '"' {
			return n, true
		}
	}
}

// matchHex implements rule 7: [+-]?0x[0-9A-Fa-f]+ with a trailing word
// boundary.
func (l *Lexer) matchHex(i int) (int, bool) {
	n := 0
	if b := l.byteAt(i); b == '+' || b == '-' {
		n++
	}
	if l.byteAt(i+n) != '0' || (l.byteAt(i+n+1) != 'x' && l.byteAt(i+n+1) != 'X') {
		return 0, false
	}
	n += 2
	digitsStart := n
	for isHexDigit(l.byteAt(i + n)) {
		n++
	}
	if n == digitsStart {
		return 0, false
	}
	if !isWordBoundaryByte(l.byteAt(i + n)) {
		return 0, false
	}
	return n, true
}

// matchFloat implements rule 9 (Next tries it after hex and before
// integer): [+-]?(0|[1-9][0-9]*)\.[0-9]*([eE][+-]?[0-9]+)?\b
func (l *Lexer) matchFloat(i int) (int, bool) {
	n := 0
	if b := l.byteAt(i); b == '+' || b == '-' {
		n++
	}
	digitsStart := n
	n = l.scanDecimalDigits(i, n)
	if n == digitsStart || !validLeadingDigits(l.text, i+digitsStart, n-digitsStart) {
		return 0, false
	}
	if l.byteAt(i+n) != '.' {
		return 0, false
	}
	n++
	for isDigit(l.byteAt(i + n)) {
		n++
	}
	if b := l.byteAt(i + n); b == 'e' || b == 'E' {
		m := n + 1
		if s := l.byteAt(i + m); s == '+' || s == '-' {
			m++
		}
		expStart := m
		for isDigit(l.byteAt(i + m)) {
			m++
		}
		if m > expStart {
			n = m
		}
	}
	if !isWordBoundaryByte(l.byteAt(i + n)) {
		return 0, false
	}
	return n, true
}

// matchInteger implements rule 8: [+-]?(0|[1-9][0-9]*) followed by a word
// boundary that is not '.'. If a '.' follows, this rule does not match
// (leaving the float rule, tried first in practice, to have handled it).
func (l *Lexer) matchInteger(i int) (int, bool) {
	n := 0
	if b := l.byteAt(i); b == '+' || b == '-' {
		n++
	}
	digitsStart := n
	n = l.scanDecimalDigits(i, n)
	if n == digitsStart || !validLeadingDigits(l.text, i+digitsStart, n-digitsStart) {
		return 0, false
	}
	if l.byteAt(i+n) == '.' {
		return 0, false
	}
	if !isWordBoundaryByte(l.byteAt(i + n)) {
		return 0, false
	}
	return n, true
}

func (l *Lexer) scanDecimalDigits(i, n int) int {
	for isDigit(l.byteAt(i + n)) {
		n++
	}
	return n
}

// validLeadingDigits enforces "0 or [1-9][0-9]*": a multi-digit run may
// not start with '0'.
func validLeadingDigits(text string, start, length int) bool {
	if length == 0 {
		return false
	}
	if length > 1 && text[start] == '0' {
		return false
	}
	return true
}

// matchLabel implements rule 10: an identifier body immediately followed
// by ':' and then whitespace or end-of-input. The matched length includes
// the colon.
func (l *Lexer) matchLabel(i int) (int, bool) {
	n, ok := l.matchIdentifier(i)
	if !ok {
		return 0, false
	}
	if l.byteAt(i+n) != ':' {
		return 0, false
	}
	after := l.byteAt(i + n + 1)
	if after != 0 && after != ' ' && after != '\t' && after != '\r' && after != '\n' {
		return 0, false
	}
	return n + 1, true
}

// matchIdentifier implements rule 11: [A-Za-z_][A-Za-z0-9_]*
func (l *Lexer) matchIdentifier(i int) (int, bool) {
	if !isAlpha(l.byteAt(i)) {
		return 0, false
	}
	n := 1
	for isAlnum(l.byteAt(i + n)) {
		n++
	}
	return n, true
}
