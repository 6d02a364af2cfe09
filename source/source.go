// Package source provides byte-offset indexed access to a single assembly
// source unit: line/column lookup, substring extraction, and the borrowed
// token type every later stage of the pipeline builds on.
package source

import (
	"fmt"
	"sort"
)

// line describes one physical line of the source.
type line struct {
	number     int // 1-based
	offset     int // byte offset of first character on the line
	length     int // byte length, including the terminating '\n' if any
	charLength int // length counted in UTF-8 characters (grapheme starts)
}

// Source is an immutable view over one unit of assembly text. It owns the
// original bytes and a byte-offset index built once at construction time.
type Source struct {
	name string
	code string
	// lineOffsets[i] is the starting byte offset of lines[i]; kept alongside
	// lines for sort.Search without re-deriving it on every lookup.
	lineOffsets []int
	lines       []line
}

// New builds a Source from its name (used only in diagnostics) and its
// text. Construction walks the text once, splitting it into lines and
// validating UTF-8 continuation bytes; malformed UTF-8 fails
// construction.
func New(name, code string) (*Source, error) {
	s := &Source{name: name, code: code}

	cur := line{number: 1, offset: 0}
	for i := 0; i < len(code); {
		b := code[i]
		switch {
		case b == '\n':
			cur.length = i + 1 - cur.offset
			s.appendLine(cur)
			i++
			cur = line{number: cur.number + 1, offset: i}
		case b&0x80 == 0: // ASCII
			cur.charLength++
			i++
		case b&0xE0 == 0xC0: // 110xxxxx: 1 continuation byte
			n, err := s.consumeMultibyte(i, 1)
			if err != nil {
				return nil, err
			}
			cur.charLength++
			i += n
		case b&0xF0 == 0xE0: // 1110xxxx: 2 continuation bytes
			n, err := s.consumeMultibyte(i, 2)
			if err != nil {
				return nil, err
			}
			cur.charLength++
			i += n
		case b&0xF8 == 0xF0: // 11110xxx: 3 continuation bytes
			n, err := s.consumeMultibyte(i, 3)
			if err != nil {
				return nil, err
			}
			cur.charLength++
			i += n
		default:
			return nil, fmt.Errorf("source: invalid UTF-8 lead byte 0x%02x at offset %d", b, i)
		}
	}
	cur.length = len(code) - cur.offset
	s.appendLine(cur)

	return s, nil
}

// consumeMultibyte validates that the n bytes following the lead byte at i
// are continuation bytes (top two bits 10) and returns 1+n, the total
// length of the character.
func (s *Source) consumeMultibyte(i, n int) (int, error) {
	for k := 1; k <= n; k++ {
		if i+k >= len(s.code) || s.code[i+k]&0xC0 != 0x80 {
			return 0, fmt.Errorf("source: truncated multi-byte UTF-8 sequence at offset %d", i)
		}
	}
	return n + 1, nil
}

func (s *Source) appendLine(l line) {
	s.lineOffsets = append(s.lineOffsets, l.offset)
	s.lines = append(s.lines, l)
}

// Name returns the source's name, as supplied to New.
func (s *Source) Name() string { return s.name }

// Len returns the byte length of the source text.
func (s *Source) Len() int { return len(s.code) }

// Text returns the full source text.
func (s *Source) Text() string { return s.code }

// LineInfo describes one physical line for diagnostic rendering.
type LineInfo struct {
	Number int
	Offset int
	Text   string // line text, without the trailing newline
}

// LineByIndex returns the 0-based line at index idx.
func (s *Source) LineByIndex(idx int) (LineInfo, error) {
	if idx < 0 || idx >= len(s.lines) {
		return LineInfo{}, fmt.Errorf("source: line index %d out of range [0,%d)", idx, len(s.lines))
	}
	l := s.lines[idx]
	text := s.code[l.offset : l.offset+l.length]
	for len(text) > 0 && (text[len(text)-1] == '\n' || text[len(text)-1] == '\r') {
		text = text[:len(text)-1]
	}
	return LineInfo{Number: l.number, Offset: l.offset, Text: text}, nil
}

// LineIndexByOffset returns the 0-based index of the line containing byte
// offset o: the last entry in the offset index with key <= o.
func (s *Source) LineIndexByOffset(o int) (int, error) {
	if o < 0 || o > len(s.code) {
		return 0, fmt.Errorf("source: offset %d out of range [0,%d]", o, len(s.code))
	}
	idx := sort.Search(len(s.lineOffsets), func(i int) bool { return s.lineOffsets[i] > o }) - 1
	if idx < 0 {
		idx = 0
	}
	return idx, nil
}

// ColumnByOffset returns the 1-based, multibyte-aware column of offset o:
// one plus the count of bytes in [lineOffset, o) whose top two bits are not
// 10 (i.e. the count of character-starting bytes before o on its line).
func (s *Source) ColumnByOffset(o int) (int, error) {
	idx, err := s.LineIndexByOffset(o)
	if err != nil {
		return 0, err
	}
	lineOffset := s.lines[idx].offset
	col := 1
	for i := lineOffset; i < o; i++ {
		if s.code[i]&0xC0 != 0x80 {
			col++
		}
	}
	return col, nil
}

// Substring returns the text in [offset, offset+length), with range
// checks against the source's bounds.
func (s *Source) Substring(offset, length int) (string, error) {
	if offset < 0 || length < 0 || offset+length > len(s.code) {
		return "", fmt.Errorf("source: slice [%d,%d) out of range [0,%d]", offset, offset+length, len(s.code))
	}
	return s.code[offset : offset+length], nil
}

// Token is a (source, offset, length) triple; its Text is a borrowed
// substring of the owning Source.
type Token struct {
	Src    *Source
	Offset int
	Length int
}

// Text returns the borrowed substring this token spans.
func (t Token) Text() string {
	if t.Src == nil {
		return ""
	}
	return t.Src.code[t.Offset : t.Offset+t.Length]
}

// End returns the offset just past this token.
func (t Token) End() int { return t.Offset + t.Length }

// Join produces a token spanning from t's start to the end of other. Both
// tokens must belong to the same Source.
func (t Token) Join(other Token) Token {
	end := other.End()
	if end < t.End() {
		end = t.End()
	}
	return Token{Src: t.Src, Offset: t.Offset, Length: end - t.Offset}
}

// Position is the human-facing location of a Token: file name, 1-based
// line, 1-based column, and the full text of the containing line (for
// diagnostic rendering).
type Position struct {
	Filename string
	Line     int
	Column   int
	LineText string
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Position resolves a Token's byte offset to line/column/line-text.
func (t Token) Position() Position {
	if t.Src == nil {
		return Position{}
	}
	idx, err := t.Src.LineIndexByOffset(t.Offset)
	if err != nil {
		return Position{Filename: t.Src.name}
	}
	li, _ := t.Src.LineByIndex(idx)
	col, _ := t.Src.ColumnByOffset(t.Offset)
	return Position{Filename: t.Src.name, Line: li.Number, Column: col, LineText: li.Text}
}

// GetToken returns a token from offset to the first whitespace byte,
// trimming any leading whitespace. It fails when offset is outside the
// source.
func (s *Source) GetToken(offset int) (Token, error) {
	if offset < 0 || offset > len(s.code) {
		return Token{}, fmt.Errorf("source: offset %d out of range [0,%d]", offset, len(s.code))
	}
	i := offset
	for i < len(s.code) && isSpace(s.code[i]) {
		i++
	}
	start := i
	for i < len(s.code) && !isSpace(s.code[i]) {
		i++
	}
	return Token{Src: s, Offset: start, Length: i - start}, nil
}

// GetTokenSized returns a clamped slice of size bytes starting at offset.
func (s *Source) GetTokenSized(offset, size int) (Token, error) {
	if offset < 0 || offset > len(s.code) {
		return Token{}, fmt.Errorf("source: offset %d out of range [0,%d]", offset, len(s.code))
	}
	if offset+size > len(s.code) {
		size = len(s.code) - offset
	}
	return Token{Src: s, Offset: offset, Length: size}, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
