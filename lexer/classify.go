package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Deji69/cl-toolchain/diag"
	"github.com/Deji69/cl-toolchain/source"
	"github.com/Deji69/cl-toolchain/token"
	"github.com/Deji69/cl-toolchain/vocab"
)

// Classify refines one raw lexeme (as produced by Lexer.Next) into its
// final Type and Annotation. segment is the segment the line assembler is
// currently in; it only affects Identifier lookup order (the Data segment
// consults the data-type table before keyword/mnemonic/instruction).
func Classify(raw token.Token, segment vocab.Segment, report diag.Reporter) token.Token {
	if report == nil {
		report = diag.NopReporter{}
	}
	switch raw.Type {
	case token.Segment:
		return classifySegment(raw, report)
	case token.String:
		return classifyString(raw, report)
	case token.HexLiteral:
		return classifyHex(raw, report)
	case token.IntegerLiteral:
		return classifyInteger(raw, report)
	case token.FloatLiteral:
		return classifyFloat(raw, report)
	case token.Label:
		return classifyLabel(raw)
	case token.Identifier:
		return classifyIdentifier(raw, segment)
	default:
		return raw
	}
}

func classifySegment(raw token.Token, report diag.Reporter) token.Token {
	name := raw.Text()[1:] // strip leading '.'
	seg, ok := vocab.SegmentByName(name)
	if !ok {
		report.Report(diag.Report{
			Severity: diag.Error,
			Code:     diag.InvalidSegment,
			Token:    raw.Token,
			Message:  fmt.Sprintf("invalid segment %q", name),
		})
		return raw
	}
	raw.Annotation = token.Annotation{
		Kind: token.AnnotationEnum, Variant: token.EnumSegment,
		VariantName: name, EnumValue: int(seg),
	}
	return raw
}

func classifyLabel(raw token.Token) token.Token {
	name := raw.Text()
	name = strings.TrimSuffix(name, ":")
	raw.Type = token.Label
	raw.Annotation = token.Annotation{Kind: token.AnnotationString, Str: name}
	return raw
}

// classifyIdentifier looks up an identifier against the closed
// vocabularies, falling back to a retained Identifier (a possible label
// reference) if nothing matches.
func classifyIdentifier(raw token.Token, segment vocab.Segment) token.Token {
	name := raw.Text()

	if segment == vocab.SegData {
		if dt, ok := vocab.DataTypeByName(name); ok {
			raw.Type = token.DataType
			raw.Annotation = token.Annotation{
				Kind: token.AnnotationEnum, Variant: token.EnumDataType,
				VariantName: name, EnumValue: int(dt),
			}
			return raw
		}
	}

	if kw, ok := vocab.KeywordByName(name); ok {
		raw.Type = token.Keyword
		raw.Annotation = token.Annotation{
			Kind: token.AnnotationEnum, Variant: token.EnumKeyword,
			VariantName: name, EnumValue: int(kw),
		}
		return raw
	}
	if mn, ok := vocab.MnemonicByName(name); ok {
		raw.Type = token.Mnemonic
		raw.Annotation = token.Annotation{
			Kind: token.AnnotationEnum, Variant: token.EnumMnemonic,
			VariantName: name, EnumValue: int(mn),
		}
		return raw
	}
	if inst, ok := vocab.InstructionByName(name); ok {
		raw.Type = token.Instruction
		raw.Annotation = token.Annotation{
			Kind: token.AnnotationEnum, Variant: token.EnumInstruction,
			VariantName: name, EnumValue: int(inst),
		}
		return raw
	}

	// No vocabulary match: retain as Identifier, a possible label
	// reference, with the raw text as its string annotation.
	raw.Type = token.Identifier
	raw.Annotation = token.Annotation{Kind: token.AnnotationString, Str: name}
	return raw
}

func classifyString(raw token.Token, report diag.Reporter) token.Token {
	text := raw.Text()
	body := text
	if len(body) >= 2 {
		body = body[1 : len(body)-1]
	}
	decoded := decodeString(body, raw.Token, report)
	raw.Type = token.String
	raw.Annotation = token.Annotation{Kind: token.AnnotationString, Str: decoded}
	return raw
}

// decodeString decodes a string literal's body:
// \\ \r \n \t \" map one-for-one; \xHH... consumes 1..8 hex digits (an odd
// count rounds up) and emits the value in the minimal number of
// little-endian bytes; an empty \x is reported but parsing continues;
// any other \c is left literal.
func decodeString(body string, anchor source.Token, report diag.Reporter) string {
	var sb strings.Builder
	i := 0
	for i < len(body) {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			sb.WriteByte(c)
			i++
			continue
		}
		next := body[i+1]
		switch next {
		case '\\':
			sb.WriteByte('\\')
			i += 2
		case 'r':
			sb.WriteByte('\r')
			i += 2
		case 'n':
			sb.WriteByte('\n')
			i += 2
		case 't':
			sb.WriteByte('\t')
			i += 2
		case '"':
			sb.WriteByte('"')
			i += 2
		case 'x':
			k := 0
			for k < 8 && i+2+k < len(body) && isHexDigit(body[i+2+k]) {
				k++
			}
			if k == 0 {
				report.Report(diag.Report{
					Severity: diag.Error,
					Code:     diag.InvalidHexEscapeSequence,
					Token:    anchor,
					Message:  "empty \\x escape sequence",
				})
				i += 2
				continue
			}
			hexDigits := body[i+2 : i+2+k]
			val, err := strconv.ParseUint(hexDigits, 16, 32)
			if err != nil {
				report.Report(diag.Report{
					Severity: diag.Error,
					Code:     diag.InvalidHexEscapeSequence,
					Token:    anchor,
					Message:  fmt.Sprintf("\\x escape value out of range: %q", hexDigits),
				})
				i += 2 + k
				continue
			}
			numBytes := (k + 1) / 2
			for b := 0; b < numBytes; b++ {
				sb.WriteByte(byte(val >> (8 * b)))
			}
			i += 2 + k
		default:
			sb.WriteByte('\\')
			sb.WriteByte(next)
			i += 2
		}
	}
	return sb.String()
}

func classifyFloat(raw token.Token, report diag.Reporter) token.Token {
	text := raw.Text()
	v, err := strconv.ParseFloat(text, 32)
	if err != nil {
		report.Report(diag.Report{
			Severity: diag.Error,
			Code:     diag.InvalidNumericLiteral,
			Token:    raw.Token,
			Message:  fmt.Sprintf("invalid float literal %q", text),
		})
		raw.Type = token.Numeric
		return raw
	}
	raw.Type = token.Numeric
	raw.Annotation = token.Annotation{Kind: token.AnnotationFloat, FloatBits: 32, Float: float64(float32(v))}
	return raw
}

func classifyHex(raw token.Token, report diag.Reporter) token.Token {
	text := raw.Text()
	negative, digits := stripSign(text)
	digits = digits[2:] // strip "0x"/"0X"
	return classifyNumeric(raw, digits, 16, negative, report)
}

func classifyInteger(raw token.Token, report diag.Reporter) token.Token {
	text := raw.Text()
	negative, digits := stripSign(text)
	return classifyNumeric(raw, digits, 10, negative, report)
}

func stripSign(text string) (negative bool, rest string) {
	if len(text) == 0 {
		return false, text
	}
	switch text[0] {
	case '+':
		return false, text[1:]
	case '-':
		return true, text[1:]
	default:
		return false, text
	}
}

func classifyNumeric(raw token.Token, digits string, base int, negative bool, report diag.Reporter) token.Token {
	magnitude, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		report.Report(diag.Report{
			Severity: diag.Error,
			Code:     diag.InvalidNumericLiteral,
			Token:    raw.Token,
			Message:  fmt.Sprintf("invalid numeric literal %q", raw.Text()),
		})
		raw.Type = token.Numeric
		return raw
	}

	width, ok := coerceWidth(magnitude, negative)
	if !ok {
		report.Report(diag.Report{
			Severity: diag.Error,
			Code:     diag.InvalidNumericLiteral,
			Token:    raw.Token,
			Message:  fmt.Sprintf("numeric literal %q has no representable width", raw.Text()),
		})
		raw.Type = token.Numeric
		return raw
	}

	var bits uint64
	if negative {
		bits = uint64(-int64(magnitude))
	} else {
		bits = magnitude
	}
	if width.Bits() < 64 {
		bits &= (uint64(1) << uint(width.Bits())) - 1
	}

	raw.Type = token.Numeric
	raw.Annotation = token.Annotation{Kind: token.AnnotationInt, IntWidth: width, IntValue: bits}
	return raw
}

// coerceWidth selects the narrowest integer width that can represent the
// literal. Non-negative values alternate signed and unsigned widths as the
// magnitude grows; negative values only ever take signed widths, so a
// magnitude just past a signed maximum skips to the next signed width.
func coerceWidth(magnitude uint64, negative bool) (token.NumWidth, bool) {
	if !negative {
		switch {
		case magnitude <= 127:
			return token.I8, true
		case magnitude <= 255:
			return token.U8, true
		case magnitude <= 32767:
			return token.I16, true
		case magnitude <= 65535:
			return token.U16, true
		case magnitude <= (1<<31)-1:
			return token.I32, true
		case magnitude <= (uint64(1)<<32)-1:
			return token.U32, true
		case magnitude <= (uint64(1)<<63)-1:
			return token.I64, true
		default:
			return token.U64, true
		}
	}
	switch {
	case magnitude <= 127:
		return token.I8, true
	case magnitude <= 255:
		return token.I16, true
	case magnitude <= 32767:
		return token.I16, true
	case magnitude <= 65535:
		return token.I32, true
	case magnitude <= (1<<31)-1:
		return token.I32, true
	case magnitude <= (uint64(1)<<32)-1:
		return token.I64, true
	case magnitude <= (uint64(1)<<63)-1:
		return token.I64, true
	default:
		return 0, false
	}
}
