package parser

import (
	"fmt"

	"github.com/Deji69/cl-toolchain/diag"
	"github.com/Deji69/cl-toolchain/lexer"
	"github.com/Deji69/cl-toolchain/source"
	"github.com/Deji69/cl-toolchain/token"
	"github.com/Deji69/cl-toolchain/vocab"
)

// Parser drives the line-assembler state machine over one Source: a single
// current token, advanced one lexeme at a time, classified against
// whichever segment is active when it is pulled off the lexer.
type Parser struct {
	lex     *lexer.Lexer
	report  diag.Reporter
	opts    Options
	info    *ParseInfo
	segment vocab.Segment
	cur     token.Token

	reports     []diag.Report
	numWarnings int
	numErrors   int
	hadFatal    bool
}

// Options tunes parser behaviour beyond the defaults.
type Options struct {
	// TestForceTokenization suppresses ExpectedToken errors, so the full
	// token stream can be inspected even for inputs the grammar rejects.
	TestForceTokenization bool
}

// NewParser creates a Parser over src with default options. report
// receives diagnostics as they are raised, in addition to their being
// collected on the returned Result.
func NewParser(src *source.Source, report diag.Reporter) *Parser {
	return NewParserWithOptions(src, report, Options{})
}

// NewParserWithOptions creates a Parser over src with explicit options.
func NewParserWithOptions(src *source.Source, report diag.Reporter, opts Options) *Parser {
	if report == nil {
		report = diag.NopReporter{}
	}
	p := &Parser{
		lex:     lexer.New(src, report),
		report:  report,
		opts:    opts,
		info:    NewParseInfo(),
		segment: vocab.SegHeader,
	}
	p.advance()
	return p
}

func (p *Parser) advance() {
	raw := p.lex.Next()
	p.cur = lexer.Classify(raw, p.segment, p)
	if fatal := p.lex.Fatal(); fatal != nil {
		p.record(*fatal)
	}
}

// Report implements diag.Reporter so the classifier can raise diagnostics
// (e.g. InvalidSegment) through the same accounting path as the parser's
// own.
func (p *Parser) Report(r diag.Report) { p.record(r) }

func (p *Parser) record(r diag.Report) {
	if p.opts.TestForceTokenization && r.Code == diag.ExpectedToken {
		return
	}
	p.reports = append(p.reports, r)
	switch r.Severity {
	case diag.Warning:
		p.numWarnings++
	case diag.Error:
		p.numErrors++
	case diag.Fatal:
		p.numErrors++
		p.hadFatal = true
	}
	p.report.Report(r)
}

func (p *Parser) errorf(code diag.Code, tok token.Token, format string, args ...any) {
	p.record(diag.Report{Severity: diag.Error, Code: code, Token: tok.Token, Message: fmt.Sprintf(format, args...)})
}

// Parse runs the line-assembler to completion (or to the first Fatal
// diagnostic) and returns the accumulated Result.
func (p *Parser) Parse() *Result {
	for {
		state := p.parseLine()
		if state == Fatal {
			break
		}
		if state == Finish {
			// The EndOfFile token closes whichever segment was active.
			p.info.Emit(p.segment, p.cur)
			break
		}
	}
	if !p.hadFatal {
		for _, tok := range p.info.UnresolvedAtEOF() {
			p.errorf(diag.UnresolvedLabelReference, tok, "unresolved label reference %q", tok.Text())
		}
	}
	return &Result{
		Info:        p.info,
		Reports:     p.reports,
		NumWarnings: p.numWarnings,
		NumErrors:   p.numErrors,
		HadFatal:    p.hadFatal,
	}
}

// parseLine consumes exactly one logical line or sub-line (blank lines
// included) and reports the state the machine should continue in.
func (p *Parser) parseLine() State {
	if p.hadFatal {
		return Fatal
	}
	for p.cur.Type == token.EndOfLine {
		p.advance()
	}
	if p.cur.Type == token.EndOfFile {
		return Finish
	}
	if p.hadFatal {
		return Fatal
	}

	// A comma closing an empty sub-line is skipped silently; any other
	// separator can never legally begin a line.
	if p.cur.Type == token.Separator {
		if p.cur.Text() == "," {
			p.advance()
			return Continue
		}
		p.errorf(diag.UnexpectedSeparator, p.cur, "unexpected separator %q", p.cur.Text())
		p.skipToEOL()
		return Continue
	}

	expected := defaultExpected[p.segment]
	if !expected.Has(p.cur.Type) {
		p.record(diag.Report{
			Severity: diag.Error,
			Code:     diag.ExpectedToken,
			Token:    p.cur.Token,
			Message:  fmt.Sprintf("unexpected %s at start of line, expected one of: %s", p.cur.Type, expectedString(expected)),
			Payload:  diag.ExpectedPayload{Given: p.cur.Type.String(), Expected: expected.Names()},
		})
		p.skipToEOL()
		return Continue
	}

	switch p.cur.Type {
	case token.Segment:
		return p.parseSegmentLine()
	case token.Keyword:
		return p.parseKeywordLine()
	case token.Label:
		return p.parseLabelLine()
	case token.Mnemonic, token.Instruction:
		return p.parseInstructionLine()
	case token.Identifier:
		// Resolved to neither a keyword/mnemonic/instruction nor a label
		// definition (no trailing colon): a bare identifier can't start a
		// line on its own.
		p.errorf(diag.InvalidIdentifier, p.cur, "unexpected identifier %q at start of line", p.cur.Text())
		p.skipToEOL()
		return Continue
	default:
		// Every token type any defaultExpected set admits has an explicit
		// case above; reaching here means a type was added to a segment's
		// expectation set without a matching arm here, which user input
		// can never trigger.
		p.record(diag.Report{
			Severity: diag.Fatal,
			Code:     diag.UnexpectedTokenBeganLine,
			Token:    p.cur.Token,
			Message:  fmt.Sprintf("internal error: unhandled %s at start of line", p.cur.Type),
		})
		return Fatal
	}
}

// parseSegmentLine switches the active segment. Only an end of line may
// follow a segment directive.
func (p *Parser) parseSegmentLine() State {
	if p.cur.Annotation.Kind == token.AnnotationEnum {
		p.segment = vocab.Segment(p.cur.Annotation.EnumValue)
	}
	p.advance()

	if p.hadFatal {
		return Fatal
	}
	switch p.cur.Type {
	case token.EndOfLine:
		p.advance()
	case token.EndOfFile:
	default:
		p.record(diag.Report{
			Severity: diag.Error,
			Code:     diag.ExpectedToken,
			Token:    p.cur.Token,
			Message:  fmt.Sprintf("expected end of line after segment directive, got %s", p.cur.Type),
			Payload:  diag.ExpectedPayload{Given: p.cur.Type.String(), Expected: []string{token.EndOfLine.String()}},
		})
		p.skipToEOL()
	}
	if p.hadFatal {
		return Fatal
	}
	return Continue
}

// parseKeywordLine implements "KEYWORD ident[, ident...]" (global, extern,
// import, include): every named identifier is recorded as a label
// reference, resolved against the label table exactly like an operand
// reference.
func (p *Parser) parseKeywordLine() State {
	p.info.Emit(vocab.SegHeader, p.cur)
	p.advance()

	saw := false
	for {
		switch p.cur.Type {
		case token.EndOfLine, token.EndOfFile:
			if !saw {
				p.errorf(diag.MissingOperand, p.cur, "expected at least one identifier")
			}
			return p.finishLine(vocab.SegHeader)
		case token.Separator:
			if p.cur.Text() != "," {
				p.errorf(diag.UnexpectedSeparator, p.cur, "unexpected separator %q", p.cur.Text())
				p.skipToEOL()
				return Continue
			}
			p.advance()
		case token.Identifier:
			idx := p.info.Emit(vocab.SegHeader, p.cur)
			p.info.Reference(vocab.SegHeader, idx)
			saw = true
			p.advance()
		case token.Segment:
			p.errorf(diag.UnexpectedSegmentAfterTokens, p.cur, "segment directive %q may not follow tokens on a line", p.cur.Text())
			p.skipToEOL()
			return Continue
		case token.Label:
			p.errorf(diag.UnexpectedLabelAfterTokens, p.cur, "label %q must begin its line", p.cur.Text())
			p.skipToEOL()
			return Continue
		default:
			p.errorf(diag.UnexpectedToken, p.cur, "unexpected %s, expected an identifier", p.cur.Type)
			p.skipToEOL()
			return Continue
		}
	}
}

// parseLabelLine implements "LABEL:", defining the label at the current
// segment/offset. In the Data segment it continues straight into the
// "DTYPE value[, ...]" list; in the Code segment the rest of the physical
// line, if any, parses as its own sub-line, so a label may share a line
// with the instruction it marks.
func (p *Parser) parseLabelLine() State {
	name := p.cur.Annotation.Str
	def := p.cur
	p.advance()

	handle, lbl, defined := p.info.Define(name, def, p.segment)
	if !defined {
		p.record(diag.Report{
			Severity: diag.Error,
			Code:     diag.LabelRedefinition,
			Token:    def.Token,
			Message:  fmt.Sprintf("label %q already defined", name),
			Payload:  diag.LabelRedefinitionPayload{FirstDefinition: lbl.DefiningToken},
		})
	}

	labelTok := def
	labelTok.Type = token.Label
	labelTok.Annotation = token.Annotation{Kind: token.AnnotationLabelDef, LabelIndex: handle, Str: name}
	p.info.Emit(p.segment, labelTok)

	if p.segment == vocab.SegData {
		return p.parseDataValues()
	}
	if p.cur.Type == token.EndOfLine || p.cur.Type == token.EndOfFile {
		return p.finishLine(p.segment)
	}
	return Continue
}

// parseDataValues implements "DTYPE value[, value...]" following a Data
// label definition. A segment directive may end the list in place of a
// newline; Data is the one segment that allows a directive boundary after
// tokens on a line.
func (p *Parser) parseDataValues() State {
	if p.cur.Type != token.DataType {
		p.record(diag.Report{
			Severity: diag.Error,
			Code:     diag.ExpectedToken,
			Token:    p.cur.Token,
			Message:  fmt.Sprintf("expected a data type, got %s", p.cur.Type),
			Payload:  diag.ExpectedPayload{Given: p.cur.Type.String(), Expected: []string{token.DataType.String()}},
		})
		p.skipToEOL()
		return Continue
	}
	dt := vocab.DataType(p.cur.Annotation.EnumValue)
	p.info.Emit(vocab.SegData, p.cur)
	p.advance()

	count := 0
	for {
		switch p.cur.Type {
		case token.EndOfLine, token.EndOfFile:
			if count == 0 {
				p.errorf(diag.MissingOperand, p.cur, "expected at least one %s value", dt)
			}
			return p.finishLine(vocab.SegData)
		case token.Segment:
			if count == 0 {
				p.errorf(diag.MissingOperand, p.cur, "expected at least one %s value", dt)
			}
			// The directive starts its own line; a zero-length EndOfLine at
			// its position closes the Data stream's current line.
			eol := p.cur
			eol.Type = token.EndOfLine
			eol.Length = 0
			eol.Annotation = token.Annotation{}
			p.info.Emit(vocab.SegData, eol)
			return Continue
		case token.Label:
			p.errorf(diag.UnexpectedLabelAfterTokens, p.cur, "label %q must begin its line", p.cur.Text())
			p.skipToEOL()
			return Continue
		case token.Separator:
			if p.cur.Text() != "," {
				p.errorf(diag.UnexpectedSeparator, p.cur, "unexpected separator %q", p.cur.Text())
				p.skipToEOL()
				return Continue
			}
			p.advance()
		case token.Numeric, token.String:
			switch {
			case !dataValueKindMatches(dt, p.cur):
				p.errorf(diag.InvalidOperandType, p.cur, "value does not match data type %s", dt)
			case !dataValueFits(dt, p.cur):
				p.errorf(diag.LiteralValueSizeOverflow, p.cur, "value %s too wide for data type %s", p.cur.Text(), dt)
			default:
				p.info.Emit(vocab.SegData, p.cur)
			}
			count++
			p.advance()
		default:
			p.errorf(diag.UnexpectedOperand, p.cur, "unexpected %s in data value list", p.cur.Type)
			p.skipToEOL()
			return Continue
		}
	}
}

func dataValueKindMatches(dt vocab.DataType, tok token.Token) bool {
	switch dt {
	case vocab.DTStr:
		return tok.Type == token.String
	case vocab.DTFloat, vocab.DTDouble:
		return tok.Annotation.Kind == token.AnnotationFloat
	default:
		return tok.Annotation.Kind == token.AnnotationInt
	}
}

func dataValueFits(dt vocab.DataType, tok token.Token) bool {
	switch dt {
	case vocab.DTStr:
		return true
	case vocab.DTFloat, vocab.DTDouble:
		return tok.Annotation.FloatBits <= dt.ElementWidth()*8
	default:
		return tok.Annotation.IntWidth.Bits() <= dt.ElementWidth()*8
	}
}

// parseInstructionLine implements a Mnemonic or bare Instruction line:
// read operands, resolve (for a Mnemonic) against its overload table, and
// emit the resolved opcode plus its operands into the Code segment stream.
func (p *Parser) parseInstructionLine() State {
	head := p.cur
	isMnemonic := head.Type == token.Mnemonic
	p.advance()

	operands, ok := p.readOperands()
	if !ok {
		return Continue
	}

	var inst vocab.Instruction
	if isMnemonic {
		mn := vocab.Mnemonic(head.Annotation.EnumValue)
		resolved, ok := resolveMnemonic(mn, operands)
		if !ok {
			p.errorf(diag.InvalidMnemonicOperands, head, "no overload of %q accepts %d operand(s)", mn, len(operands))
			return p.finishLine(vocab.SegCode)
		}
		inst = resolved
	} else {
		var ok bool
		inst, ok = head.InstructionOpcode()
		if !ok {
			p.errorf(diag.InvalidMnemonicOperands, head, "unknown instruction")
			return p.finishLine(vocab.SegCode)
		}
		if !shapeMatches(vocab.OperandShape(inst), operands) {
			p.errorf(diag.InvalidMnemonicOperands, head, "%s does not accept %d operand(s)", inst, len(operands))
			return p.finishLine(vocab.SegCode)
		}
	}

	instTok := head
	instTok.Type = token.Instruction
	instTok.Annotation = token.Annotation{
		Kind: token.AnnotationEnum, Variant: token.EnumInstruction,
		VariantName: inst.String(), EnumValue: int(inst),
	}
	p.info.Emit(vocab.SegCode, instTok)

	for _, op := range operands {
		idx := p.info.Emit(vocab.SegCode, op)
		if op.Type == token.Identifier {
			// The identifier bound against REL32 (the only operand type
			// that accepts one), so it becomes a label reference.
			p.info.Reference(vocab.SegCode, idx)
		}
	}

	return p.finishLine(vocab.SegCode)
}

// readOperands collects every operand token up to the end of the line or
// sub-line; a comma ends the sub-line and is left in place, and any other
// separator is an error. ok is false when the line was malformed and
// already skipped past.
func (p *Parser) readOperands() ([]token.Token, bool) {
	var ops []token.Token
	for {
		switch p.cur.Type {
		case token.EndOfLine, token.EndOfFile:
			return ops, true
		case token.Separator:
			// A comma ends the operand list and starts the next sub-line
			// on the same physical line; finishLine leaves it in place.
			if p.cur.Text() == "," {
				return ops, true
			}
			p.errorf(diag.UnexpectedSeparator, p.cur, "unexpected separator %q", p.cur.Text())
			p.skipToEOL()
			return nil, false
		case token.Segment:
			p.errorf(diag.UnexpectedSegmentAfterTokens, p.cur, "segment directive %q may not follow tokens on a line", p.cur.Text())
			p.skipToEOL()
			return nil, false
		case token.Label:
			p.errorf(diag.UnexpectedLabelAfterTokens, p.cur, "label %q must begin its line", p.cur.Text())
			p.skipToEOL()
			return nil, false
		default:
			ops = append(ops, p.cur)
			p.advance()
		}
	}
}

// finishLine closes the current line or sub-line: an EndOfLine is appended
// to seg's token stream (so every segment stream terminates in EndOfLine or
// EndOfFile) and consumed; EndOfFile is left for Parse to append to the
// active segment, and is also appended to seg when seg is not the active
// one; a comma is left in place so the line loop starts the next sub-line.
// Anything else is a trailing-token error.
func (p *Parser) finishLine(seg vocab.Segment) State {
	if p.hadFatal {
		return Fatal
	}
	switch {
	case p.cur.Type == token.EndOfLine:
		p.info.Emit(seg, p.cur)
		p.advance()
	case p.cur.Type == token.EndOfFile:
		if seg != p.segment {
			p.info.Emit(seg, p.cur)
		}
	case p.cur.Type == token.Separator && p.cur.Text() == ",":
	default:
		p.errorf(diag.UnexpectedToken, p.cur, "unexpected %s at end of line", p.cur.Type)
		p.skipToEOL()
	}
	if p.hadFatal {
		return Fatal
	}
	return Continue
}

func (p *Parser) skipToEOL() {
	for p.cur.Type != token.EndOfLine && p.cur.Type != token.EndOfFile {
		p.advance()
	}
	if p.cur.Type == token.EndOfLine {
		p.advance()
	}
}
