// Package diag implements CLASM's diagnostic engine: typed error codes
// with structured payloads, severities that drive pipeline flow, and a
// Reporter sink that renders reports for a human reader.
package diag

import (
	"fmt"
	"strings"

	"github.com/Deji69/cl-toolchain/source"
	"github.com/Deji69/cl-toolchain/token"
)

// Severity controls how a Report affects pipeline flow: Warning is
// recorded and never halts, Error lets the current line finish so later
// lines are still checked, Fatal terminates parsing at the next safe
// point.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Code is a typed diagnostic code. Numeric ranges: 1xxx internal, 2xxx
// user-facing.
type Code int

const (
	UnexpectedTokenBeganLine Code = 1000 + iota
)

const (
	UnexpectedLexeme Code = 2000 + iota
	ExpectedToken
	UnexpectedToken
	UnexpectedSeparator
	UnexpectedSegmentAfterTokens
	UnexpectedLabelAfterTokens
	UnexpectedOperand
	InvalidIdentifier
	InvalidSegment
	InvalidOperandType
	InvalidMnemonicOperands
	MissingOperand
	LiteralValueSizeOverflow
	InvalidEscapeSequence
	InvalidHexEscapeSequence
	LabelRedefinition
	UnresolvedLabelReference
	InvalidNumericLiteral
)

var codeNames = map[Code]string{
	UnexpectedTokenBeganLine:     "UnexpectedTokenBeganLine",
	UnexpectedLexeme:             "UnexpectedLexeme",
	ExpectedToken:                "ExpectedToken",
	UnexpectedToken:              "UnexpectedToken",
	UnexpectedSeparator:          "UnexpectedSeparator",
	UnexpectedSegmentAfterTokens: "UnexpectedSegmentAfterTokens",
	UnexpectedLabelAfterTokens:   "UnexpectedLabelAfterTokens",
	UnexpectedOperand:            "UnexpectedOperand",
	InvalidIdentifier:            "InvalidIdentifier",
	InvalidSegment:               "InvalidSegment",
	InvalidOperandType:           "InvalidOperandType",
	InvalidMnemonicOperands:      "InvalidMnemonicOperands",
	MissingOperand:               "MissingOperand",
	LiteralValueSizeOverflow:     "LiteralValueSizeOverflow",
	InvalidEscapeSequence:        "InvalidEscapeSequence",
	InvalidHexEscapeSequence:     "InvalidHexEscapeSequence",
	LabelRedefinition:            "LabelRedefinition",
	UnresolvedLabelReference:     "UnresolvedLabelReference",
	InvalidNumericLiteral:        "InvalidNumericLiteral",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Report bundles one diagnostic occurrence: its severity, the source
// token it anchors to, a human message, and an optional structured
// payload carrying just the data its message needs (e.g. ExpectedPayload
// below, for ExpectedToken reports).
type Report struct {
	Severity Severity
	Code     Code
	Token    source.Token
	Message  string
	Payload  any
}

// ExpectedPayload is the structured payload for an ExpectedToken report.
type ExpectedPayload struct {
	Given    string
	Expected []string
}

// LabelRedefinitionPayload is the structured payload for a LabelRedefinition
// report: the token where the label was first defined, so a reporter can
// point the reader back at the original definition site.
type LabelRedefinitionPayload struct {
	FirstDefinition token.Token
}

// Reporter receives reports as they are raised. The default renderer
// prints to any writer with a WriteString method; test code installs a
// no-op sink.
type Reporter interface {
	Report(r Report)
}

// NopReporter discards every report; used when config.ParserOptions sets
// ErrorReporting to false, or by tests that only inspect a Result.
type NopReporter struct{}

// Report implements Reporter by doing nothing.
func (NopReporter) Report(Report) {}

// ConsoleReporter renders reports to a writer in the format:
//
//	severity[Ecode]: name
//	  --> file:line:col
//	 line | <text with underline>
//	  <caret> <message>
type ConsoleReporter struct {
	w      stringWriter
	Color  bool
	output []string // accumulated rendered reports, for inspection in tests
}

type stringWriter interface {
	WriteString(s string) (int, error)
}

// NewConsoleReporter builds a ConsoleReporter writing to w.
func NewConsoleReporter(w stringWriter) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// Report renders one diagnostic and writes it to the underlying writer.
func (c *ConsoleReporter) Report(r Report) {
	var sb strings.Builder
	pos := r.Token.Position()

	sb.WriteString(fmt.Sprintf("%s[E%04d]: %s\n", r.Severity, int(r.Code), r.Code))
	sb.WriteString(fmt.Sprintf("  --> %s\n", pos))
	if pos.LineText != "" {
		sb.WriteString(fmt.Sprintf(" %d | %s\n", pos.Line, pos.LineText))
		caretCol := pos.Column - 1
		if caretCol < 0 {
			caretCol = 0
		}
		width := r.Token.Length
		if width < 1 {
			width = 1
		}
		sb.WriteString(strings.Repeat(" ", len(fmt.Sprintf(" %d | ", pos.Line))+caretCol))
		sb.WriteString(strings.Repeat("^", width))
		sb.WriteString(" ")
	} else {
		sb.WriteString("  ")
	}
	sb.WriteString(r.Message)
	sb.WriteString("\n")

	c.output = append(c.output, sb.String())
	_, _ = c.w.WriteString(sb.String())
}

// Output returns every report rendered so far, in order.
func (c *ConsoleReporter) Output() []string { return c.output }
