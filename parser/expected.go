package parser

import (
	"sort"
	"strings"

	"github.com/Deji69/cl-toolchain/token"
	"github.com/Deji69/cl-toolchain/vocab"
)

// Expected is a small closed set of token.Type values a parser state is
// willing to see next; it drives both the ExpectedToken diagnostic's
// payload and the state machine's recovery behaviour.
type Expected map[token.Type]struct{}

func newExpected(types ...token.Type) Expected {
	e := make(Expected, len(types))
	for _, t := range types {
		e[t] = struct{}{}
	}
	return e
}

// Has reports whether t is one of the expected types.
func (e Expected) Has(t token.Type) bool {
	_, ok := e[t]
	return ok
}

// Names returns the expected type names, sorted, for diagnostic messages.
func (e Expected) Names() []string {
	out := make([]string, 0, len(e))
	for t := range e {
		out = append(out, t.String())
	}
	sort.Strings(out)
	return out
}

// defaultExpected is the set of token types legally allowed to begin a new
// line in each segment. Header and Code both additionally accept Keyword:
// global/extern/import/include are spelled as plain identifiers and only
// become Keyword tokens once classified, so a line beginning with one of
// them must be in the expectation set or it could never pass the
// start-of-line check.
var defaultExpected = map[vocab.Segment]Expected{
	vocab.SegHeader: newExpected(token.EndOfFile, token.EndOfLine, token.Identifier, token.Segment, token.Keyword),
	vocab.SegCode:   newExpected(token.EndOfFile, token.EndOfLine, token.Identifier, token.Label, token.Segment, token.Keyword, token.Mnemonic, token.Instruction),
	vocab.SegData:   newExpected(token.EndOfFile, token.EndOfLine, token.Label, token.Segment),
}

func expectedString(e Expected) string {
	return strings.Join(e.Names(), ", ")
}
