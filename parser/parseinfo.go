// Package parser implements CLASM's line-assembler state machine, mnemonic
// resolver, and label table. It consumes the lexer's classified token
// stream and produces per-segment token streams ready for the emitter.
package parser

import (
	"github.com/Deji69/cl-toolchain/diag"
	"github.com/Deji69/cl-toolchain/token"
	"github.com/Deji69/cl-toolchain/vocab"
)

// Label is a named source location, resolved to a 32-bit output offset at
// emission time.
type Label struct {
	Name          string
	DefiningToken token.Token
	Segment       vocab.Segment
	Offset        uint32
}

// pendingRef locates one token, by position in its segment's token
// stream, that referenced a label before the label was defined. Patching
// happens in place in Segments so the mutation is visible wherever the
// token is later read from (the stream itself).
type pendingRef struct {
	segment vocab.Segment
	index   int
}

// ParseInfo holds everything the parser produces for one source unit: the
// per-segment token streams, the label store, and the bookkeeping needed
// to patch forward references as labels are defined.
//
// Labels are owned by ParseInfo in an insertion-only slice; tokens
// reference them by stable integer index (LabelIndex in their
// Annotation), so later insertions never invalidate a handle already
// handed out.
type ParseInfo struct {
	Segments map[vocab.Segment][]token.Token

	labels        []*Label
	labelIndex    map[string]int
	pending       []pendingRef
	pendingByName map[string][]int
}

// NewParseInfo creates an empty ParseInfo with all four segment streams
// initialised.
func NewParseInfo() *ParseInfo {
	return &ParseInfo{
		Segments: map[vocab.Segment][]token.Token{
			vocab.SegHeader: {},
			vocab.SegCode:   {},
			vocab.SegData:   {},
			vocab.SegString: {},
		},
		labelIndex:    map[string]int{},
		pendingByName: map[string][]int{},
	}
}

// Emit appends tok to segment's token stream and returns its index there,
// for later in-place patching by Reference/Define.
func (pi *ParseInfo) Emit(segment vocab.Segment, tok token.Token) int {
	pi.Segments[segment] = append(pi.Segments[segment], tok)
	return len(pi.Segments[segment]) - 1
}

// Labels returns every label in insertion order.
func (pi *ParseInfo) Labels() []*Label { return pi.labels }

// Label returns the label at the given stable handle.
func (pi *ParseInfo) Label(handle int) *Label {
	if handle < 0 || handle >= len(pi.labels) {
		return nil
	}
	return pi.labels[handle]
}

// Define defines name in segment at the defining token def. If name
// already has a label, the existing label is returned with defined=false
// (the caller should raise LabelRedefinition); otherwise a new Label is
// allocated with def as its defining token, its handle is returned for the
// caller to stamp onto the token it emits, and every pending reference to
// name is resolved in place (rewritten from an Identifier string
// annotation to a LabelRef annotation).
func (pi *ParseInfo) Define(name string, def token.Token, segment vocab.Segment) (handle int, lbl *Label, defined bool) {
	if idx, ok := pi.labelIndex[name]; ok {
		return idx, pi.labels[idx], false
	}

	lbl = &Label{Name: name, DefiningToken: def, Segment: segment}
	pi.labels = append(pi.labels, lbl)
	handle = len(pi.labels) - 1
	pi.labelIndex[name] = handle

	for _, pendIdx := range pi.pendingByName[name] {
		p := pi.pending[pendIdx]
		tok := &pi.Segments[p.segment][p.index]
		tok.Type = token.LabelRef
		tok.Annotation = token.Annotation{Kind: token.AnnotationLabelRef, LabelIndex: handle}
	}
	delete(pi.pendingByName, name)

	return handle, lbl, true
}

// Reference reclassifies the token at Segments[segment][index] (whose text
// names a label) to a LabelRef, resolving it immediately if the label is
// already known, or recording it as a forward reference to be patched in
// place by a later Define.
func (pi *ParseInfo) Reference(segment vocab.Segment, index int) {
	tok := &pi.Segments[segment][index]
	name := tok.Text()
	tok.Type = token.LabelRef
	if idx, ok := pi.labelIndex[name]; ok {
		tok.Annotation = token.Annotation{Kind: token.AnnotationLabelRef, LabelIndex: idx}
		return
	}
	pi.pending = append(pi.pending, pendingRef{segment: segment, index: index})
	pi.pendingByName[name] = append(pi.pendingByName[name], len(pi.pending)-1)
}

// UnresolvedAtEOF returns every still-unresolved forward reference, for
// the end-of-input UnresolvedLabelReference check.
func (pi *ParseInfo) UnresolvedAtEOF() []token.Token {
	out := make([]token.Token, 0, len(pi.pending))
	for _, p := range pi.pending {
		tok := pi.Segments[p.segment][p.index]
		if tok.Annotation.Kind != token.AnnotationLabelRef {
			out = append(out, tok)
		}
	}
	return out
}

// Result is the outcome of parsing one source unit.
type Result struct {
	Info        *ParseInfo
	Reports     []diag.Report
	NumWarnings int
	NumErrors   int
	HadFatal    bool
}

// OK reports whether parsing produced no errors.
func (r *Result) OK() bool { return r.NumErrors == 0 }
