// Package vocab holds the closed vocabulary tables CLASM classifies
// identifiers against: keywords, segments, mnemonics, instructions and
// their operand shapes, data types, and the mnemonic-to-overload table the
// resolver searches narrowest-to-widest.
package vocab

import "fmt"

// Keyword is one of the closed directive-like keywords recognised anywhere
// in a source unit.
type Keyword int

const (
	KwGlobal Keyword = iota
	KwExtern
	KwImport
	KwInclude
)

var keywordNames = map[string]Keyword{
	"global":  KwGlobal,
	"extern":  KwExtern,
	"import":  KwImport,
	"include": KwInclude,
}

var keywordText = invertString(keywordNames)

// KeywordByName looks up a keyword by its exact source spelling.
func KeywordByName(name string) (Keyword, bool) {
	k, ok := keywordNames[name]
	return k, ok
}

func (k Keyword) String() string { return keywordText[k] }

// Segment identifies one of the two user-writable output sections, plus
// the implicit Header segment that precedes any directive and the reserved
// String segment used for deduplicated literals.
type Segment int

const (
	SegHeader Segment = iota // implicit, before any segment directive
	SegCode
	SegData
	SegString // reserved for deduplicated string literals
)

var segmentNames = map[string]Segment{
	"code": SegCode,
	"data": SegData,
}

var segmentText = map[Segment]string{
	SegHeader: "header",
	SegCode:   "code",
	SegData:   "data",
	SegString: "string",
}

// SegmentByName looks up a segment by the identifier following the '.' of
// a segment directive. Only user-writable segments are looked up this way;
// Header and String are never spelled in source.
func SegmentByName(name string) (Segment, bool) {
	s, ok := segmentNames[name]
	return s, ok
}

func (s Segment) String() string { return segmentText[s] }

// Mnemonic is one of the assembler shorthands that resolve to a concrete
// Instruction via overload matching.
type Mnemonic int

const (
	MnPush Mnemonic = iota
	MnPusha
	MnPop
	MnDup
	MnJmp
	MnCall
)

var mnemonicNames = map[string]Mnemonic{
	"push":  MnPush,
	"pusha": MnPusha,
	"pop":   MnPop,
	"dup":   MnDup,
	"jmp":   MnJmp,
	"call":  MnCall,
}

var mnemonicText = invertString(mnemonicNames)

// MnemonicByName looks up a mnemonic by its exact source spelling.
func MnemonicByName(name string) (Mnemonic, bool) {
	m, ok := mnemonicNames[name]
	return m, ok
}

func (m Mnemonic) String() string { return mnemonicText[m] }

// Instruction is a concrete opcode: a single output byte plus a fixed
// operand shape.
type Instruction int

const (
	Nop Instruction = iota
	Add
	Sub
	Mul
	DivMod
	And
	Or
	Xor
	Not
	Shl
	Shr
	CmpEq
	CmpLt
	CmpGt
	Swap
	Drop
	Halt
	Ret
	Dup
	Pop
	PushB
	PushW
	PushD
	PushQ
	PushF
	PushQF
	PushA
	JmpD
	CallD
)

// instructionNames lists every Instruction in opcode order: index i is the
// opcode byte for instructionNames[i].
var instructionNames = [...]string{
	"nop", "add", "sub", "mul", "divmod", "and", "or", "xor", "not", "shl",
	"shr", "cmpeq", "cmplt", "cmpgt", "swap", "drop", "halt", "ret",
	"dup", "pop", "pushb", "pushw", "pushd", "pushq", "pushf", "pushqf",
	"pusha", "jmpd", "calld",
}

var instructionIndex = func() map[string]Instruction {
	m := make(map[string]Instruction, len(instructionNames))
	for i, n := range instructionNames {
		m[n] = Instruction(i)
	}
	return m
}()

// InstructionByName looks up an instruction by its exact source spelling.
func InstructionByName(name string) (Instruction, bool) {
	i, ok := instructionIndex[name]
	return i, ok
}

func (i Instruction) String() string {
	if int(i) < 0 || int(i) >= len(instructionNames) {
		return fmt.Sprintf("Instruction(%d)", int(i))
	}
	return instructionNames[i]
}

// Opcode returns the single output byte for this instruction.
func (i Instruction) Opcode() byte { return byte(i) }

// OperandType is the static expectation a concrete instruction or mnemonic
// overload places on one operand token.
type OperandType int

const (
	IMM8 OperandType = iota
	IMM16
	IMM32
	IMM64
	FLOAT32
	FLOAT64
	LV8 // reserved: local variable index, 8-bit
	LV16
	LV32
	V16 // reserved: global variable index, 16-bit
	V32
	S32   // string index
	REL32 // 32-bit relative/label offset, always a label reference
)

var operandTypeNames = map[OperandType]string{
	IMM8: "IMM8", IMM16: "IMM16", IMM32: "IMM32", IMM64: "IMM64",
	FLOAT32: "FLOAT32", FLOAT64: "FLOAT64",
	LV8: "LV8", LV16: "LV16", LV32: "LV32", V16: "V16", V32: "V32",
	S32: "S32", REL32: "REL32",
}

func (o OperandType) String() string { return operandTypeNames[o] }

// OperandShapeEntry is one element of an operand shape: the operand type
// expected, and whether it repeats until the tail is exhausted. The
// resolver reads Variadic on a shape's last entry only; the flag on any
// earlier entry has no effect.
type OperandShapeEntry struct {
	Type     OperandType
	Variadic bool
}

// operandShapes maps each Instruction to its fixed operand shape.
var operandShapes = map[Instruction][]OperandShapeEntry{
	Nop:    {},
	Add:    {},
	Sub:    {},
	Mul:    {},
	DivMod: {},
	And:    {},
	Or:     {},
	Xor:    {},
	Not:    {},
	Shl:    {},
	Shr:    {},
	CmpEq:  {},
	CmpLt:  {},
	CmpGt:  {},
	Swap:   {},
	Drop:   {},
	Halt:   {},
	Ret:    {},
	Dup:    {},
	Pop:    {},
	PushB:  {{Type: IMM8}},
	PushW:  {{Type: IMM16}},
	PushD:  {{Type: IMM32}},
	PushQ:  {{Type: IMM64}},
	PushF:  {{Type: FLOAT32}},
	PushQF: {{Type: FLOAT64}},
	PushA:  {{Type: REL32}},
	JmpD:   {{Type: REL32}},
	CallD:  {{Type: REL32}},
}

// OperandShape returns the operand shape for instruction i.
func OperandShape(i Instruction) []OperandShapeEntry { return operandShapes[i] }

// InstructionOverload is one (opcode, operand_shape) row in a mnemonic's
// resolution table.
type InstructionOverload struct {
	Opcode   Instruction
	Operands []OperandShapeEntry
}

// mnemonicOverloads maps each Mnemonic to its overload list, ordered from
// narrowest operand to widest; the resolver picks the first that binds.
var mnemonicOverloads = map[Mnemonic][]InstructionOverload{
	MnPush: {
		{Opcode: PushB, Operands: []OperandShapeEntry{{Type: IMM8}}},
		{Opcode: PushW, Operands: []OperandShapeEntry{{Type: IMM16}}},
		{Opcode: PushD, Operands: []OperandShapeEntry{{Type: IMM32}}},
		{Opcode: PushQ, Operands: []OperandShapeEntry{{Type: IMM64}}},
		{Opcode: PushF, Operands: []OperandShapeEntry{{Type: FLOAT32}}},
		{Opcode: PushQF, Operands: []OperandShapeEntry{{Type: FLOAT64}}},
	},
	MnPusha: {
		{Opcode: PushA, Operands: []OperandShapeEntry{{Type: REL32}}},
	},
	MnPop: {
		{Opcode: Pop, Operands: []OperandShapeEntry{}},
	},
	MnDup: {
		{Opcode: Dup, Operands: []OperandShapeEntry{}},
	},
	MnJmp: {
		{Opcode: JmpD, Operands: []OperandShapeEntry{{Type: REL32}}},
	},
	MnCall: {
		{Opcode: CallD, Operands: []OperandShapeEntry{{Type: REL32}}},
	},
}

// Overloads returns the overload list for mnemonic m, narrowest first.
func Overloads(m Mnemonic) []InstructionOverload { return mnemonicOverloads[m] }

// DataType declares the element width of a Data-segment value list.
type DataType int

const (
	DTByte DataType = iota
	DTWord
	DTDword
	DTQword
	DTFloat
	DTDouble
	DTStr
)

var dataTypeNames = map[string]DataType{
	"byte":   DTByte,
	"word":   DTWord,
	"dword":  DTDword,
	"qword":  DTQword,
	"float":  DTFloat,
	"double": DTDouble,
	"str":    DTStr,
}

var dataTypeText = invertString(dataTypeNames)

// DataTypeByName looks up a data type by its exact source spelling.
func DataTypeByName(name string) (DataType, bool) {
	d, ok := dataTypeNames[name]
	return d, ok
}

func (d DataType) String() string { return dataTypeText[d] }

// ElementWidth returns the byte width of one element of data type d, or 0
// for DTStr, whose width is the encoded string's own length.
func (d DataType) ElementWidth() int {
	switch d {
	case DTByte:
		return 1
	case DTWord:
		return 2
	case DTDword, DTFloat:
		return 4
	case DTQword, DTDouble:
		return 8
	default:
		return 0
	}
}

func invertString[T comparable](m map[string]T) map[T]string {
	out := make(map[T]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
