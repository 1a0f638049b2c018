package ir

import "fmt"

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode identifies one instruction of the register/accumulator machine.
type Opcode uint16

// Accumulator and register moves
const (
	OpNop      Opcode = 0x00 // no operation
	OpLabel    Opcode = 0x01 // pseudo instruction marking a bound label
	OpLda      Opcode = 0x02 // acc = reg
	OpSta      Opcode = 0x03 // reg = acc
	OpLdai     Opcode = 0x04 // acc = integer immediate
	OpFldai    Opcode = 0x05 // acc = float immediate
	OpLdaStr   Opcode = 0x06 // acc = string
	OpLdBigInt Opcode = 0x07 // acc = bigint parsed from decimal text
	OpMov      Opcode = 0x08 // dst = src
)

// Canonical values
const (
	OpLdUndefined  Opcode = 0x10
	OpLdNull       Opcode = 0x11
	OpLdHole       Opcode = 0x12
	OpLdTrue       Opcode = 0x13
	OpLdFalse      Opcode = 0x14
	OpLdGlobal     Opcode = 0x15
	OpLdLexEnv     Opcode = 0x16
	OpLdFunction   Opcode = 0x17
	OpLdNewTarget  Opcode = 0x18
	OpLdThis       Opcode = 0x19
	OpLdHomeObject Opcode = 0x1A
)

// Control flow
const (
	OpJmp             Opcode = 0x20 // unconditional jump
	OpJeqz            Opcode = 0x21 // jump if acc is falsy
	OpReturn          Opcode = 0x22 // return acc
	OpReturnUndefined Opcode = 0x23 // return undefined
	OpDebugger        Opcode = 0x24 // debugger statement
	OpIsTrue          Opcode = 0x25 // acc = (acc is truthy)
	OpIsFalse         Opcode = 0x26 // acc = (acc is falsy)
)

// Binary operators: acc = lhs OP acc
const (
	OpAdd2        Opcode = 0x30
	OpSub2        Opcode = 0x31
	OpMul2        Opcode = 0x32
	OpDiv2        Opcode = 0x33
	OpMod2        Opcode = 0x34
	OpExp         Opcode = 0x35
	OpShl2        Opcode = 0x36
	OpShr2        Opcode = 0x37
	OpAshr2       Opcode = 0x38
	OpAnd2        Opcode = 0x39
	OpOr2         Opcode = 0x3A
	OpXor2        Opcode = 0x3B
	OpLess        Opcode = 0x3C
	OpGreater     Opcode = 0x3D
	OpLessEq      Opcode = 0x3E
	OpGreaterEq   Opcode = 0x3F
	OpEq          Opcode = 0x40
	OpNotEq       Opcode = 0x41
	OpStrictEq    Opcode = 0x42
	OpStrictNotEq Opcode = 0x43
	OpIsIn        Opcode = 0x44
	OpInstanceOf  Opcode = 0x45
)

// Unary operators
const (
	OpToNumber  Opcode = 0x50
	OpToNumeric Opcode = 0x51
	OpNeg       Opcode = 0x52
	OpNot       Opcode = 0x53 // bitwise complement
	OpInc       Opcode = 0x54
	OpDec       Opcode = 0x55
	OpTypeOf    Opcode = 0x56
)

// Property access
const (
	OpLdObjByName             Opcode = 0x60
	OpStObjByName             Opcode = 0x61
	OpLdObjByIndex            Opcode = 0x62
	OpStObjByIndex            Opcode = 0x63
	OpLdObjByValue            Opcode = 0x64
	OpStObjByValue            Opcode = 0x65
	OpStOwnByName             Opcode = 0x66
	OpStOwnByNameWithNameSet  Opcode = 0x67
	OpStOwnByIndex            Opcode = 0x68
	OpStOwnByValue            Opcode = 0x69
	OpStOwnByValueWithNameSet Opcode = 0x6A
	OpLdSuperByName           Opcode = 0x6B
	OpStSuperByName           Opcode = 0x6C
	OpLdSuperByValue          Opcode = 0x6D
	OpStSuperByValue          Opcode = 0x6E
	OpDelObjProp              Opcode = 0x6F
)

// Global record
const (
	OpTryLdGlobalByName     Opcode = 0x70
	OpTryStGlobalByName     Opcode = 0x71
	OpLdGlobalVar           Opcode = 0x72
	OpStGlobalVar           Opcode = 0x73
	OpStLetToGlobalRecord   Opcode = 0x74
	OpStConstToGlobalRecord Opcode = 0x75
	OpStClassToGlobalRecord Opcode = 0x76
)

// Lexical environments and modules
const (
	OpNewLexEnv              Opcode = 0x80
	OpNewLexEnvWithScopeInfo Opcode = 0x81
	OpPopLexEnv              Opcode = 0x82
	OpLdLexVar               Opcode = 0x83
	OpStLexVar               Opcode = 0x84
	OpLdModuleVar            Opcode = 0x85
	OpStModuleVar            Opcode = 0x86
	OpGetModuleNamespace     Opcode = 0x87
	OpDynamicImport          Opcode = 0x88
	OpStLexEnv               Opcode = 0x89
)

// Functions, classes and calls
const (
	OpDefineFunc               Opcode = 0x90
	OpDefineNCFunc             Opcode = 0x91
	OpDefineGeneratorFunc      Opcode = 0x92
	OpDefineAsyncFunc          Opcode = 0x93
	OpDefineAsyncGeneratorFunc Opcode = 0x94
	OpDefineMethod             Opcode = 0x95
	OpDefineClassWithBuffer    Opcode = 0x96
	OpCallArg0                 Opcode = 0x97
	OpCallArg1                 Opcode = 0x98
	OpCallArgs2                Opcode = 0x99
	OpCallArgs3                Opcode = 0x9A
	OpCallRange                Opcode = 0x9B
	OpCallThisRange            Opcode = 0x9C
	OpNewObjRange              Opcode = 0x9D
	OpCallSpread               Opcode = 0x9E
	OpNewObjSpread             Opcode = 0x9F
	OpSuperCall                Opcode = 0xA0
	OpSuperCallSpread          Opcode = 0xA1
	OpGetUnmappedArgs          Opcode = 0xA2
	OpCopyRestArgs             Opcode = 0xA3
)

// Object and array construction
const (
	OpCreateEmptyObject            Opcode = 0xB0
	OpCreateEmptyArray             Opcode = 0xB1
	OpCreateArrayWithBuffer        Opcode = 0xB2
	OpCreateObjectWithBuffer       Opcode = 0xB3
	OpCreateObjectHavingMethod     Opcode = 0xB4
	OpSetObjectWithProto           Opcode = 0xB5
	OpCopyDataProperties           Opcode = 0xB6
	OpCreateObjectWithExcludedKeys Opcode = 0xB7
	OpDefineGetterSetterByValue    Opcode = 0xB8
	OpStArraySpread                Opcode = 0xB9
	OpCreateRegExpWithLiteral      Opcode = 0xBA
	OpGetTemplateObject            Opcode = 0xBB
)

// Iteration
const (
	OpGetIterator     Opcode = 0xC0
	OpGetIteratorNext Opcode = 0xC1
	OpCloseIterator   Opcode = 0xC2
	OpGetPropIterator Opcode = 0xC3
	OpGetNextPropName Opcode = 0xC4
)

// Exceptions
const (
	OpThrow                      Opcode = 0xD0
	OpThrowThrowNotExists        Opcode = 0xD1
	OpThrowDeleteSuperProperty   Opcode = 0xD2
	OpThrowConstAssignment       Opcode = 0xD3
	OpThrowIfNotObject           Opcode = 0xD4
	OpThrowObjectNonCoercible    Opcode = 0xD5
	OpThrowUndefinedIfHole       Opcode = 0xD6
	OpThrowIfSuperNotCorrectCall Opcode = 0xD7
)

// Generators and async functions
const (
	OpCreateGeneratorObj         Opcode = 0xE0
	OpCreateAsyncGeneratorObj    Opcode = 0xE1
	OpCreateIterResultObj        Opcode = 0xE2
	OpSuspendGenerator           Opcode = 0xE3
	OpResumeGenerator            Opcode = 0xE4
	OpGetResumeMode              Opcode = 0xE5
	OpAsyncFunctionEnter         Opcode = 0xE6
	OpAsyncFunctionAwaitUncaught Opcode = 0xE7
	OpAsyncFunctionResolve       Opcode = 0xE8
	OpAsyncFunctionReject        Opcode = 0xE9
	OpAsyncGeneratorResolve      Opcode = 0xEA
	OpAsyncGeneratorReject       Opcode = 0xEB
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OpcodeInfo describes the mnemonic and operand shape of an opcode.
type OpcodeInfo struct {
	Name     string        // assembler mnemonic
	Operands []OperandKind // fixed operands, in order
	Variadic bool          // trailing register list follows the fixed operands
}

// Shorthands for the operand table.
var (
	shNone  = []OperandKind{}
	shR     = []OperandKind{KindReg}
	shRr    = []OperandKind{KindReg, KindReg}
	shRrr   = []OperandKind{KindReg, KindReg, KindReg}
	shRrrr  = []OperandKind{KindReg, KindReg, KindReg, KindReg}
	shStr   = []OperandKind{KindString}
	shImm   = []OperandKind{KindImm}
	shLbl   = []OperandKind{KindLabel}
	shBuf   = []OperandKind{KindBuffer}
	shRs    = []OperandKind{KindReg, KindString}
	shRi    = []OperandKind{KindReg, KindImm}
	shFn    = []OperandKind{KindString, KindReg, KindImm}
	shLvl   = []OperandKind{KindImm, KindImm}
	shCount = []OperandKind{KindImm}
)

var opcodeTable = map[Opcode]OpcodeInfo{
	OpNop:      {"nop", shNone, false},
	OpLabel:    {"label", shLbl, false},
	OpLda:      {"lda", shR, false},
	OpSta:      {"sta", shR, false},
	OpLdai:     {"ldai", shImm, false},
	OpFldai:    {"fldai", []OperandKind{KindFloat}, false},
	OpLdaStr:   {"lda.str", shStr, false},
	OpLdBigInt: {"ldbigint", shStr, false},
	OpMov:      {"mov", shRr, false},

	OpLdUndefined:  {"ldundefined", shNone, false},
	OpLdNull:       {"ldnull", shNone, false},
	OpLdHole:       {"ldhole", shNone, false},
	OpLdTrue:       {"ldtrue", shNone, false},
	OpLdFalse:      {"ldfalse", shNone, false},
	OpLdGlobal:     {"ldglobal", shNone, false},
	OpLdLexEnv:     {"ldlexenv", shNone, false},
	OpLdFunction:   {"ldfunction", shNone, false},
	OpLdNewTarget:  {"ldnewtarget", shNone, false},
	OpLdThis:       {"ldthis", shNone, false},
	OpLdHomeObject: {"ldhomeobject", shNone, false},

	OpJmp:             {"jmp", shLbl, false},
	OpJeqz:            {"jeqz", shLbl, false},
	OpReturn:          {"return", shNone, false},
	OpReturnUndefined: {"returnundefined", shNone, false},
	OpDebugger:        {"debugger", shNone, false},
	OpIsTrue:          {"istrue", shNone, false},
	OpIsFalse:         {"isfalse", shNone, false},

	OpAdd2:        {"add2", shR, false},
	OpSub2:        {"sub2", shR, false},
	OpMul2:        {"mul2", shR, false},
	OpDiv2:        {"div2", shR, false},
	OpMod2:        {"mod2", shR, false},
	OpExp:         {"exp", shR, false},
	OpShl2:        {"shl2", shR, false},
	OpShr2:        {"shr2", shR, false},
	OpAshr2:       {"ashr2", shR, false},
	OpAnd2:        {"and2", shR, false},
	OpOr2:         {"or2", shR, false},
	OpXor2:        {"xor2", shR, false},
	OpLess:        {"less", shR, false},
	OpGreater:     {"greater", shR, false},
	OpLessEq:      {"lesseq", shR, false},
	OpGreaterEq:   {"greatereq", shR, false},
	OpEq:          {"eq", shR, false},
	OpNotEq:       {"noteq", shR, false},
	OpStrictEq:    {"stricteq", shR, false},
	OpStrictNotEq: {"strictnoteq", shR, false},
	OpIsIn:        {"isin", shR, false},
	OpInstanceOf:  {"instanceof", shR, false},

	OpToNumber:  {"tonumber", shR, false},
	OpToNumeric: {"tonumeric", shR, false},
	OpNeg:       {"neg", shR, false},
	OpNot:       {"not", shR, false},
	OpInc:       {"inc", shR, false},
	OpDec:       {"dec", shR, false},
	OpTypeOf:    {"typeof", shNone, false},

	OpLdObjByName:             {"ldobjbyname", shRs, false},
	OpStObjByName:             {"stobjbyname", shRs, false},
	OpLdObjByIndex:            {"ldobjbyindex", shRi, false},
	OpStObjByIndex:            {"stobjbyindex", shRi, false},
	OpLdObjByValue:            {"ldobjbyvalue", shRr, false},
	OpStObjByValue:            {"stobjbyvalue", shRr, false},
	OpStOwnByName:             {"stownbyname", shRs, false},
	OpStOwnByNameWithNameSet:  {"stownbynamewithnameset", shRs, false},
	OpStOwnByIndex:            {"stownbyindex", shRi, false},
	OpStOwnByValue:            {"stownbyvalue", shRr, false},
	OpStOwnByValueWithNameSet: {"stownbyvaluewithnameset", shRr, false},
	OpLdSuperByName:           {"ldsuperbyname", shRs, false},
	OpStSuperByName:           {"stsuperbyname", shRs, false},
	OpLdSuperByValue:          {"ldsuperbyvalue", shRr, false},
	OpStSuperByValue:          {"stsuperbyvalue", shRr, false},
	OpDelObjProp:              {"delobjprop", shRr, false},

	OpTryLdGlobalByName:     {"tryldglobalbyname", shStr, false},
	OpTryStGlobalByName:     {"trystglobalbyname", shStr, false},
	OpLdGlobalVar:           {"ldglobalvar", shStr, false},
	OpStGlobalVar:           {"stglobalvar", shStr, false},
	OpStLetToGlobalRecord:   {"stlettoglobalrecord", shStr, false},
	OpStConstToGlobalRecord: {"stconsttoglobalrecord", shStr, false},
	OpStClassToGlobalRecord: {"stclasstoglobalrecord", shStr, false},

	OpNewLexEnv:              {"newlexenv", shCount, false},
	OpNewLexEnvWithScopeInfo: {"newlexenvwithscopeinfo", []OperandKind{KindImm, KindBuffer}, false},
	OpPopLexEnv:              {"poplexenv", shNone, false},
	OpStLexEnv:               {"stlexenv", shNone, false},
	OpLdLexVar:               {"ldlexvar", shLvl, false},
	OpStLexVar:               {"stlexvar", []OperandKind{KindImm, KindImm, KindReg}, false},
	OpLdModuleVar:            {"ldmodulevar", []OperandKind{KindString, KindImm}, false},
	OpStModuleVar:            {"stmodulevar", shStr, false},
	OpGetModuleNamespace:     {"getmodulenamespace", shStr, false},
	OpDynamicImport:          {"dynamicimport", shR, false},

	OpDefineFunc:               {"definefunc", shFn, false},
	OpDefineNCFunc:             {"definencfunc", shFn, false},
	OpDefineGeneratorFunc:      {"definegeneratorfunc", shFn, false},
	OpDefineAsyncFunc:          {"defineasyncfunc", shFn, false},
	OpDefineAsyncGeneratorFunc: {"defineasyncgeneratorfunc", shFn, false},
	OpDefineMethod:             {"definemethod", shFn, false},
	OpDefineClassWithBuffer:    {"defineclasswithbuffer", []OperandKind{KindString, KindBuffer, KindImm, KindReg, KindReg}, false},
	OpCallArg0:                 {"callarg0", shR, false},
	OpCallArg1:                 {"callarg1", shRr, false},
	OpCallArgs2:                {"callargs2", shRrr, false},
	OpCallArgs3:                {"callargs3", shRrrr, false},
	OpCallRange:                {"callrange", shCount, true},
	OpCallThisRange:            {"callthisrange", shCount, true},
	OpNewObjRange:              {"newobjrange", shCount, true},
	OpCallSpread:               {"callspread", shRrr, false},
	OpNewObjSpread:             {"newobjspread", shRr, false},
	OpSuperCall:                {"supercall", []OperandKind{KindImm, KindReg}, false},
	OpSuperCallSpread:          {"supercallspread", shR, false},
	OpGetUnmappedArgs:          {"getunmappedargs", shNone, false},
	OpCopyRestArgs:             {"copyrestargs", shImm, false},

	OpCreateEmptyObject:            {"createemptyobject", shNone, false},
	OpCreateEmptyArray:             {"createemptyarray", shNone, false},
	OpCreateArrayWithBuffer:        {"createarraywithbuffer", shBuf, false},
	OpCreateObjectWithBuffer:       {"createobjectwithbuffer", shBuf, false},
	OpCreateObjectHavingMethod:     {"createobjecthavingmethod", shBuf, false},
	OpSetObjectWithProto:           {"setobjectwithproto", shRr, false},
	OpCopyDataProperties:           {"copydataproperties", shRr, false},
	OpCreateObjectWithExcludedKeys: {"createobjectwithexcludedkeys", []OperandKind{KindImm, KindReg}, true},
	OpDefineGetterSetterByValue:    {"definegettersetterbyvalue", shRrrr, false},
	OpStArraySpread:                {"starrayspread", shRr, false},
	OpCreateRegExpWithLiteral:      {"createregexpwithliteral", []OperandKind{KindString, KindImm}, false},
	OpGetTemplateObject:            {"gettemplateobject", shR, false},

	OpGetIterator:     {"getiterator", shNone, false},
	OpGetIteratorNext: {"getiteratornext", shRr, false},
	OpCloseIterator:   {"closeiterator", shR, false},
	OpGetPropIterator: {"getpropiterator", shNone, false},
	OpGetNextPropName: {"getnextpropname", shR, false},

	OpThrow:                      {"throw", shNone, false},
	OpThrowThrowNotExists:        {"throwthrownotexists", shNone, false},
	OpThrowDeleteSuperProperty:   {"throwdeletesuperproperty", shNone, false},
	OpThrowConstAssignment:       {"throwconstassignment", shR, false},
	OpThrowIfNotObject:           {"throwifnotobject", shR, false},
	OpThrowObjectNonCoercible:    {"throwobjectnoncoercible", shNone, false},
	OpThrowUndefinedIfHole:       {"throwundefinedifhole", shRr, false},
	OpThrowIfSuperNotCorrectCall: {"throwifsupernotcorrectcall", shImm, false},

	OpCreateGeneratorObj:         {"creategeneratorobj", shR, false},
	OpCreateAsyncGeneratorObj:    {"createasyncgeneratorobj", shR, false},
	OpCreateIterResultObj:        {"createiterresultobj", shRr, false},
	OpSuspendGenerator:           {"suspendgenerator", shRr, false},
	OpResumeGenerator:            {"resumegenerator", shR, false},
	OpGetResumeMode:              {"getresumemode", shR, false},
	OpAsyncFunctionEnter:         {"asyncfunctionenter", shNone, false},
	OpAsyncFunctionAwaitUncaught: {"asyncfunctionawaituncaught", shRr, false},
	OpAsyncFunctionResolve:       {"asyncfunctionresolve", shRrr, false},
	OpAsyncFunctionReject:        {"asyncfunctionreject", shRrr, false},
	OpAsyncGeneratorResolve:      {"asyncgeneratorresolve", shRrr, false},
	OpAsyncGeneratorReject:       {"asyncgeneratorreject", shRr, false},
}

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN_%02X", uint16(op))}
}

// Name returns the assembler mnemonic.
func (op Opcode) Name() string {
	return op.Info().Name
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Name()
}

// Valid reports whether op has an entry in the opcode table.
func (op Opcode) Valid() bool {
	_, ok := opcodeTable[op]
	return ok
}

// IsJump reports whether the opcode transfers control to a label.
func (op Opcode) IsJump() bool {
	return op == OpJmp || op == OpJeqz
}

// AllOpcodes returns every defined opcode, in no particular order.
func AllOpcodes() []Opcode {
	ops := make([]Opcode, 0, len(opcodeTable))
	for op := range opcodeTable {
		ops = append(ops, op)
	}
	return ops
}
