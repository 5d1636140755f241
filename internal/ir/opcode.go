package ir

import "glass/internal/diag"

// Op is a single opcode in a method body (spec.md §4.2's IR table).
type Op int

const (
	OpPushName Op = iota
	OpPushNumber
	OpPushString
	OpDupElement
	OpPopStack
	OpReturn
	OpAssignSelf
	OpAssignValue
	OpAssignClass
	OpGetValue
	OpGetFunction
	OpExecuteFunc
	OpLoopBegin
	OpLoopEnd
	OpBuiltinFunction

	// Optimizer-fused opcodes (spec.md §4.4), only ever produced post-parse.
	OpFuncCall
	OpNewInst
	OpAssignTo

	OpNop
)

func (o Op) String() string {
	switch o {
	case OpPushName:
		return "PushName"
	case OpPushNumber:
		return "PushNumber"
	case OpPushString:
		return "PushString"
	case OpDupElement:
		return "DupElement"
	case OpPopStack:
		return "PopStack"
	case OpReturn:
		return "Return"
	case OpAssignSelf:
		return "AssignSelf"
	case OpAssignValue:
		return "AssignValue"
	case OpAssignClass:
		return "AssignClass"
	case OpGetValue:
		return "GetValue"
	case OpGetFunction:
		return "GetFunction"
	case OpExecuteFunc:
		return "ExecuteFunc"
	case OpLoopBegin:
		return "LoopBegin"
	case OpLoopEnd:
		return "LoopEnd"
	case OpBuiltinFunction:
		return "BuiltinFunction"
	case OpFuncCall:
		return "FuncCall"
	case OpNewInst:
		return "NewInst"
	case OpAssignTo:
		return "AssignTo"
	case OpNop:
		return "Nop"
	default:
		return "?"
	}
}

// BuiltinID names one of the 27 stack-effect operations on the five
// synthetic classes (spec.md §4.5).
type BuiltinID int

const (
	BuiltinInputLine BuiltinID = iota
	BuiltinInputChar
	BuiltinInputEof

	BuiltinMathAdd
	BuiltinMathSub
	BuiltinMathMul
	BuiltinMathDiv
	BuiltinMathMod
	BuiltinMathFloor
	BuiltinMathEqual
	BuiltinMathNotEqual
	BuiltinMathLess
	BuiltinMathLessEqual
	BuiltinMathGreater
	BuiltinMathGreaterEqual

	BuiltinOutputStr
	BuiltinOutputNumber

	BuiltinStrLength
	BuiltinStrIndex
	BuiltinStrReplace
	BuiltinStrConcat
	BuiltinStrSplit
	BuiltinStrEqual
	BuiltinStrNumToChar
	BuiltinStrCharToNum

	BuiltinVarNew
	BuiltinVarDelete
)

// BuiltinName is the dotted spelling used in source and diagnostics, e.g.
// "A.a".
func (b BuiltinID) BuiltinName() string {
	if name, ok := builtinNames[b]; ok {
		return name
	}
	return "?"
}

var builtinNames = map[BuiltinID]string{
	BuiltinInputLine: "I.l", BuiltinInputChar: "I.c", BuiltinInputEof: "I.e",
	BuiltinMathAdd: "A.a", BuiltinMathSub: "A.s", BuiltinMathMul: "A.m",
	BuiltinMathDiv: "A.d", BuiltinMathMod: "A.mod", BuiltinMathFloor: "A.f",
	BuiltinMathEqual: "A.e", BuiltinMathNotEqual: "A.ne", BuiltinMathLess: "A.lt",
	BuiltinMathLessEqual: "A.le", BuiltinMathGreater: "A.gt", BuiltinMathGreaterEqual: "A.ge",
	BuiltinOutputStr: "O.o", BuiltinOutputNumber: "O.on",
	BuiltinStrLength: "S.l", BuiltinStrIndex: "S.i", BuiltinStrReplace: "S.si",
	BuiltinStrConcat: "S.a", BuiltinStrSplit: "S.d", BuiltinStrEqual: "S.e",
	BuiltinStrNumToChar: "S.ns", BuiltinStrCharToNum: "S.sn",
	BuiltinVarNew: "V.n", BuiltinVarDelete: "V.d",
}

// BuiltinByName looks up a BuiltinID from its dotted class.method spelling.
// The second return is false if class.method doesn't name a built-in.
func BuiltinByName(class, method string) (BuiltinID, bool) {
	id, ok := builtinLookup[class+"."+method]
	return id, ok
}

// AllBuiltinIDs lists every built-in in declaration order, for callers
// (internal/builtins' synthetic class bootstrap) that need to enumerate
// the full catalog rather than look up one id at a time.
func AllBuiltinIDs() []BuiltinID {
	ids := make([]BuiltinID, 0, len(builtinNames))
	for id := BuiltinInputLine; id <= BuiltinVarDelete; id++ {
		if _, ok := builtinNames[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

var builtinLookup = func() map[string]BuiltinID {
	m := make(map[string]BuiltinID, len(builtinNames))
	for id, name := range builtinNames {
		m[name] = id
	}
	return m
}()

// Instruction is one opcode plus whichever operands it needs. Unused
// fields are zero; which fields matter is determined by Op.
type Instruction struct {
	Op  Op
	Pos diag.Position

	// PushName / AssignTo / LoopBegin / LoopEnd: Name + its precomputed Scope.
	Name  string
	Scope Scope

	// FuncCall(obj, method) / NewInst(var, class): a second name+scope pair.
	Name2  string
	Scope2 Scope

	Num     float64   // PushNumber
	Str     []byte    // PushString
	Index   int       // DupElement k, or LoopBegin/LoopEnd matching jump index
	Builtin BuiltinID // BuiltinFunction
}
