// Package minify re-serializes a parsed-but-unlinked class map back into
// Glass source text: the exact inverse of internal/parser's character
// dispatch table, run over a class map that has not yet been through
// internal/linker or internal/optimizer (spec.md §4.4: "the minifier and
// pretty-printer are forbidden from running after the optimizer has
// introduced fused opcodes").
package minify

import (
	"sort"
	"strconv"
	"strings"

	"glass/internal/ir"
)

// Options controls the renderer. Width wraps output at that many columns
// (0 disables wrapping), breaking only between tokens, never inside one.
// StripExtensions omits inheritance headers, giving the --convert
// behavior from the same renderer that backs --minify.
type Options struct {
	Width           int
	StripExtensions bool
}

// Minify renders classes to Glass source. Classes and their methods are
// emitted in sorted-name order for determinism; spec.md §8's round-trip
// property only requires equality up to reordering of methods within a
// class, so this ordering choice is free.
func Minify(classes map[string]*ir.Class, opts Options) []byte {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)

	var tokens []string
	for _, name := range names {
		tokens = append(tokens, tokenizeClass(classes[name], opts)...)
	}
	return wrap(tokens, opts.Width)
}

func tokenizeClass(class *ir.Class, opts Options) []string {
	tokens := []string{"{", renderName(class.Name)}
	if !opts.StripExtensions {
		for _, parent := range class.Parents {
			tokens = append(tokens, renderName(parent))
		}
	}

	methodNames := make([]string, 0, len(class.Methods))
	for name := range class.Methods {
		methodNames = append(methodNames, name)
	}
	sort.Strings(methodNames)

	for _, name := range methodNames {
		method := class.Methods[name]
		tokens = append(tokens, "[", renderName(name))
		tokens = append(tokens, tokenizeInstrs(method.Instrs)...)
		tokens = append(tokens, "]")
	}
	tokens = append(tokens, "}")
	return tokens
}

// tokenizeInstrs walks a flat instruction slice, folding each
// LoopBegin..LoopEnd run back into a single '/' Name Command* '\' span.
func tokenizeInstrs(instrs []ir.Instruction) []string {
	var tokens []string
	for i := 0; i < len(instrs); i++ {
		instr := instrs[i]
		switch instr.Op {
		case ir.OpLoopBegin:
			tokens = append(tokens, "/", renderName(instr.Name))
			tokens = append(tokens, tokenizeInstrs(instrs[i+1:instr.Index])...)
			tokens = append(tokens, "\\")
			i = instr.Index
		case ir.OpPushNumber:
			tokens = append(tokens, "<"+strconv.FormatFloat(instr.Num, 'g', -1, 64)+">")
		case ir.OpPushString:
			tokens = append(tokens, `"`+escapeString(instr.Str)+`"`)
		case ir.OpPushName:
			tokens = append(tokens, renderName(instr.Name))
		case ir.OpDupElement:
			tokens = append(tokens, renderDup(instr.Index))
		case ir.OpPopStack:
			tokens = append(tokens, ",")
		case ir.OpReturn:
			tokens = append(tokens, "^")
		case ir.OpAssignSelf:
			tokens = append(tokens, "$")
		case ir.OpAssignValue:
			tokens = append(tokens, "=")
		case ir.OpAssignClass:
			tokens = append(tokens, "!")
		case ir.OpGetFunction:
			tokens = append(tokens, ".")
		case ir.OpExecuteFunc:
			tokens = append(tokens, "?")
		case ir.OpGetValue:
			tokens = append(tokens, "*")
		case ir.OpNop:
			// only ever produced post-optimize; minify runs before that.
		default:
			// OpBuiltinFunction/OpFuncCall/OpNewInst/OpAssignTo: fused or
			// built-in opcodes never appear in parser output, which is the
			// only input this package is specified to accept.
		}
	}
	return tokens
}

func renderName(name string) string {
	if len(name) == 1 && isLetter(name[0]) {
		return name
	}
	return "(" + name + ")"
}

func renderDup(index int) string {
	if index >= 0 && index <= 9 {
		return string(rune('0' + index))
	}
	return "(" + strconv.Itoa(index) + ")"
}

func isLetter(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }

var escapes = map[byte]byte{
	'\a': 'a', '\b': 'b', 0x1b: 'e', '\f': 'f',
	'\n': 'n', '\r': 'r', '\t': 't', '\v': 'v',
	'"': '"', '\\': '\\',
}

func escapeString(s []byte) string {
	var b strings.Builder
	for _, c := range s {
		if esc, ok := escapes[c]; ok {
			b.WriteByte('\\')
			b.WriteByte(esc)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// wrap joins tokens with no separator, breaking only between tokens once
// the current line would exceed width columns. width <= 0 means no wrap.
func wrap(tokens []string, width int) []byte {
	var out strings.Builder
	lineLen := 0
	for _, tok := range tokens {
		if width > 0 && lineLen > 0 && lineLen+len(tok) > width {
			out.WriteByte('\n')
			lineLen = 0
		}
		out.WriteString(tok)
		lineLen += len(tok)
	}
	return []byte(out.String())
}
