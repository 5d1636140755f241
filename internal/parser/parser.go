// Package parser turns Glass source text into a map of unlinked classes.
//
// The grammar is character-driven in the style of the original reference
// parser (original_source/src/parse.cpp): a single byte read from the
// lexreader.Reader decides which production applies, with no tokenizer
// pass in between. Two extensions beyond the historical grammar are
// gated behind Pedantic: inheritance headers on a class (one or more
// parent names between the class name and its first method) and
// top-level include strings.
package parser

import (
	"path/filepath"
	"regexp"
	"strconv"

	"glass/internal/diag"
	"glass/internal/ir"
	"glass/internal/lexreader"
)

// Parser parses Glass source, following include directives, into a flat
// map of class name to *ir.Class. It does not link inheritance; that is
// internal/linker's job.
type Parser struct {
	Pedantic bool
}

func New(pedantic bool) *Parser {
	return &Parser{Pedantic: pedantic}
}

// Parse reads path and every file it includes (transitively), returning
// the union of all classes defined across them.
func (p *Parser) Parse(path string) (map[string]*ir.Class, error) {
	classes := make(map[string]*ir.Class)
	visited := make(map[string]bool)
	if err := p.parseFile(path, classes, visited); err != nil {
		return nil, err
	}
	return classes, nil
}

func (p *Parser) parseFile(path string, classes map[string]*ir.Class, visited map[string]bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if visited[abs] {
		return nil
	}
	visited[abs] = true

	r, err := lexreader.New(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)

	for {
		b, ok, err := skipSpace(r)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch {
		case b == '{':
			class, err := p.parseClass(r)
			if err != nil {
				return err
			}
			if existing, dup := classes[class.Name]; dup {
				_ = existing
				return diag.NewParseError(r.Pos(), "class %s is defined more than once", class.Name)
			}
			classes[class.Name] = class
		case b == '"':
			if p.Pedantic {
				return diag.NewParseError(r.Pos(), "include strings are a non-standard extension, rejected in pedantic mode")
			}
			path, err := p.parseQuotedString(r)
			if err != nil {
				return err
			}
			incPath := filepath.Join(dir, string(path))
			if err := p.parseFile(incPath, classes, visited); err != nil {
				return err
			}
		default:
			return diag.NewParseError(r.Pos(), "unexpected character %q outside a class definition", b)
		}
	}
}

func (p *Parser) parseClass(r *lexreader.Reader) (*ir.Class, error) {
	name, err := p.parseName(r)
	if err != nil {
		return nil, err
	}
	if name[0] < 'A' || name[0] > 'Z' {
		return nil, diag.NewParseError(r.Pos(), "class name %q must begin with an uppercase letter", name)
	}
	class := ir.NewClass(name)

	// Phase 1: optional parent headers (non-standard extension).
	for {
		b, ok, err := skipSpace(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, diag.NewParseError(r.Pos(), "unexpected end of file while parsing class %s", name)
		}
		if b == '[' || b == '}' {
			r.Pushback(b)
			break
		}
		if p.Pedantic {
			return nil, diag.NewParseError(r.Pos(), "inheritance headers are a non-standard extension, rejected in pedantic mode")
		}
		if !isNameStart(b) {
			return nil, diag.NewParseError(r.Pos(), "unexpected character %q while parsing parents of class %s", b, name)
		}
		parent, err := p.parseNameStartingWith(r, b)
		if err != nil {
			return nil, err
		}
		if parent[0] < 'A' || parent[0] > 'Z' {
			return nil, diag.NewParseError(r.Pos(), "parent name %q must begin with an uppercase letter", parent)
		}
		for _, existing := range class.Parents {
			if existing == parent {
				return nil, diag.NewParseError(r.Pos(), "class %s declares parent %s more than once", name, parent)
			}
		}
		class.Parents = append(class.Parents, parent)
	}

	// Phase 2: methods.
	for {
		b, ok, err := skipSpace(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, diag.NewParseError(r.Pos(), "unexpected end of file while parsing class %s", name)
		}
		if b == '}' {
			return class, nil
		}
		if b != '[' {
			return nil, diag.NewParseError(r.Pos(), "unexpected character %q while parsing class %s, expected a method or '}'", b, name)
		}
		method, err := p.parseMethod(r)
		if err != nil {
			return nil, err
		}
		if _, dup := class.Methods[method.Name]; dup {
			return nil, diag.NewParseError(r.Pos(), "method %s is defined more than once in class %s", method.Name, name)
		}
		class.Methods[method.Name] = method
	}
}

func (p *Parser) parseMethod(r *lexreader.Reader) (*ir.Method, error) {
	name, err := p.parseName(r)
	if err != nil {
		return nil, err
	}
	if !ir.IsConstructor(name) && (name[0] < 'a' || name[0] > 'z') {
		return nil, diag.NewParseError(r.Pos(), "method name %q must begin with a lowercase letter", name)
	}
	instrs, err := p.parseCommands(r, ']')
	if err != nil {
		return nil, err
	}
	if err := resolveLoopJumps(instrs); err != nil {
		return nil, err
	}
	return &ir.Method{Name: name, Instrs: instrs}, nil
}

// resolveLoopJumps backpatches each LoopBegin/LoopEnd pair's Index to
// point at its partner's absolute position in the flat instruction
// slice, the way stmt_compiler.go backpatches byte offsets once a
// jump's target is known, adapted here to instruction indices. Loops
// parse independently of their final position (each '/' handler
// builds its begin/body/end triple against a zero-based local slice
// before it is spliced into the enclosing one), so positions can only
// be resolved once the whole method body is flat.
func resolveLoopJumps(instrs []ir.Instruction) error {
	var stack []int
	for i := range instrs {
		switch instrs[i].Op {
		case ir.OpLoopBegin:
			stack = append(stack, i)
		case ir.OpLoopEnd:
			if len(stack) == 0 {
				return diag.NewParseError(instrs[i].Pos, "unmatched loop end")
			}
			begin := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			instrs[begin].Index = i
			instrs[i].Index = begin
		}
	}
	if len(stack) != 0 {
		return diag.NewParseError(instrs[stack[0]].Pos, "unmatched loop start")
	}
	return nil
}

// parseCommands reads Command* until it sees end, which it consumes.
func (p *Parser) parseCommands(r *lexreader.Reader, end byte) ([]ir.Instruction, error) {
	var instrs []ir.Instruction
	for {
		pos := r.Pos()
		b, ok, err := next(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, diag.NewParseError(pos, "unexpected end of file, expected %q", end)
		}
		if b == end {
			return instrs, nil
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case ',':
			instrs = append(instrs, ir.Instruction{Op: ir.OpPopStack, Pos: pos})
		case '^':
			instrs = append(instrs, ir.Instruction{Op: ir.OpReturn, Pos: pos})
		case '$':
			instrs = append(instrs, ir.Instruction{Op: ir.OpAssignSelf, Pos: pos})
		case '=':
			instrs = append(instrs, ir.Instruction{Op: ir.OpAssignValue, Pos: pos})
		case '!':
			instrs = append(instrs, ir.Instruction{Op: ir.OpAssignClass, Pos: pos})
		case '.':
			instrs = append(instrs, ir.Instruction{Op: ir.OpGetFunction, Pos: pos})
		case '?':
			instrs = append(instrs, ir.Instruction{Op: ir.OpExecuteFunc, Pos: pos})
		case '*':
			instrs = append(instrs, ir.Instruction{Op: ir.OpGetValue, Pos: pos})
		case '<':
			n, err := p.parseNumberUntil(r, '>')
			if err != nil {
				return nil, err
			}
			instrs = append(instrs, ir.Instruction{Op: ir.OpPushNumber, Pos: pos, Num: n})
		case '"':
			s, err := p.parseQuotedString(r)
			if err != nil {
				return nil, err
			}
			instrs = append(instrs, ir.Instruction{Op: ir.OpPushString, Pos: pos, Str: s})
		case '/':
			loopInstrs, err := p.parseLoop(r, pos)
			if err != nil {
				return nil, err
			}
			instrs = append(instrs, loopInstrs...)
		case '(':
			peek, ok, err := next(r)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, diag.NewParseError(r.Pos(), "unexpected end of file while parsing a parenthesized name or number")
			}
			if isDigit(peek) {
				r.Pushback(peek)
				n, err := p.parseNumberUntil(r, ')')
				if err != nil {
					return nil, err
				}
				instrs = append(instrs, ir.Instruction{Op: ir.OpDupElement, Pos: pos, Index: int(n)})
			} else {
				r.Pushback(peek)
				name, err := p.parseNameStartingWith(r, '(')
				if err != nil {
					return nil, err
				}
				instrs = append(instrs, nameInstruction(pos, name))
			}
		default:
			switch {
			case isDigit(b):
				instrs = append(instrs, ir.Instruction{Op: ir.OpDupElement, Pos: pos, Index: int(b - '0')})
			case isLetter(b):
				instrs = append(instrs, nameInstruction(pos, string(b)))
			default:
				return nil, diag.NewParseError(pos, "unexpected character %q in method body", b)
			}
		}
	}
}

func nameInstruction(pos diag.Position, name string) ir.Instruction {
	v := ir.Name(name)
	return ir.Instruction{Op: ir.OpPushName, Pos: pos, Name: v.Name, Scope: v.Scope}
}

// parseLoop parses NameRef Command* '\' after the opening '/' has been
// consumed, and lowers it to a LoopBegin/LoopEnd pair. Indices are left
// unresolved here; resolveLoopJumps fixes them up once the full method
// body is flat.
func (p *Parser) parseLoop(r *lexreader.Reader, start diag.Position) ([]ir.Instruction, error) {
	name, err := p.parseName(r)
	if err != nil {
		return nil, err
	}
	v := ir.Name(name)
	body, err := p.parseCommands(r, '\\')
	if err != nil {
		return nil, err
	}
	begin := ir.Instruction{Op: ir.OpLoopBegin, Pos: start, Name: v.Name, Scope: v.Scope}
	end := ir.Instruction{Op: ir.OpLoopEnd, Pos: start, Name: v.Name, Scope: v.Scope}
	out := make([]ir.Instruction, 0, len(body)+2)
	out = append(out, begin)
	out = append(out, body...)
	out = append(out, end)
	return out, nil
}

var numberRe = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

func (p *Parser) parseNumberUntil(r *lexreader.Reader, end byte) (float64, error) {
	start := r.Pos()
	var buf []byte
	for {
		b, ok, err := next(r)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, diag.NewParseError(start, "unexpected end of file while parsing a number")
		}
		if b == end {
			break
		}
		buf = append(buf, b)
	}
	s := string(buf)
	if !numberRe.MatchString(s) {
		return 0, diag.NewParseError(start, "%q is not a valid number literal", s)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, diag.NewParseError(start, "%q is not a valid number literal", s)
	}
	return n, nil
}

func (p *Parser) parseQuotedString(r *lexreader.Reader) ([]byte, error) {
	start := r.Pos()
	var buf []byte
	for {
		b, ok, err := next(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, diag.NewParseError(start, "unterminated string literal")
		}
		if b == '"' {
			return buf, nil
		}
		if b == '\\' {
			esc, ok, err := next(r)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, diag.NewParseError(start, "unterminated escape sequence in string literal")
			}
			buf = append(buf, unescape(esc))
			continue
		}
		buf = append(buf, b)
	}
}

func unescape(b byte) byte {
	switch b {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'e':
		return 0x1b
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	case '"':
		return '"'
	case '\\':
		return '\\'
	default:
		return b
	}
}

// parseName parses one Name token: either a single letter, or a
// parenthesized run of letters, digits and underscores whose first
// character is not a digit.
func (p *Parser) parseName(r *lexreader.Reader) (string, error) {
	pos := r.Pos()
	b, ok, err := next(r)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", diag.NewParseError(pos, "unexpected end of file, expected a name")
	}
	return p.parseNameStartingWith(r, b)
}

func (p *Parser) parseNameStartingWith(r *lexreader.Reader, b byte) (string, error) {
	pos := r.Pos()
	if b == '(' {
		var buf []byte
		for {
			c, ok, err := next(r)
			if err != nil {
				return "", err
			}
			if !ok {
				return "", diag.NewParseError(pos, "unexpected end of file while parsing a name")
			}
			if c == ')' {
				break
			}
			if len(buf) == 0 && isDigit(c) {
				return "", diag.NewParseError(pos, "a name may not start with a digit")
			}
			if !isLetter(c) && !isDigit(c) && c != '_' {
				return "", diag.NewParseError(pos, "unexpected character %q while parsing a name", c)
			}
			buf = append(buf, c)
		}
		if len(buf) == 0 {
			return "", diag.NewParseError(pos, "a name cannot be zero-length")
		}
		return string(buf), nil
	}
	if isLetter(b) {
		return string(b), nil
	}
	return "", diag.NewParseError(pos, "%q is not a valid name", b)
}

func isNameStart(b byte) bool { return isLetter(b) || b == '(' }
func isLetter(b byte) bool    { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isDigit(b byte) bool     { return b >= '0' && b <= '9' }

// next wraps Reader.Next, surfacing an unterminated-comment error
// (reported lazily, only once Next actually reaches the failing
// apostrophe) as a regular returned error instead of a silent false ok.
func next(r *lexreader.Reader) (byte, bool, error) {
	b, ok := r.Next()
	if !ok {
		if err := r.CommentErr(); err != nil {
			return 0, false, err
		}
	}
	return b, ok, nil
}

// skipSpace advances past whitespace and returns the next significant
// byte already consumed, or ok=false at end of file. Callers that need
// to hand the byte back to a later call (to switch parsing phases)
// must Pushback it themselves.
func skipSpace(r *lexreader.Reader) (byte, bool, error) {
	for {
		b, ok, err := next(r)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, nil
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return b, true, nil
		}
	}
}
