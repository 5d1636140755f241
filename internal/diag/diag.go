// Package diag formats and carries the single diagnostic Glass ever prints.
package diag

import "fmt"

// Stage identifies which pipeline phase raised the error.
type Stage string

const (
	ParseError   Stage = "parse error"
	LinkError    Stage = "link error"
	RuntimeError Stage = "runtime error"
)

// Position is a point in a source file.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// GlassError is the one error type every Glass failure surfaces as.
type GlassError struct {
	Stage   Stage
	Pos     Position
	Message string
}

func (e *GlassError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.File, e.Pos.Line, e.Pos.Column, e.Message)
}

func NewParseError(pos Position, format string, args ...interface{}) *GlassError {
	return &GlassError{Stage: ParseError, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func NewLinkError(pos Position, format string, args ...interface{}) *GlassError {
	return &GlassError{Stage: LinkError, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func NewRuntimeError(pos Position, format string, args ...interface{}) *GlassError {
	return &GlassError{Stage: RuntimeError, Pos: pos, Message: fmt.Sprintf(format, args...)}
}
