// Package loader is the thin scoped-acquisition wrapper around
// internal/parser that cmd/glass calls directly: it owns nothing the
// parser doesn't already own (include-cycle de-duplication by absolute
// path lives in parser.Parser.parseFile) but adds I/O error context, per
// spec.md §5's "parser holds its file handle for the duration of a parse
// and releases it on every exit path" and the db47h-ngaro/vm/mem.go
// pattern of wrapping I/O failures with github.com/pkg/errors for
// context rather than returning a bare os.PathError up the stack.
package loader

import (
	"github.com/pkg/errors"

	"glass/internal/diag"
	"glass/internal/ir"
	"glass/internal/parser"
)

// LoadProgram parses path and every file it transitively includes,
// returning the flat union of classes they define. pedantic rejects the
// two non-standard extensions (inheritance headers, include strings) at
// parse time.
//
// A *diag.GlassError (a parse failure with its own file:line:col
// message) is returned as-is, since spec.md §7 requires exactly one
// diagnostic line; anything else (an open/stat failure below the
// parser, e.g. a missing include file) is wrapped with the failing path
// for context.
func LoadProgram(path string, pedantic bool) (map[string]*ir.Class, error) {
	classes, err := parser.New(pedantic).Parse(path)
	if err != nil {
		var glassErr *diag.GlassError
		if errors.As(err, &glassErr) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return classes, nil
}
