package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.glass")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestParseArgsRejectsCompileWithMinify(t *testing.T) {
	_, err := parseArgs([]string{"--compile", "out.c", "--minify", "a.glass"})
	require.Error(t, err)
}

func TestParseArgsRejectsWidthWithoutMinifyOrConvert(t *testing.T) {
	_, err := parseArgs([]string{"--width", "40", "a.glass"})
	require.Error(t, err)
}

func TestParseArgsRejectsMultipleSources(t *testing.T) {
	_, err := parseArgs([]string{"a.glass", "b.glass"})
	require.Error(t, err)
}

func TestParseArgsRequiresSourceUnlessHelp(t *testing.T) {
	_, err := parseArgs([]string{"--no-opt"})
	require.Error(t, err)

	opts, err := parseArgs([]string{"--help"})
	require.NoError(t, err)
	require.True(t, opts.help)
}

func TestParseArgsAcceptsWellFormedFlags(t *testing.T) {
	opts, err := parseArgs([]string{"--pedantic", "--no-opt", "--width", "72", "--minify", "a.glass"})
	require.NoError(t, err)
	require.True(t, opts.pedantic)
	require.True(t, opts.noOpt)
	require.True(t, opts.minify)
	require.True(t, opts.hasWidth)
	require.Equal(t, 72, opts.width)
	require.Equal(t, "a.glass", opts.sourceArg)
}

func TestRunInterpretsHelloWorld(t *testing.T) {
	path := writeSource(t, `{M[m"hi"Oo.?]}`)
	code := captureStdout(t, func() int {
		return run(options{sourceArg: path})
	})
	require.Equal(t, 0, code.exit)
	require.Equal(t, "hi", code.out)
}

func TestRunMinifiesWithoutExecuting(t *testing.T) {
	path := writeSource(t, `{M[m"h\ti"Oo.?]}`)
	code := captureStdout(t, func() int {
		return run(options{sourceArg: path, minify: true})
	})
	require.Equal(t, 0, code.exit)
	require.NotContains(t, code.out, "h\ti")
	require.Contains(t, code.out, "{M[m")
}

func TestRunCompileStubExitsNonZero(t *testing.T) {
	path := writeSource(t, `{M[m]}`)
	code := captureStdout(t, func() int {
		return run(options{sourceArg: path, compile: "out.c"})
	})
	require.Equal(t, 1, code.exit)
}

func TestRunDumpDoesNotAffectStdoutOrExit(t *testing.T) {
	path := writeSource(t, `{M[m"hi"Oo.?]}`)
	code := captureStdout(t, func() int {
		return run(options{sourceArg: path, dump: true})
	})
	require.Equal(t, 0, code.exit)
	require.Equal(t, "hi", code.out)
}

func TestRunReportsParseError(t *testing.T) {
	path := writeSource(t, `{m[m]}`)
	code := captureStdout(t, func() int {
		return run(options{sourceArg: path})
	})
	require.Equal(t, 1, code.exit)
}

type captured struct {
	out  string
	exit int
}

// captureStdout redirects os.Stdout for the duration of fn, since run
// writes directly to it (mirrors the teacher's preference for small,
// directly-testable helpers around os.Exit rather than threading a
// Writer through the whole CLI for this one entry point).
func captureStdout(t *testing.T, fn func() int) captured {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	old := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = old }()

	exit := fn()
	require.NoError(t, w.Close())

	buf := make([]byte, 0, 4096)
	for {
		chunk := make([]byte, 4096)
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if err != nil {
			break
		}
	}
	return captured{out: string(buf), exit: exit}
}
