// Command glass is the Glass interpreter's CLI front-end: parse, link,
// optimize, and run a source file, or render it back to source via
// --minify/--convert. Argument parsing is hand-rolled rather than via
// the flag package, the same choice cmd/sentra/main.go makes for its own
// flag-like switches.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kr/pretty"

	"glass/internal/interp"
	"glass/internal/linker"
	"glass/internal/loader"
	"glass/internal/minify"
	"glass/internal/optimizer"
)

const usage = `Usage: glass [flags] <file>

Flags:
  --help              print this message and exit 0
  --minify            print a minified program to stdout and exit 0
  --convert           print a standards-compliant program to stdout and exit 0
  --pedantic          reject non-standard extensions at parse time
  --no-opt            skip the optimizer before interpretation
  --compile <file>    emit an ANSI-C translation instead of interpreting
  --width <n>         wrap minified/converted output to n columns (0 = no wrap)
  --dump              print the linked/optimized class map to stderr before running
`

type options struct {
	help      bool
	minify    bool
	convert   bool
	pedantic  bool
	noOpt     bool
	compile   string
	hasWidth  bool
	width     int
	dump      bool
	sourceArg string
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts.help {
		fmt.Print(usage)
		os.Exit(0)
	}
	os.Exit(run(opts))
}

func parseArgs(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--help":
			opts.help = true
		case "--minify":
			opts.minify = true
		case "--convert":
			opts.convert = true
		case "--pedantic":
			opts.pedantic = true
		case "--no-opt":
			opts.noOpt = true
		case "--dump":
			opts.dump = true
		case "--compile":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("--compile requires an output file argument")
			}
			opts.compile = args[i]
		case "--width":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("--width requires a column count argument")
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return opts, fmt.Errorf("--width: %q is not an integer", args[i])
			}
			opts.hasWidth = true
			opts.width = n
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return opts, fmt.Errorf("unrecognized flag %q", arg)
			}
			if opts.sourceArg != "" {
				return opts, fmt.Errorf("only one source file may be given")
			}
			opts.sourceArg = arg
		}
	}

	if opts.help {
		return opts, nil
	}
	if opts.compile != "" && (opts.minify || opts.convert) {
		return opts, fmt.Errorf("--compile is mutually exclusive with --minify/--convert")
	}
	if opts.hasWidth && !opts.minify && !opts.convert {
		return opts, fmt.Errorf("--width requires --minify or --convert")
	}
	if opts.sourceArg == "" {
		return opts, fmt.Errorf("no source file given\n\n" + usage)
	}
	return opts, nil
}

// run does the real work and returns the process exit code, keeping
// main itself a thin os.Exit wrapper (matches the teacher's preference
// for testable helpers over os.Exit calls scattered through command
// bodies).
func run(opts options) int {
	classes, err := loader.LoadProgram(opts.sourceArg, opts.pedantic)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if opts.minify || opts.convert {
		width := 0
		if opts.hasWidth {
			width = opts.width
		}
		out := minify.Minify(classes, minify.Options{Width: width, StripExtensions: opts.convert})
		os.Stdout.Write(out)
		if len(out) == 0 || out[len(out)-1] != '\n' {
			fmt.Println()
		}
		return 0
	}

	if opts.compile != "" {
		fmt.Fprintln(os.Stderr, "--compile: ANSI-C backend not implemented in this build")
		return 1
	}

	if err := linker.Link(classes); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !opts.noOpt {
		for _, class := range classes {
			for _, method := range class.Methods {
				optimizer.Optimize(method)
			}
		}
	}

	if opts.dump {
		fmt.Fprintf(os.Stderr, "%# v\n", pretty.Formatter(classes))
	}

	in, err := interp.New(classes, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := in.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
