// Command tiny compiles a TINY source file to TM assembly and runs it on the
// TM virtual machine, printing colorized diagnostics from every stage that
// ran.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	tiny "go.tinylang.dev/pkg"
	"go.tinylang.dev/pkg/tm"
)

var errorColor = color.New(color.FgRed)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: tiny <source.tiny>")
		os.Exit(1)
	}

	os.Exit(run(os.Args[1]))
}

func run(source string) int {
	compiler := tiny.NewCompiler()

	result, err := compiler.Compile(source)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	printed := printDiagnostics(result.Sink, 0)
	if result.Sink.HasErrors() {
		return 1
	}

	sink := result.Sink
	lexer := tm.NewLexer(result.Code, sink)
	toks := lexer.Run()

	assembler := tm.NewAssembler(toks, sink)
	instrs := assembler.Assemble()
	printed = printDiagnostics(sink, printed)
	if sink.VMError() {
		return 1
	}

	vm := tm.NewVM(instrs, sink, os.Stdin, os.Stdout)
	vm.Run()
	printDiagnostics(sink, printed)
	if sink.VMError() {
		return 1
	}

	return 0
}

// printDiagnostics prints every diagnostic past the already-printed count
// and returns the new total, so re-invoking it after a later stage doesn't
// reprint earlier stages' output.
func printDiagnostics(sink *tiny.Sink, from int) int {
	diags := sink.Diagnostics()
	for _, diag := range diags[from:] {
		errorColor.Fprintln(os.Stderr, diag.String())
	}
	return len(diags)
}
