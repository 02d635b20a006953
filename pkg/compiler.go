package tiny

import (
	"io"

	"golang.org/x/sync/errgroup"
)

// Option configures a Compiler at construction time, following the
// maqui.Compiler/maqui.Target functional-option shape.
type Option func(*Compiler)

// WithTrace toggles the code generator's '* -> '/'* <- ' bracketing
// comments and standard-prelude banner. Enabled by default, matching the
// reference CLI (spec §6).
func WithTrace(trace bool) Option {
	return func(c *Compiler) { c.trace = trace }
}

// Compiler wires the lexer, parser, analyzer, and code generator into a
// single `.tiny` source → TM assembly text pipeline.
type Compiler struct {
	trace bool
}

// NewCompiler constructs a Compiler with trace mode on by default.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{trace: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of compiling one source file: the emitted TM text
// (valid only when Sink.HasErrors() is false) and the diagnostic sink
// accumulated across every stage that ran.
type Result struct {
	Code string
	Sink *Sink
}

// Compile runs the full front end plus code generation over filename,
// stopping at the first stage boundary whose upstream flag is set (spec
// §2: "downstream stages do not run when an upstream flag is set").
func (c *Compiler) Compile(filename string) (Result, error) {
	sink := NewSink()

	lexer, err := NewLexer(filename, sink)
	if err != nil {
		return Result{Sink: sink}, err
	}

	parser := NewParser(lexer, sink)
	root := parser.Parse()
	if sink.ParseError() {
		return Result{Sink: sink}, nil
	}

	analyzer := NewAnalyzer(sink)
	analyzer.Analyze(root)
	if sink.AnalysisError() {
		return Result{Sink: sink}, nil
	}

	gen := NewCodeGenerator(sink, analyzer.SymbolTable(), filename, c.trace)
	code := gen.GenerateCode(root)

	return Result{Code: code, Sink: sink}, nil
}

// StreamCompile compiles filename and pipes the generated TM text through
// an io.Pipe into consume, running both sides concurrently via
// errgroup.Group — the same two-goroutine shape the teacher uses to pipe
// generated IR into an external `clang` process, repurposed here since TM
// execution is in-process rather than a subprocess.
func (c *Compiler) StreamCompile(filename string, consume func(io.Reader) error) (Result, error) {
	sink := NewSink()

	lexer, err := NewLexer(filename, sink)
	if err != nil {
		return Result{Sink: sink}, err
	}

	parser := NewParser(lexer, sink)
	root := parser.Parse()
	if sink.ParseError() {
		return Result{Sink: sink}, nil
	}

	analyzer := NewAnalyzer(sink)
	analyzer.Analyze(root)
	if sink.AnalysisError() {
		return Result{Sink: sink}, nil
	}

	gen := NewCodeGenerator(sink, analyzer.SymbolTable(), filename, c.trace)

	r, w := io.Pipe()
	errs := errgroup.Group{}

	errs.Go(func() error {
		code := gen.GenerateCode(root)
		if _, err := io.WriteString(w, code); err != nil {
			return err
		}
		return w.Close()
	})

	var code string
	errs.Go(func() error {
		defer r.Close()
		return consume(io.TeeReader(r, stringSink(&code)))
	})

	if err := errs.Wait(); err != nil {
		return Result{Sink: sink}, err
	}

	return Result{Code: code, Sink: sink}, nil
}

// stringSinkWriter is an io.Writer (built by stringSink) that accumulates
// everything written to it into *dst, used to let StreamCompile's consumer observe bytes while Result
// still reports the full generated text.
type stringSinkWriter struct {
	dst *string
}

func stringSink(dst *string) io.Writer {
	return &stringSinkWriter{dst: dst}
}

func (w *stringSinkWriter) Write(p []byte) (int, error) {
	*w.dst += string(p)
	return len(p), nil
}
