package tiny

import (
	"fmt"
	"sync"
)

// DiagnosticKind names the pipeline stage that raised a Diagnostic. Values
// match spec's error taxonomy exactly.
type DiagnosticKind string

const (
	KindTokenError     DiagnosticKind = "Token Error"
	KindSyntaxError    DiagnosticKind = "Syntax Error"
	KindSemanticError  DiagnosticKind = "Semantic Error"
	KindCodegenError   DiagnosticKind = "Codegen Error"
	KindVMTokenError   DiagnosticKind = "VM Token Error"
	KindVMSyntaxError  DiagnosticKind = "VM Syntax Error"
	KindVMRuntimeError DiagnosticKind = "VM Runtime Error"
)

// Diagnostic is one reported problem, always carrying the kind and the
// location of the token/node that triggered it.
type Diagnostic struct {
	Kind    DiagnosticKind
	Loc     Location
	Message string
}

// String renders "<Kind>: file:line:col: message", the one-line-per-
// diagnostic contract from spec §7.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s", d.Kind, d.Loc.String(), d.Message)
}

// Sink is the shared, thread-safe error context threaded through every
// pipeline stage, replacing the original implementation's per-class static
// booleans (spec §9 Design Notes). Each stage is a single writer, but the
// source lexer runs concurrently with its consumer on a goroutine, so
// appends are still guarded by a mutex.
type Sink struct {
	mu    sync.Mutex
	diags []Diagnostic

	lexError      bool
	parseError    bool
	analysisError bool
	codegenError  bool
	vmTokenError  bool
	vmSyntaxError bool
	vmRuntimeErr  bool
}

// NewSink constructs an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) report(kind DiagnosticKind, loc Location, format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.diags = append(s.diags, Diagnostic{Kind: kind, Loc: loc, Message: fmt.Sprintf(format, args...)})

	switch kind {
	case KindTokenError:
		s.lexError = true
	case KindSyntaxError:
		s.parseError = true
	case KindSemanticError:
		s.analysisError = true
	case KindCodegenError:
		s.codegenError = true
	case KindVMTokenError:
		s.vmTokenError = true
	case KindVMSyntaxError:
		s.vmSyntaxError = true
	case KindVMRuntimeError:
		s.vmRuntimeErr = true
	}
}

// Token reports a Token Error (raised by the source lexer).
func (s *Sink) Token(loc Location, format string, args ...interface{}) {
	s.report(KindTokenError, loc, format, args...)
}

// Syntax reports a Syntax Error (raised by the parser).
func (s *Sink) Syntax(loc Location, format string, args ...interface{}) {
	s.report(KindSyntaxError, loc, format, args...)
}

// Semantic reports a Semantic Error (raised by the analyzer).
func (s *Sink) Semantic(loc Location, format string, args ...interface{}) {
	s.report(KindSemanticError, loc, format, args...)
}

// Codegen reports a Codegen Error (raised by the code generator).
func (s *Sink) Codegen(loc Location, format string, args ...interface{}) {
	s.report(KindCodegenError, loc, format, args...)
}

// VMToken reports a VM Token Error (raised while lexing emitted TM text).
func (s *Sink) VMToken(loc Location, format string, args ...interface{}) {
	s.report(KindVMTokenError, loc, format, args...)
}

// VMSyntax reports a VM Syntax Error (raised while assembling TM text).
func (s *Sink) VMSyntax(loc Location, format string, args ...interface{}) {
	s.report(KindVMSyntaxError, loc, format, args...)
}

// VMRuntime reports a VM Runtime Error (raised while executing TM code).
func (s *Sink) VMRuntime(loc Location, format string, args ...interface{}) {
	s.report(KindVMRuntimeError, loc, format, args...)
}

// LexError reports whether the source lexer raised any diagnostic.
func (s *Sink) LexError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lexError
}

// ParseError reports whether the parser raised any diagnostic.
func (s *Sink) ParseError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parseError
}

// AnalysisError reports whether the analyzer raised any diagnostic.
func (s *Sink) AnalysisError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysisError
}

// CodegenError reports whether the code generator raised any diagnostic.
func (s *Sink) CodegenError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codegenError
}

// VMError reports whether either TM-side stage (assembler lexer, assembler,
// or runtime) raised any diagnostic.
func (s *Sink) VMError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vmTokenError || s.vmSyntaxError || s.vmRuntimeErr
}

// HasErrors reports whether any stage has raised a diagnostic so far.
func (s *Sink) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lexError || s.parseError || s.analysisError || s.codegenError ||
		s.vmTokenError || s.vmSyntaxError || s.vmRuntimeErr
}

// Diagnostics returns a snapshot of every diagnostic reported so far, in
// report order.
func (s *Sink) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	return out
}
