package tiny

import (
	"fmt"
	"strings"
)

// Register names the eight TM registers by their conventional role.
type Register int

const (
	RegAC Register = 0 // accumulator
	RegAC1 Register = 1 // secondary accumulator
	RegGP Register = 5 // global pointer
	RegMP Register = 6 // memory pointer
	RegPC Register = 7 // program counter
)

// CodeGenerator walks a typed AST and emits textual TM assembly, tracking a
// line counter, a temporary-memory offset for nested expression evaluation,
// and backpatch bookkeeping for if/repeat branches.
type CodeGenerator struct {
	sink     *Sink
	symtab   *SymbolTable
	filename string
	trace    bool

	buf         strings.Builder
	currentLine int
	tmpOffset   int
}

// NewCodeGenerator constructs a CodeGenerator. trace enables the '* ->'/'*
// <-' bracketing comments and the standard-prelude banner; per spec §6 the
// reference CLI always enables it.
func NewCodeGenerator(sink *Sink, symtab *SymbolTable, filename string, trace bool) *CodeGenerator {
	return &CodeGenerator{sink: sink, symtab: symtab, filename: filename, trace: trace}
}

// GenerateCode emits the prelude, the statement sequence rooted at root,
// and the epilogue, returning the full TM program text.
func (g *CodeGenerator) GenerateCode(root Node) string {
	g.prelude()
	g.statementSequence(root)
	g.emitComment("* End of execution")
	g.emitRO("HALT", RegAC, RegAC, RegAC, "")
	return g.buf.String()
}

func (g *CodeGenerator) emitComment(comment string) {
	if g.trace {
		g.buf.WriteString(comment)
		g.buf.WriteByte('\n')
	}
}

// emitRO appends an RO-form instruction ("N:   OP r,s,t") at the next line.
func (g *CodeGenerator) emitRO(op string, r, s, t Register, comment string) {
	g.currentLine++
	fmt.Fprintf(&g.buf, "%d:   %s %d,%d,%d", g.currentLine, op, r, s, t)
	g.traceComment(comment)
	g.buf.WriteByte('\n')
}

// emitRM appends an RM-form instruction ("N:   OP r,d(s)") at the next
// line.
func (g *CodeGenerator) emitRM(op string, r Register, d int64, s Register, comment string) {
	g.currentLine++
	g.emitRMAtLine(g.currentLine, op, r, d, s, comment)
}

// emitRMAtLine writes an RM-form instruction at an already-reserved line
// number, used to backpatch a forward branch once its target is known. It
// does not advance currentLine.
func (g *CodeGenerator) emitRMAtLine(line int, op string, r Register, d int64, s Register, comment string) {
	fmt.Fprintf(&g.buf, "%d:   %s %d,%d(%d)", line, op, r, d, s)
	g.traceComment(comment)
	g.buf.WriteByte('\n')
}

func (g *CodeGenerator) traceComment(comment string) {
	if g.trace && comment != "" {
		g.buf.WriteString("\t\t* ")
		g.buf.WriteString(comment)
	}
}

func (g *CodeGenerator) prelude() {
	g.emitComment("* TINY Compilation to TM Code")
	g.emitComment("* File: " + g.filename)
	g.emitComment("* Standard prelude:")
	g.emitRM("LD", RegMP, 0, RegAC, "load maxaddress from location 0")
	g.emitRM("ST", RegAC, 0, RegAC, "clear location 0")
	g.emitComment("* End of standard prelude.")
}

func (g *CodeGenerator) statementSequence(node Node) {
	for node != nil {
		switch n := node.(type) {
		case *IfStmt:
			g.ifStatement(n)
		case *RepeatStmt:
			g.repeatStatement(n)
		case *AssignStmt:
			g.assignStatement(n)
		case *ReadStmt:
			g.readStatement(n)
		case *WriteStmt:
			g.writeStatement(n)
		case *BinaryExpr, *VariableExpr, *ConstantExpr:
			g.expression(n)
		default:
			g.sink.Codegen(Loc(node), "Invalid ast type")
		}
		node = NextOf(node)
	}
}

// ifStatement emits the test, reserves a conditional branch line for the
// false case, emits the then-branch, reserves an unconditional branch past
// the else-branch, then backpatches both reserved lines now that their
// targets are known.
func (g *CodeGenerator) ifStatement(n *IfStmt) {
	g.emitComment("* -> if")
	g.expression(n.Test)
	g.emitComment("* if: jump to else belongs here")

	g.currentLine++
	savedLoc1 := g.currentLine
	g.statementSequence(n.Then)
	g.emitComment("* if: jump to end belongs here")

	g.currentLine++
	savedLoc2 := g.currentLine
	g.emitRMAtLine(savedLoc1, "JEQ", RegAC, int64(g.currentLine-savedLoc1), RegPC, "if: jmp to false")

	if n.Else != nil {
		g.statementSequence(n.Else)
	}

	g.emitRMAtLine(savedLoc2, "LDA", RegPC, int64(g.currentLine-savedLoc2), RegPC, "jmp to end")
	g.emitComment("* <- if")
}

// repeatStatement emits the body then the test, then a backward branch to
// the body's first line when the test is false.
func (g *CodeGenerator) repeatStatement(n *RepeatStmt) {
	g.emitComment("* -> repeat")
	g.emitComment("* repeat: jump after body comes back here")
	savedLoc := g.currentLine + 1
	g.statementSequence(n.Body)
	g.expression(n.Test)
	g.emitRM("JEQ", RegAC, int64(savedLoc-g.currentLine-2), RegPC, "repeat: jmp back to body")
	g.emitComment("* <- repeat")
}

func (g *CodeGenerator) assignStatement(n *AssignStmt) {
	g.emitComment("* -> assign")
	g.expression(n.Expr)
	offset := g.symtab.Lookup(n.Var.Name)
	g.emitRM("ST", RegAC, int64(offset), RegGP, "assign: store value")
	g.emitComment("* <- assign")
}

func (g *CodeGenerator) readStatement(n *ReadStmt) {
	g.emitRO("IN", RegAC, RegAC, RegAC, "read integer value")
	offset := g.symtab.Lookup(n.Var.Name)
	g.emitRM("ST", RegAC, int64(offset), RegGP, "read: store value")
}

func (g *CodeGenerator) writeStatement(n *WriteStmt) {
	g.expression(n.Expr)
	g.emitRO("OUT", RegAC, RegAC, RegAC, "write ac")
}

// expression generates postorder accumulator-discipline code: the result of
// every expression ends up in ac.
func (g *CodeGenerator) expression(node Node) {
	switch n := node.(type) {
	case *VariableExpr:
		g.variable(n)
	case *ConstantExpr:
		g.constant(n)
	case *BinaryExpr:
		g.binary(n)
	default:
		g.sink.Codegen(Loc(node), "Invalid ast type")
	}
}

func (g *CodeGenerator) variable(n *VariableExpr) {
	g.emitComment("* -> Id")
	offset := g.symtab.Lookup(n.Name)
	g.emitRM("LD", RegAC, int64(offset), RegGP, "load id value")
	g.emitComment("* <- Id")
}

func (g *CodeGenerator) constant(n *ConstantExpr) {
	g.emitComment("* -> Const")
	g.emitRM("LDC", RegAC, n.Value, RegAC, "load const")
	g.emitComment("* <- Const")
}

func (g *CodeGenerator) binary(n *BinaryExpr) {
	g.emitComment("* -> op")
	g.expression(n.Left)
	g.emitRM("ST", RegAC, int64(g.tmpOffset), RegMP, "op: push left")
	g.tmpOffset++
	g.expression(n.Right)
	g.tmpOffset--
	g.emitRM("LD", RegAC1, int64(g.tmpOffset), RegMP, "op: load left")

	switch n.OpValue {
	case ValuePlus:
		g.emitRO("ADD", RegAC, RegAC1, RegAC, "op +")
	case ValueMinus:
		g.emitRO("SUB", RegAC, RegAC1, RegAC, "op -")
	case ValueMul:
		g.emitRO("MUL", RegAC, RegAC1, RegAC, "op *")
	case ValueDiv:
		g.emitRO("DIV", RegAC, RegAC1, RegAC, "op /")
	case ValueLt:
		g.emitRO("SUB", RegAC, RegAC1, RegAC, "op <")
		g.emitRM("JLT", RegAC, 2, RegPC, "br if true")
		g.emitRM("LDC", RegAC, 0, RegAC, "false case")
		g.emitRM("LDA", RegPC, 1, RegPC, "unconditional jmp")
		g.emitRM("LDC", RegAC, 1, RegAC, "true case")
	case ValueEq:
		g.emitRO("SUB", RegAC, RegAC1, RegAC, "op =")
		g.emitRM("JEQ", RegAC, 2, RegPC, "br if true")
		g.emitRM("LDC", RegAC, 0, RegAC, "false case")
		g.emitRM("LDA", RegPC, 1, RegPC, "unconditional jmp")
		g.emitRM("LDC", RegAC, 1, RegAC, "true case")
	default:
		g.sink.Codegen(Loc(n), "Invalid operator")
	}

	g.emitComment("* <- op")
}
