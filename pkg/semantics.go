package tiny

// visitFunc is invoked once per visited node during a traversal; either
// hook may be nil.
type visitFunc func(Node)

// Analyzer runs the two-pass semantic analysis over a parsed AST: building
// the symbol table, then propagating expression types bottom-up. Both
// passes share the same generic traversal combinator (spec §4.4, §9 Design
// Notes), parameterized by a pre-order and a post-order hook.
type Analyzer struct {
	sink   *Sink
	symtab *SymbolTable
}

// NewAnalyzer constructs an Analyzer reporting into sink.
func NewAnalyzer(sink *Sink) *Analyzer {
	return &Analyzer{sink: sink, symtab: NewSymbolTable()}
}

// SymbolTable returns the table built by BuildSymbolTable, for use by the
// code generator.
func (a *Analyzer) SymbolTable() *SymbolTable {
	return a.symtab
}

// Lookup returns name's dense symbol-table index, or -1 if undefined.
func (a *Analyzer) Lookup(name string) int {
	return a.symtab.Lookup(name)
}

// Analyze runs both passes over root: BuildSymbolTable then TypeCheck.
func (a *Analyzer) Analyze(root Node) {
	a.BuildSymbolTable(root)
	a.TypeCheck(root)
}

// BuildSymbolTable is pass 1: a pre-order traversal that inserts every
// Variable node's name into the symbol table.
func (a *Analyzer) BuildSymbolTable(root Node) {
	pre := func(n Node) {
		if v, ok := n.(*VariableExpr); ok {
			a.symtab.Insert(v.Name, Loc(v))
		}
	}
	traversal(root, pre, nil)
}

// TypeCheck is pass 2: a post-order (bottom-up) traversal that assigns each
// node's expression type and reports mismatches.
func (a *Analyzer) TypeCheck(root Node) {
	post := a.checkNode
	traversal(root, nil, post)
}

// traversal walks node and its statement-sequence siblings, descending into
// each node's children in the canonical order spec §4.4 specifies
// (if: test,then,else; repeat: body,test; assign: var,expr; read: var;
// write: expr; binary expr: left,right), invoking pre before descending and
// post after, then advancing along the Next chain.
func traversal(node Node, pre, post visitFunc) {
	for node != nil {
		if pre != nil {
			pre(node)
		}

		switch n := node.(type) {
		case *IfStmt:
			traversal(n.Test, pre, post)
			traversal(n.Then, pre, post)
			if n.Else != nil {
				traversal(n.Else, pre, post)
			}
		case *RepeatStmt:
			traversal(n.Body, pre, post)
			traversal(n.Test, pre, post)
		case *AssignStmt:
			traversal(n.Var, pre, post)
			traversal(n.Expr, pre, post)
		case *ReadStmt:
			traversal(n.Var, pre, post)
		case *WriteStmt:
			traversal(n.Expr, pre, post)
		case *BinaryExpr:
			traversal(n.Left, pre, post)
			traversal(n.Right, pre, post)
		case *VariableExpr, *ConstantExpr, *BadNode:
			// leaves
		}

		if post != nil {
			post(node)
		}

		node = NextOf(node)
	}
}

func (a *Analyzer) checkNode(node Node) {
	switch n := node.(type) {
	case *VariableExpr:
		SetType(n, TypeInteger)

	case *ConstantExpr:
		SetType(n, TypeInteger)

	case *BinaryExpr:
		if n.OpValue == ValueEq || n.OpValue == ValueLt {
			// Relational operators are forced to Boolean unconditionally;
			// operand types are not checked here (spec §9 Open Questions,
			// preserved from the original analyzer).
			SetType(n, TypeBoolean)
			return
		}

		if TypeOf(n.Left) == TypeInteger && TypeOf(n.Right) == TypeInteger {
			SetType(n, TypeInteger)
			return
		}

		a.sink.Semantic(Loc(n), "cannot convert from '%s' to '%s'", TypeOf(n.Right), TypeOf(n.Left))

	case *IfStmt:
		if TypeOf(n.Test) != TypeBoolean {
			a.sink.Semantic(Loc(n), "cannot convert from '%s' to 'boolean'", TypeOf(n.Test))
		}

	case *RepeatStmt:
		if TypeOf(n.Test) != TypeBoolean {
			a.sink.Semantic(Loc(n), "cannot convert from '%s' to 'boolean'", TypeOf(n.Test))
		}

	case *AssignStmt:
		if TypeOf(n.Expr) != TypeInteger {
			a.sink.Semantic(Loc(n), "cannot convert from '%s' to 'integer'", TypeOf(n.Expr))
		}

	case *ReadStmt:
		if TypeOf(n.Var) != TypeInteger {
			a.sink.Semantic(Loc(n), "cannot convert from '%s' to 'integer'", TypeOf(n.Var))
		}

	case *WriteStmt:
		if TypeOf(n.Expr) != TypeInteger {
			a.sink.Semantic(Loc(n), "cannot convert from '%s' to 'integer'", TypeOf(n.Expr))
		}
	}
}
