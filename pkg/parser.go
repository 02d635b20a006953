package tiny

// SyntacticAnalyzer is the interface the semantic analyzer consumes. A
// Parser satisfies it.
type SyntacticAnalyzer interface {
	// Parse consumes the whole token stream and returns the statement
	// sequence's head node (nil for an empty program).
	Parse() Node
	GetFilename() string
}

// Parser is a one-token-lookahead recursive-descent parser over a
// Tokenizer, producing a statement-sequence list threaded through each
// node's Next field, with nested statement sequences inside if/repeat.
type Parser struct {
	filename string
	lex      Tokenizer
	sink     *Sink

	buf     *Token
	started bool
}

// NewParser constructs a Parser reading tokens from lex.
func NewParser(lex Tokenizer, sink *Sink) *Parser {
	return &Parser{filename: lex.GetFilename(), lex: lex, sink: sink}
}

// GetFilename returns the name of the file being parsed.
func (p *Parser) GetFilename() string {
	return p.filename
}

func (p *Parser) ensureStarted() {
	if !p.started {
		go p.lex.Do()
		p.started = true
	}
}

func (p *Parser) peek() Token {
	p.ensureStarted()
	if p.buf == nil {
		tok := p.lex.Get()
		p.buf = &tok
	}
	return *p.buf
}

func (p *Parser) next() Token {
	tok := p.peek()
	p.buf = nil
	return tok
}

// validateKind reports whether the lookahead has the given kind,
// optionally advancing past it.
func (p *Parser) validateKind(kind TokenKind, advance bool) bool {
	if p.peek().Kind != kind {
		return false
	}
	if advance {
		p.next()
	}
	return true
}

// validateValue reports whether the lookahead has the given value,
// optionally advancing past it.
func (p *Parser) validateValue(value TokenValue, advance bool) bool {
	if p.peek().Value != value {
		return false
	}
	if advance {
		p.next()
	}
	return true
}

// expectKind is validateKind but reports a Syntax Error on mismatch.
func (p *Parser) expectKind(kind TokenKind, description string, advance bool) bool {
	tok := p.peek()
	if tok.Kind != kind {
		p.sink.Syntax(tok.Loc, "Expected '%s', but find %s %s", description, tok.Kind, tok.Lexeme)
		return false
	}
	if advance {
		p.next()
	}
	return true
}

// expectValue is validateValue but reports a Syntax Error on mismatch.
func (p *Parser) expectValue(value TokenValue, description string, advance bool) bool {
	tok := p.peek()
	if tok.Value != value {
		p.sink.Syntax(tok.Loc, "Expected '%s', but find %s", description, tok.Lexeme)
		return false
	}
	if advance {
		p.next()
	}
	return true
}

func (p *Parser) bad(loc Location, format string, args ...interface{}) Node {
	p.sink.Syntax(loc, format, args...)
	return &BadNode{NodeBase: NodeBase{Loc: loc}}
}

// Parse consumes the whole token stream and returns the statement
// sequence's head node.
func (p *Parser) Parse() Node {
	if p.peek().Kind == KindEndOfFile {
		p.sink.Syntax(p.peek().Loc, "Unexpected end of file.")
		return nil
	}
	return p.statementSequence()
}

// isEndOfStatementSequence matches the original parser's lookahead check:
// else/end/until/EOF terminate a sequence; everything else (including a
// missing semicolon) is treated as "keep trying to parse another
// statement" and left for the next parseStatement call to fail on.
func (p *Parser) isEndOfStatementSequence() bool {
	tok := p.peek()
	switch tok.Value {
	case ValueElse, ValueEnd, ValueUntil:
		return true
	case ValueSemicolon:
		return false
	default:
		return tok.Kind == KindEndOfFile
	}
}

func (p *Parser) statementSequence() Node {
	head := p.statement()
	current := head

	for current != nil && !p.isEndOfStatementSequence() {
		p.expectValue(ValueSemicolon, ";", true)
		n := p.statement()
		SetNext(current, n)
		current = n
	}

	return head
}

func (p *Parser) statement() Node {
	tok := p.peek()
	switch tok.Value {
	case ValueIf:
		return p.ifStatement()
	case ValueRepeat:
		return p.repeatStatement()
	case ValueRead:
		return p.readStatement()
	case ValueWrite:
		return p.writeStatement()
	default:
		if tok.Kind == KindIdentifier {
			return p.assignStatement()
		}
		return p.bad(tok.Loc, "unknown token '%s'", tok.Lexeme)
	}
}

func (p *Parser) ifStatement() Node {
	loc := p.peek().Loc
	if !p.validateValue(ValueIf, true) {
		return p.bad(loc, "expected 'if'")
	}

	test := p.expression()
	if !p.expectValue(ValueThen, "then", true) {
		return nil
	}

	then := p.statementSequence()
	var elseBranch Node

	switch p.peek().Value {
	case ValueEnd:
		// no else branch
	case ValueElse:
		p.next() // eat "else"
		elseBranch = p.statementSequence()
		if !p.expectValue(ValueEnd, "end", false) {
			return nil
		}
	default:
		tok := p.peek()
		return p.bad(tok.Loc, "invalid token '%s'", tok.Lexeme)
	}
	p.next() // eat "end"

	return &IfStmt{NodeBase: NodeBase{Loc: loc}, Test: test, Then: then, Else: elseBranch}
}

func (p *Parser) repeatStatement() Node {
	loc := p.peek().Loc
	if !p.validateValue(ValueRepeat, true) {
		return p.bad(loc, "expected 'repeat'")
	}

	body := p.statementSequence()
	if !p.expectValue(ValueUntil, "until", true) {
		return nil
	}
	test := p.expression()

	return &RepeatStmt{NodeBase: NodeBase{Loc: loc}, Body: body, Test: test}
}

func (p *Parser) assignStatement() Node {
	loc := p.peek().Loc
	if !p.validateKind(KindIdentifier, false) {
		return p.bad(loc, "expected identifier")
	}

	name := p.next().Lexeme
	varNode := &VariableExpr{NodeBase: NodeBase{Loc: loc}, Name: name}

	if !p.expectValue(ValueAssign, ":=", true) {
		return nil
	}
	expr := p.expression()

	return &AssignStmt{NodeBase: NodeBase{Loc: loc}, Var: varNode, Expr: expr}
}

func (p *Parser) readStatement() Node {
	loc := p.peek().Loc
	if !p.validateValue(ValueRead, true) {
		return p.bad(loc, "expected 'read'")
	}
	if !p.expectKind(KindIdentifier, "identifier", false) {
		return nil
	}

	tok := p.next()
	varNode := &VariableExpr{NodeBase: NodeBase{Loc: tok.Loc}, Name: tok.Lexeme}

	return &ReadStmt{NodeBase: NodeBase{Loc: loc}, Var: varNode}
}

func (p *Parser) writeStatement() Node {
	loc := p.peek().Loc
	if !p.validateValue(ValueWrite, true) {
		return p.bad(loc, "expected 'write'")
	}
	expr := p.expression()

	return &WriteStmt{NodeBase: NodeBase{Loc: loc}, Expr: expr}
}

// expression → simpleExpr ( ('=' | '<') simpleExpr )?   -- non-associative
func (p *Parser) expression() Node {
	loc := p.peek().Loc
	left := p.simpleExpression()

	tok := p.peek()
	if tok.Value != ValueEq && tok.Value != ValueLt {
		return left
	}

	p.next() // eat operator
	right := p.simpleExpression()
	return &BinaryExpr{NodeBase: NodeBase{Loc: loc}, OpValue: tok.Value, OpLexeme: tok.Lexeme, Left: left, Right: right}
}

// simpleExpr → term ( ('+' | '-') term )*   -- left-assoc
func (p *Parser) simpleExpression() Node {
	loc := p.peek().Loc
	left := p.term()

	for {
		tok := p.peek()
		if tok.Value != ValuePlus && tok.Value != ValueMinus {
			return left
		}
		p.next()
		right := p.term()
		left = &BinaryExpr{NodeBase: NodeBase{Loc: loc}, OpValue: tok.Value, OpLexeme: tok.Lexeme, Left: left, Right: right}
	}
}

// term → factor ( ('*' | '/') factor )*   -- left-assoc
func (p *Parser) term() Node {
	loc := p.peek().Loc
	left := p.factor()

	for {
		tok := p.peek()
		if tok.Value != ValueMul && tok.Value != ValueDiv {
			return left
		}
		p.next()
		right := p.factor()
		left = &BinaryExpr{NodeBase: NodeBase{Loc: loc}, OpValue: tok.Value, OpLexeme: tok.Lexeme, Left: left, Right: right}
	}
}

// factor → IDENT | NUMBER | '(' expr ')'
func (p *Parser) factor() Node {
	tok := p.peek()

	switch tok.Kind {
	case KindIdentifier:
		p.next()
		return &VariableExpr{NodeBase: NodeBase{Loc: tok.Loc}, Name: tok.Lexeme}
	case KindNumber:
		p.next()
		return &ConstantExpr{NodeBase: NodeBase{Loc: tok.Loc}, Value: tok.IntValue}
	default:
		if !p.expectValue(ValueLParen, "(", true) {
			return nil
		}
		expr := p.expression()
		if !p.expectValue(ValueRParen, ")", true) {
			return nil
		}
		return expr
	}
}
