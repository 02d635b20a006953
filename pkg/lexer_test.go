package tiny

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexer(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		expect []Token
	}{
		{
			name: "keywords and operators",
			src:  "if x < 0 then write 0 else write x end",
			expect: []Token{
				{Kind: KindKeyword, Value: ValueIf, Lexeme: "if"},
				{Kind: KindIdentifier, Value: ValueUnreserved, Lexeme: "x"},
				{Kind: KindOperator, Value: ValueLt, Lexeme: "<"},
				{Kind: KindNumber, Value: ValueUnreserved, Lexeme: "0", IntValue: 0},
				{Kind: KindKeyword, Value: ValueThen, Lexeme: "then"},
				{Kind: KindKeyword, Value: ValueWrite, Lexeme: "write"},
				{Kind: KindNumber, Value: ValueUnreserved, Lexeme: "0", IntValue: 0},
				{Kind: KindKeyword, Value: ValueElse, Lexeme: "else"},
				{Kind: KindKeyword, Value: ValueWrite, Lexeme: "write"},
				{Kind: KindIdentifier, Value: ValueUnreserved, Lexeme: "x"},
				{Kind: KindKeyword, Value: ValueEnd, Lexeme: "end"},
			},
		},
		{
			name: "assignment and comment",
			src:  "x := 5 { the answer }",
			expect: []Token{
				{Kind: KindIdentifier, Value: ValueUnreserved, Lexeme: "x"},
				{Kind: KindOperator, Value: ValueAssign, Lexeme: ":="},
				{Kind: KindNumber, Value: ValueUnreserved, Lexeme: "5", IntValue: 5},
			},
		},
		{
			name: "multi digit number",
			src:  "write 120",
			expect: []Token{
				{Kind: KindKeyword, Value: ValueWrite, Lexeme: "write"},
				{Kind: KindNumber, Value: ValueUnreserved, Lexeme: "120", IntValue: 120},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sink := NewSink()
			l := NewLexerFromReader(strings.NewReader(c.src), "test.tiny", sink)
			toks := l.Run()

			assert.False(t, sink.LexError())
			assert.Equal(t, len(c.expect), len(toks))
			for i, want := range c.expect {
				assert.Equal(t, want.Kind, toks[i].Kind, "token %d kind", i)
				assert.Equal(t, want.Value, toks[i].Value, "token %d value", i)
				assert.Equal(t, want.Lexeme, toks[i].Lexeme, "token %d lexeme", i)
				assert.Equal(t, want.IntValue, toks[i].IntValue, "token %d intvalue", i)
			}
		})
	}
}

func TestLexerUnterminatedComment(t *testing.T) {
	sink := NewSink()
	l := NewLexerFromReader(strings.NewReader("x := 1 { never closed"), "test.tiny", sink)
	l.Run()

	assert.True(t, sink.LexError())
}

func TestLexerInvalidCharacter(t *testing.T) {
	sink := NewSink()
	l := NewLexerFromReader(strings.NewReader("x := 1 @ y"), "test.tiny", sink)
	toks := l.Run()

	assert.True(t, sink.LexError())
	// lexing continues past the bad character so more diagnostics can accrue
	assert.Equal(t, "y", toks[len(toks)-1].Lexeme)
}

func TestLexerDoOverChannel(t *testing.T) {
	sink := NewSink()
	l := NewLexerFromReader(strings.NewReader("read n"), "test.tiny", sink)

	go l.Do()

	first := l.Get()
	assert.Equal(t, ValueRead, first.Value)

	second := l.Get()
	assert.Equal(t, KindIdentifier, second.Kind)
	assert.Equal(t, "n", second.Lexeme)

	eof := l.Get()
	assert.Equal(t, KindEndOfFile, eof.Kind)
}
