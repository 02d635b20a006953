package tiny

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, src string, trace bool) (string, *Sink) {
	t.Helper()
	sink := NewSink()
	lexer := NewLexerFromReader(strings.NewReader(src), "test.tiny", sink)
	parser := NewParser(lexer, sink)
	root := parser.Parse()
	require.False(t, sink.ParseError())

	analyzer := NewAnalyzer(sink)
	analyzer.Analyze(root)
	require.False(t, sink.AnalysisError())

	gen := NewCodeGenerator(sink, analyzer.SymbolTable(), "test.tiny", trace)
	return gen.GenerateCode(root), sink
}

// instructionLines returns code's "N: ..." lines, skipping comments, so
// density/target assertions don't depend on trace-mode comment text.
func instructionLines(code string) []string {
	var lines []string
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "*") {
			continue
		}
		lines = append(lines, trimmed)
	}
	return lines
}

func TestCodeGenAssignAndWrite(t *testing.T) {
	code, sink := generate(t, "x := 5; write x", false)
	require.False(t, sink.CodegenError())

	lines := instructionLines(code)
	// prelude (2) + LDC + ST + LD + OUT + HALT
	assert.Equal(t, 7, len(lines))
	assert.Contains(t, code, "LDC 0,5(0)")
	assert.Contains(t, code, "HALT 0,0,0")
}

func TestCodeGenLineDensity(t *testing.T) {
	code, sink := generate(t, "read n; f := 1; repeat f := f * n; n := n - 1 until n = 0; write f", false)
	require.False(t, sink.CodegenError())

	lines := instructionLines(code)
	for i, line := range lines {
		want := i + 1
		prefix := strconv.Itoa(want) + ":"
		assert.True(t, strings.HasPrefix(line, prefix), "line %d: got %q, want prefix %q", i, line, prefix)
	}
}

func TestCodeGenIfBackpatchesBranchTargets(t *testing.T) {
	code, sink := generate(t, "read x; if x < 0 then write 0 else write x end", false)
	require.False(t, sink.CodegenError())

	lines := instructionLines(code)
	k := len(lines)
	require.True(t, k > 0)

	// every pc-relative JEQ/LDA offset must land within [1, k] once added
	// to its own line number. Backpatched lines are written after the lines
	// that follow them, so the number is read from the "N:" prefix.
	for _, line := range lines {
		lineNo, err := strconv.Atoi(line[:strings.Index(line, ":")])
		require.NoError(t, err)
		if !strings.Contains(line, "JEQ") && !strings.Contains(line, "LDA 7,") {
			continue
		}
		offset := extractPCOffset(t, line)
		target := lineNo + offset
		assert.True(t, target >= 1 && target <= k, "line %d: target %d out of [1,%d]", lineNo, target, k)
	}
}

// extractPCOffset parses the RM displacement ("d" in "d(s)") out of a line
// like "3:   JEQ 0,2(7)".
func extractPCOffset(t *testing.T, line string) int {
	t.Helper()
	open := strings.LastIndex(line, "(")
	comma := strings.LastIndex(line[:open], ",")
	require.True(t, open > 0 && comma > 0)
	n, err := strconv.Atoi(line[comma+1 : open])
	require.NoError(t, err)
	return n
}

func TestCodeGenTraceCommentsBracketForms(t *testing.T) {
	code, _ := generate(t, "x := 1", true)
	assert.Contains(t, code, "* -> assign")
	assert.Contains(t, code, "* <- assign")
	assert.Contains(t, code, "* -> Const")
	assert.Contains(t, code, "* <- Const")
}

