// Copyright © 2018 The ELPS authors

package repl

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/types"
)

func runReplWithString(t *testing.T, input string) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	go func() {
		defer inW.Close() //nolint:errcheck // test cleanup
		_, _ = io.WriteString(inW, input)
	}()

	go func() {
		_ = RunRepl("zx> ", WithStdin(inR), WithStderr(outW), WithColor(diagnostic.ColorNever))
		inR.Close()  //nolint:errcheck,gosec // test cleanup
		outW.Close() //nolint:errcheck,gosec // test cleanup
	}()

	var output bytes.Buffer
	_, _ = io.Copy(&output, outR)
	outR.Close() //nolint:errcheck,gosec // test cleanup

	return output.String()
}

func TestEnsureHistoryFilePermissions_CreatesWithRestrictedMode(t *testing.T) {
	dir := t.TempDir()
	histFile := filepath.Join(dir, ".zxc_history")

	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err, "history file should be created")
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "new history file should have mode 0600")
}

func TestEnsureHistoryFilePermissions_RestrictsExistingFile(t *testing.T) {
	dir := t.TempDir()
	histFile := filepath.Join(dir, ".zxc_history")

	err := os.WriteFile(histFile, []byte("some history"), 0644)
	require.NoError(t, err)

	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "existing history file should be restricted to 0600")

	data, err := os.ReadFile(histFile)
	require.NoError(t, err)
	assert.Equal(t, "some history", string(data))
}

func TestEnsureHistoryFilePermissions_EmptyPathNoOp(t *testing.T) {
	ensureHistoryFilePermissions("")
}

func TestRunRepl(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Declaration",
			input:    "fn add(a: Int, b: Int): Int { return a + b }\n",
			expected: "fn add(a: Int, b: Int): Int",
		},
		{
			name:     "Multiline",
			input:    "fn two(): Int {\n    return 2\n}\ntwo() + 1\n",
			expected: "=> Int",
		},
		{
			name:     "Error",
			input:    "fnord\n",
			expected: "name 'fnord' is not defined",
		},
		{
			name:     "Help",
			input:    ":help\n",
			expected: ":symbols",
		},
		{
			name:     "Symbols",
			input:    "var x = 1.5\n:symbols\n",
			expected: "variable $x: Float",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := runReplWithString(t, tc.input)
			require.Contains(t, got, tc.expected)
		})
	}
}

func TestSessionCommits(t *testing.T) {
	s := NewSession()
	out := s.Eval("var x = 1")
	require.True(t, out.Committed)
	require.Len(t, out.Declared, 1)
	assert.Equal(t, "var x: Int", out.Declared[0].Signature())

	out = s.Eval("var x = 2")
	assert.False(t, out.Committed)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, "name 'x' is already defined", out.Diagnostics[0].Message)
	assert.Equal(t, 4, out.Diagnostics[0].Span.Start, "spans are relative to the input")
	assert.Empty(t, out.Diagnostics[0].Related, "earlier input has no span in this input")

	out = s.Eval("var y = 1\nvar y = 2")
	assert.False(t, out.Committed)
	require.Len(t, out.Diagnostics, 1)
	require.Len(t, out.Diagnostics[0].Related, 1)
	assert.Equal(t, 4, out.Diagnostics[0].Related[0].Span.Start)
	assert.Equal(t, "var x = 1\n", s.Source())

	out = s.Eval("fn f(): Float { return x }")
	assert.False(t, out.Committed)
	assert.Equal(t, "mismatched types", out.Diagnostics[0].Message)
	assert.Equal(t, "Float", "fn f(): Float { return x }"[out.Diagnostics[0].Span.Start:out.Diagnostics[0].Span.End])

	assert.Len(t, s.Symbols(), 1)
	s.Reset()
	assert.Empty(t, s.Symbols())
	assert.Empty(t, s.Source())
}

func TestSessionStatements(t *testing.T) {
	s := NewSession()
	s.Eval("class P { var n: Int = 3 }")
	s.Eval("var p = P()")

	out := s.Eval("p.n * 2")
	assert.Empty(t, out.Diagnostics)
	assert.False(t, out.Committed)
	assert.Equal(t, types.Integer{}, out.Type)
	assert.Equal(t, "=> Int", out.Describe())

	out = s.Eval("printInt(p.n)")
	assert.Empty(t, out.Diagnostics)
	assert.Nil(t, out.Type)
	assert.Equal(t, "", out.Describe())

	out = s.Eval("p.m")
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, diagnostic.NameError, out.Diagnostics[0].Kind)
	assert.Equal(t, 2, out.Diagnostics[0].Span.Start)
	assert.NotContains(t, s.Source(), "p.m")
}

func TestSessionEmit(t *testing.T) {
	s := NewSession()
	var buf bytes.Buffer
	assert.Error(t, s.Emit(&buf))

	s.Eval("fn answer(): Int { return 42 }")
	require.NoError(t, s.Emit(&buf))
	assert.Contains(t, buf.String(), "define i64")
	assert.Contains(t, buf.String(), "$answer")

	buf.Reset()
	require.NoError(t, s.Dump(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "function $answer: Int"), buf.String())
}

func TestIncomplete(t *testing.T) {
	assert.True(t, Incomplete("fn f() {\n"))
	assert.True(t, Incomplete("printInt(\n"))
	assert.False(t, Incomplete("fn f() {}\n"))
	assert.False(t, Incomplete("var s = \"{\"\n"))
	assert.False(t, Incomplete("}\n"))
}
