package codegen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/racegen/codegen"
)

func TestWriter_IndentsNestedLines(t *testing.T) {
	var buf strings.Builder
	w := codegen.NewWriter(&buf)
	w.Line("outer {")
	w.Indent()
	w.Line("inner;")
	w.Dedent()
	w.Line("}")
	require.NoError(t, w.Flush())

	assert.Equal(t, "outer {\n  inner;\n}\n", buf.String())
}

func TestWriter_NoNewlineJoinsConsecutiveWrites(t *testing.T) {
	var buf strings.Builder
	w := codegen.NewWriter(&buf)
	w.NoNewline()
	w.Line("a")
	w.Line("b")
	require.NoError(t, w.Flush())

	assert.Equal(t, "ab\n", buf.String())
}
