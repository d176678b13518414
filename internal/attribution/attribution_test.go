package attribution

import (
	"testing"

	"github.com/mj1618/fiberscope/internal/fiber"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reactStack = `Error: react-stack-top-frame
    at exports.jsxDEV (webpack-internal:///(app-pages-browser)/./node_modules/react/cjs/react-jsx-dev-runtime.development.js:345:33)
    at Toolbar (webpack-internal:///(app-pages-browser)/./src/components/Toolbar.tsx:21:87)
    at http://localhost:3000/src/app/page.tsx:9:3`

func TestParseStack(t *testing.T) {
	frames := ParseStack(reactStack)
	require.Len(t, frames, 3)
	assert.Equal(t, Frame{
		Function: "Toolbar",
		File:     "webpack-internal:///(app-pages-browser)/./src/components/Toolbar.tsx",
		Line:     21,
		Column:   87,
	}, frames[1])
	assert.Equal(t, Frame{File: "http://localhost:3000/src/app/page.tsx", Line: 9, Column: 3}, frames[2])
}

func TestParseStack_Total(t *testing.T) {
	for _, in := range []string{"", "garbage", "at", "at <anonymous>", "at x:y:z", "\n\n\r\n"} {
		assert.Empty(t, ParseStack(in), "input %q", in)
	}
	frames := ParseStack("    at async Page (src/app/page.tsx:4:10)\r\n")
	require.Len(t, frames, 1)
	assert.Equal(t, "async Page", frames[0].Function)
	assert.Equal(t, "src/app/page.tsx", frames[0].File)
}

func loc(t *testing.T, r model.AttributionResult) (string, int, int) {
	t.Helper()
	require.NotNil(t, r.File)
	line, col := 0, 0
	if r.Line != nil {
		line = *r.Line
	}
	if r.Column != nil {
		col = *r.Column
	}
	return *r.File, line, col
}

func TestAttribute_DebugSource(t *testing.T) {
	inst := &fiber.Instance{
		DebugSource: &fiber.DebugSource{FileName: "webpack-internal:///./src/Button.tsx", LineNumber: 12, ColumnNumber: 5},
		DebugStack:  reactStack,
	}
	r := Attribute(inst)
	assert.Equal(t, model.ProvenanceDebugMetadata, r.Provenance)
	assert.True(t, r.Exact)
	file, line, col := loc(t, r)
	assert.Equal(t, "./src/Button.tsx", file)
	assert.Equal(t, 12, line)
	assert.Equal(t, 5, col)
}

func TestAttribute_StackTrace(t *testing.T) {
	inst := &fiber.Instance{
		DebugSource: &fiber.DebugSource{FileName: "node_modules/lib/index.js", LineNumber: 1},
		DebugStack:  reactStack,
		Owner:       &fiber.Instance{DebugSource: &fiber.DebugSource{FileName: "src/Owner.tsx", LineNumber: 3}},
	}
	r := Attribute(inst)
	assert.Equal(t, model.ProvenanceStackTrace, r.Provenance)
	assert.False(t, r.Exact)
	file, line, col := loc(t, r)
	assert.Equal(t, "./src/components/Toolbar.tsx", file)
	assert.Equal(t, 21, line)
	assert.Equal(t, 87, col)
}

func TestAttribute_OwnerChain(t *testing.T) {
	inst := &fiber.Instance{
		DebugStack: "Error\n    at jsx (node_modules/react/jsx.js:1:1)",
		Owner:      &fiber.Instance{DebugSource: &fiber.DebugSource{FileName: "file:///app/src/Owner.jsx", LineNumber: 3, ColumnNumber: 7}},
	}
	r := Attribute(inst)
	assert.Equal(t, model.ProvenanceOwnerChain, r.Provenance)
	assert.False(t, r.Exact)
	file, line, col := loc(t, r)
	assert.Equal(t, "app/src/Owner.jsx", file)
	assert.Equal(t, 3, line)
	assert.Equal(t, 7, col)
}

func TestAttribute_Unresolved(t *testing.T) {
	for _, inst := range []*fiber.Instance{
		nil,
		{},
		{DebugSource: &fiber.DebugSource{FileName: "styles.css"}},
		{Owner: &fiber.Instance{}},
	} {
		r := Attribute(inst)
		assert.Equal(t, model.ProvenanceUnresolved, r.Provenance)
		assert.False(t, r.Exact)
		assert.Nil(t, r.File)
		assert.Nil(t, r.Line)
		assert.Nil(t, r.Column)
	}
}
