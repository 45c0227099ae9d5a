package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseExprFrom(t *testing.T, text string) *Expression {
	t.Helper()
	p := NewParser(NewContext())
	expr, err := p.parseExpression(readerFor(text))
	require.NoError(t, err)
	return expr
}

func TestExprLeftToRight(t *testing.T) {
	symbols := NewSymbolTable()

	// (2+3)*4, not 2+(3*4)
	v, err := parseExprFrom(t, "2+3*4").Eval(0, symbols)
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	v, err = parseExprFrom(t, "10-2-3").Eval(0, symbols)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestExprSymbols(t *testing.T) {
	symbols := NewSymbolTable()
	symbols.Define(Label{Type: LabelSymbolic, Name: "base"}, 0x1000)

	v, err := parseExprFrom(t, "base+2").Eval(0, symbols)
	require.NoError(t, err)
	assert.Equal(t, 0x1002, v)
}

func TestExprUndefinedSymbol(t *testing.T) {
	symbols := NewSymbolTable()
	expr := parseExprFrom(t, "missing")

	_, err := expr.Eval(0, symbols)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined symbol 'missing'")
}

func TestExprTryEval(t *testing.T) {
	symbols := NewSymbolTable()
	expr := parseExprFrom(t, "later+1")

	_, ok, err := expr.TryEval(0, symbols)
	require.NoError(t, err)
	assert.False(t, ok)

	symbols.Define(Label{Type: LabelSymbolic, Name: "later"}, 0x80)
	v, ok, err := expr.TryEval(0, symbols)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0x81, v)
}

func TestExprMemoization(t *testing.T) {
	symbols := NewSymbolTable()
	symbols.Define(Label{Type: LabelSymbolic, Name: "x"}, 5)

	expr := parseExprFrom(t, "x+1")
	v, err := expr.Eval(0, symbols)
	require.NoError(t, err)
	require.Equal(t, 6, v)

	// Once folded, the result survives even against a different table.
	v, err = expr.Eval(0, NewSymbolTable())
	require.NoError(t, err)
	assert.Equal(t, 6, v)
}

func TestExprProgramCounter(t *testing.T) {
	symbols := NewSymbolTable()
	v, err := parseExprFrom(t, "*+2").Eval(0x1000, symbols)
	require.NoError(t, err)
	assert.Equal(t, 0x1002, v)
}

func TestExprRangeCheck(t *testing.T) {
	symbols := NewSymbolTable()

	_, err := parseExprFrom(t, "$ffff+1").Eval(0, symbols)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a number between 0 and 65535")

	_, err = parseExprFrom(t, "1-2").Eval(0, symbols)
	require.Error(t, err)
}

func TestExprDivisionByZero(t *testing.T) {
	symbols := NewSymbolTable()
	_, err := parseExprFrom(t, "1/0").Eval(0, symbols)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Division by zero")
}

func TestExprCharacterLiteral(t *testing.T) {
	symbols := NewSymbolTable()
	v, err := parseExprFrom(t, `"A"`).Eval(0, symbols)
	require.NoError(t, err)
	assert.Equal(t, int(Petscii('A')), v)
}

func TestSelectByte(t *testing.T) {
	b, ok := selectByte(SelectorLow, 0x1234)
	require.True(t, ok)
	assert.Equal(t, byte(0x34), b)

	b, ok = selectByte(SelectorHigh, 0x1234)
	require.True(t, ok)
	assert.Equal(t, byte(0x12), b)

	b, ok = selectByte(SelectorUnspecified, 0x80)
	require.True(t, ok)
	assert.Equal(t, byte(0x80), b)

	_, ok = selectByte(SelectorUnspecified, 0x100)
	assert.False(t, ok)
}
