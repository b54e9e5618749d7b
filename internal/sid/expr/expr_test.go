package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleOperator(t *testing.T) {
	n, err := Parse("P(x)")
	require.NoError(t, err)
	assert.Equal(t, OpP, n.Op)
	require.Len(t, n.Args, 1)
	assert.Equal(t, "x", n.Args[0].Atom)
	assert.True(t, n.Args[0].IsVar)
}

func TestParseNestedExpression(t *testing.T) {
	n, err := Parse("C(P(x), O(y))")
	require.NoError(t, err)
	assert.Equal(t, OpC, n.Op)
	require.Len(t, n.Args, 2)
	assert.Equal(t, OpP, n.Args[0].Op)
	assert.Equal(t, OpO, n.Args[1].Op)
}

func TestParseVariadicOperator(t *testing.T) {
	n, err := Parse("S+(a, b, c)")
	require.NoError(t, err)
	assert.Equal(t, OpSp, n.Op)
	assert.Len(t, n.Args, 3)
}

func TestParseRejectsWrongArityFixed(t *testing.T) {
	_, err := Parse("P(x, y)")
	assert.ErrorIs(t, err, ErrArity)

	_, err = Parse("C(x)")
	assert.ErrorIs(t, err, ErrArity)
}

func TestParseRejectsEmptyVariadic(t *testing.T) {
	_, err := Parse("S-()")
	assert.ErrorIs(t, err, ErrArity)
}

func TestParseRejectsTrailingInput(t *testing.T) {
	_, err := Parse("P(x))")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestParseLiteralIdentifierIsNotVariable(t *testing.T) {
	n, err := Parse("P(Dof1)")
	require.NoError(t, err)
	assert.False(t, n.Args[0].IsVar)
}

func TestParseDollarVariable(t *testing.T) {
	n, err := Parse("O($foo)")
	require.NoError(t, err)
	assert.True(t, n.Args[0].IsVar)
	assert.Equal(t, "$foo", n.Args[0].Atom)
}

func TestIsVariableBareLowercaseLetter(t *testing.T) {
	assert.True(t, IsVariable("x"))
	assert.False(t, IsVariable("xy"))
	assert.False(t, IsVariable("X"))
	assert.True(t, IsVariable("$anything"))
}
