package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreeterHi(t *testing.T) {
	g := &Greeter{}
	assert.Equal(t, "hello", g.Hi())
}

func TestMathSquare(t *testing.T) {
	m := &Math{}
	assert.Equal(t, 9, m.SquareInt(3))
	assert.Equal(t, "abab", m.SquareString("ab"))
}

func TestBuildVersionPinned(t *testing.T) {
	b := NewBuild()
	assert.Equal(t, "1.0.0", b.Version)
	assert.Equal(t, 7, b.Echo(7))
}

func TestAsyncReadyAndFail(t *testing.T) {
	a := &Async{}

	v, err := a.Ready().Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ready", v)

	_, err = a.Fail().Await(context.Background())
	require.Error(t, err)
	assert.Equal(t, "fail", err.Error())
}
