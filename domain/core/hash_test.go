package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHash(t *testing.T) {
	h := NewHash([]byte("abc"))
	assert.Equal(t, Hash("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"), h)
	assert.False(t, h.IsEmpty())
	assert.Equal(t, string(h), h.String())
	assert.NotEqual(t, h, NewHash([]byte("abd")))
}

func TestHashJSON(t *testing.T) {
	type payload struct {
		Kind string
		X    []float64
	}

	a, err := HashJSON(payload{Kind: "welch", X: []float64{1, 2}})
	require.NoError(t, err)
	b, err := HashJSON(payload{Kind: "welch", X: []float64{1, 2}})
	require.NoError(t, err)
	c, err := HashJSON(payload{Kind: "welch", X: []float64{2, 1}})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	_, err = HashJSON(make(chan int))
	assert.Error(t, err)
}
