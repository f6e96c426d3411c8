package rng

import (
	"context"
	"math/rand"

	"abstats/ports"
)

// SeededRNG implements ports.RNGPort with math/rand sources. It holds no
// state, so concurrent callers never share a generator.
type SeededRNG struct{}

var _ ports.RNGPort = SeededRNG{}

// NewSeededRNG creates the default RNG adapter
func NewSeededRNG() SeededRNG {
	return SeededRNG{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (SeededRNG) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed)), nil
}
