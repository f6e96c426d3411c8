package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a fresh deterministic random number generator for a
	// named operation. Two calls with the same seed yield identical streams.
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)
}
