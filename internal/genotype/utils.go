package genotype

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// RandomElement picks one value uniformly. A nil rng falls back to a
// time-seeded source.
func RandomElement[T any](rng *rand.Rand, values []T) (T, error) {
	var zero T
	if len(values) == 0 {
		return zero, fmt.Errorf("values are required")
	}
	rng = ensureRNG(rng)
	return values[rng.Intn(len(values))], nil
}

// NewGenomeID draws a version 4 uuid from rng, so seeded runs produce the
// same ids.
func NewGenomeID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(ensureRNG(rng))
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func ensureRNG(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// randomCentered returns a weight in [-0.5, 0.5).
func randomCentered(rng *rand.Rand) float64 {
	return rng.Float64() - 0.5
}
