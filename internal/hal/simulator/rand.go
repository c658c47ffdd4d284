package simulator

import "math/rand"

// mathRand wraps math/rand.Rand behind a fixed seed; NewState gives every
// State one seeded with 1. The simulated IMU's sinusoidal noise is computed
// from wall-clock time and does not draw from it. There is no
// corpus-grounded noise-generation library for this narrow a need, so it
// stays on the standard library.
type mathRand struct {
	*rand.Rand
}

func newMathRand(seed int64) *mathRand {
	return &mathRand{rand.New(rand.NewSource(seed))}
}
