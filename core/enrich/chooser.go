package enrich

import (
	"math/rand/v2"
	"sync"
)

// Chooser picks one of n candidates. *rand.Rand satisfies it.
type Chooser interface {
	IntN(n int) int
}

// NewChooser returns a goroutine-safe chooser. A zero seed draws from the
// runtime's random source, so runs are not reproducible.
func NewChooser(seed uint64) Chooser {
	if seed == 0 {
		return globalChooser{}
	}
	return &lockedChooser{r: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

type globalChooser struct{}

func (globalChooser) IntN(n int) int { return rand.IntN(n) }

type lockedChooser struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (c *lockedChooser) IntN(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.r.IntN(n)
}

// FixedChooser always picks the same position, clamped to the last one.
type FixedChooser int

func (f FixedChooser) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	if f < 0 {
		return 0
	}
	return int(f)
}
