package busproto

import (
	"time"

	"golang.org/x/exp/rand"
)

// expRand adapts golang.org/x/exp/rand to RandSource.
type expRand struct {
	r *rand.Rand
}

// NewRandSource returns a RandSource seeded from the wall clock. Tests that
// need determinism should supply their own RandSource instead.
func NewRandSource() RandSource {
	return &expRand{r: rand.New(rand.NewSource(uint64(time.Now().UnixNano())))}
}

func (e *expRand) Uint32(bound uint32) uint32 {
	if bound == 0 {
		return 0
	}
	return uint32(e.r.Int63n(int64(bound)))
}
