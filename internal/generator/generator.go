// Package generator draws the numbers spoken in each round.
package generator

import (
	"math/rand"
	"time"
)

const (
	// Min is the smallest target.
	Min = 1
	// Max is the largest target.
	Max = 1_000_000
)

// Generator produces random round targets.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewWithRand returns a Generator using the provided source.
func NewWithRand(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// Target returns a uniform integer in [Min, Max].
func (g *Generator) Target() int {
	return Between(g.rnd, Min, Max)
}

// Between returns a uniform integer in [lo, hi].
func Between(rnd *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rnd.Intn(hi-lo+1)
}
