package flb

import (
	"math/rand"
	"sync"
	"time"

	"github.com/source-build/go-flb/flb/internal/flog"
)

// PolicyRandom is the external configuration identifier for RandomPolicy.
const PolicyRandom = "random"

// RandomPolicy chooses a candidate with probability proportional to its
// effective weight, falling back to a uniform pick when all weights are
// equal or every candidate has been excluded (total weight 0). Grounded on
// fapi.RandomBalancer's mutex-protected per-instance *rand.Rand.
type RandomPolicy struct {
	mu  sync.Mutex
	rng *rand.Rand
	// intn, when set, overrides rng for deterministic tests.
	intn func(n int) int
}

// NewRandomPolicy creates a random policy seeded from the current time in
// nanoseconds.
func NewRandomPolicy() *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (p *RandomPolicy) Name() string { return PolicyRandom }

func (p *RandomPolicy) draw(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.intn != nil {
		return p.intn(n)
	}
	return p.rng.Intn(n)
}

// Select implements the Policy contract for weighted random selection.
func (p *RandomPolicy) Select(candidates []Endpoint, target ServiceTarget, invocation Invocation) (Endpoint, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyCandidates
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	weights := make([]int, len(candidates))
	total := 0
	allEqual := true
	for i, ep := range candidates {
		weights[i] = Weight(ep, invocation.MethodName)
		total += weights[i]
		if i > 0 && weights[i] != weights[0] {
			allEqual = false
		}
	}

	if total > 0 && !allEqual {
		r := p.draw(total)
		for i, w := range weights {
			r -= w
			if r < 0 {
				return candidates[i], nil
			}
		}
		// Unreachable for a correct draw, but fall through defensively.
	}

	idx := p.draw(len(candidates))
	return candidates[idx], nil
}

// weightedPick runs the same inverse-CDF scan RandomPolicy uses, shared
// with LeastActivePolicy's tie-break. draw must
// return a uniform value in [0, total).
func weightedPick(candidates []Endpoint, weights []int, total int, draw func(int) int) Endpoint {
	r := draw(total)
	for i, w := range weights {
		r -= w
		if r < 0 {
			return candidates[i]
		}
	}
	flog.Warn("weighted pick fell through scan", flog.Fields{"total": total})
	return candidates[len(candidates)-1]
}
