package flb

import (
	"math/rand"
	"sync"
	"time"
)

// PolicyLeastActive is the external configuration identifier for LeastActivePolicy.
const PolicyLeastActive = "leastactive"

// LeastActivePolicy filters candidates to those with the minimum observed
// active-call count, then breaks ties with weighted random (and, among
// equal weights, uniform random). Grounded on fapi.LeastConnectionsBalancer's
// single-pass minimum scan, with a weighted tie-break among the idle set.
type LeastActivePolicy struct {
	counter ActiveCounter

	mu   sync.Mutex
	rng  *rand.Rand
	intn func(n int) int
}

// NewLeastActivePolicy creates a least-active policy reading active-call
// counts from counter.
func NewLeastActivePolicy(counter ActiveCounter) *LeastActivePolicy {
	return &LeastActivePolicy{
		counter: counter,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *LeastActivePolicy) Name() string { return PolicyLeastActive }

func (p *LeastActivePolicy) draw(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.intn != nil {
		return p.intn(n)
	}
	return p.rng.Intn(n)
}

// Select implements the Policy contract for least-active selection.
func (p *LeastActivePolicy) Select(candidates []Endpoint, target ServiceTarget, invocation Invocation) (Endpoint, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyCandidates
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	leastActive := -1
	var tied []int
	totalWeight := 0
	firstWeight := 0
	sameWeight := true

	for i, ep := range candidates {
		active := p.counter.Get(ep.Address(), invocation.MethodName)
		switch {
		case leastActive == -1 || active < leastActive:
			leastActive = active
			tied = tied[:0]
			tied = append(tied, i)
			totalWeight = Weight(ep, invocation.MethodName)
			firstWeight = totalWeight
			sameWeight = true
		case active == leastActive:
			tied = append(tied, i)
			w := Weight(ep, invocation.MethodName)
			totalWeight += w
			if w != firstWeight {
				sameWeight = false
			}
		}
	}

	if len(tied) == 1 {
		return candidates[tied[0]], nil
	}

	if !sameWeight && totalWeight > 0 {
		weights := make([]int, len(tied))
		tiedEndpoints := make([]Endpoint, len(tied))
		for i, idx := range tied {
			weights[i] = Weight(candidates[idx], invocation.MethodName)
			tiedEndpoints[i] = candidates[idx]
		}
		return weightedPick(tiedEndpoints, weights, totalWeight, p.draw), nil
	}

	return candidates[tied[p.draw(len(tied))]], nil
}
