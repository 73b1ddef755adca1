package flb

import (
	"sync"
	"sync/atomic"
)

// PolicyRoundRobin is the external configuration identifier for RoundRobinPolicy.
const PolicyRoundRobin = "roundrobin"

// RoundRobinPolicy produces a deterministic rotation that, over one full
// cycle, picks endpoint i exactly weight[i] times; with equal weights it
// degenerates to plain round-robin. This implements the
// literal deficit/mod-based scan (known O(maxWeight*length) pathology kept
// intentionally -- see DESIGN.md), not the smooth-weighted-round-robin
// alternative fapi.WeightedRoundRobinBalancer demonstrates elsewhere in
// this codebase.
//
// Per-method counters persist across candidate-set changes: weights are
// recomputed every call, so a stale counter value is still safe to rotate
// with the current candidate set.
type RoundRobinPolicy struct {
	counters sync.Map // key: serviceKey.methodName -> *atomic.Uint64
}

// NewRoundRobinPolicy creates a round-robin policy with no per-method state.
func NewRoundRobinPolicy() *RoundRobinPolicy {
	return &RoundRobinPolicy{}
}

func (p *RoundRobinPolicy) Name() string { return PolicyRoundRobin }

func (p *RoundRobinPolicy) sequence(key string) uint64 {
	v, _ := p.counters.LoadOrStore(key, new(atomic.Uint64))
	counter := v.(*atomic.Uint64)
	return counter.Add(1) - 1
}

type rrEntry struct {
	ep        Endpoint
	remaining int
}

// Select implements the Policy contract for weighted round-robin selection.
func (p *RoundRobinPolicy) Select(candidates []Endpoint, target ServiceTarget, invocation Invocation) (Endpoint, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyCandidates
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	entries := make([]rrEntry, 0, len(candidates))
	minWeight, maxWeight, weightSum := 0, 0, 0
	for i, ep := range candidates {
		w := Weight(ep, invocation.MethodName)
		if i == 0 || w < minWeight {
			minWeight = w
		}
		if w > maxWeight {
			maxWeight = w
		}
		if w > 0 {
			entries = append(entries, rrEntry{ep: ep, remaining: w})
			weightSum += w
		}
	}

	seq := p.sequence(methodKey(target, invocation.MethodName))

	if maxWeight > 0 && minWeight < maxWeight && weightSum > 0 {
		mod := int(seq % uint64(weightSum))
		for pass := 0; pass < maxWeight; pass++ {
			for i := range entries {
				e := &entries[i]
				if mod == 0 && e.remaining > 0 {
					return e.ep, nil
				}
				if e.remaining > 0 {
					e.remaining--
					mod--
				}
			}
		}
	}

	// Uniform-weight fallback (also covers the all-zero-weight case).
	return candidates[int(seq%uint64(len(candidates)))], nil
}
