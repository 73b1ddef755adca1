package flb

import (
	"fmt"

	"github.com/source-build/go-flb/flb/internal/flog"
)

// Policy is the common dispatch contract all four load-balancing algorithms
// share. Implementations must be safe for concurrent Select calls and must
// not perform I/O, acquire long-held locks, or suspend.
type Policy interface {
	// Name returns the policy's external configuration identifier.
	Name() string

	// Select chooses one endpoint from candidates, which is never empty --
	// the Dispatcher handles the size-0/1 fast paths before delegating.
	Select(candidates []Endpoint, target ServiceTarget, invocation Invocation) (Endpoint, error)
}

// Dispatcher is the single entry point of the load-balancing core: it
// validates inputs, handles the size-0/1 fast paths, and routes everything
// else to its configured policy. One Dispatcher is created per
// (service, method) binding by the surrounding framework's extension
// mechanism; policy selection is static for the Dispatcher's lifetime.
type Dispatcher struct {
	policy Policy
}

// NewDispatcher builds a Dispatcher bound to policy.
func NewDispatcher(policy Policy) *Dispatcher {
	return &Dispatcher{policy: policy}
}

// NewDispatcherByName builds a Dispatcher for one of the four built-in
// policy identifiers ("random", "roundrobin", "leastactive",
// "consistenthash"), mirroring fapi.NewLoadBalancer's tagged-variant
// factory. counter is only consulted by "leastactive"; it may be nil for
// the other three.
func NewDispatcherByName(policyName string, counter ActiveCounter) (*Dispatcher, error) {
	switch policyName {
	case PolicyRandom:
		return NewDispatcher(NewRandomPolicy()), nil
	case PolicyRoundRobin:
		return NewDispatcher(NewRoundRobinPolicy()), nil
	case PolicyLeastActive:
		if counter == nil {
			counter = NewInMemoryActiveCounter()
		}
		return NewDispatcher(NewLeastActivePolicy(counter)), nil
	case PolicyConsistentHash:
		return NewDispatcher(NewConsistentHashPolicy()), nil
	default:
		return nil, fmt.Errorf("flb: unknown policy %q", policyName)
	}
}

// Select chooses exactly one endpoint from candidates for invocation against
// target. It fails with ErrEmptyCandidates if candidates is empty; if
// candidates holds exactly one endpoint it is returned unconditionally,
// skipping all policy work including weight resolution. Otherwise the
// call is delegated to the configured policy.
func (d *Dispatcher) Select(candidates []Endpoint, target ServiceTarget, invocation Invocation) (Endpoint, error) {
	if len(candidates) == 0 {
		flog.Warn("select called with no candidates", flog.Fields{"method": invocation.MethodName})
		return nil, ErrEmptyCandidates
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	ep, err := d.policy.Select(candidates, target, invocation)
	if err != nil {
		return nil, fmt.Errorf("flb: %s policy: %w", d.policy.Name(), err)
	}
	return ep, nil
}

// PolicyName returns the name of the Dispatcher's configured policy.
func (d *Dispatcher) PolicyName() string {
	return d.policy.Name()
}
