package grpclb

import (
	"github.com/source-build/go-flb/flb"
	"google.golang.org/grpc/balancer"
)

// picker delegates Pick to an flb.Dispatcher built for this ready-SubConn
// snapshot, the same immutable-per-build-snapshot shape
// frpc/randombalance.rrPicker and frpc/weightroundrobinbalance.rrPicker use.
type picker struct {
	dispatcher *flb.Dispatcher
	endpoints  []flb.Endpoint
	byAddress  map[string]balancer.SubConn
	counter    *flb.InMemoryActiveCounter // nil unless the policy needs it
}

func (p *picker) Pick(info balancer.PickInfo) (balancer.PickResult, error) {
	if len(p.endpoints) == 0 {
		return balancer.PickResult{}, balancer.ErrNoSubConnAvailable
	}

	serviceKey, methodName := splitFullMethod(info.FullMethodName)
	inv := flb.Invocation{
		MethodName: methodName,
		Arguments:  hashArgumentsFromContext(info.Ctx),
	}

	ep, err := p.dispatcher.Select(p.endpoints, flb.ServiceTarget{ServiceKey: serviceKey}, inv)
	if err != nil {
		return balancer.PickResult{}, balancer.ErrNoSubConnAvailable
	}

	sc, ok := p.byAddress[ep.Address()]
	if !ok {
		return balancer.PickResult{}, balancer.ErrNoSubConnAvailable
	}

	if p.counter == nil {
		return balancer.PickResult{SubConn: sc}, nil
	}

	address, method := ep.Address(), methodName
	p.counter.Inc(address, method)
	return balancer.PickResult{
		SubConn: sc,
		Done: func(balancer.DoneInfo) {
			p.counter.Dec(address, method)
		},
	}, nil
}
