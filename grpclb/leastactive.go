package grpclb

import (
	"github.com/source-build/go-flb/flb"
	"google.golang.org/grpc/balancer"
	"google.golang.org/grpc/balancer/base"
)

// LeastActiveName is the gRPC service-config load-balancing policy name that
// selects flb's least-active-connections policy, mirroring
// frpc/leastconnbalance.Name.
const LeastActiveName = "flb_least_active"

func init() {
	balancer.Register(base.NewBalancerBuilder(LeastActiveName, &leastActivePickerBuilder{}, base.Config{HealthCheck: true}))
}

// leastActivePickerBuilder shares one counter and one flb.LeastActivePolicy
// across every picker it builds: the active-call counts must outlive any
// single ready-set snapshot, the same way frpc/leastconnbalance keeps its
// connection-count map on the balancer, not the picker.
type leastActivePickerBuilder struct {
	counter *flb.InMemoryActiveCounter
	policy  *flb.LeastActivePolicy
}

func (b *leastActivePickerBuilder) Build(info base.PickerBuildInfo) balancer.Picker {
	if len(info.ReadySCs) == 0 {
		return base.NewErrPicker(balancer.ErrNoSubConnAvailable)
	}
	if b.policy == nil {
		b.counter = flb.NewInMemoryActiveCounter()
		b.policy = flb.NewLeastActivePolicy(b.counter)
	}

	endpoints, byAddress := endpointsFromReadySCs(info)
	return &picker{
		dispatcher: flb.NewDispatcher(b.policy),
		endpoints:  endpoints,
		byAddress:  byAddress,
		counter:    b.counter,
	}
}
