package grpclb

import (
	"github.com/source-build/go-flb/flb"
	"google.golang.org/grpc/balancer"
	"google.golang.org/grpc/balancer/base"
)

// RoundRobinName is the gRPC service-config load-balancing policy name that
// selects flb's weighted round-robin policy, mirroring
// frpc/weightroundrobinbalance.Name.
const RoundRobinName = "flb_round_robin"

func init() {
	balancer.Register(base.NewBalancerBuilder(RoundRobinName, &roundRobinPickerBuilder{}, base.Config{HealthCheck: true}))
}

// roundRobinPickerBuilder shares one flb.RoundRobinPolicy across every
// picker it builds: the per-method counters must persist across ready-set
// rebuilds -- the counter survives candidate-set churn by design -- so the
// policy itself is the
// process-wide singleton, not the picker.
type roundRobinPickerBuilder struct {
	policy *flb.RoundRobinPolicy
}

func (b *roundRobinPickerBuilder) Build(info base.PickerBuildInfo) balancer.Picker {
	if len(info.ReadySCs) == 0 {
		return base.NewErrPicker(balancer.ErrNoSubConnAvailable)
	}
	if b.policy == nil {
		b.policy = flb.NewRoundRobinPolicy()
	}

	endpoints, byAddress := endpointsFromReadySCs(info)
	return &picker{
		dispatcher: flb.NewDispatcher(b.policy),
		endpoints:  endpoints,
		byAddress:  byAddress,
	}
}
