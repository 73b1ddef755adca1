package grpclb

import (
	"github.com/source-build/go-flb/flb"
	"google.golang.org/grpc/balancer"
	"google.golang.org/grpc/balancer/base"
)

// RandomName is the gRPC service-config load-balancing policy name that selects
// flb's weighted-random policy, mirroring frpc/randombalance.Name.
const RandomName = "flb_random"

func init() {
	balancer.Register(base.NewBalancerBuilder(RandomName, &randomPickerBuilder{}, base.Config{HealthCheck: true}))
}

type randomPickerBuilder struct{}

func (*randomPickerBuilder) Build(info base.PickerBuildInfo) balancer.Picker {
	if len(info.ReadySCs) == 0 {
		return base.NewErrPicker(balancer.ErrNoSubConnAvailable)
	}

	endpoints, byAddress := endpointsFromReadySCs(info)
	return &picker{
		dispatcher: flb.NewDispatcher(flb.NewRandomPolicy()),
		endpoints:  endpoints,
		byAddress:  byAddress,
	}
}
