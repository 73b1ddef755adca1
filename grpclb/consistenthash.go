package grpclb

import (
	"github.com/source-build/go-flb/flb"
	"google.golang.org/grpc/balancer"
	"google.golang.org/grpc/balancer/base"
)

// ConsistentHashName is the gRPC service-config load-balancing policy name
// that selects flb's consistent-hash policy, mirroring the ketama-style ring
// fapi.ConsistentHashBalancer builds, but generalized to gRPC's
// balancer.Picker contract. Callers must attach the value to hash with
// WithHashArguments before issuing the RPC -- see context.go.
const ConsistentHashName = "flb_consistent_hash"

func init() {
	balancer.Register(base.NewBalancerBuilder(ConsistentHashName, &consistentHashPickerBuilder{}, base.Config{HealthCheck: true}))
}

// consistentHashPickerBuilder shares one flb.ConsistentHashPolicy across
// every picker it builds: the ring is only rebuilt when the candidate set's
// signature changes (flb.candidateSignature), so a fresh policy per build
// would defeat that and rebuild the ring on every resolver update.
type consistentHashPickerBuilder struct {
	policy *flb.ConsistentHashPolicy
}

func (b *consistentHashPickerBuilder) Build(info base.PickerBuildInfo) balancer.Picker {
	if len(info.ReadySCs) == 0 {
		return base.NewErrPicker(balancer.ErrNoSubConnAvailable)
	}
	if b.policy == nil {
		b.policy = flb.NewConsistentHashPolicy()
	}

	endpoints, byAddress := endpointsFromReadySCs(info)
	return &picker{
		dispatcher: flb.NewDispatcher(b.policy),
		endpoints:  endpoints,
		byAddress:  byAddress,
	}
}
