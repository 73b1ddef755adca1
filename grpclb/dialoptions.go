package grpclb

import (
	"fmt"

	"google.golang.org/grpc"
)

// WithBalancerRandom dials using flb's weighted-random policy, mirroring the
// naming of frpc.WithBalancerRandom.
func WithBalancerRandom() grpc.DialOption {
	return serviceConfigOption(RandomName)
}

// WithBalancerRoundRobin dials using flb's weighted round-robin policy,
// mirroring the naming of frpc.WithBalancerRoundRobin.
func WithBalancerRoundRobin() grpc.DialOption {
	return serviceConfigOption(RoundRobinName)
}

// WithBalancerLeastActive dials using flb's least-active-connections policy,
// mirroring the naming of frpc.WithBalancerLeastConn.
func WithBalancerLeastActive() grpc.DialOption {
	return serviceConfigOption(LeastActiveName)
}

// WithBalancerConsistentHash dials using flb's consistent-hash policy. Pair
// it with WithHashArguments on the call context to get sticky routing.
func WithBalancerConsistentHash() grpc.DialOption {
	return serviceConfigOption(ConsistentHashName)
}

func serviceConfigOption(policyName string) grpc.DialOption {
	return grpc.WithDefaultServiceConfig(fmt.Sprintf(`{"loadBalancingPolicy":"%s"}`, policyName))
}
