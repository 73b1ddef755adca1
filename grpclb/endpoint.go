// Package grpclb adapts the four flb load-balancing policies to gRPC's
// balancer.Builder/Picker contract, generalizing the picker pattern
// frpc/randombalance, frpc/leastconnbalance and frpc/weightroundrobinbalance
// each hand-rolled inline into a single family of adapters that delegate the
// actual algorithm to flb.Dispatcher.
package grpclb

import (
	"sort"
	"strings"

	"github.com/source-build/go-flb/flb"
	"google.golang.org/grpc/attributes"
	"google.golang.org/grpc/balancer"
	"google.golang.org/grpc/balancer/base"
)

// Attribute keys read off resolver.Address.Attributes, set by whatever
// service-discovery resolver populates the gRPC resolver.State (out of
// scope for flb itself).
const (
	AttrWeight           = "weight"
	AttrWarmup           = "warmup"
	AttrStartTimestampMs = "start_timestamp_ms"
	AttrHashNodes        = "hash.nodes"
	AttrHashArguments    = "hash.arguments"
)

// grpcEndpoint adapts a gRPC resolver.Address (plus its attribute set) to
// the flb.Endpoint interface.
type grpcEndpoint struct {
	addr  string
	attrs *attributes.Attributes
}

func newGRPCEndpoint(info base.SubConnInfo) *grpcEndpoint {
	return &grpcEndpoint{
		addr:  info.Address.Addr,
		attrs: info.Address.Attributes,
	}
}

func (e *grpcEndpoint) Address() string { return e.addr }

func (e *grpcEndpoint) StartTimestampMs() int64 {
	if e.attrs == nil {
		return 0
	}
	if v, ok := e.attrs.Value(AttrStartTimestampMs).(int64); ok {
		return v
	}
	return 0
}

// MethodAttr reads key off the address's attribute set. Since gRPC's
// resolver.Address attributes are not themselves per-method, every method
// shares the same weight/warmup/hash configuration for a given address --
// per-method granularity is available to callers
// that build flb.Endpoint values directly (e.g. StaticEndpoint) rather than
// going through a gRPC resolver.
func (e *grpcEndpoint) MethodAttr(_, key string, def any) any {
	if e.attrs == nil {
		return def
	}
	if v := e.attrs.Value(key); v != nil {
		return v
	}
	return def
}

// splitFullMethod turns gRPC's "/package.Service/Method" PickInfo name into
// the (serviceKey, methodName) pair flb's per-method state is keyed by.
func splitFullMethod(fullMethod string) (serviceKey, methodName string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	parts := strings.SplitN(fullMethod, "/", 2)
	if len(parts) != 2 {
		return fullMethod, ""
	}
	return parts[0], parts[1]
}

var _ flb.Endpoint = (*grpcEndpoint)(nil)

// endpointsFromReadySCs extracts the ready SubConns and their addresses from
// a picker build, sorted by address. info.ReadySCs is an unordered map, so
// sorting keeps the candidate order -- and with it the consistent-hash
// candidate signature -- the same across builds of the same ready set.
func endpointsFromReadySCs(info base.PickerBuildInfo) ([]flb.Endpoint, map[string]balancer.SubConn) {
	endpoints := make([]flb.Endpoint, 0, len(info.ReadySCs))
	byAddress := make(map[string]balancer.SubConn, len(info.ReadySCs))
	for sc, scInfo := range info.ReadySCs {
		ep := newGRPCEndpoint(scInfo)
		endpoints = append(endpoints, ep)
		byAddress[ep.Address()] = sc
	}
	sort.Slice(endpoints, func(i, j int) bool { return endpoints[i].Address() < endpoints[j].Address() })
	return endpoints, byAddress
}
