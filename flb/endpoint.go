// Package flb implements the load-balancing core of a remote-procedure-call
// client: given a non-empty set of candidate endpoints for a single
// invocation, select exactly one according to a configured policy.
//
// Endpoint discovery, health checking, connection management, transport,
// serialization, timeout enforcement, and configuration parsing are all
// external collaborators. flb only reads what it is handed.
package flb

import "fmt"

// Endpoint is an opaque handle to a single service provider instance.
// Implementations must be safe for concurrent reads from many goroutines.
type Endpoint interface {
	// Address is the stable "host:port" identity used for hashing and
	// as the key into per-endpoint counters held by external collaborators.
	Address() string

	// StartTimestampMs is the epoch-millisecond time the endpoint registered.
	// Zero means unknown, which disables weight warm-up for this endpoint.
	StartTimestampMs() int64

	// MethodAttr performs a typed per-method attribute lookup, returning
	// def if methodName/key is not configured for this endpoint.
	MethodAttr(methodName, key string, def any) any
}

// Invocation describes a single remote call: the method being invoked and
// its ordered, opaque argument list.
type Invocation struct {
	MethodName string
	Arguments  []any
}

// Arg returns the invocation's i-th argument and true, or nil and false if
// i is out of range.
func (inv Invocation) Arg(i int) (any, bool) {
	if i < 0 || i >= len(inv.Arguments) {
		return nil, false
	}
	return inv.Arguments[i], true
}

// ServiceTarget identifies a remote service independent of method, used to
// namespace the per-method state round-robin and consistent-hash own.
type ServiceTarget struct {
	ServiceKey string
}

// methodKey builds the "serviceKey.methodName" key used for per-method state.
func methodKey(target ServiceTarget, methodName string) string {
	return target.ServiceKey + "." + methodName
}

// StaticEndpoint is a concrete Endpoint backed by an in-memory attribute
// bag. WithAttr mutates the bag in place and is not synchronized with
// concurrent reads, so attributes are set before the endpoint is handed to
// a policy. It is the reference implementation used by tests, the
// bundled example, and any caller that doesn't already have a discovery
// client's own endpoint type -- shaped after fapi.Service's read-only
// accessor style, minus the etcd registration record it wraps.
type StaticEndpoint struct {
	address          string
	startTimestampMs int64
	// methodAttrs[methodName][key] -> value. The "" method name holds
	// service-wide defaults consulted when no per-method override exists.
	methodAttrs map[string]map[string]any
}

// NewStaticEndpoint creates an endpoint with the given address and
// registration timestamp (0 means unknown / disables warm-up).
func NewStaticEndpoint(address string, startTimestampMs int64) *StaticEndpoint {
	return &StaticEndpoint{
		address:          address,
		startTimestampMs: startTimestampMs,
		methodAttrs:      make(map[string]map[string]any),
	}
}

// WithAttr sets a per-method attribute and returns the endpoint for chaining.
// Pass "" as methodName to set a service-wide default.
func (e *StaticEndpoint) WithAttr(methodName, key string, value any) *StaticEndpoint {
	m, ok := e.methodAttrs[methodName]
	if !ok {
		m = make(map[string]any)
		e.methodAttrs[methodName] = m
	}
	m[key] = value
	return e
}

func (e *StaticEndpoint) Address() string { return e.address }

func (e *StaticEndpoint) StartTimestampMs() int64 { return e.startTimestampMs }

func (e *StaticEndpoint) MethodAttr(methodName, key string, def any) any {
	if m, ok := e.methodAttrs[methodName]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := e.methodAttrs[""]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return def
}

func (e *StaticEndpoint) String() string {
	return fmt.Sprintf("StaticEndpoint{address: %s, startTimestampMs: %d}", e.address, e.startTimestampMs)
}

// attrInt reads a per-method attribute as an int, tolerating int/int64/float64/string
// the way fapi.Service.GetMetaInt does for etcd-sourced metadata.
func attrInt(ep Endpoint, methodName, key string, def int) int {
	v := ep.MethodAttr(methodName, key, def)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		var out int
		if _, err := fmt.Sscanf(n, "%d", &out); err == nil {
			return out
		}
	}
	return def
}

// attrString reads a per-method attribute as a string, defaulting otherwise.
func attrString(ep Endpoint, methodName, key, def string) string {
	v := ep.MethodAttr(methodName, key, def)
	if s, ok := v.(string); ok {
		return s
	}
	return def
}
