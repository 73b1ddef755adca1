package flb

import "sync"

// ActiveCounter reports the number of in-flight RPCs to an endpoint for a
// given method. It is an external collaborator maintained by the caller
// around each RPC -- the core only reads it.
type ActiveCounter interface {
	// Get returns the non-negative active-call count for endpointAddress
	// and methodName.
	Get(endpointAddress, methodName string) int
}

// InMemoryActiveCounter is a reference ActiveCounter: an in-process map of
// (address, method) -> count, incremented/decremented by the caller around
// each RPC. Grounded on fapi.LeastConnectionsBalancer's connection-count
// map and its Inc-on-select/ReleaseConnection-on-complete pairing.
type InMemoryActiveCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewInMemoryActiveCounter creates an empty active-call counter.
func NewInMemoryActiveCounter() *InMemoryActiveCounter {
	return &InMemoryActiveCounter{counts: make(map[string]int64)}
}

func key(address, methodName string) string {
	return address + "\x00" + methodName
}

// Inc should be called when an RPC to endpointAddress/methodName starts.
func (c *InMemoryActiveCounter) Inc(endpointAddress, methodName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key(endpointAddress, methodName)]++
}

// Dec should be called when an RPC to endpointAddress/methodName completes.
func (c *InMemoryActiveCounter) Dec(endpointAddress, methodName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(endpointAddress, methodName)
	if c.counts[k] > 0 {
		c.counts[k]--
	}
}

// Get implements ActiveCounter.
func (c *InMemoryActiveCounter) Get(endpointAddress, methodName string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(c.counts[key(endpointAddress, methodName)])
}
