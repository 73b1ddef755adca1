package flb

import (
	"crypto/md5"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/source-build/go-flb/flb/internal/flog"
)

// PolicyConsistentHash is the external configuration identifier for ConsistentHashPolicy.
const PolicyConsistentHash = "consistenthash"

const (
	DefaultHashNodes     = 160
	DefaultHashArguments = "0"
)

// chSelector is the immutable per-method state ConsistentHashPolicy swaps
// atomically on candidate-set change: a hashed virtual-node ring plus the
// configuration it was built from.
type chSelector struct {
	keys          []uint64 // sorted ascending
	ring          map[uint64]Endpoint
	identityHash  uint64
	replicaNumber int
	argumentIndex []int
}

// ConsistentHashPolicy maps invocations with identical hashable arguments to
// the same endpoint, stable under unrelated endpoint churn. It builds an
// MD5-hashed virtual-node ring per (serviceKey, methodName),
// rebuilt whenever the candidate set's address-sequence fingerprint changes
// (see signature.go), and swaps it in atomically so concurrent selections
// observe either the prior selector or the new one, never a partial one.
type ConsistentHashPolicy struct {
	selectors sync.Map // key: serviceKey.methodName -> *atomic.Pointer[chSelector]
}

// NewConsistentHashPolicy creates a consistent-hash policy with no per-method state.
func NewConsistentHashPolicy() *ConsistentHashPolicy {
	return &ConsistentHashPolicy{}
}

func (p *ConsistentHashPolicy) Name() string { return PolicyConsistentHash }

// Select implements the Policy contract for consistent-hash selection.
func (p *ConsistentHashPolicy) Select(candidates []Endpoint, target ServiceTarget, invocation Invocation) (Endpoint, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyCandidates
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	key := methodKey(target, invocation.MethodName)
	v, _ := p.selectors.LoadOrStore(key, new(atomic.Pointer[chSelector]))
	ptr := v.(*atomic.Pointer[chSelector])

	sig := candidateSignature(candidates)
	sel := ptr.Load()
	if sel == nil || sel.identityHash != sig {
		newSel, err := buildSelector(candidates, invocation.MethodName, sig)
		if err != nil {
			return nil, err
		}
		ptr.Store(newSel)
		flog.Debug("consistent hash ring rebuilt", flog.Fields{
			"method": invocation.MethodName, "candidates": len(candidates), "nodes": newSel.replicaNumber,
		})
		sel = newSel
	}

	return sel.lookup(invocation), nil
}

func buildSelector(candidates []Endpoint, methodName string, sig uint64) (*chSelector, error) {
	nodes := attrInt(candidates[0], methodName, "hash.nodes", DefaultHashNodes)
	if nodes <= 0 || nodes%4 != 0 {
		return nil, ErrMisconfiguredHashNodes
	}

	argsAttr := attrString(candidates[0], methodName, "hash.arguments", DefaultHashArguments)
	argIdx := parseArgumentIndex(argsAttr)

	ring := make(map[uint64]Endpoint, len(candidates)*nodes)
	for _, ep := range candidates {
		for i := 0; i < nodes/4; i++ {
			digest := md5.Sum([]byte(ep.Address() + strconv.Itoa(i)))
			for h := 0; h < 4; h++ {
				ring[assembleRingKey(digest, h)] = ep
			}
		}
	}

	keys := make([]uint64, 0, len(ring))
	for k := range ring {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return &chSelector{
		keys:          keys,
		ring:          ring,
		identityHash:  sig,
		replicaNumber: nodes,
		argumentIndex: argIdx,
	}, nil
}

// assembleRingKey extracts four bytes digest[4h:4h+4] and assembles a 32-bit
// value: m = (digest[4h+3]<<24) | (digest[4h+2]<<16) |
// (digest[4h+1]<<8) | digest[4h], widened into a 64-bit ring key.
func assembleRingKey(digest [16]byte, h int) uint64 {
	b := digest[4*h : 4*h+4]
	m := (uint32(b[3]) << 24) | (uint32(b[2]) << 16) | (uint32(b[1]) << 8) | uint32(b[0])
	return uint64(m)
}

func parseArgumentIndex(raw string) []int {
	parts := strings.Split(raw, ",")
	idx := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			continue
		}
		idx = append(idx, n)
	}
	if len(idx) == 0 {
		idx = append(idx, 0)
	}
	return idx
}

// lookup computes the hash key from invocation's selected arguments and
// returns the endpoint owning the ring's first key >= that hash, wrapping
// to the ring's first key when none is greater or equal.
func (s *chSelector) lookup(invocation Invocation) Endpoint {
	var buf strings.Builder
	for _, i := range s.argumentIndex {
		if arg, ok := invocation.Arg(i); ok {
			fmt.Fprintf(&buf, "%v", arg)
		}
	}

	digest := md5.Sum([]byte(buf.String()))
	search := assembleRingKey(digest, 0)

	i := sort.Search(len(s.keys), func(i int) bool { return s.keys[i] >= search })
	if i == len(s.keys) {
		i = 0
	}
	return s.ring[s.keys[i]]
}
