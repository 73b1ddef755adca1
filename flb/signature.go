package flb

import "github.com/cespare/xxhash/v2"

// candidateSignature computes a cheap, deterministic fingerprint over the
// ordered sequence of candidate addresses. This replaces a
// pointer-identity
// rebuild trigger: two candidate slices with the same addresses in the same
// order compare equal here even if they are different slice values,
// avoiding unnecessary consistent-hash ring rebuilds.
func candidateSignature(candidates []Endpoint) uint64 {
	d := xxhash.New()
	var sep = []byte{0}
	for _, ep := range candidates {
		_, _ = d.WriteString(ep.Address())
		_, _ = d.Write(sep)
	}
	return d.Sum64()
}
