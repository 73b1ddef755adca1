package flb

import "time"

// Default method configuration values.
const (
	DefaultWeight   = 100
	DefaultWarmupMs = 600000
)

// Weight computes the effective weight of ep for methodName at selection
// time, applying linear warm-up. A configured weight <= 0 is returned
// unchanged, which excludes the endpoint from weighted policies rather than
// failing; for a positive configured weight the result is in
// [1, configuredWeight].
//
// WeightResolver is stateless: it reads only ep's attributes and the
// wall clock, and may be called concurrently from any number of goroutines.
func Weight(ep Endpoint, methodName string) int {
	w := attrInt(ep, methodName, "weight", DefaultWeight)
	if w <= 0 {
		return w
	}

	ts := ep.StartTimestampMs()
	if ts <= 0 {
		return w
	}

	warmup := attrInt(ep, methodName, "warmup", DefaultWarmupMs)
	if warmup <= 0 {
		// warmup=0 is forbidden; treat as "no warm-up".
		return w
	}

	uptime := nowMs() - ts
	if uptime <= 0 || uptime >= int64(warmup) {
		return w
	}

	return warmupWeight(uptime, warmup, w)
}

// warmupWeight implements the linear ramp: ww = floor(uptime / (warmup/w)),
// clamped to [1, w]. Using floating-point division for the per-spec formula.
func warmupWeight(uptime int64, warmup, w int) int {
	ww := int(float64(uptime) / (float64(warmup) / float64(w)))
	if ww < 1 {
		return 1
	}
	if ww > w {
		return w
	}
	return ww
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
