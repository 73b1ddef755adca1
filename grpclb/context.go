package grpclb

import "context"

type hashArgsKey struct{}

// WithHashArguments attaches the values consistentHashPickerBuilder's picker
// should hash for this call. gRPC's balancer.PickInfo carries only the full
// method name, not the RPC's argument list (that's serialized on the wire,
// outside the balancer's view) -- callers that want consistent-hash
// affinity thread their hash key through the context with this helper
// before issuing the RPC.
func WithHashArguments(ctx context.Context, args ...any) context.Context {
	return context.WithValue(ctx, hashArgsKey{}, args)
}

func hashArgumentsFromContext(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	if args, ok := ctx.Value(hashArgsKey{}).([]any); ok {
		return args
	}
	return nil
}
