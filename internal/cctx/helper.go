package cctx

import "context"

// WithValues layers key/value pairs onto parent. Panics on an odd count.
func WithValues(parent context.Context, values ...interface{}) (ctx context.Context) {
	if len(values)%2 != 0 {
		panic("cctx: uneven key/value pairs")
	}

	ctx = parent
	for i := 0; i+1 < len(values); i += 2 {
		ctx = context.WithValue(ctx, values[i], values[i+1])
	}
	return
}
