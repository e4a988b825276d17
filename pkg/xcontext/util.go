package xcontext

import "context"

type (
	responseKey struct{}
	errorKey    struct{}
)

// The router stores handler results in a mutable slot so that closers, which
// run after the handler, can read them from the same context.
type slot struct {
	value any
}

func WithResponseSlots(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, responseKey{}, &slot{})
	return context.WithValue(ctx, errorKey{}, &slot{})
}

func SetError(ctx context.Context, err error) {
	if s, ok := ctx.Value(errorKey{}).(*slot); ok {
		s.value = err
	}
}

func Error(ctx context.Context) error {
	s, ok := ctx.Value(errorKey{}).(*slot)
	if !ok || s.value == nil {
		return nil
	}

	return s.value.(error)
}

func SetResponse(ctx context.Context, resp any) {
	if s, ok := ctx.Value(responseKey{}).(*slot); ok {
		s.value = resp
	}
}

func GetResponse(ctx context.Context) any {
	s, ok := ctx.Value(responseKey{}).(*slot)
	if !ok {
		return nil
	}

	return s.value
}
