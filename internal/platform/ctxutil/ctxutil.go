package ctxutil

import "context"

type traceDataKey struct{}
type identityKey struct{}

// TraceData carries correlation ids attached by the request-context
// middleware.
type TraceData struct {
	TraceID   string
	RequestID string
}

// Identity is the authenticated caller as established by the auth
// middleware. Auth0ID is the external subject; UserType is resolved from
// the user row on first lookup and may be empty for system calls.
type Identity struct {
	Auth0ID  string
	UserType string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func GetIdentity(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return id
	}
	return nil
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
