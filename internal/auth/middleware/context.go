package auth

import (
	"context"
	"net/http"
)

type ctxKey struct{}

var ctxKeySub = ctxKey{}

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeySub).(string); ok {
		return s
	}
	return ""
}

// Actor is the authenticated subject of r, recorded in the audit log.
func Actor(r *http.Request) string { return SubjectFromContext(r.Context()) }
