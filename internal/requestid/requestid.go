package requestid

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Header is the request/response header carrying the request ID.
const Header = "X-Request-ID"

const maxIncomingLen = 128

type ctxKey struct{}

// New generates a random UUID v4 request ID.
func New() string {
	return uuid.NewString()
}

// FromIncoming keeps a caller-supplied ID when it is short and printable,
// and mints a fresh one otherwise.
func FromIncoming(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxIncomingLen {
		return New()
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return New()
		}
	}
	return id
}

// WithRequestID returns a copy of ctx with the request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID from ctx. Returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
