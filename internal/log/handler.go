package log

import (
	"context"
	"log/slog"

	"github.com/ErlanBelekov/shiptrack/internal/auth"
	"github.com/ErlanBelekov/shiptrack/internal/requestid"
)

// ContextHandler wraps an slog.Handler and copies request-scoped values
// (request_id, and user_id once the caller is authenticated) onto every record.
type ContextHandler struct {
	inner slog.Handler
}

func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := requestid.FromContext(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if id, ok := auth.IdentityFromContext(ctx); ok {
		r.AddAttrs(slog.String("user_id", id.UserID))
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}
