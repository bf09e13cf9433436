package store

import (
	"context"
	"time"
)

// KV holds the web tier's only mutable state: per-user edit drafts and
// the cached unread-notification count. Everything else lives in the
// backend.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
