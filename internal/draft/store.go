package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sponsorweb/internal/store"
)

// DefaultTTL expires abandoned drafts; navigating away without saving
// silently discards pending edits.
const DefaultTTL = 30 * time.Minute

// Store keeps at most one draft per user per student in the KV.
type Store struct {
	kv  store.KV
	ttl time.Duration
}

// NewStore wraps a KV backend; ttl <= 0 uses DefaultTTL.
func NewStore(kv store.KV, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{kv: kv, ttl: ttl}
}

func key(subject string, studentID int) string {
	return fmt.Sprintf("draft:%s:%d", subject, studentID)
}

// Get loads the user's open draft for a student, if any.
func (s *Store) Get(ctx context.Context, subject string, studentID int) (*Draft, bool, error) {
	raw, ok, err := s.kv.Get(ctx, key(subject, studentID))
	if err != nil || !ok {
		return nil, false, err
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, false, fmt.Errorf("decode draft: %w", err)
	}
	return &d, true, nil
}

// Put saves the draft, refreshing its expiry.
func (s *Store) Put(ctx context.Context, subject string, studentID int, d *Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.kv.Set(ctx, key(subject, studentID), string(raw), s.ttl)
}

// Discard removes the draft, e.g. on cancel or after a committed save.
func (s *Store) Discard(ctx context.Context, subject string, studentID int) error {
	return s.kv.Delete(ctx, key(subject, studentID))
}
