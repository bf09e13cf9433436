package notify

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sponsorweb/internal/backend"
	"sponsorweb/internal/store"
)

// DefaultInterval matches the browser's 60-second badge poll.
const DefaultInterval = 60 * time.Second

// sessionIdleLimit drops sessions that stopped making requests.
const sessionIdleLimit = 15 * time.Minute

// InboxFunc fetches a user's inbox with their bearer token.
type InboxFunc func(ctx context.Context, token string) ([]backend.Notification, error)

// Poller keeps the unread-notification badge count warm. Browser
// sessions register their token as they make requests; every tick the
// poller refreshes each tracked session's count into the KV, where the
// unread-count endpoint reads it. It runs for the process lifetime and
// performs no KV writes once the shutdown context is cancelled.
type Poller struct {
	fetch    InboxFunc
	kv       store.KV
	interval time.Duration
	logger   zerolog.Logger

	// OnTick, when set, is called after each completed poll cycle.
	// main wires it to the prometheus poll counter.
	OnTick func()

	mu       sync.Mutex
	sessions map[string]trackedSession
}

type trackedSession struct {
	token    string
	lastSeen time.Time
}

// New builds a poller; interval <= 0 uses DefaultInterval.
func New(fetch InboxFunc, kv store.KV, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetch:    fetch,
		kv:       kv,
		interval: interval,
		logger:   logger,
		sessions: make(map[string]trackedSession),
	}
}

// Track registers (or refreshes) a session for badge polling.
func (p *Poller) Track(subject, token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[subject] = trackedSession{token: token, lastSeen: time.Now()}
}

// Run polls until ctx is cancelled. Call in a goroutine from main.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("notification poller stopped")
			return
		case <-ticker.C:
			p.refresh(ctx)
			if p.OnTick != nil {
				p.OnTick()
			}
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	p.mu.Lock()
	active := make(map[string]string, len(p.sessions))
	for subject, s := range p.sessions {
		if time.Since(s.lastSeen) > sessionIdleLimit {
			delete(p.sessions, subject)
			continue
		}
		active[subject] = s.token
	}
	p.mu.Unlock()

	for subject, token := range active {
		notifications, err := p.fetch(ctx, token)
		if err != nil {
			p.logger.Warn().Str("subject", subject).Err(err).Msg("notification poll failed")
			continue
		}
		if ctx.Err() != nil {
			// Shutdown raced the fetch; a stale response must not
			// land in the cache.
			return
		}
		unread := 0
		for _, n := range notifications {
			if !n.IsRead {
				unread++
			}
		}
		if err := p.kv.Set(ctx, unreadKey(subject), strconv.Itoa(unread), 2*p.interval); err != nil {
			p.logger.Warn().Str("subject", subject).Err(err).Msg("unread count cache write failed")
		}
	}
}

// Unread returns the cached badge count for a user. ok is false when
// no poll has landed yet.
func (p *Poller) Unread(ctx context.Context, subject string) (int, bool) {
	raw, ok, err := p.kv.Get(ctx, unreadKey(subject))
	if err != nil || !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Invalidate drops the cached count, e.g. after mark-read, so the next
// fetch reflects the change immediately.
func (p *Poller) Invalidate(ctx context.Context, subject string) {
	_ = p.kv.Delete(ctx, unreadKey(subject))
}

func unreadKey(subject string) string {
	return "notifications:unread:" + subject
}
