package guard

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/park285/xo-arena/internal/domain"
	"github.com/park285/xo-arena/internal/obslog"
	"github.com/park285/xo-arena/internal/store"
	"go.uber.org/zap"
)

// SnapshotKey is the storage key of the local session mirror.
const SnapshotKey = "xo_arena_session"

// Notifier delivers the end-of-session notice when the process goes away.
// Beacon reports false when it cannot take the notice; FireAndForget is then
// used and may not complete.
type Notifier interface {
	Beacon(sessionID string) bool
	FireAndForget(sessionID string)
}

// Guard mirrors the active session into local storage and tells the backend
// that the session ended when the process is torn down.
// All storage and notification errors are logged and swallowed.
type Guard struct {
	store    store.Store
	notifier Notifier
	key      string

	live     atomic.Value // string
	register sync.Once
}

type Option func(*Guard)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(g *Guard) {
		if k := strings.TrimSpace(key); k != "" {
			g.key = k
		}
	}
}

func New(st store.Store, notifier Notifier, opts ...Option) *Guard {
	g := &Guard{store: st, notifier: notifier, key: SnapshotKey}
	g.live.Store("")
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Sync writes snap when it carries an active session and erases the mirror otherwise.
func (g *Guard) Sync(ctx context.Context, snap domain.Snapshot) {
	if g == nil || g.store == nil {
		return
	}
	if snap.Session == nil || !snap.Session.IsActive {
		g.Clear(ctx)
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		obslog.L().Debug("snapshot_encode_error", zap.Error(err))
		return
	}
	if err := g.store.Set(ctx, g.key, raw); err != nil {
		obslog.L().Debug("snapshot_write_error", zap.String("session_id", snap.SessionID()), zap.Error(err))
	}
}

// Load returns the mirrored snapshot when one exists and names a session and both players.
func (g *Guard) Load(ctx context.Context) (*domain.Snapshot, bool) {
	if g == nil || g.store == nil {
		return nil, false
	}
	raw, err := g.store.Get(ctx, g.key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			obslog.L().Debug("snapshot_read_error", zap.Error(err))
		}
		return nil, false
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		obslog.L().Debug("snapshot_decode_error", zap.Error(err))
		return nil, false
	}
	if !snap.Valid() {
		obslog.L().Debug("snapshot_rejected", zap.String("session_id", snap.SessionID()))
		return nil, false
	}
	return &snap, true
}

// Clear erases the mirror.
func (g *Guard) Clear(ctx context.Context) {
	if g == nil || g.store == nil {
		return
	}
	if err := g.store.Delete(ctx, g.key); err != nil && !errors.Is(err, store.ErrNotFound) {
		obslog.L().Debug("snapshot_clear_error", zap.Error(err))
	}
}

// Track sets the session id the teardown hook will end. "" means no session.
func (g *Guard) Track(sessionID string) {
	g.live.Store(strings.TrimSpace(sessionID))
}

// LiveID is the session id the teardown hook would end right now.
func (g *Guard) LiveID() string {
	id, _ := g.live.Load().(string)
	return id
}

// Register adds the teardown hook to t. Only the first call has an effect.
func (g *Guard) Register(t *Teardown) {
	if t == nil {
		return
	}
	g.register.Do(func() {
		t.Add(g.onTeardown)
	})
}

func (g *Guard) onTeardown() {
	g.Notify(g.LiveID())
}

// Notify sends the end-of-session notice for id without waiting for it.
// The tracked beacon is preferred so shutdown can drain it. It reports false
// when there is nothing to send through.
func (g *Guard) Notify(sessionID string) bool {
	id := strings.TrimSpace(sessionID)
	if g == nil || id == "" || g.notifier == nil {
		return false
	}
	if g.notifier.Beacon(id) {
		return true
	}
	obslog.L().Debug("unload_beacon_unavailable", zap.String("session_id", id))
	g.notifier.FireAndForget(id)
	return true
}
