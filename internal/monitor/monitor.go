package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/park285/xo-arena/internal/domain"
	"github.com/park285/xo-arena/internal/obslog"
	"github.com/park285/xo-arena/pkg/arenadto"
	"go.uber.org/zap"
)

const (
	DefaultHealthInterval   = 30 * time.Second
	DefaultSessionsInterval = 15 * time.Second
	DefaultRetryDelay       = 2 * time.Second
	defaultCallTimeout      = 10 * time.Second
)

// Backend is the read-only part of the session service the monitor polls.
type Backend interface {
	Health(ctx context.Context) error
	ListSessions(ctx context.Context) ([]domain.Session, error)
}

type Config struct {
	HealthInterval   time.Duration
	SessionsInterval time.Duration
	RetryDelay       time.Duration
	CallTimeout      time.Duration

	OnStatus   func(arenadto.DBStatus)
	OnSessions func([]domain.Session, error)
}

// Monitor polls backend health and the session list on independent
// intervals. It only reports results and never touches the active session.
type Monitor struct {
	backend Backend
	cfg     Config
	refresh chan struct{}

	mu     sync.RWMutex
	status arenadto.DBStatus
}

func New(backend Backend, cfg Config) *Monitor {
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = DefaultHealthInterval
	}
	if cfg.SessionsInterval <= 0 {
		cfg.SessionsInterval = DefaultSessionsInterval
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	} else if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	return &Monitor{
		backend: backend,
		cfg:     cfg,
		refresh: make(chan struct{}, 1),
		status:  arenadto.DBLoading,
	}
}

// Status is the latest health result; loading until the first check ends.
func (m *Monitor) Status() arenadto.DBStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh asks for an immediate session list reload. It never blocks.
func (m *Monitor) Refresh() {
	select {
	case m.refresh <- struct{}{}:
	default:
	}
}

// Run polls until ctx is done. Both checks run once right away.
func (m *Monitor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.healthLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		m.sessionsLoop(ctx)
	}()
	wg.Wait()
}

func (m *Monitor) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.HealthInterval)
	defer ticker.Stop()
	for {
		m.CheckHealth(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Monitor) sessionsLoop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SessionsInterval)
	defer ticker.Stop()
	for {
		m.LoadSessions(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-m.refresh:
		}
	}
}

// CheckHealth runs one health check with a single retry before reporting offline.
func (m *Monitor) CheckHealth(ctx context.Context) arenadto.DBStatus {
	status := arenadto.DBOnline
	if err := m.health(ctx); err != nil {
		obslog.L().Debug("health_check_retry", zap.Error(err))
		select {
		case <-ctx.Done():
			return m.Status()
		case <-time.After(m.cfg.RetryDelay):
		}
		if err := m.health(ctx); err != nil {
			if ctx.Err() != nil {
				return m.Status()
			}
			obslog.L().Warn("health_check_offline", zap.Error(err))
			status = arenadto.DBOffline
		}
	}
	m.setStatus(status)
	return status
}

func (m *Monitor) health(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, m.cfg.CallTimeout)
	defer cancel()
	return m.backend.Health(cctx)
}

// LoadSessions fetches the list once and hands it to OnSessions.
func (m *Monitor) LoadSessions(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, m.cfg.CallTimeout)
	defer cancel()
	sessions, err := m.backend.ListSessions(cctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		obslog.L().Debug("session_list_error", zap.Error(err))
		sessions = []domain.Session{}
	}
	if m.cfg.OnSessions != nil {
		m.cfg.OnSessions(sessions, err)
	}
}

func (m *Monitor) setStatus(s arenadto.DBStatus) {
	m.mu.Lock()
	changed := m.status != s
	m.status = s
	m.mu.Unlock()
	if changed {
		obslog.L().Info("db_status", zap.String("status", string(s)))
	}
	if m.cfg.OnStatus != nil {
		m.cfg.OnStatus(s)
	}
}
