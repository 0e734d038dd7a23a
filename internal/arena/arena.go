package arena

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/park285/xo-arena/internal/board"
	"github.com/park285/xo-arena/internal/domain"
	"github.com/park285/xo-arena/internal/game"
	"github.com/park285/xo-arena/internal/guard"
	"github.com/park285/xo-arena/internal/obslog"
	"github.com/park285/xo-arena/pkg/arenadto"
	"go.uber.org/zap"
)

var (
	ErrInvalidPlayers    = errors.New("both player names are required")
	ErrRecoveryPending   = errors.New("an interrupted session must be resumed or abandoned first")
	ErrNoRecoveryPending = errors.New("no interrupted session to resolve")
	ErrRecoveryInFlight  = errors.New("interrupted session is already being resolved")
	ErrStartInFlight     = errors.New("a session is already being created")
	ErrSessionActive     = errors.New("a session is already active")
	ErrNoSession         = errors.New("no active session")
)

const detachedEndTimeout = 5 * time.Second

// Remote is the part of the session service the orchestrator drives.
type Remote interface {
	CreateSession(ctx context.Context, player1, player2 string) (*domain.Session, error)
	RecordRound(ctx context.Context, sessionID, winner string) (*domain.RoundResult, error)
	EndSession(ctx context.Context, sessionID string) error
	ReactivateSession(ctx context.Context, sessionID string) error
}

// Decision resolves an interrupted session.
type Decision int

const (
	Resume Decision = iota + 1
	Abandon
)

func (d Decision) String() string {
	switch d {
	case Resume:
		return "resume"
	case Abandon:
		return "abandon"
	default:
		return "unknown"
	}
}

// Arena owns the active session and composes the game machine with the
// remote session lifecycle and the local mirror.
type Arena struct {
	remote  Remote
	guard   *guard.Guard
	machine *game.Machine
	logger  *zap.Logger

	// persistMu orders state changes with their snapshot writes so store I/O
	// never runs under mu. Lock order: persistMu, then mu.
	persistMu sync.Mutex

	mu         sync.Mutex
	session    *domain.Session
	player1    string
	player2    string
	stats      domain.Stats
	roundCount int
	pending    *domain.Snapshot
	resolving  bool
	starting   bool
	connErr    bool
}

type Option func(*Arena)

func WithLogger(l *zap.Logger) Option {
	return func(a *Arena) {
		if l != nil {
			a.logger = l
		}
	}
}

func New(remote Remote, g *guard.Guard, opts ...Option) *Arena {
	a := &Arena{remote: remote, guard: g, logger: obslog.L()}
	for _, opt := range opts {
		opt(a)
	}
	a.machine = game.NewMachine(a.CompleteRound)
	return a
}

// Boot looks for a session interrupted by a previous teardown. It reports
// whether one was found; StartSession is blocked until it is resolved.
func (a *Arena) Boot(ctx context.Context) bool {
	snap, ok := a.guard.Load(ctx)
	if !ok {
		return false
	}
	a.mu.Lock()
	a.pending = snap
	a.mu.Unlock()
	a.logger.Info("session_interrupted",
		zap.String("session_id", snap.SessionID()),
		zap.Int("round_count", snap.RoundCount),
	)
	return true
}

// StartSession creates a remote session for the two players and makes it active.
func (a *Arena) StartSession(ctx context.Context, player1, player2 string) error {
	p1, p2 := strings.TrimSpace(player1), strings.TrimSpace(player2)
	if p1 == "" || p2 == "" {
		return ErrInvalidPlayers
	}
	a.mu.Lock()
	switch {
	case a.pending != nil:
		a.mu.Unlock()
		return ErrRecoveryPending
	case a.session != nil:
		a.mu.Unlock()
		return ErrSessionActive
	case a.starting:
		a.mu.Unlock()
		return ErrStartInFlight
	}
	a.starting = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.starting = false
		a.mu.Unlock()
	}()

	s, err := a.remote.CreateSession(ctx, p1, p2)
	if err != nil {
		a.setConnErr(true)
		a.logger.Warn("session_create_error", zap.Error(err))
		return fmt.Errorf("create session: %w", err)
	}
	if s == nil || strings.TrimSpace(s.ID) == "" {
		a.setConnErr(true)
		return errors.New("create session: empty session id")
	}

	adopted := *s
	adopted.IsActive = true
	if strings.TrimSpace(adopted.Player1) == "" {
		adopted.Player1 = p1
	}
	if strings.TrimSpace(adopted.Player2) == "" {
		adopted.Player2 = p2
	}

	a.persistMu.Lock()
	a.mu.Lock()
	a.session = &adopted
	a.player1, a.player2 = adopted.Player1, adopted.Player2
	a.stats = adopted.Stats
	a.roundCount = 0
	a.connErr = false
	a.machine.Attach(a.player1, a.player2)
	a.guard.Track(adopted.ID)
	snap := a.snapshotLocked()
	a.mu.Unlock()
	a.guard.Sync(ctx, snap)
	a.persistMu.Unlock()

	a.logger.Info("session_create",
		zap.String("session_id", adopted.ID),
		zap.String("player1", adopted.Player1),
		zap.String("player2", adopted.Player2),
	)
	return nil
}

// ApplyMove places the current mark on cell idx.
func (a *Arena) ApplyMove(ctx context.Context, idx int) bool {
	return a.machine.ApplyMove(ctx, idx)
}

// CompleteRound records a decided round. On success the local ledger is
// replaced with the server's stats and round count.
func (a *Arena) CompleteRound(ctx context.Context, winner string) error {
	a.mu.Lock()
	if a.session == nil {
		a.mu.Unlock()
		return ErrNoSession
	}
	id := a.session.ID
	a.mu.Unlock()

	res, err := a.remote.RecordRound(ctx, id, winner)
	if err != nil {
		a.setConnErr(true)
		a.logger.Warn("round_record_error", zap.String("session_id", id), zap.Error(err))
		return fmt.Errorf("record round: %w", err)
	}

	a.persistMu.Lock()
	defer a.persistMu.Unlock()
	a.mu.Lock()
	if a.session == nil || a.session.ID != id {
		// Session ended while the round was being recorded.
		a.mu.Unlock()
		return nil
	}
	a.stats = res.Stats
	a.roundCount = len(res.Rounds)
	a.session.Stats = res.Stats
	a.session.Rounds = res.Rounds
	a.connErr = false
	rounds := a.roundCount
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.guard.Sync(ctx, snap)
	a.logger.Info("round_record",
		zap.String("session_id", id),
		zap.String("winner", winner),
		zap.Int("round_count", rounds),
	)
	return nil
}

// NextRound clears the board for another round of the same session.
func (a *Arena) NextRound() {
	a.machine.ResetBoard()
}

// EndSession stops the active session remotely and clears all local state,
// whether or not the remote call succeeds.
func (a *Arena) EndSession(ctx context.Context) error {
	a.mu.Lock()
	var id string
	if a.session != nil && a.session.IsActive {
		id = a.session.ID
	}
	a.mu.Unlock()

	var endErr error
	if id != "" {
		if err := a.remote.EndSession(ctx, id); err != nil {
			endErr = fmt.Errorf("end session: %w", err)
			a.logger.Warn("session_end_error", zap.String("session_id", id), zap.Error(err))
		}
	}

	a.persistMu.Lock()
	a.mu.Lock()
	a.session = nil
	a.player1, a.player2 = "", ""
	a.stats = domain.Stats{}
	a.roundCount = 0
	a.connErr = endErr != nil
	a.machine.Detach()
	a.guard.Track("")
	a.mu.Unlock()
	a.guard.Clear(ctx)
	a.persistMu.Unlock()

	if id != "" {
		a.logger.Info("session_end", zap.String("session_id", id))
	}
	return endErr
}

// ResolveAbandoned applies the user's decision to the interrupted session
// found by Boot. A failed resume leaves the session pending so it can be retried.
func (a *Arena) ResolveAbandoned(ctx context.Context, d Decision) error {
	a.persistMu.Lock()
	a.mu.Lock()
	if a.pending == nil {
		a.mu.Unlock()
		a.persistMu.Unlock()
		return ErrNoRecoveryPending
	}
	if a.resolving {
		a.mu.Unlock()
		a.persistMu.Unlock()
		return ErrRecoveryInFlight
	}
	snap := a.pending
	id := snap.SessionID()

	switch d {
	case Abandon:
		a.pending = nil
		a.mu.Unlock()
		a.guard.Clear(ctx)
		a.persistMu.Unlock()
		// Tracked like the teardown notice so a quit right after abandoning
		// still waits for it.
		if !a.guard.Notify(id) {
			go a.endDetached(id)
		}
		a.logger.Info("session_abandon", zap.String("session_id", id))
		return nil
	case Resume:
		a.resolving = true
		a.mu.Unlock()
		a.persistMu.Unlock()
	default:
		a.mu.Unlock()
		a.persistMu.Unlock()
		return fmt.Errorf("unknown decision %d", d)
	}

	err := a.remote.ReactivateSession(ctx, id)

	a.persistMu.Lock()
	defer a.persistMu.Unlock()
	a.mu.Lock()
	a.resolving = false
	if err != nil {
		a.connErr = true
		a.mu.Unlock()
		a.logger.Warn("session_resume_error", zap.String("session_id", id), zap.Error(err))
		return fmt.Errorf("reactivate session: %w", err)
	}
	s := *snap.Session
	s.IsActive = true
	a.session = &s
	a.player1, a.player2 = strings.TrimSpace(snap.Player1), strings.TrimSpace(snap.Player2)
	a.stats = snap.Stats
	a.roundCount = snap.RoundCount
	a.pending = nil
	a.connErr = false
	a.machine.Attach(a.player1, a.player2)
	a.guard.Track(id)
	rounds := a.roundCount
	mirror := a.snapshotLocked()
	a.mu.Unlock()

	a.guard.Sync(ctx, mirror)
	a.logger.Info("session_resume", zap.String("session_id", id), zap.Int("round_count", rounds))
	return nil
}

// endDetached is the abandon fallback when no notifier is wired.
func (a *Arena) endDetached(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), detachedEndTimeout)
	defer cancel()
	if err := a.remote.EndSession(ctx, id); err != nil {
		a.logger.Debug("session_abandon_end_error", zap.String("session_id", id), zap.Error(err))
	}
}

// snapshotLocked copies the mirror of the current state. Callers write it
// with guard.Sync after releasing mu.
func (a *Arena) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		Player1:    a.player1,
		Player2:    a.player2,
		Stats:      a.stats,
		RoundCount: a.roundCount,
	}
	if a.session != nil {
		s := *a.session
		s.Rounds = nil
		snap.Session = &s
	}
	return snap
}

func (a *Arena) setConnErr(v bool) {
	a.mu.Lock()
	a.connErr = v
	a.mu.Unlock()
}

// ConnError reports whether the last remote call failed.
func (a *Arena) ConnError() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connErr
}

// Stats returns the local copy of the server ledger and the round count.
func (a *Arena) Stats() (domain.Stats, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats, a.roundCount
}

// HasRecovery reports whether an interrupted session is waiting for a decision.
func (a *Arena) HasRecovery() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// View merges the machine state with the session state for rendering.
func (a *Arena) View() arenadto.GameView {
	mv := a.machine.View()

	a.mu.Lock()
	defer a.mu.Unlock()
	v := arenadto.GameView{
		Active:        a.session != nil,
		Player1:       a.player1,
		Player2:       a.player2,
		Stats:         toDTOStats(a.stats),
		RoundCount:    a.roundCount,
		Turn:          string(mv.Turn),
		CurrentPlayer: mv.CurrentPlayer,
		Saving:        mv.Processing,
		ConnError:     a.connErr,
	}
	if a.session != nil {
		v.SessionID = a.session.ID
	}
	for i, c := range mv.Board {
		v.Cells[i] = string(c)
	}
	if out := mv.Outcome; out != nil {
		v.Decided = true
		v.Winner = out.Winner
		v.Combo = out.Combo
		v.Draw = out.IsDraw()
		switch out.Winner {
		case string(board.X):
			v.WinnerName = mv.Player1
		case string(board.O):
			v.WinnerName = mv.Player2
		}
	}
	if p := a.pending; p != nil {
		v.Recovery = &arenadto.Recovery{
			SessionID:  p.SessionID(),
			Player1:    p.Player1,
			Player2:    p.Player2,
			Stats:      toDTOStats(p.Stats),
			RoundCount: p.RoundCount,
		}
	}
	return v
}

func toDTOStats(s domain.Stats) arenadto.Stats {
	return arenadto.Stats{Player1Wins: s.Player1Wins, Player2Wins: s.Player2Wins, Draws: s.Draws}
}
