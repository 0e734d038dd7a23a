package game

import (
	"context"
	"strings"
	"sync"

	"github.com/park285/xo-arena/internal/board"
	"github.com/park285/xo-arena/internal/domain"
	"github.com/park285/xo-arena/internal/obslog"
	"go.uber.org/zap"
)

// State is the lifecycle position of the machine.
type State int

const (
	Idle State = iota
	InProgress
	RoundDecided
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case RoundDecided:
		return "round_decided"
	default:
		return "idle"
	}
}

// StartingMark always belongs to player 1.
const StartingMark = board.X

// RoundFunc persists a decided round. winner is a player name or "draw".
type RoundFunc func(ctx context.Context, winner string) error

// Machine owns the board, the turn and the round outcome of the active session.
//
// Moves may arrive from concurrent UI commands. A round-completion callback
// runs outside the state lock but under finalizeMu, so a second callback can
// never start before the previous one has returned.
type Machine struct {
	mu         sync.Mutex
	finalizeMu sync.Mutex

	onRound RoundFunc

	active     bool
	player1    string
	player2    string
	cells      board.Board
	turn       board.Mark
	outcome    *board.Outcome
	processing bool
	// generation changes on every reset so a late settle cannot clear the
	// processing flag of a newer round.
	generation uint64
}

func NewMachine(onRound RoundFunc) *Machine {
	return &Machine{onRound: onRound, turn: StartingMark}
}

// SetRoundFunc replaces the completion callback. Used when the callback owner
// is built after the machine.
func (m *Machine) SetRoundFunc(fn RoundFunc) {
	m.mu.Lock()
	m.onRound = fn
	m.mu.Unlock()
}

// Attach binds an active session and starts a fresh round.
func (m *Machine) Attach(player1, player2 string) {
	m.mu.Lock()
	m.active = true
	m.player1 = strings.TrimSpace(player1)
	m.player2 = strings.TrimSpace(player2)
	m.resetLocked()
	m.mu.Unlock()
}

// Detach drops the session binding; further moves are ignored.
func (m *Machine) Detach() {
	m.mu.Lock()
	m.active = false
	m.player1, m.player2 = "", ""
	m.resetLocked()
	m.mu.Unlock()
}

// ResetBoard clears the board, hands the turn back to X and forgets the outcome.
func (m *Machine) ResetBoard() {
	m.mu.Lock()
	m.resetLocked()
	m.mu.Unlock()
}

func (m *Machine) resetLocked() {
	m.cells = board.Board{}
	m.turn = StartingMark
	m.outcome = nil
	m.processing = false
	m.generation++
}

// ApplyMove places the current mark on cell idx. It reports false without
// touching the board when there is no active session, the index is invalid,
// the cell is taken, the round is already decided or a round is being saved.
//
// When the move decides the round, ApplyMove blocks until the round callback
// has settled.
func (m *Machine) ApplyMove(ctx context.Context, idx int) bool {
	m.mu.Lock()
	if !m.active || !m.cells.IsEmpty(idx) || m.outcome != nil || m.processing {
		m.mu.Unlock()
		return false
	}

	m.cells[idx] = m.turn
	out := board.Evaluate(m.cells)
	if out == nil {
		m.turn = m.turn.Other()
		m.mu.Unlock()
		return true
	}

	m.outcome = out
	m.processing = true
	winner := m.winnerNameLocked(out)
	cb := m.onRound
	gen := m.generation
	m.mu.Unlock()

	obslog.L().Info("round_decided",
		zap.String("winner", winner),
		zap.Ints("combo", out.Combo),
	)

	m.finalizeMu.Lock()
	if cb != nil {
		if err := cb(ctx, winner); err != nil {
			obslog.L().Warn("round_finalize_error", zap.String("winner", winner), zap.Error(err))
		}
	}
	m.finalizeMu.Unlock()

	m.mu.Lock()
	if m.generation == gen {
		m.processing = false
	}
	m.mu.Unlock()
	return true
}

func (m *Machine) winnerNameLocked(out *board.Outcome) string {
	switch out.Winner {
	case string(board.X):
		return m.player1
	case string(board.O):
		return m.player2
	default:
		return domain.DrawWinner
	}
}

// View is a copy of the machine state for rendering.
type View struct {
	State         State
	Board         board.Board
	Turn          board.Mark
	CurrentPlayer string
	Player1       string
	Player2       string
	Outcome       *board.Outcome
	Processing    bool
}

func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := View{
		State:      m.stateLocked(),
		Board:      m.cells,
		Turn:       m.turn,
		Player1:    m.player1,
		Player2:    m.player2,
		Processing: m.processing,
	}
	if m.turn == board.X {
		v.CurrentPlayer = m.player1
	} else {
		v.CurrentPlayer = m.player2
	}
	if m.outcome != nil {
		v.Outcome = &board.Outcome{Winner: m.outcome.Winner, Combo: append([]int{}, m.outcome.Combo...)}
	}
	return v
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Machine) stateLocked() State {
	switch {
	case !m.active:
		return Idle
	case m.outcome != nil:
		return RoundDecided
	default:
		return InProgress
	}
}
