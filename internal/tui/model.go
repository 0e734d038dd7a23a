package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/park285/xo-arena/internal/adapter/arenapresenter"
	"github.com/park285/xo-arena/internal/arena"
	"github.com/park285/xo-arena/internal/domain"
	"github.com/park285/xo-arena/internal/obslog"
	"github.com/park285/xo-arena/pkg/arenadto"
	"go.uber.org/zap"
)

const nameLimit = 16

// Game is the orchestrator surface the UI drives.
type Game interface {
	StartSession(ctx context.Context, player1, player2 string) error
	ApplyMove(ctx context.Context, idx int) bool
	NextRound()
	EndSession(ctx context.Context) error
	ResolveAbandoned(ctx context.Context, d arena.Decision) error
	View() arenadto.GameView
}

// Archive deletes history records.
type Archive interface {
	DeleteSession(ctx context.Context, sessionID string) error
}

type Refresher interface {
	Refresh()
}

type Options struct {
	Ctx       context.Context
	Game      Game
	Archive   Archive
	Refresher Refresher
	Formatter *arenapresenter.Formatter
	Snapshot  func(arenadto.GameView) (string, error)
}

// StatusMsg carries a DB health result from the monitor.
type StatusMsg arenadto.DBStatus

// SessionsMsg carries a session list poll result from the monitor.
type SessionsMsg struct {
	Sessions []domain.Session
	Err      error
}

type startDoneMsg struct{ err error }
type moveDoneMsg struct{ accepted bool }
type endDoneMsg struct{ err error }
type resolveDoneMsg struct {
	decision arena.Decision
	err      error
}
type deleteDoneMsg struct {
	id  string
	err error
}
type snapshotDoneMsg struct {
	path string
	err  error
}

type focus int

const (
	focusPlayer1 focus = iota
	focusPlayer2
	focusBoard
	focusHistory
)

// Model is the root Bubble Tea model.
type Model struct {
	ctx       context.Context
	game      Game
	archive   Archive
	refresher Refresher
	format    *arenapresenter.Formatter
	snapshot  func(arenadto.GameView) (string, error)
	keys      KeyMap

	player1 textinput.Model
	player2 textinput.Model
	focus   focus
	cursor  int

	starting  bool
	moving    bool
	ending    bool
	resolving bool
	deleting  map[string]bool

	status        arenadto.DBStatus
	rows          []arenadto.SessionRow
	historyLoaded bool
	historyErr    bool
	selected      int
	expanded      map[string]bool
	notice        string
	noticeIsError bool
	width, height int
}

func New(opts Options) Model {
	ctx := opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.Formatter
	if f == nil {
		f = arenapresenter.NewFormatter(nil)
	}

	p1 := textinput.New()
	p1.Placeholder = f.Msg("setup.placeholder", "Enter callsign...")
	p1.CharLimit = nameLimit
	p1.Focus()
	p2 := textinput.New()
	p2.Placeholder = p1.Placeholder
	p2.CharLimit = nameLimit

	return Model{
		ctx:       ctx,
		game:      opts.Game,
		archive:   opts.Archive,
		refresher: opts.Refresher,
		format:    f,
		snapshot:  opts.Snapshot,
		keys:      DefaultKeyMap(),
		player1:   p1,
		player2:   p2,
		focus:     focusPlayer1,
		cursor:    4,
		deleting:  map[string]bool{},
		expanded:  map[string]bool{},
		status:    arenadto.DBLoading,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case StatusMsg:
		m.status = arenadto.DBStatus(msg)
		return m, nil

	case SessionsMsg:
		m.historyLoaded = true
		m.historyErr = msg.Err != nil
		m.rows = arenapresenter.ToSessionRows(msg.Sessions)
		m.clampSelection()
		return m, nil

	case startDoneMsg:
		m.starting = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.clearNotice()
		m.player1.Reset()
		m.player2.Reset()
		m.focus = focusBoard
		m.syncInputFocus()
		m.cursor = 4
		m.refresh()
		return m, nil

	case moveDoneMsg:
		m.moving = false
		if msg.accepted && m.game.View().Decided {
			m.refresh()
		}
		return m, nil

	case endDoneMsg:
		m.ending = false
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.clearNotice()
		}
		m.focus = focusPlayer1
		m.syncInputFocus()
		m.refresh()
		return m, nil

	case resolveDoneMsg:
		m.resolving = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.clearNotice()
		if msg.decision == arena.Resume {
			m.focus = focusBoard
		} else {
			m.focus = focusPlayer1
		}
		m.syncInputFocus()
		m.refresh()
		return m, nil

	case deleteDoneMsg:
		delete(m.deleting, msg.id)
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.refresh()
		return m, nil

	case snapshotDoneMsg:
		if msg.err != nil {
			m.notice = m.format.Msg("game.snapshot_failed", "SNAPSHOT FAILED")
			m.noticeIsError = true
			return m, nil
		}
		m.notice = m.format.Text("game.snapshot_saved", map[string]any{"Path": msg.path}, "SNAPSHOT SAVED "+msg.path)
		m.noticeIsError = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Interrupt) {
		return m, tea.Quit
	}

	view := m.game.View()
	if view.Recovery != nil {
		return m.handleRecoveryKey(msg)
	}

	if key.Matches(msg, m.keys.Focus) {
		m.cycleFocus(view.Active, msg.String() == "shift+tab")
		return m, nil
	}

	if m.focus == focusHistory {
		return m.handleHistoryKey(msg)
	}
	if !view.Active {
		return m.handleSetupKey(msg)
	}
	return m.handleBoardKey(msg, view)
}

func (m Model) handleRecoveryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.resolving {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Resume):
		m.resolving = true
		return m, m.resolveCmd(arena.Resume)
	case key.Matches(msg, m.keys.Abandon):
		m.resolving = true
		return m, m.resolveCmd(arena.Abandon)
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleSetupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		if m.starting {
			return m, nil
		}
		p1 := strings.TrimSpace(m.player1.Value())
		p2 := strings.TrimSpace(m.player2.Value())
		if p1 == "" || p2 == "" {
			m.notice = m.format.Msg("setup.names_required", "BOTH PLAYERS NEED A NAME")
			m.noticeIsError = true
			return m, nil
		}
		m.starting = true
		return m, m.startCmd(p1, p2)
	}
	if msg.Type == tea.KeyEsc {
		return m, tea.Quit
	}
	return m.updateInputs(msg)
}

func (m Model) handleBoardKey(msg tea.KeyMsg, view arenadto.GameView) (tea.Model, tea.Cmd) {
	if idx, ok := cellForDigit(msg.String()); ok {
		return m.move(idx, view)
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor >= 3 {
			m.cursor -= 3
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < 6 {
			m.cursor += 3
		}
	case key.Matches(msg, m.keys.Left):
		if m.cursor%3 > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.cursor%3 < 2 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Place):
		return m.move(m.cursor, view)
	case key.Matches(msg, m.keys.Next):
		if view.Decided && !view.Saving {
			m.game.NextRound()
			m.clearNotice()
		}
	case key.Matches(msg, m.keys.End):
		if !m.ending {
			m.ending = true
			return m, m.endCmd()
		}
	case key.Matches(msg, m.keys.Snapshot):
		if view.Decided && m.snapshot != nil {
			return m, m.snapshotCmd(view)
		}
	}
	return m, nil
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.rows)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Expand):
		if row, ok := m.selectedRow(); ok {
			m.expanded[row.ID] = !m.expanded[row.ID]
		}
	case key.Matches(msg, m.keys.Delete):
		row, ok := m.selectedRow()
		if !ok || m.deleting[row.ID] || m.archive == nil {
			return m, nil
		}
		m.deleting[row.ID] = true
		return m, m.deleteCmd(row.ID)
	}
	return m, nil
}

func (m Model) move(idx int, view arenadto.GameView) (tea.Model, tea.Cmd) {
	if m.moving || view.Decided || view.Saving {
		return m, nil
	}
	m.cursor = idx
	m.moving = true
	return m, m.moveCmd(idx)
}

func (m *Model) cycleFocus(active, back bool) {
	order := []focus{focusPlayer1, focusPlayer2, focusHistory}
	if active {
		order = []focus{focusBoard, focusHistory}
	}
	pos := 0
	for i, f := range order {
		if f == m.focus {
			pos = i
		}
	}
	step := 1
	if back {
		step = len(order) - 1
	}
	m.focus = order[(pos+step)%len(order)]
	m.syncInputFocus()
}

func (m *Model) syncInputFocus() {
	m.player1.Blur()
	m.player2.Blur()
	switch m.focus {
	case focusPlayer1:
		m.player1.Focus()
	case focusPlayer2:
		m.player2.Focus()
	}
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.player1, cmd = m.player1.Update(msg)
	cmds = append(cmds, cmd)
	m.player2, cmd = m.player2.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) selectedRow() (arenadto.SessionRow, bool) {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return arenadto.SessionRow{}, false
	}
	return m.rows[m.selected], true
}

func (m *Model) clampSelection() {
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) refresh() {
	if m.refresher != nil {
		m.refresher.Refresh()
	}
}

func (m *Model) setError(err error) {
	m.noticeIsError = true
	switch {
	case errors.Is(err, arena.ErrInvalidPlayers):
		m.notice = m.format.Msg("setup.names_required", "BOTH PLAYERS NEED A NAME")
	default:
		m.notice = m.format.Msg("game.conn_error", "CONNECTION ERROR")
	}
}

func (m *Model) clearNotice() {
	m.notice = ""
	m.noticeIsError = false
}

func (m Model) startCmd(p1, p2 string) tea.Cmd {
	return func() tea.Msg {
		return startDoneMsg{err: m.game.StartSession(m.ctx, p1, p2)}
	}
}

func (m Model) moveCmd(idx int) tea.Cmd {
	return func() tea.Msg {
		return moveDoneMsg{accepted: m.game.ApplyMove(m.ctx, idx)}
	}
}

func (m Model) endCmd() tea.Cmd {
	return func() tea.Msg {
		return endDoneMsg{err: m.game.EndSession(m.ctx)}
	}
}

func (m Model) resolveCmd(d arena.Decision) tea.Cmd {
	return func() tea.Msg {
		return resolveDoneMsg{decision: d, err: m.game.ResolveAbandoned(m.ctx, d)}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		err := m.archive.DeleteSession(m.ctx, id)
		if err != nil {
			obslog.L().Warn("session_delete_error", zap.String("session_id", id), zap.Error(err))
		} else {
			obslog.L().Info("session_delete", zap.String("session_id", id))
		}
		return deleteDoneMsg{id: id, err: err}
	}
}

func (m Model) snapshotCmd(view arenadto.GameView) tea.Cmd {
	return func() tea.Msg {
		path, err := m.snapshot(view)
		if err != nil {
			obslog.L().Warn("snapshot_export_error", zap.Error(err))
		}
		return snapshotDoneMsg{path: path, err: err}
	}
}
