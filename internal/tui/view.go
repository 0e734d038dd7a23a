package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/park285/xo-arena/internal/adapter/arenapresenter"
	"github.com/park285/xo-arena/pkg/arenadto"
)

const sidePanelWidth = 44

func (m Model) View() string {
	view := m.game.View()

	var main string
	switch {
	case view.Recovery != nil:
		main = m.recoveryView(view.Recovery)
	case view.Active:
		main = m.gameView(view)
	default:
		main = m.setupView()
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(m.format.Msg("app.title", "XO ARENA")),
		SubtitleStyle.Render(m.format.Msg("app.subtitle", "NEON TIC-TAC-TOE")),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, main, " ", m.sideView())

	lines := []string{header, body}
	if m.notice != "" {
		style := TextStyle
		if m.noticeIsError {
			style = ErrorStyle
		}
		lines = append(lines, style.Render(m.notice))
	}
	lines = append(lines, HintStyle.Render(m.helpLine(view)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) helpLine(view arenadto.GameView) string {
	switch {
	case view.Recovery != nil:
		return m.format.Msg("recovery.actions", "[r] RESUME   [a] ABANDON")
	case m.focus == focusHistory:
		return m.format.Msg("app.help_history", "j/k select · enter expand · d delete")
	case view.Active:
		return m.format.Msg("app.help_game", "1-9 move · n next · e end · s snapshot · q quit")
	default:
		return m.format.Msg("app.help_setup", "tab switch · enter start · q quit")
	}
}

func (m Model) setupView() string {
	start := ButtonStyle.Render(m.format.Msg("setup.start", "[ START SESSION ]"))
	if m.starting {
		start = DisabledStyle.Render(m.format.Msg("setup.starting", "[ INITIALIZING... ]"))
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		TextStyle.Bold(true).Render(m.format.Msg("setup.heading", "ENTER PLAYER NAMES")),
		"",
		XStyle.Render(m.format.Msg("setup.player1", "PLAYER 1")),
		m.player1.View(),
		"",
		OStyle.Render(m.format.Msg("setup.player2", "PLAYER 2")),
		m.player2.View(),
		"",
		start,
		HintStyle.Render(m.format.Msg("setup.footer", "SESSION DATA WILL BE STORED TO DATABASE")),
	)
	return m.panel(content, m.focus == focusPlayer1 || m.focus == focusPlayer2)
}

func (m Model) recoveryView(r *arenadto.Recovery) string {
	lines := m.format.Recovery(r)
	if len(lines) > 0 {
		lines[0] = DrawStyle.Render(lines[0])
	}
	if m.resolving {
		lines = append(lines, HintStyle.Render(m.format.Msg("recovery.resuming", "RESUMING...")))
	}
	return ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) gameView(v arenadto.GameView) string {
	p1, draws, p2 := m.format.ScoreLabels(v)
	score := lipgloss.JoinHorizontal(lipgloss.Top,
		scoreBox(XStyle, p1, v.Stats.Player1Wins),
		scoreBox(DrawStyle, draws, v.Stats.Draws),
		scoreBox(OStyle, p2, v.Stats.Player2Wins),
	)

	parts := []string{
		HintStyle.Render(m.format.Msg("scoreboard.heading", "SESSION STATS")),
		score,
		HintStyle.Render(m.format.Rounds(v.RoundCount)),
		"",
		m.turnLine(v),
		m.boardView(v),
	}
	if !v.Decided {
		if tag := m.format.SessionTag(v.SessionID); tag != "" {
			parts = append(parts, HintStyle.Render(tag))
		}
	}

	var actions []string
	if v.Decided {
		label := m.format.NextRoundLabel(v.Saving)
		if v.Saving {
			actions = append(actions, DisabledStyle.Render(label))
		} else {
			actions = append(actions, ButtonStyle.Render(label))
		}
	}
	endLabel := m.format.Msg("game.end", "[ END ]")
	if m.ending {
		actions = append(actions, DisabledStyle.Render(m.format.Msg("game.ending", "...")))
	} else {
		actions = append(actions, ErrorStyle.Render(endLabel))
	}
	parts = append(parts, "", strings.Join(actions, "  "))
	if v.ConnError {
		parts = append(parts, ErrorStyle.Render(m.format.Msg("game.conn_error", "CONNECTION ERROR")))
	}
	return m.panel(lipgloss.JoinVertical(lipgloss.Left, parts...), m.focus == focusBoard)
}

func (m Model) turnLine(v arenadto.GameView) string {
	text := m.format.Turn(v)
	switch {
	case v.Decided && v.Draw:
		return DrawStyle.Render(text)
	case v.Decided && v.Winner == "X", !v.Decided && v.Turn == "X":
		return XStyle.Render(text)
	default:
		return OStyle.Render(text)
	}
}

func (m Model) boardView(v arenadto.GameView) string {
	inCombo := map[int]bool{}
	for _, i := range v.Combo {
		inCombo[i] = true
	}
	rows := make([]string, 0, 3)
	for r := 0; r < 3; r++ {
		cells := make([]string, 0, 3)
		for c := 0; c < 3; c++ {
			i := r*3 + c
			style := CellStyle
			switch {
			case inCombo[i]:
				style = ComboCellStyle
			case i == m.cursor && m.focus == focusBoard && !v.Decided:
				style = CursorCellStyle
			}
			cells = append(cells, style.Render(cellGlyph(v.Cells[i], i)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func cellGlyph(mark string, i int) string {
	switch mark {
	case "X":
		return XStyle.Render(arenapresenter.MarkGlyph(mark))
	case "O":
		return OStyle.Render(arenapresenter.MarkGlyph(mark))
	default:
		return HintStyle.Render(fmt.Sprintf("%d", i+1))
	}
}

func scoreBox(style lipgloss.Style, label string, value int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPurple).
		Width(14).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, style.Render(fmt.Sprintf("%d", value)), HintStyle.Render(label)))
}

func (m Model) sideView() string {
	label := m.format.StatusLabel(m.status)
	status := statusStyle(string(m.status)).Render("● " + m.format.Text("status.label", map[string]any{"Label": label}, "DB "+label))

	parts := []string{status, "", TextStyle.Bold(true).Render(m.format.Msg("history.heading", "SESSION ARCHIVE"))}
	switch {
	case !m.historyLoaded:
		parts = append(parts, HintStyle.Render(m.format.Msg("history.loading", "[ LOADING RECORDS... ]")))
	case m.historyErr && len(m.rows) == 0:
		parts = append(parts, ErrorStyle.Render(m.format.Msg("history.failed", "FAILED TO LOAD SESSIONS")))
	case len(m.rows) == 0:
		parts = append(parts,
			HintStyle.Render(m.format.Msg("history.empty", "NO SESSIONS ON RECORD")),
			HintStyle.Render(m.format.Msg("history.empty_hint", "START A GAME TO SEE IT HERE")),
		)
	default:
		for i, row := range m.rows {
			parts = append(parts, m.rowView(i, row)...)
		}
		parts = append(parts, "", HintStyle.Render(m.format.Total(len(m.rows))))
	}
	style := PanelStyle
	if m.focus == focusHistory {
		style = FocusedPanelStyle
	}
	return style.Width(sidePanelWidth).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) rowView(i int, row arenadto.SessionRow) []string {
	dot := InactiveDotStyle.Render("○")
	if row.Active {
		dot = ActiveDotStyle.Render("●")
	}
	line := m.format.RowLine(row)
	if m.deleting[row.ID] {
		line = DisabledStyle.Render(line)
	} else if i == m.selected && m.focus == focusHistory {
		line = SelectedRowStyle.Render(line)
	}
	out := []string{dot + " " + line}
	if m.expanded[row.ID] {
		out = append(out, "  "+HintStyle.Render(m.format.Msg("history.rounds_heading", "ROUND HISTORY")))
		for j, chip := range m.format.Chips(row) {
			style := DrawStyle
			if j < len(row.Rounds) {
				switch row.Rounds[j].Winner {
				case row.Player1:
					style = XStyle
				case row.Player2:
					style = OStyle
				}
			} else {
				style = HintStyle
			}
			out = append(out, "  "+style.Render(chip))
		}
	}
	return out
}

func (m Model) panel(content string, focused bool) string {
	if focused {
		return FocusedPanelStyle.Render(content)
	}
	return PanelStyle.Render(content)
}
