package arenapresenter

import (
	"fmt"
	"strings"

	"github.com/park285/xo-arena/internal/msgcat"
	"github.com/park285/xo-arena/pkg/arenadto"
)

const (
	markX = "✕"
	markO = "○"
)

// Formatter turns arena DTOs into the text the terminal UI shows.
// Strings come from the message catalog; a nil catalog falls back to the
// built-in English text.
type Formatter struct {
	cat *msgcat.Catalog
}

func NewFormatter(cat *msgcat.Catalog) *Formatter {
	return &Formatter{cat: cat}
}

func (f *Formatter) text(key string, data map[string]any, fallback string) string {
	if f == nil || f.cat == nil {
		return fallback
	}
	return f.cat.Text(key, data, fallback)
}

// Msg renders a catalog key that takes no arguments.
func (f *Formatter) Msg(key, fallback string) string {
	return f.text(key, nil, fallback)
}

func (f *Formatter) Text(key string, data map[string]any, fallback string) string {
	return f.text(key, data, fallback)
}

// MarkGlyph maps a board mark to its display glyph.
func MarkGlyph(mark string) string {
	switch mark {
	case "X":
		return markX
	case "O":
		return markO
	default:
		return " "
	}
}

// Turn is the indicator line: whose move it is or how the round ended.
func (f *Formatter) Turn(v arenadto.GameView) string {
	if v.Decided {
		if v.Draw {
			return f.text("game.draw", nil, "ROUND OVER · DRAW")
		}
		name := strings.ToUpper(v.WinnerName)
		return f.text("game.victory", map[string]any{"Winner": name}, name+" WINS")
	}
	mark := MarkGlyph(v.Turn)
	return f.text("game.turn", map[string]any{"Mark": mark, "Player": v.CurrentPlayer},
		fmt.Sprintf("CURRENT TURN  %s  %s", mark, v.CurrentPlayer))
}

// ScoreLabels returns the three scoreboard captions: player 1, draws, player 2.
func (f *Formatter) ScoreLabels(v arenadto.GameView) (string, string, string) {
	p1 := f.text("scoreboard.player", map[string]any{"Name": v.Player1, "Mark": markX}, v.Player1+" ("+markX+")")
	p2 := f.text("scoreboard.player", map[string]any{"Name": v.Player2, "Mark": markO}, v.Player2+" ("+markO+")")
	return p1, f.text("scoreboard.draws", nil, "DRAWS"), p2
}

func (f *Formatter) Rounds(n int) string {
	return f.text("scoreboard.rounds", map[string]any{"Rounds": n}, fmt.Sprintf("ROUND %d", n))
}

// SessionTag is shown while a round is in progress.
func (f *Formatter) SessionTag(id string) string {
	tag := SessionTag(id)
	if tag == "" {
		return ""
	}
	return f.text("game.session_tag", map[string]any{"Tag": tag}, "SESSION "+tag)
}

// NextRoundLabel switches to the saving text while the round is being recorded.
func (f *Formatter) NextRoundLabel(saving bool) string {
	if saving {
		return f.text("game.saving", nil, "[ SAVING... ]")
	}
	return f.text("game.next_round", nil, "[ NEXT ROUND ]")
}

func (f *Formatter) Total(count int) string {
	plural := "S"
	if count == 1 {
		plural = ""
	}
	return f.text("history.total", map[string]any{"Count": count}, fmt.Sprintf("%d SESSION%s TOTAL", count, plural))
}

// Chip is the compact label of one recorded round.
func (f *Formatter) Chip(c arenadto.RoundChip) string {
	if c.Draw {
		return f.text("history.chip_draw", map[string]any{"Index": c.Index}, fmt.Sprintf("R%d: DRAW", c.Index))
	}
	w := c.Winner
	if w == "" {
		w = "?"
	}
	return f.text("history.chip", map[string]any{"Index": c.Index, "Winner": w}, fmt.Sprintf("R%d: %s", c.Index, w))
}

func (f *Formatter) TopPlayer(row arenadto.SessionRow) string {
	if row.TopPlayer == "" {
		return ""
	}
	return f.text("history.top_player", map[string]any{"Name": row.TopPlayer}, "★ "+row.TopPlayer)
}

// RowLine is the collapsed one-line summary of a history row.
func (f *Formatter) RowLine(row arenadto.SessionRow) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s vs %s  %d-%d-%d",
		row.Player1, row.Player2, row.Stats.Player1Wins, row.Stats.Draws, row.Stats.Player2Wins))
	if top := f.TopPlayer(row); top != "" {
		sb.WriteString("  ")
		sb.WriteString(top)
	}
	sb.WriteString("  ")
	if row.CreatedAt.IsZero() {
		sb.WriteString(f.text("history.no_date", nil, "—"))
	} else {
		sb.WriteString(row.CreatedAt.Local().Format("2006-01-02"))
	}
	return sb.String()
}

// Chips renders the expanded round list of a row.
func (f *Formatter) Chips(row arenadto.SessionRow) []string {
	if len(row.Rounds) == 0 {
		return []string{f.text("history.no_rounds", nil, "No rounds played yet")}
	}
	out := make([]string, 0, len(row.Rounds))
	for _, c := range row.Rounds {
		out = append(out, f.Chip(c))
	}
	return out
}

// StatusLabel is the DB indicator text.
func (f *Formatter) StatusLabel(s arenadto.DBStatus) string {
	switch s {
	case arenadto.DBOnline:
		return f.text("status.online", nil, "ONLINE")
	case arenadto.DBOffline:
		return f.text("status.offline", nil, "OFFLINE")
	default:
		return f.text("status.loading", nil, "CONNECTING")
	}
}

// Recovery returns the lines of the resume/abandon prompt.
func (f *Formatter) Recovery(r *arenadto.Recovery) []string {
	if r == nil {
		return nil
	}
	return []string{
		f.text("recovery.heading", nil, "SESSION DETECTED"),
		f.text("recovery.body", nil, "AN UNFINISHED SESSION WAS FOUND"),
		f.text("recovery.players", map[string]any{"Player1": r.Player1, "Player2": r.Player2},
			fmt.Sprintf("PLAYERS  %s vs %s", r.Player1, r.Player2)),
		f.text("recovery.score", map[string]any{"P1": r.Stats.Player1Wins, "Draws": r.Stats.Draws, "P2": r.Stats.Player2Wins},
			fmt.Sprintf("SCORE    %d - %d - %d", r.Stats.Player1Wins, r.Stats.Draws, r.Stats.Player2Wins)),
		f.text("recovery.rounds", map[string]any{"Rounds": r.RoundCount}, fmt.Sprintf("ROUNDS   %d", r.RoundCount)),
		f.text("recovery.actions", nil, "[r] RESUME   [a] ABANDON"),
	}
}
