package arenapresenter

import (
	"strings"

	"github.com/park285/xo-arena/internal/domain"
	"github.com/park285/xo-arena/pkg/arenadto"
)

const (
	defaultPlayer1 = "Player 1"
	defaultPlayer2 = "Player 2"
	sessionTagLen  = 8
)

// ToSessionRows normalizes history records. Records without an id are skipped.
func ToSessionRows(sessions []domain.Session) []arenadto.SessionRow {
	rows := make([]arenadto.SessionRow, 0, len(sessions))
	for _, s := range sessions {
		if strings.TrimSpace(s.ID) == "" {
			continue
		}
		rows = append(rows, ToSessionRow(s))
	}
	return rows
}

func ToSessionRow(s domain.Session) arenadto.SessionRow {
	p1 := strings.TrimSpace(s.Player1)
	if p1 == "" {
		p1 = defaultPlayer1
	}
	p2 := strings.TrimSpace(s.Player2)
	if p2 == "" {
		p2 = defaultPlayer2
	}
	stats := arenadto.Stats{
		Player1Wins: nonNegative(s.Stats.Player1Wins),
		Player2Wins: nonNegative(s.Stats.Player2Wins),
		Draws:       nonNegative(s.Stats.Draws),
	}
	row := arenadto.SessionRow{
		ID:          s.ID,
		Tag:         SessionTag(s.ID),
		Player1:     p1,
		Player2:     p2,
		Stats:       stats,
		TotalRounds: stats.Player1Wins + stats.Player2Wins + stats.Draws,
		Rounds:      make([]arenadto.RoundChip, 0, len(s.Rounds)),
		Active:      s.IsActive,
		CreatedAt:   s.CreatedAt,
	}
	if !s.IsActive {
		row.TopPlayer = topPlayer(stats, p1, p2)
	}
	for i, r := range s.Rounds {
		row.Rounds = append(row.Rounds, arenadto.RoundChip{
			Index:  i + 1,
			Winner: strings.TrimSpace(r.Winner),
			Draw:   r.Winner == domain.DrawWinner,
		})
	}
	return row
}

// SessionTag is the short id shown next to a session: its last 8 characters in upper case.
func SessionTag(id string) string {
	id = strings.TrimSpace(id)
	if r := []rune(id); len(r) > sessionTagLen {
		id = string(r[len(r)-sessionTagLen:])
	}
	return strings.ToUpper(id)
}

func topPlayer(s arenadto.Stats, p1, p2 string) string {
	switch {
	case s.Player1Wins > s.Player2Wins:
		return p1
	case s.Player2Wins > s.Player1Wins:
		return p2
	default:
		return ""
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
