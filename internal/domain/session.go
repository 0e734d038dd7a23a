package domain

import (
	"strings"
	"time"
)

// DrawWinner is the winner token recorded for drawn rounds.
const DrawWinner = "draw"

// Stats is the per-session score ledger. The backend copy is authoritative.
type Stats struct {
	Player1Wins int `json:"player1Wins"`
	Player2Wins int `json:"player2Wins"`
	Draws       int `json:"draws"`
}

// Total is the number of decided rounds the ledger accounts for.
func (s Stats) Total() int { return s.Player1Wins + s.Player2Wins + s.Draws }

type Round struct {
	ID        string    `json:"_id,omitempty"`
	Winner    string    `json:"winner"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Session is the backend record of a sequence of rounds between two players.
type Session struct {
	ID        string    `json:"_id"`
	Player1   string    `json:"player1"`
	Player2   string    `json:"player2"`
	Stats     Stats     `json:"stats"`
	Rounds    []Round   `json:"rounds"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// RoundResult is the backend reply to a recorded round.
type RoundResult struct {
	Stats  Stats   `json:"stats"`
	Rounds []Round `json:"rounds"`
}

// Snapshot is the durable local mirror of an active session.
// It only exists to detect an interrupted session on the next start.
type Snapshot struct {
	Session    *Session `json:"session"`
	Player1    string   `json:"player1"`
	Player2    string   `json:"player2"`
	Stats      Stats    `json:"stats"`
	RoundCount int      `json:"roundCount"`
}

// Valid reports whether the snapshot names a session and both players.
func (s *Snapshot) Valid() bool {
	if s == nil || s.Session == nil {
		return false
	}
	return strings.TrimSpace(s.Session.ID) != "" &&
		strings.TrimSpace(s.Player1) != "" &&
		strings.TrimSpace(s.Player2) != ""
}

// SessionID returns the mirrored session id or "".
func (s *Snapshot) SessionID() string {
	if s == nil || s.Session == nil {
		return ""
	}
	return s.Session.ID
}
