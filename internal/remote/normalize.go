package remote

import (
	"encoding/json"
	"strings"

	"github.com/park285/xo-arena/internal/domain"
	"github.com/tidwall/gjson"
)

// normalizeSessions unwraps the list endpoint defensively. Rows that are not
// objects, lack an _id or fail to decode are dropped; any other top-level
// shape yields an empty list.
func normalizeSessions(raw []byte) []domain.Session {
	out := []domain.Session{}
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return out
	}
	root := gjson.ParseBytes(raw)
	var rows gjson.Result
	switch {
	case root.IsArray():
		rows = root
	case root.IsObject() && root.Get("sessions").IsArray():
		rows = root.Get("sessions")
	default:
		return out
	}

	rows.ForEach(func(_, row gjson.Result) bool {
		if !row.IsObject() {
			return true
		}
		if strings.TrimSpace(row.Get("_id").String()) == "" {
			return true
		}
		s, ok := decodeSession(row)
		if ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

func decodeSession(row gjson.Result) (domain.Session, bool) {
	s := domain.Session{
		ID:       strings.TrimSpace(row.Get("_id").String()),
		Player1:  row.Get("player1").String(),
		Player2:  row.Get("player2").String(),
		IsActive: row.Get("isActive").Bool(),
	}
	if st := row.Get("stats"); st.IsObject() {
		s.Stats = domain.Stats{
			Player1Wins: int(st.Get("player1Wins").Int()),
			Player2Wins: int(st.Get("player2Wins").Int()),
			Draws:       int(st.Get("draws").Int()),
		}
	}
	if rounds := row.Get("rounds"); rounds.IsArray() {
		s.Rounds = make([]domain.Round, 0, len(rounds.Array()))
		rounds.ForEach(func(_, r gjson.Result) bool {
			if !r.IsObject() {
				return true
			}
			var round domain.Round
			if err := json.Unmarshal([]byte(r.Raw), &round); err != nil {
				round = domain.Round{ID: r.Get("_id").String(), Winner: r.Get("winner").String()}
			}
			s.Rounds = append(s.Rounds, round)
			return true
		})
	}
	if ts := row.Get("createdAt"); ts.Exists() {
		if t := ts.Time(); !t.IsZero() {
			s.CreatedAt = t
		}
	}
	return s, true
}
