package arenapresenter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/park285/xo-arena/internal/domain"
	"github.com/park285/xo-arena/internal/msgcat"
	"github.com/park285/xo-arena/pkg/arenadto"
)

func TestToSessionRowDefaults(t *testing.T) {
	row := ToSessionRow(domain.Session{ID: "65f0c0ffee1234abcd"})
	if row.Player1 != "Player 1" || row.Player2 != "Player 2" {
		t.Fatalf("default names: %+v", row)
	}
	if row.Rounds == nil || len(row.Rounds) != 0 || row.TotalRounds != 0 {
		t.Fatalf("rounds should be empty: %+v", row)
	}
	if row.Tag != "1234ABCD" {
		t.Fatalf("tag = %q", row.Tag)
	}
}

func TestToSessionRowsSkipsMissingID(t *testing.T) {
	rows := ToSessionRows([]domain.Session{{ID: ""}, {ID: "a"}, {ID: "  "}})
	if len(rows) != 1 || rows[0].ID != "a" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestTopPlayerOnlyForFinishedSessions(t *testing.T) {
	s := domain.Session{ID: "a", Player1: "Ann", Player2: "Bob", Stats: domain.Stats{Player1Wins: 1, Player2Wins: 3}}
	if got := ToSessionRow(s).TopPlayer; got != "Bob" {
		t.Fatalf("top = %q", got)
	}
	s.IsActive = true
	if got := ToSessionRow(s).TopPlayer; got != "" {
		t.Fatalf("active session has top player %q", got)
	}
	s.IsActive = false
	s.Stats = domain.Stats{Player1Wins: 2, Player2Wins: 2, Draws: 1}
	if got := ToSessionRow(s).TopPlayer; got != "" {
		t.Fatalf("tie has top player %q", got)
	}
}

func TestChips(t *testing.T) {
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	f := NewFormatter(cat)
	row := ToSessionRow(domain.Session{ID: "a", Rounds: []domain.Round{{Winner: "Ann"}, {Winner: "draw"}, {}}})
	got := f.Chips(row)
	want := []string{"R1: Ann", "R2: DRAW", "R3: ?"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("chips = %v", got)
	}
	if got := f.Chips(ToSessionRow(domain.Session{ID: "b"})); len(got) != 1 || got[0] != "No rounds played yet" {
		t.Fatalf("empty chips = %v", got)
	}
}

func TestTotalsAndStatus(t *testing.T) {
	for _, f := range []*Formatter{NewFormatter(nil), mustFormatter(t)} {
		if got := f.Total(1); got != "1 SESSION TOTAL" {
			t.Fatalf("Total(1) = %q", got)
		}
		if got := f.Total(0); got != "0 SESSIONS TOTAL" {
			t.Fatalf("Total(0) = %q", got)
		}
		if f.StatusLabel(arenadto.DBLoading) != "CONNECTING" || f.StatusLabel(arenadto.DBOnline) != "ONLINE" || f.StatusLabel(arenadto.DBOffline) != "OFFLINE" {
			t.Fatalf("status labels wrong")
		}
	}
}

func TestTurnLine(t *testing.T) {
	f := mustFormatter(t)
	got := f.Turn(arenadto.GameView{Turn: "O", CurrentPlayer: "Bob"})
	if !strings.Contains(got, "Bob") || !strings.Contains(got, "○") {
		t.Fatalf("turn = %q", got)
	}
	got = f.Turn(arenadto.GameView{Decided: true, WinnerName: "Ann"})
	if !strings.Contains(got, "ANN WINS") {
		t.Fatalf("victory = %q", got)
	}
	got = f.Turn(arenadto.GameView{Decided: true, Draw: true})
	if !strings.Contains(got, "DRAW") {
		t.Fatalf("draw = %q", got)
	}
}

func TestSnapshot(t *testing.T) {
	var savedName string
	p := NewPresenter(
		func(v arenadto.GameView) ([]byte, error) { return []byte("png"), nil },
		func(name string, data []byte) (string, error) { savedName = name; return "/tmp/" + name, nil },
	)
	p.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	if _, err := p.Snapshot(arenadto.GameView{}); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("idle snapshot: %v", err)
	}
	path, err := p.Snapshot(arenadto.GameView{Active: true, SessionID: "abcdef0123456789", RoundCount: 2})
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if savedName != "xo-23456789-r2-20260102T030405.png" || path != "/tmp/"+savedName {
		t.Fatalf("name=%q path=%q", savedName, path)
	}
}

func mustFormatter(t *testing.T) *Formatter {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return NewFormatter(cat)
}
