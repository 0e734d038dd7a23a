package arenadto

import "time"

type RoundChip struct {
	Index  int
	Winner string
	Draw   bool
}

// SessionRow is one normalized entry of the history list.
type SessionRow struct {
	ID          string
	Tag         string
	Player1     string
	Player2     string
	Stats       Stats
	TotalRounds int
	Rounds      []RoundChip
	TopPlayer   string
	Active      bool
	CreatedAt   time.Time
}

type DBStatus string

const (
	DBLoading DBStatus = "loading"
	DBOnline  DBStatus = "online"
	DBOffline DBStatus = "offline"
)
