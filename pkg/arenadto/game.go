package arenadto

type Stats struct {
	Player1Wins int
	Player2Wins int
	Draws       int
}

// GameView is everything the UI draws for the active session.
type GameView struct {
	SessionID     string
	Active        bool
	Player1       string
	Player2       string
	Stats         Stats
	RoundCount    int
	Cells         [9]string
	Turn          string
	CurrentPlayer string
	Winner        string
	WinnerName    string
	Combo         []int
	Draw          bool
	Decided       bool
	Saving        bool
	ConnError     bool
	Recovery      *Recovery
}

// Recovery describes an interrupted session waiting for resume or abandon.
type Recovery struct {
	SessionID  string
	Player1    string
	Player2    string
	Stats      Stats
	RoundCount int
}
