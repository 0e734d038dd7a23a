package board

// Mark is the content of a single cell.
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// Draw is the Outcome winner token for a full board without a line.
const Draw = "draw"

// Size is the number of cells on the grid.
const Size = 9

// Other returns the opposing mark. Empty stays empty.
func (m Mark) Other() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Board is a 3x3 grid stored row-major.
type Board [Size]Mark

// Combo is one winning index triple.
type Combo [3]int

// WinningCombos is checked in declaration order: rows, columns, diagonals.
var WinningCombos = [8]Combo{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Outcome is a decided round. A nil *Outcome means play continues.
type Outcome struct {
	// Winner is "X", "O" or Draw.
	Winner string `json:"winner"`
	// Combo is empty for a draw.
	Combo []int `json:"combo"`
}

func (o *Outcome) IsDraw() bool { return o != nil && o.Winner == Draw }

// InRange reports whether i addresses a cell.
func InRange(i int) bool { return i >= 0 && i < Size }

func (b Board) IsEmpty(i int) bool { return InRange(i) && b[i] == Empty }

func (b Board) Full() bool {
	for _, m := range b {
		if m == Empty {
			return false
		}
	}
	return true
}

// Moves counts non-empty cells.
func (b Board) Moves() int {
	n := 0
	for _, m := range b {
		if m != Empty {
			n++
		}
	}
	return n
}

// Evaluate returns the first matching winning line, a draw for a full board
// without a line, or nil while the round is still open.
func Evaluate(b Board) *Outcome {
	for _, c := range WinningCombos {
		a := b[c[0]]
		if a != Empty && a == b[c[1]] && a == b[c[2]] {
			return &Outcome{Winner: string(a), Combo: []int{c[0], c[1], c[2]}}
		}
	}
	if b.Full() {
		return &Outcome{Winner: Draw, Combo: []int{}}
	}
	return nil
}

// InCombo reports whether cell i belongs to the outcome's winning line.
func (o *Outcome) InCombo(i int) bool {
	if o == nil {
		return false
	}
	for _, c := range o.Combo {
		if c == i {
			return true
		}
	}
	return false
}
