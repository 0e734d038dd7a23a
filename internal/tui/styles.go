package tui

import "github.com/charmbracelet/lipgloss"

// Neon arcade palette
var (
	ColorVoid   = lipgloss.Color("#0A0A14")
	ColorPanel  = lipgloss.Color("#12122A")
	ColorPink   = lipgloss.Color("#FF006E")
	ColorCyan   = lipgloss.Color("#00F5FF")
	ColorYellow = lipgloss.Color("#FFBE0B")
	ColorGreen  = lipgloss.Color("#39FF14")
	ColorPurple = lipgloss.Color("#8338EC")
	ColorMuted  = lipgloss.Color("#5C6370")
	ColorText   = lipgloss.Color("#ECEFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPink).
			Bold(true).
			PaddingLeft(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			PaddingLeft(1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPurple).
			Padding(0, 1)

	FocusedPanelStyle = PanelStyle.
				BorderForeground(ColorCyan)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorYellow).
			Padding(1, 3)

	CellStyle = lipgloss.NewStyle().
			Width(5).
			Align(lipgloss.Center).
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorPurple)

	CursorCellStyle = CellStyle.
			BorderForeground(ColorText)

	ComboCellStyle = CellStyle.
			BorderForeground(ColorYellow).
			Bold(true)

	XStyle    = lipgloss.NewStyle().Foreground(ColorPink).Bold(true)
	OStyle    = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	DrawStyle = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	HintStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	TextStyle = lipgloss.NewStyle().Foreground(ColorText)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorPink).
			Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	DisabledStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorVoid).
				Background(ColorCyan)

	ActiveDotStyle   = lipgloss.NewStyle().Foreground(ColorGreen)
	InactiveDotStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

func statusStyle(label string) lipgloss.Style {
	switch label {
	case "online":
		return lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	case "offline":
		return lipgloss.NewStyle().Foreground(ColorPink).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	}
}
