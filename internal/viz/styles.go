package viz

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
}

var (
	Themes = []Theme{
		{Name: "cyberpunk", Primary: lipgloss.Color("#00ffff"), Accent: lipgloss.Color("#ff00ff"), Muted: lipgloss.Color("#666688")},
		{Name: "retro", Primary: lipgloss.Color("#00ff00"), Accent: lipgloss.Color("#88ff88"), Muted: lipgloss.Color("#005500")},
		{Name: "minimal", Primary: lipgloss.Color("#ffffff"), Accent: lipgloss.Color("#0088ff"), Muted: lipgloss.Color("#888888")},
	}
	CurrentTheme = Themes[0]
)

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

var (
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)
	recordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true).Blink(true)
)

func canvasStyle() lipgloss.Style {
	return lipgloss.NewStyle().Padding(1, 2).Foreground(CurrentTheme.Primary)
}

func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true).MarginBottom(1)
}

func activeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true)
}

func graphStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Padding(1, 0)
}
