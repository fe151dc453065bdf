package dashboard

import "github.com/charmbracelet/lipgloss"

// Dashboard color palette
const (
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	// Semantic colors
	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	// Accent colors
	ColorAccent    = lipgloss.Color("#FF2E97")
	ColorAccentDim = lipgloss.Color("#BF40FF")

	// Graph color
	ColorGraph = lipgloss.Color("#00FFFF")
)

// MemoryAlertRatio is the observed/limit ratio past which the memory banner
// is shown.
const MemoryAlertRatio = 0.8

// HighMemoryBadgePercent is the per-process memory share past which a row
// gets the High Memory badge.
const HighMemoryBadgePercent = 10.0

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	SectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	SectionTitleStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	CounterStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	CounterFlashStyle = lipgloss.NewStyle().
				Foreground(ColorHealthy).
				Bold(true)

	BadgeAIStyle = lipgloss.NewStyle().
			Foreground(ColorCritical).
			Bold(true)

	BadgeMemStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ProtectedStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy)

	WillCloseStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	AlertStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorCritical).
			Bold(true).
			Padding(0, 1)

	ConfirmStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2)
)

// statusDot maps a connection state label to a colored indicator.
func statusDot(state string) string {
	switch state {
	case "connected":
		return lipgloss.NewStyle().Foreground(ColorHealthy).Render("●")
	case "connecting":
		return lipgloss.NewStyle().Foreground(ColorWarning).Render("●")
	default:
		return lipgloss.NewStyle().Foreground(ColorCritical).Render("●")
	}
}

// riskStyle maps a risk label to its display style.
func riskStyle(risk string) lipgloss.Style {
	switch risk {
	case "critical", "high":
		return lipgloss.NewStyle().Foreground(ColorCritical).Bold(true)
	case "medium":
		return lipgloss.NewStyle().Foreground(ColorWarning)
	default:
		return lipgloss.NewStyle().Foreground(ColorTextMuted)
	}
}
