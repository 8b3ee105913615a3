package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/model"
)

// Palette is one set of colors the styles are built from.
type Palette struct {
	Name    string
	Accent  lipgloss.Color
	Green   lipgloss.Color
	Yellow  lipgloss.Color
	Red     lipgloss.Color
	Orange  lipgloss.Color
	Magenta lipgloss.Color
	Gray    lipgloss.Color
	Text    lipgloss.Color
	Subtle  lipgloss.Color
	Border  lipgloss.Color
}

// Dark is the default palette.
var Dark = Palette{
	Name:    model.ThemeDark,
	Accent:  "#5B9BD5",
	Green:   "#6BCB77",
	Yellow:  "#FFD93D",
	Red:     "#FF6B6B",
	Orange:  "#FFA94D",
	Magenta: "#CC5DE8",
	Gray:    "#868E96",
	Text:    "#F8F9FA",
	Subtle:  "#495057",
	Border:  "#495057",
}

// Light is used when the user toggles the light theme.
var Light = Palette{
	Name:    model.ThemeLight,
	Accent:  "#2B6CB0",
	Green:   "#2F855A",
	Yellow:  "#B7791F",
	Red:     "#C53030",
	Orange:  "#C05621",
	Magenta: "#805AD5",
	Gray:    "#718096",
	Text:    "#1A202C",
	Subtle:  "#CBD5E0",
	Border:  "#E2E8F0",
}

// Colors of the active palette. Apply rewrites them.
var (
	ColorAccent  lipgloss.Color
	ColorGreen   lipgloss.Color
	ColorYellow  lipgloss.Color
	ColorRed     lipgloss.Color
	ColorOrange  lipgloss.Color
	ColorMagenta lipgloss.Color
	ColorGray    lipgloss.Color
	ColorText    lipgloss.Color
	ColorSubtle  lipgloss.Color
	ColorBorder  lipgloss.Color
)

// Styles built from the active palette.
var (
	// HeaderStyle is used for the application title bar.
	HeaderStyle lipgloss.Style

	// StatusBarStyle is used for the bottom status bar.
	StatusBarStyle lipgloss.Style

	// PanelStyle wraps overlays such as help and the command palette.
	PanelStyle lipgloss.Style

	ListItemStyle     lipgloss.Style
	SelectedItemStyle lipgloss.Style

	// HelpStyle is used for keyboard shortcut hints.
	HelpStyle lipgloss.Style

	TitleStyle  lipgloss.Style
	DimmedStyle lipgloss.Style

	// ErrorStyle renders the inline error line in red.
	ErrorStyle lipgloss.Style

	// NoticeStyle renders transient confirmations.
	NoticeStyle lipgloss.Style

	TabStyle       lipgloss.Style
	ActiveTabStyle lipgloss.Style
)

var current = Dark

func init() {
	Apply(model.ThemeDark)
}

// Current returns the active palette.
func Current() Palette {
	return current
}

// Apply switches to the named palette ("light" or "dark") and rebuilds
// every style. Unknown names select the dark palette.
func Apply(name string) Palette {
	p := Dark
	if name == model.ThemeLight {
		p = Light
	}
	current = p

	ColorAccent = p.Accent
	ColorGreen = p.Green
	ColorYellow = p.Yellow
	ColorRed = p.Red
	ColorOrange = p.Orange
	ColorMagenta = p.Magenta
	ColorGray = p.Gray
	ColorText = p.Text
	ColorSubtle = p.Subtle
	ColorBorder = p.Border

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text).
		Background(p.Accent).
		Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(p.Text).
		Background(p.Subtle).
		Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border)

	ListItemStyle = lipgloss.NewStyle().PaddingLeft(2)

	SelectedItemStyle = lipgloss.NewStyle().
		PaddingLeft(1).
		Bold(true).
		Foreground(p.Accent).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(p.Accent)

	HelpStyle = lipgloss.NewStyle().Foreground(p.Gray).Italic(true)
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Text).MarginBottom(1)
	DimmedStyle = lipgloss.NewStyle().Foreground(p.Gray)
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Red)
	NoticeStyle = lipgloss.NewStyle().Italic(true).Foreground(p.Yellow)

	TabStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(p.Gray)
	ActiveTabStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(p.Accent).
		Underline(true)

	return p
}

// Toggle switches between the light and dark palettes and returns the
// name of the one now active.
func Toggle() string {
	if current.Name == model.ThemeLight {
		return Apply(model.ThemeDark).Name
	}
	return Apply(model.ThemeLight).Name
}

// PriorityStyle returns a color-coded style for a note order value.
func PriorityStyle(order int) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch model.NormalizePriority(order) {
	case model.PriorityHigh:
		return base.Foreground(ColorRed)
	case model.PriorityMedium:
		return base.Foreground(ColorOrange)
	case model.PriorityLow:
		return base.Foreground(ColorAccent)
	default:
		return base.Foreground(ColorGray)
	}
}

// ColorStyle renders text in a user-chosen entity color such as a tag or
// note color. An empty color falls back to magenta.
func ColorStyle(color string) lipgloss.Style {
	if color == "" {
		return lipgloss.NewStyle().Foreground(ColorMagenta)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
