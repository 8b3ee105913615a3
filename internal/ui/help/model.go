package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/theme"
)

// Model is the help overlay: every key binding plus the settings the
// client runs with.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	cfg    *model.AppConfig
	width  int
	height int
}

// New creates a new help view model. cfg may be nil.
func New(keys *keys.KeyMap, cfg *model.AppConfig, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		cfg:    cfg,
		width:  width,
		height: height,
	}
}

// View renders the help overlay.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	m.help.Styles.FullKey = lipgloss.NewStyle().Foreground(theme.ColorAccent)
	m.help.Styles.FullDesc = theme.DimmedStyle
	helpText := m.help.View(m.keys)

	parts := []string{title, helpText}
	if s := m.settings(); s != "" {
		parts = append(parts, "", theme.TitleStyle.Render("Settings"), s)
	}

	return theme.PanelStyle.
		Width(max(m.width-4, 20)).
		Height(max(m.height-4, 5)).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) settings() string {
	if m.cfg == nil {
		return ""
	}
	rows := [][2]string{
		{"backend", m.cfg.API.BaseURL},
		{"ordering", m.cfg.Store.Ordering},
		{"autosave", fmt.Sprintf("every %ds", m.cfg.Editor.AutosaveIntervalSec)},
		{"theme", theme.Current().Name},
		{"log", m.cfg.Log.File},
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s %s\n", theme.DimmedStyle.Render(fmt.Sprintf("%-9s", r[0])), r[1])
	}
	return strings.TrimRight(b.String(), "\n")
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
