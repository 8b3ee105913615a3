package notelist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/markdown"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/theme"
)

// previewRunes bounds the second line of a list entry.
const previewRunes = 72

// maxTagBadges is how many tag names fit on the title line before "…".
const maxTagBadges = 3

// NoteItem wraps a note with the names it renders so the delegate does
// not need the store.
type NoteItem struct {
	Note     model.Note
	Tags     []model.Tag
	Notebook string
}

// FilterValue returns the string used for fuzzy filtering.
func (i NoteItem) FilterValue() string { return i.Title() }

// Title returns the note name, or its first heading when unnamed.
func (i NoteItem) Title() string {
	return markdown.DisplayTitle(i.Note.Name, i.Note.Text)
}

// Description returns the plain-text preview of the note body.
func (i NoteItem) Description() string {
	return markdown.Preview(i.Note.Text, previewRunes)
}

// ItemDelegate renders a note as a title line and a preview line.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a single note entry.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(NoteItem)
	if !ok {
		return
	}

	marker := theme.ColorStyle(ni.Note.Color).Render("●")
	pri := theme.PriorityStyle(ni.Note.Order).Render(priorityBadge(ni.Note.Order))

	notebook := ""
	if ni.Notebook != "" {
		notebook = theme.DimmedStyle.Render(" [" + ni.Notebook + "]")
	}

	line := fmt.Sprintf("%s %s %s%s%s", marker, pri, ni.Title(), notebook, tagBadges(ni.Tags))
	preview := theme.DimmedStyle.Render("  " + ni.Description())

	style := theme.ListItemStyle
	if index == m.Index() {
		style = theme.SelectedItemStyle
	}
	fmt.Fprint(w, style.Render(lipgloss.JoinVertical(lipgloss.Left, line, preview)))
}

func tagBadges(tags []model.Tag) string {
	if len(tags) == 0 {
		return ""
	}
	shown := tags
	if len(shown) > maxTagBadges {
		shown = shown[:maxTagBadges]
	}
	parts := make([]string, 0, len(shown)+1)
	for _, t := range shown {
		parts = append(parts, theme.ColorStyle(t.Color).Render("#"+t.Name))
	}
	if len(tags) > maxTagBadges {
		parts = append(parts, theme.DimmedStyle.Render("…"))
	}
	return " " + strings.Join(parts, " ")
}

// priorityBadge returns a short label for the order value.
func priorityBadge(order int) string {
	switch model.NormalizePriority(order) {
	case model.PriorityHigh:
		return "!!!"
	case model.PriorityMedium:
		return "!! "
	case model.PriorityLow:
		return "!  "
	default:
		return "   "
	}
}
