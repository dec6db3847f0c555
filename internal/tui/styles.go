package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tmak94/legallynotset/internal/game/triad"
)

var (
	colorMuted  = lipgloss.Color("#6c7086")
	colorAccent = lipgloss.Color("#8BC34A")
	colorFocus  = lipgloss.Color("#FFC107")
	colorError  = lipgloss.Color("#e53935")
	colorHint   = lipgloss.Color("#29b6f6")

	// card colors, indexed by the color digit
	cardColors = [4]lipgloss.Color{
		"",
		lipgloss.Color("#e53935"), // red
		lipgloss.Color("#43a047"), // green
		lipgloss.Color("#8e24aa"), // purple
	}
)

// Styles groups the lipgloss styles the views render with.
type Styles struct {
	Title    lipgloss.Style
	Subtle   lipgloss.Style
	MenuItem lipgloss.Style
	MenuSel  lipgloss.Style
	Card     lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Hint     lipgloss.Style
	Panel    lipgloss.Style
	Message  lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the built-in theme.
func DefaultStyles() Styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1).
		Width(18)

	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginBottom(1),
		Subtle:   lipgloss.NewStyle().Foreground(colorMuted),
		MenuItem: lipgloss.NewStyle().PaddingLeft(2),
		MenuSel:  lipgloss.NewStyle().Foreground(colorFocus).Bold(true),
		Card:     card,
		Cursor:   card.BorderStyle(lipgloss.ThickBorder()).BorderForeground(colorFocus),
		Selected: card.BorderStyle(lipgloss.DoubleBorder()).BorderForeground(colorAccent),
		Hint:     card.BorderForeground(colorHint),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorMuted).
			Padding(0, 2).
			MarginLeft(2),
		Message: lipgloss.NewStyle().Foreground(colorAccent),
		Error:   lipgloss.NewStyle().Foreground(colorError),
	}
}

// cardInk is the foreground for a card's shapes.
func cardInk(id triad.Identity) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(cardColors[id.Color()])
}

// cardCell renders one card inside frame. Selected cards carry a mark.
func (s Styles) cardCell(frame lipgloss.Style, id triad.Identity, selected bool) string {
	shapes := strings.Repeat(glyphs[id.Shape()-1][id.Fill()-1]+" ", id.Count())
	mark := " "
	if selected {
		mark = "*"
	}
	body := strings.Join([]string{
		mark + " " + id.String(),
		cardInk(id).Render(strings.TrimSpace(shapes)),
		s.Subtle.Render(id.ColorName() + " " + id.FillName()),
	}, "\n")
	return frame.Render(body)
}

// grid lays cells out boardColumns to a row.
func grid(cells []string) string {
	rows := make([]string, 0, (len(cells)+boardColumns-1)/boardColumns)
	for start := 0; start < len(cells); start += boardColumns {
		end := min(start+boardColumns, len(cells))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
