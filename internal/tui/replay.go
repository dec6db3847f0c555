package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tmak94/legallynotset/internal/game"
	"github.com/tmak94/legallynotset/internal/game/triad"
)

// replayPage is how far pgup/pgdown jump.
const replayPage = 10

// ReplayViewer steps through a recorded game one frame at a time.
type ReplayViewer struct {
	key      string
	replay   *game.Replay
	frame    *game.Frame
	styles   Styles
	quitting bool
}

// NewReplayViewer opens replay at its first frame.
func NewReplayViewer(key string, replay *game.Replay) ReplayViewer {
	return ReplayViewer{
		key:    key,
		replay: replay,
		frame:  replay.Start(),
		styles: DefaultStyles(),
	}
}

// Frame returns the frame being shown.
func (v ReplayViewer) Frame() *game.Frame { return v.frame }

func (v ReplayViewer) Init() tea.Cmd { return nil }

func (v ReplayViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	var f *game.Frame
	switch key.String() {
	case "right", "l", "n", " ":
		f = v.replay.Next()
	case "left", "h", "p":
		f = v.replay.Previous()
	case "pgdown", "]":
		f = v.replay.Skip(replayPage)
	case "pgup", "[":
		f = v.replay.Skip(-replayPage)
	case "home", "g":
		f = v.replay.Start()
	case "end", "G":
		f = v.replay.Skip(v.replay.Size())
	case "q", "esc", "ctrl+c":
		v.quitting = true
		return v, tea.Quit
	}
	if f != nil {
		v.frame = f
	}
	return v, nil
}

func (v ReplayViewer) View() string {
	if v.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(v.styles.Title.Render("Replay " + v.key))
	sb.WriteString("\n")
	if v.frame == nil {
		sb.WriteString(v.styles.Error.Render("no frames recorded"))
		sb.WriteString("\n")
		return sb.String()
	}

	view := v.frame.View
	cells := make([]string, len(view.InPlay))
	for i, id := range view.InPlay {
		cells[i] = v.renderCard(id, view.Selection)
	}

	status := fmt.Sprintf("Frame  %d/%d", v.frame.Seq+1, v.replay.Size())
	lines := []string{
		status,
		fmt.Sprintf("Action %s", v.frame.Action),
		fmt.Sprintf("Game   %d", view.Game),
		fmt.Sprintf("Score  %d", view.Score),
		fmt.Sprintf("Deck   %d", view.DeckRemaining),
	}
	if view.GameOver {
		lines = append(lines, "", v.styles.Message.Render("game over"))
	}
	panel := v.styles.Panel.Render(strings.Join(lines, "\n"))

	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid(cells), panel))
	sb.WriteString("\n")
	sb.WriteString(v.styles.Subtle.Render("←/→ step • [/] jump • g/G first/last • q quit"))
	return sb.String()
}

func (v ReplayViewer) renderCard(id triad.Identity, selection []triad.Identity) string {
	for _, s := range selection {
		if s == id {
			return v.styles.cardCell(v.styles.Selected, id, true)
		}
	}
	return v.styles.cardCell(v.styles.Card, id, false)
}
