// Package tui is the terminal front end: a bubbletea program over one engine.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tmak94/legallynotset/internal/game"
	"github.com/tmak94/legallynotset/internal/game/triad"
	"github.com/tmak94/legallynotset/internal/screen"
)

const boardColumns = 4

// title menu entries
const (
	menuNewGame = iota
	menuRules
	menuQuit
	menuCount
)

var menuLabels = [menuCount]string{"New Game", "How To Play", "Quit"}

// glyphs[shape-1][fill-1]
var glyphs = [3][3]string{
	{"█", "▯", "▥"}, // rectangle
	{"●", "○", "◍"}, // oval
	{"◆", "◇", "◈"}, // diamond
}

// resultSavedMsg reports the outcome of recording a finished game.
type resultSavedMsg struct{ err error }

// Model is the bubbletea model.
type Model struct {
	engine  *game.Engine
	machine screen.Machine
	results game.ResultRecorder
	logger  *zap.Logger
	styles  Styles

	gameID  string // identifies the current game in the results store
	started bool
	hint    []triad.Identity
	menu    int
	cursor  int
	message string
	failed  bool // message is an error
	width   int
	height  int
}

// Option configures a Model.
type Option func(*Model)

// WithResults records every finished game.
func WithResults(r game.ResultRecorder) Option {
	return func(m *Model) { m.results = r }
}

// WithLogger sets the logger. The terminal is owned by the UI, so it should
// write to a file.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// New creates the model. The engine is reset when a game starts.
func New(engine *game.Engine, opts ...Option) Model {
	m := Model{
		engine: engine,
		logger: zap.NewNop(),
		styles: DefaultStyles(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Screen returns the screen being shown.
func (m Model) Screen() screen.Screen { return m.machine.Current() }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case resultSavedMsg:
		if msg.err != nil {
			m.logger.Error("failed to record result", zap.Error(msg.err))
			m.setError("could not save result")
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.apply(screen.Quit)
		}
		switch m.machine.Current() {
		case screen.Title:
			return m.updateTitle(msg)
		case screen.Playing:
			return m.updatePlaying(msg)
		case screen.GameOver:
			return m.updateGameOver(msg)
		case screen.Rules:
			return m.updateRules(msg)
		}
	}
	return m, nil
}

func (m Model) updateTitle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.menu = (m.menu + menuCount - 1) % menuCount
	case "down", "j", "tab":
		m.menu = (m.menu + 1) % menuCount
	case "n":
		return m.apply(screen.StartGame)
	case "?", "h":
		return m.apply(screen.ShowRules)
	case "q", "esc":
		return m.apply(screen.Quit)
	case "enter", " ":
		switch m.menu {
		case menuNewGame:
			return m.apply(screen.StartGame)
		case menuRules:
			return m.apply(screen.ShowRules)
		case menuQuit:
			return m.apply(screen.Quit)
		}
	}
	return m, nil
}

func (m Model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.engine.InPlay())
	switch msg.String() {
	case "left", "h":
		if m.cursor%boardColumns > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor%boardColumns < boardColumns-1 && m.cursor+1 < n {
			m.cursor++
		}
	case "up", "k":
		if m.cursor >= boardColumns {
			m.cursor -= boardColumns
		}
	case "down", "j":
		if m.cursor+boardColumns < n {
			m.cursor += boardColumns
		}
	case " ", "enter":
		return m.toggleCursor()
	case "?", "t":
		m.showHint()
	case "s":
		m.engine.ShuffleInPlay()
		m.setMessage("board shuffled")
	case "r":
		m.engine.Reset()
		m.cursor = 0
		m.hint = nil
		m.gameID = uuid.New().String()
		m.setMessage("board reset")
	case "m", "esc":
		return m.apply(screen.MainMenu)
	case "q":
		return m.apply(screen.Quit)
	}
	return m, nil
}

func (m Model) updateGameOver(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "p", "n":
		return m.apply(screen.StartGame)
	case "m", "esc":
		return m.apply(screen.MainMenu)
	case "q":
		return m.apply(screen.Quit)
	}
	return m, nil
}

func (m Model) updateRules(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b", "enter", "backspace":
		return m.apply(screen.Back)
	case "q":
		return m.apply(screen.Quit)
	}
	return m, nil
}

// apply moves the state machine and runs the side effects of the transition.
func (m Model) apply(action screen.Action) (tea.Model, tea.Cmd) {
	if !m.machine.Apply(action) {
		return m, nil
	}
	switch action {
	case screen.Quit:
		return m, tea.Quit
	case screen.StartGame:
		// the engine deals on construction, so the first game only reshuffles
		if m.started {
			m.engine.NewGame()
		} else {
			m.engine.Reset()
			m.started = true
		}
		m.gameID = uuid.New().String()
		m.cursor = 0
		m.hint = nil
		m.setMessage("")
		if m.engine.GameOver() {
			return m.apply(screen.GameEnded)
		}
	case screen.GameEnded:
		return m, m.recordResult()
	case screen.MainMenu:
		m.menu = menuNewGame
		m.setMessage("")
	}
	return m, nil
}

func (m Model) toggleCursor() (tea.Model, tea.Cmd) {
	board := m.engine.InPlay()
	if m.cursor >= len(board) {
		return m, nil
	}
	id := board[m.cursor]

	outcome, err := m.engine.Toggle(id)
	if err != nil {
		m.setError(err.Error())
		return m, nil
	}
	if outcome == game.OutcomeClaimed {
		m.hint = nil
	}
	switch outcome {
	case game.OutcomeClaimed:
		m.setMessage("Triad!")
	case game.OutcomeMissed:
		m.setError("not a triad")
	default:
		m.setMessage("")
	}

	if n := len(m.engine.InPlay()); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	}
	if m.engine.GameOver() {
		return m.apply(screen.GameEnded)
	}
	return m, nil
}

// showHint marks one triad on the board.
func (m *Model) showHint() {
	cards, ok := m.engine.Hint()
	if !ok {
		m.hint = nil
		m.setError("no triad on the board")
		return
	}
	m.hint = cards[:]
	m.setMessage("try the highlighted cards")
}

func (m Model) recordResult() tea.Cmd {
	if m.results == nil {
		return nil
	}
	result := game.ResultFromView(m.gameID, m.engine.Snapshot(), time.Now())
	recorder := m.results
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return resultSavedMsg{err: recorder.RecordResult(ctx, result)}
	}
}

func (m *Model) setMessage(s string) {
	m.message, m.failed = s, false
}

func (m *Model) setError(s string) {
	m.message, m.failed = s, true
}

// View renders the current screen.
func (m Model) View() string {
	if m.machine.Quitting() {
		return ""
	}
	switch m.machine.Current() {
	case screen.Playing:
		return m.viewPlaying()
	case screen.GameOver:
		return m.viewGameOver()
	case screen.Rules:
		return m.viewRules()
	default:
		return m.viewTitle()
	}
}

func (m Model) viewTitle() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Legally Not Set"))
	sb.WriteString("\n")
	for i, label := range menuLabels {
		if i == m.menu {
			sb.WriteString(m.styles.MenuSel.Render("> " + label))
		} else {
			sb.WriteString(m.styles.MenuItem.Render(label))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Subtle.Render("↑/↓ choose • enter select • q quit"))
	return sb.String()
}

func (m Model) viewPlaying() string {
	board := m.engine.InPlay()
	cells := make([]string, len(board))
	for i, id := range board {
		cells[i] = m.renderCard(i, id)
	}

	panel := m.styles.Panel.Render(strings.Join([]string{
		fmt.Sprintf("Game   %d", m.engine.Games()),
		fmt.Sprintf("Score  %d", m.engine.Score()),
		fmt.Sprintf("Deck   %d", m.engine.DeckRemaining()),
		"",
		m.styles.Subtle.Render("space select"),
		m.styles.Subtle.Render("? hint"),
		m.styles.Subtle.Render("s shuffle"),
		m.styles.Subtle.Render("r reset"),
		m.styles.Subtle.Render("m menu"),
	}, "\n"))

	var sb strings.Builder
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid(cells), panel))
	sb.WriteString("\n")
	sb.WriteString(m.renderMessage())
	return sb.String()
}

func (m Model) renderCard(pos int, id triad.Identity) string {
	selected := m.engine.IsSelected(id)
	style := m.styles.Card
	switch {
	case pos == m.cursor:
		style = m.styles.Cursor
	case selected:
		style = m.styles.Selected
	case slices.Contains(m.hint, id):
		style = m.styles.Hint
	}
	return m.styles.cardCell(style, id, selected)
}

func (m Model) renderMessage() string {
	if m.message == "" {
		return ""
	}
	if m.failed {
		return m.styles.Error.Render(m.message)
	}
	return m.styles.Message.Render(m.message)
}

func (m Model) viewGameOver() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Game Over!"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Triads claimed: %d\n", m.engine.Score()))
	sb.WriteString(fmt.Sprintf("Cards left in deck: %d\n", m.engine.DeckRemaining()))
	if m.message != "" {
		sb.WriteString(m.renderMessage())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Subtle.Render("enter play again • m main menu • q quit"))
	return sb.String()
}

func (m Model) viewRules() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("How to Play"))
	sb.WriteString("\n")
	for _, line := range screen.RulesText {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	for _, ex := range screen.RuleExamples() {
		verdict := "NO"
		if ex.IsTriad {
			verdict = "YES"
		}
		cards := make([]string, len(ex.Cards))
		for i, id := range ex.Cards {
			cards[i] = id.Describe()
		}
		sb.WriteString(fmt.Sprintf("%-4s %s\n", verdict, strings.Join(cards, " | ")))
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Subtle.Render("esc back"))
	return sb.String()
}
