// Package screen is the presentation state machine: which screen is shown
// and which actions move between screens.
package screen

import "github.com/tmak94/legallynotset/internal/game/triad"

// Screen identifies what is being presented.
type Screen int

const (
	Title Screen = iota
	Playing
	GameOver
	Rules
)

func (s Screen) String() string {
	switch s {
	case Title:
		return "TITLE"
	case Playing:
		return "PLAYING"
	case GameOver:
		return "GAME_OVER"
	case Rules:
		return "RULES"
	default:
		return "UNKNOWN"
	}
}

// Action is a user or engine event that may change the screen.
type Action int

const (
	StartGame Action = iota // "New Game" on the title, "Play Again" after a game
	ShowRules
	Back
	MainMenu
	GameEnded // the engine reported game over
	Quit
)

func (a Action) String() string {
	switch a {
	case StartGame:
		return "START_GAME"
	case ShowRules:
		return "SHOW_RULES"
	case Back:
		return "BACK"
	case MainMenu:
		return "MAIN_MENU"
	case GameEnded:
		return "GAME_ENDED"
	case Quit:
		return "QUIT"
	default:
		return "UNKNOWN"
	}
}

// Next returns the screen reached from current by action. ok is false when
// the action does not apply to current, in which case current is returned.
// Quit is accepted everywhere and leaves the screen unchanged; the caller
// exits.
func Next(current Screen, action Action) (next Screen, ok bool) {
	if action == Quit {
		return current, true
	}
	switch current {
	case Title:
		switch action {
		case StartGame:
			return Playing, true
		case ShowRules:
			return Rules, true
		}
	case Playing:
		switch action {
		case GameEnded:
			return GameOver, true
		case MainMenu:
			return Title, true
		case StartGame:
			return Playing, true
		}
	case GameOver:
		switch action {
		case StartGame:
			return Playing, true
		case MainMenu:
			return Title, true
		}
	case Rules:
		switch action {
		case Back, MainMenu:
			return Title, true
		}
	}
	return current, false
}

// Machine holds the current screen. The zero value starts on Title.
type Machine struct {
	current Screen
	quit    bool
}

// Current returns the screen being shown.
func (m *Machine) Current() Screen { return m.current }

// Quitting reports whether Quit has been applied.
func (m *Machine) Quitting() bool { return m.quit }

// Apply performs action and reports whether it was accepted.
func (m *Machine) Apply(action Action) bool {
	next, ok := Next(m.current, action)
	if !ok {
		return false
	}
	m.current = next
	if action == Quit {
		m.quit = true
	}
	return true
}

// RuleExample is a worked example shown on the rules screen.
type RuleExample struct {
	Cards   [3]triad.Identity
	IsTriad bool
}

// RuleExamples returns the examples used to explain the triad rule.
func RuleExamples() []RuleExample {
	return []RuleExample{
		{Cards: [3]triad.Identity{1231, 1232, 1233}, IsTriad: true},
		{Cards: [3]triad.Identity{1231, 2312, 3123}, IsTriad: true},
		{Cards: [3]triad.Identity{1231, 2311, 3122}, IsTriad: false},
	}
}

// RulesText is the how-to-play copy.
var RulesText = []string{
	"There are four identifiers a card has:",
	"  the number of shapes (1, 2 or 3)",
	"  the shape type (rectangle, oval or diamond)",
	"  the shape's color (red, green or purple)",
	"  the shape's fill (solid, outline or striped)",
	"",
	"A triad is three cards where each identifier is either the SAME on all",
	"three cards or DIFFERENT on all three cards.",
}
