package game

import "github.com/tmak94/legallynotset/internal/game/triad"

// View is a point-in-time copy of an engine's visible state.
type View struct {
	Game          int              `json:"game"`
	InPlay        []triad.Identity `json:"in_play"`
	Selection     []triad.Identity `json:"selection"`
	Score         int              `json:"score"`
	DeckRemaining int              `json:"deck_remaining"`
	Claimed       int              `json:"claimed"`
	GameOver      bool             `json:"game_over"`
}
