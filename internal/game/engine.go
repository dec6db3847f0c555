package game

import (
	"fmt"
	"slices"

	"github.com/tmak94/legallynotset/internal/game/triad"
	"go.uber.org/zap"
)

const (
	// BoardSize is the number of cards face up while the deck lasts.
	BoardSize = 12
	// TriadSize is the number of cards in a claim.
	TriadSize = 3

	// maxRedeals bounds the unsolvable-deal retry loop. With a uniform
	// shuffle a triad-free twelve is rare, so this only trips on a broken RNG.
	maxRedeals = 256
	// redealWarnEvery is how many consecutive redeals pass between warnings.
	redealWarnEvery = 32
)

// Outcome describes what a Toggle did.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSelected
	OutcomeDeselected
	OutcomeClaimed
	OutcomeMissed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSelected:
		return "SELECTED"
	case OutcomeDeselected:
		return "DESELECTED"
	case OutcomeClaimed:
		return "CLAIMED"
	case OutcomeMissed:
		return "MISSED"
	default:
		return "NONE"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Engine is the triad engine for a single game. It owns the deck, the cards
// in play, the claimed cards, the player's selection, the score and the
// solution index. It is not safe for concurrent use; see Session.
type Engine struct {
	rng    RNG
	logger *zap.Logger

	deck      []triad.Identity // draws come off the tail
	inPlay    []triad.Identity
	claimed   []triad.Identity
	selection []triad.Identity

	// solutions maps every unordered pair of in-play cards to the card
	// that completes a triad with them.
	solutions map[triad.Pair]triad.Identity

	score    int
	gameOver bool
	games    int
	redeals  int
}

// NewEngine creates an engine and deals the first board.
func NewEngine(rng RNG, logger *zap.Logger) *Engine {
	if rng == nil {
		rng = NewRNG(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		rng:       rng,
		logger:    logger,
		deck:      triad.Universe(),
		solutions: make(map[triad.Pair]triad.Identity),
	}
	e.NewGame()
	return e
}

// NewGame starts a fresh game. It is Reset plus a bump of the game counter.
func (e *Engine) NewGame() {
	e.games++
	e.Reset()
	e.logger.Info("new game dealt",
		zap.Int("game", e.games),
		zap.Int("redeals", e.redeals),
		zap.Int("deck_remaining", len(e.deck)),
	)
}

// Reset returns every card to the deck, reshuffles and deals a solvable board.
// It may be called at any point of the game lifecycle.
func (e *Engine) Reset() {
	e.score = 0
	e.selection = nil
	e.deck = append(e.deck, e.claimed...)
	e.deck = append(e.deck, e.inPlay...)
	e.claimed = nil
	e.inPlay = nil
	clear(e.solutions)
	e.gameOver = false
	e.redeals = 0
	e.dealInitial()
}

// dealInitial deals BoardSize cards and indexes every pair. A board without a
// triad is thrown back and the deck reshuffled.
func (e *Engine) dealInitial() {
	for {
		shuffle(e.rng, e.deck)
		e.inPlay = e.drawFromTail(BoardSize)
		e.rebuildIndex()
		if e.HasSolution() {
			return
		}

		if e.redeals >= maxRedeals {
			e.logger.Error("no solvable board after redeals, ending game",
				zap.Int("redeals", e.redeals),
			)
			e.gameOver = true
			return
		}
		e.redeals++
		e.logger.Debug("dealt board has no triad, redealing", zap.Int("redeals", e.redeals))
		if e.redeals%redealWarnEvery == 0 {
			e.logger.Warn("still no solvable board, check the RNG",
				zap.Int("redeals", e.redeals),
				zap.Int("max_redeals", maxRedeals),
			)
		}
		e.deck = append(e.deck, e.inPlay...)
		e.inPlay = nil
		clear(e.solutions)
	}
}

// Toggle selects or deselects a card in play. Selecting the third card
// evaluates the selection and clears it whatever the verdict.
func (e *Engine) Toggle(id triad.Identity) (Outcome, error) {
	if e.gameOver {
		return OutcomeNone, ErrGameOver
	}
	if !slices.Contains(e.inPlay, id) {
		return OutcomeNone, fmt.Errorf("%w: %s", ErrNotInPlay, id)
	}

	if i := slices.Index(e.selection, id); i >= 0 {
		e.selection = slices.Delete(e.selection, i, i+1)
		return OutcomeDeselected, nil
	}

	e.selection = append(e.selection, id)
	if len(e.selection) < TriadSize {
		return OutcomeSelected, nil
	}
	return e.evaluateSelection(), nil
}

func (e *Engine) evaluateSelection() Outcome {
	var picked [TriadSize]triad.Identity
	copy(picked[:], e.selection)
	e.selection = nil

	if !triad.IsTriad(picked[0], picked[1], picked[2]) {
		e.logger.Debug("selection is not a triad",
			zap.Stringer("a", picked[0]),
			zap.Stringer("b", picked[1]),
			zap.Stringer("c", picked[2]),
		)
		return OutcomeMissed
	}

	e.claim(picked)
	return OutcomeClaimed
}

// claim moves picked from play to the claimed pile and refills the board.
// New cards take the vacated positions in the order they were drawn.
func (e *Engine) claim(picked [TriadSize]triad.Identity) {
	e.score++
	e.claimed = append(e.claimed, picked[:]...)

	before := e.inPlay
	e.inPlay = make([]triad.Identity, 0, BoardSize)
	for _, id := range before {
		if !slices.Contains(picked[:], id) {
			e.inPlay = append(e.inPlay, id)
		}
	}
	e.purgeIndex(picked[:])

	added := e.replenish()
	e.inPlay = fillVacated(before, picked[:], added)

	e.logger.Debug("triad claimed",
		zap.Int("score", e.score),
		zap.Int("drawn", len(added)),
		zap.Int("deck_remaining", len(e.deck)),
		zap.Bool("game_over", e.gameOver),
	)
}

// fillVacated lays out the refilled board: untouched cards keep their
// positions, drawn cards fill the holes left by removed ones.
func fillVacated(before, removed, added []triad.Identity) []triad.Identity {
	out := make([]triad.Identity, 0, len(before))
	next := 0
	for _, id := range before {
		if !slices.Contains(removed, id) {
			out = append(out, id)
			continue
		}
		if next < len(added) {
			out = append(out, added[next])
			next++
		}
	}
	return append(out, added[next:]...)
}

// ShuffleInPlay reorders the visible cards. Nothing else changes.
func (e *Engine) ShuffleInPlay() {
	shuffle(e.rng, e.inPlay)
}

// drawFromTail pops up to n cards off the end of the deck, in pop order.
func (e *Engine) drawFromTail(n int) []triad.Identity {
	n = min(n, len(e.deck))
	out := make([]triad.Identity, 0, n)
	for range n {
		last := len(e.deck) - 1
		out = append(out, e.deck[last])
		e.deck = e.deck[:last]
	}
	return out
}

// Hint returns one triad present on the board, if any.
func (e *Engine) Hint() ([TriadSize]triad.Identity, bool) {
	for i, a := range e.inPlay {
		for _, b := range e.inPlay[i+1:] {
			c := e.solutions[triad.NewPair(a, b)]
			if slices.Contains(e.inPlay, c) {
				return [TriadSize]triad.Identity{a, b, c}, true
			}
		}
	}
	return [TriadSize]triad.Identity{}, false
}

// InPlay returns the visible cards in board order.
func (e *Engine) InPlay() []triad.Identity { return slices.Clone(e.inPlay) }

// Selection returns the currently selected cards in selection order.
func (e *Engine) Selection() []triad.Identity { return slices.Clone(e.selection) }

// IsSelected reports whether id is part of the current selection.
func (e *Engine) IsSelected(id triad.Identity) bool { return slices.Contains(e.selection, id) }

// Score, DeckRemaining, ClaimedCount, GameOver and Games expose the counters
// a View carries.
func (e *Engine) Score() int         { return e.score }
func (e *Engine) DeckRemaining() int { return len(e.deck) }
func (e *Engine) ClaimedCount() int  { return len(e.claimed) }
func (e *Engine) GameOver() bool     { return e.gameOver }
func (e *Engine) Games() int         { return e.games }

// Snapshot captures the state a presentation layer renders from.
func (e *Engine) Snapshot() View {
	return View{
		Game:          e.games,
		InPlay:        e.InPlay(),
		Selection:     e.Selection(),
		Score:         e.score,
		DeckRemaining: len(e.deck),
		Claimed:       len(e.claimed),
		GameOver:      e.gameOver,
	}
}
