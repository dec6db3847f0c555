package game

import (
	"maps"

	"github.com/tmak94/legallynotset/internal/game/triad"
)

// rebuildIndex recomputes the solution for every pair on the board.
func (e *Engine) rebuildIndex() {
	clear(e.solutions)
	for i, a := range e.inPlay {
		for _, b := range e.inPlay[i+1:] {
			e.solutions[triad.NewPair(a, b)] = triad.SolutionFor(a, b)
		}
	}
}

// purgeIndex drops every pair that involves one of the removed cards.
func (e *Engine) purgeIndex(removed []triad.Identity) {
	maps.DeleteFunc(e.solutions, func(p triad.Pair, _ triad.Identity) bool {
		for _, id := range removed {
			if p.Contains(id) {
				return true
			}
		}
		return false
	})
}

// extendIndex pairs each added card with every other card on the board.
// The added cards must already be in e.inPlay.
func (e *Engine) extendIndex(added []triad.Identity) {
	for _, id := range added {
		for _, other := range e.inPlay {
			if other == id {
				continue
			}
			e.solutions[triad.NewPair(id, other)] = triad.SolutionFor(id, other)
		}
	}
}

// HasSolution reports whether some pair on the board is completed by a card
// that is also on the board, i.e. a triad is visible.
func (e *Engine) HasSolution() bool {
	return e.anySolutionIn(e.inPlay)
}

// SolutionExistsInDeck reports whether a card completing some pair on the
// board is still in the deck.
func (e *Engine) SolutionExistsInDeck() bool {
	return e.anySolutionIn(e.deck)
}

func (e *Engine) anySolutionIn(cards []triad.Identity) bool {
	if len(cards) == 0 || len(e.solutions) == 0 {
		return false
	}
	set := make(map[triad.Identity]struct{}, len(cards))
	for _, id := range cards {
		set[id] = struct{}{}
	}
	for _, sol := range e.solutions {
		if _, ok := set[sol]; ok {
			return true
		}
	}
	return false
}

// solutionSet returns the distinct identities that complete some board pair.
func (e *Engine) solutionSet() map[triad.Identity]struct{} {
	out := make(map[triad.Identity]struct{}, len(e.solutions))
	for _, sol := range e.solutions {
		out[sol] = struct{}{}
	}
	return out
}
