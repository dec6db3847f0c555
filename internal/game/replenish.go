package game

import (
	"slices"

	"github.com/tmak94/legallynotset/internal/game/triad"
	"go.uber.org/zap"
)

// replenish refills the board after a claim so that a triad stays visible.
//
//  1. A triad is already on the board: draw from the deck tail.
//  2. No triad on the board but a completing card is in the deck: draw that
//     card plus the rest from the tail, shuffled together.
//  3. Neither: the game is over.
//
// It returns the drawn cards. They are appended to e.inPlay and indexed
// before returning.
func (e *Engine) replenish() []triad.Identity {
	need := BoardSize - len(e.inPlay)

	var added []triad.Identity
	switch {
	case e.HasSolution():
		added = e.drawFromTail(need)
	case e.SolutionExistsInDeck():
		added = e.drawGuaranteed(need)
		e.logger.Debug("no triad left on board, drew a completing card",
			zap.Strings("drawn", cardStrings(added)),
		)
	default:
		e.gameOver = true
		e.logger.Info("no triad reachable, game over",
			zap.Int("score", e.score),
			zap.Int("in_play", len(e.inPlay)),
			zap.Int("deck_remaining", len(e.deck)),
		)
		return nil
	}

	e.inPlay = append(e.inPlay, added...)
	e.extendIndex(added)
	return added
}

// drawGuaranteed takes the first deck card, scanning from the bottom, that
// completes a pair on the board, adds up to need-1 cards from the tail and
// shuffles them together.
func (e *Engine) drawGuaranteed(need int) []triad.Identity {
	if need <= 0 {
		return nil
	}
	wanted := e.solutionSet()
	idx := slices.IndexFunc(e.deck, func(id triad.Identity) bool {
		_, ok := wanted[id]
		return ok
	})
	if idx < 0 {
		return e.drawFromTail(need)
	}

	guaranteed := e.deck[idx]
	e.deck = slices.Delete(e.deck, idx, idx+1)

	added := make([]triad.Identity, 0, need)
	added = append(added, guaranteed)
	added = append(added, e.drawFromTail(need-1)...)
	shuffle(e.rng, added)
	return added
}

func cardStrings(ids []triad.Identity) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
