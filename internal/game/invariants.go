package game

import (
	"fmt"

	"github.com/tmak94/legallynotset/internal/game/triad"
)

// Verify checks the engine's structural invariants:
//   - deck, board and claimed pile partition the 81-card universe
//   - the board holds BoardSize cards while the deck lasts (unless the game ended)
//   - the solution index has one correct entry per board pair and nothing else
//   - the selection is a proper subset of the board
//   - every point of score accounts for three claimed cards
func (e *Engine) Verify() error {
	where := make(map[triad.Identity]string, triad.UniverseSize)
	zones := []struct {
		name  string
		cards []triad.Identity
	}{
		{"deck", e.deck},
		{"in_play", e.inPlay},
		{"claimed", e.claimed},
	}
	for _, z := range zones {
		for _, id := range z.cards {
			if !id.Valid() {
				return fmt.Errorf("%w: invalid card %d in %s", ErrInvariant, id.Value(), z.name)
			}
			if prev, dup := where[id]; dup {
				return fmt.Errorf("%w: card %s in both %s and %s", ErrInvariant, id, prev, z.name)
			}
			where[id] = z.name
		}
	}
	if len(where) != triad.UniverseSize {
		return fmt.Errorf("%w: %d cards accounted for, want %d", ErrInvariant, len(where), triad.UniverseSize)
	}

	if len(e.inPlay) > BoardSize {
		return fmt.Errorf("%w: %d cards in play", ErrInvariant, len(e.inPlay))
	}
	if !e.gameOver && len(e.deck) > 0 && len(e.inPlay) != BoardSize {
		return fmt.Errorf("%w: %d cards in play with %d left in deck", ErrInvariant, len(e.inPlay), len(e.deck))
	}

	n := len(e.inPlay)
	if want := n * (n - 1) / 2; len(e.solutions) != want {
		return fmt.Errorf("%w: solution index has %d entries, want %d", ErrInvariant, len(e.solutions), want)
	}
	for p, sol := range e.solutions {
		a, b := p.Members()
		if a == b || where[a] != "in_play" || where[b] != "in_play" {
			return fmt.Errorf("%w: stale pair %s in solution index", ErrInvariant, p)
		}
		if sol != triad.SolutionFor(a, b) {
			return fmt.Errorf("%w: pair %s maps to %s", ErrInvariant, p, sol)
		}
	}

	if len(e.selection) >= TriadSize {
		return fmt.Errorf("%w: %d cards selected", ErrInvariant, len(e.selection))
	}
	seen := make(map[triad.Identity]bool, len(e.selection))
	for _, id := range e.selection {
		if where[id] != "in_play" || seen[id] {
			return fmt.Errorf("%w: bad selection %s", ErrInvariant, id)
		}
		seen[id] = true
	}

	if e.score*TriadSize != len(e.claimed) {
		return fmt.Errorf("%w: score %d with %d claimed cards", ErrInvariant, e.score, len(e.claimed))
	}
	return nil
}
