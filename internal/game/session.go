package game

import (
	"fmt"
	"sync"
	"time"
)

// Session is one hosted game. All access to its engine goes through the
// session mutex.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	engine       *Engine
	lastActivity time.Time
	lastOutcome  Outcome
	round        int  // games played in this session, names replay files
	reported     bool // result of the current round already recorded
}

// Update is what a session action returns to the caller.
type Update struct {
	View    View    `json:"view"`
	Outcome Outcome `json:"outcome"`
}

// View returns the session's current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.Snapshot()
}

// LastActivity returns when the session last handled an action.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastActivity
}

func (s *Session) replayKey() string {
	return fmt.Sprintf("%s-%d", s.ID, s.round)
}
