package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tmak94/legallynotset/internal/game/triad"
)

// Action names recorded in replays.
const (
	ActionNewGame = "new_game"
	ActionSelect  = "select"
	ActionShuffle = "shuffle"
	ActionReset   = "reset"
)

// Manager hosts independent single-player sessions keyed by uuid.
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	logger   *zap.Logger

	maxSessions int
	seed        uint64
	created     uint64
	results     ResultRecorder
	replays     *ReplayRecorder
	now         func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithMaxSessions caps concurrent sessions. Zero means unlimited.
func WithMaxSessions(n int) ManagerOption {
	return func(m *Manager) { m.maxSessions = n }
}

// WithSeed makes session decks reproducible. Session n is seeded with seed+n.
func WithSeed(seed uint64) ManagerOption {
	return func(m *Manager) { m.seed = seed }
}

// WithResultRecorder reports every finished game to r.
func WithResultRecorder(r ResultRecorder) ManagerOption {
	return func(m *Manager) { m.results = r }
}

// WithReplays records every session action and saves the replay when a game ends.
func WithReplays(rr *ReplayRecorder) ManagerOption {
	return func(m *Manager) { m.replays = rr }
}

// NewManager creates a session manager.
func NewManager(logger *zap.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new session with a freshly dealt game.
func (m *Manager) Create(ctx context.Context) (*Session, Update, error) {
	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, Update{}, ErrTooManySessions
	}

	m.created++
	var rng RNG
	if m.seed != 0 {
		rng = NewRNG(m.seed + m.created)
	} else {
		rng = NewRNG(0)
	}

	id := uuid.New().String()
	now := m.now()
	s := &Session{
		ID:           id,
		CreatedAt:    now,
		lastActivity: now,
		engine:       NewEngine(rng, m.logger.With(zap.String("session_id", id))),
	}
	m.sessions[id] = s
	active := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", id),
		zap.Int("active_sessions", active),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	m.beginRound(s)
	return s, m.settle(ctx, s, ActionNewGame, OutcomeNone), nil
}

// Get retrieves a session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	return s, ok
}

// Remove ends a session. Unsaved replay frames are dropped.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	if m.replays != nil {
		s.mu.Lock()
		m.replays.Discard(s.replayKey())
		s.mu.Unlock()
	}
	m.logger.Info("session removed", zap.String("session_id", id))
	return true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Do runs fn against the session's engine under the session lock and
// returns the resulting state. action names the step in the replay.
func (m *Manager) Do(ctx context.Context, id, action string, fn func(*Engine) (Outcome, error)) (Update, error) {
	s, ok := m.Get(id)
	if !ok {
		return Update{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wasOver := s.engine.GameOver()
	played := s.engine.Games()
	outcome, err := fn(s.engine)
	s.lastActivity = m.now()
	if err != nil {
		return Update{View: s.engine.Snapshot(), Outcome: OutcomeNone}, err
	}
	switch {
	case s.engine.Games() != played:
		if !wasOver {
			m.abandonRound(s)
		}
		m.beginRound(s)
	case wasOver && !s.engine.GameOver():
		m.beginRound(s)
	}
	return m.settle(ctx, s, action, outcome), nil
}

// Toggle selects or deselects card in the session's game.
func (m *Manager) Toggle(ctx context.Context, id string, card triad.Identity) (Update, error) {
	return m.Do(ctx, id, ActionSelect, func(e *Engine) (Outcome, error) {
		return e.Toggle(card)
	})
}

// Shuffle reorders the session's board.
func (m *Manager) Shuffle(ctx context.Context, id string) (Update, error) {
	return m.Do(ctx, id, ActionShuffle, func(e *Engine) (Outcome, error) {
		e.ShuffleInPlay()
		return OutcomeNone, nil
	})
}

// Reset redeals the session's current game.
func (m *Manager) Reset(ctx context.Context, id string) (Update, error) {
	return m.Do(ctx, id, ActionReset, func(e *Engine) (Outcome, error) {
		e.Reset()
		return OutcomeNone, nil
	})
}

// NewGame starts the session's next game.
func (m *Manager) NewGame(ctx context.Context, id string) (Update, error) {
	return m.Do(ctx, id, ActionNewGame, func(e *Engine) (Outcome, error) {
		e.NewGame()
		return OutcomeNone, nil
	})
}

// State returns the session's current state without changing it.
func (m *Manager) State(id string) (Update, error) {
	s, ok := m.Get(id)
	if !ok {
		return Update{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return Update{View: s.engine.Snapshot(), Outcome: s.lastOutcome}, nil
}

// Hint returns one triad on the session's board without changing the game.
func (m *Manager) Hint(id string) ([TriadSize]triad.Identity, bool, error) {
	s, ok := m.Get(id)
	if !ok {
		return [TriadSize]triad.Identity{}, false, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActivity = m.now()
	cards, found := s.engine.Hint()
	return cards, found, nil
}

// Replay returns the frames recorded for the session's current game. A
// finished game's replay is read back from disk.
func (m *Manager) Replay(id string) (string, []Frame, error) {
	s, ok := m.Get(id)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if m.replays == nil {
		return "", nil, ErrNoReplay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.replayKey()
	if replay, ok := m.replays.Replay(key); ok {
		return key, replay.Snapshot(), nil
	}
	replay, err := m.replays.Load(key)
	if err != nil {
		return key, nil, fmt.Errorf("%w: %v", ErrNoReplay, err)
	}
	return key, replay.Snapshot(), nil
}

// beginRound opens a replay for the session's next game. Callers hold s.mu.
func (m *Manager) beginRound(s *Session) {
	s.round++
	s.reported = false
	if m.replays != nil {
		m.replays.Begin(s.replayKey())
	}
}

// abandonRound drops the replay of a game left unfinished. Callers hold s.mu.
func (m *Manager) abandonRound(s *Session) {
	m.logger.Debug("game abandoned",
		zap.String("session_id", s.ID),
		zap.Int("round", s.round),
	)
	if m.replays != nil {
		m.replays.Discard(s.replayKey())
	}
}

// settle records the step and, the first time a game is seen finished,
// reports its result and flushes its replay. Callers hold s.mu.
func (m *Manager) settle(ctx context.Context, s *Session, action string, outcome Outcome) Update {
	s.lastOutcome = outcome
	view := s.engine.Snapshot()

	if m.replays != nil {
		m.replays.Record(s.replayKey(), action, view)
	}

	if view.GameOver && !s.reported {
		s.reported = true
		m.finish(ctx, s, view)
	}
	return Update{View: view, Outcome: outcome}
}

func (m *Manager) finish(ctx context.Context, s *Session, view View) {
	result := ResultFromView(s.ID, view, m.now())
	m.logger.Info("game finished",
		zap.String("session_id", s.ID),
		zap.Int("score", result.Score),
		zap.Int("deck_remaining", result.DeckRemaining),
	)

	if m.results != nil {
		if err := m.results.RecordResult(ctx, result); err != nil {
			m.logger.Error("failed to record result",
				zap.String("session_id", s.ID),
				zap.Error(err),
			)
		}
	}
	if m.replays != nil {
		if _, err := m.replays.Save(s.replayKey()); err != nil {
			m.logger.Warn("failed to save replay",
				zap.String("session_id", s.ID),
				zap.Error(err),
			)
		}
	}
}

// RemoveExpired drops sessions idle for longer than ttl and returns how many
// were removed.
func (m *Manager) RemoveExpired(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.RLock()
	var expired []string
	for id, s := range m.sessions {
		if s.LastActivity().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, id := range expired {
		if m.Remove(id) {
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("expired idle sessions", zap.Int("removed", removed))
	}
	return removed
}

// CleanupExpired removes idle sessions every interval until ctx is done.
func (m *Manager) CleanupExpired(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RemoveExpired(ttl)
		}
	}
}

// CloseAll removes every session.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.Remove(id)
	}
}
