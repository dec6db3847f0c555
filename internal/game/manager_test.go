package game

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tmak94/legallynotset/internal/game/triad"
)

type memoryResults struct {
	mu      sync.Mutex
	results []Result
}

func (r *memoryResults) RecordResult(_ context.Context, res Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return nil
}

func (r *memoryResults) all() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Result(nil), r.results...)
}

// playOut claims hinted triads until the session's game ends.
func playOut(t *testing.T, m *Manager, id string) Update {
	t.Helper()

	var last Update
	for turn := 0; turn < triad.UniverseSize; turn++ {
		s, ok := m.Get(id)
		require.True(t, ok)
		s.mu.Lock()
		hint, found := s.engine.Hint()
		s.mu.Unlock()
		require.True(t, found, "board without a triad before game over")

		for _, card := range hint {
			u, err := m.Toggle(context.Background(), id, card)
			require.NoError(t, err)
			last = u
		}
		assert.Equal(t, OutcomeClaimed, last.Outcome)
		if last.View.GameOver {
			return last
		}
	}
	t.Fatal("game did not end")
	return last
}

func TestManagerCreateAndGet(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t), WithSeed(7))

	s, u, err := m.Create(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Len(t, u.View.InPlay, BoardSize)
	assert.Equal(t, triad.UniverseSize-BoardSize, u.View.DeckRemaining)

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Count())

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestManagerSeedIsReproducible(t *testing.T) {
	a := NewManager(zaptest.NewLogger(t), WithSeed(3))
	b := NewManager(zaptest.NewLogger(t), WithSeed(3))

	_, ua, err := a.Create(context.Background())
	require.NoError(t, err)
	_, ub, err := b.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ua.View.InPlay, ub.View.InPlay)
}

func TestManagerMaxSessions(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t), WithMaxSessions(2))
	ctx := context.Background()

	first, _, err := m.Create(ctx)
	require.NoError(t, err)
	_, _, err = m.Create(ctx)
	require.NoError(t, err)

	_, _, err = m.Create(ctx)
	assert.ErrorIs(t, err, ErrTooManySessions)

	require.True(t, m.Remove(first.ID))
	_, _, err = m.Create(ctx)
	assert.NoError(t, err)
}

func TestManagerUnknownSession(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))

	_, err := m.Toggle(context.Background(), "nope", triad.MustNew(1, 1, 1, 1))
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.State("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.False(t, m.Remove("nope"))
}

func TestManagerToggle(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t), WithSeed(5))
	ctx := context.Background()
	s, u, err := m.Create(ctx)
	require.NoError(t, err)

	card := u.View.InPlay[0]
	u, err = m.Toggle(ctx, s.ID, card)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSelected, u.Outcome)
	assert.Equal(t, []triad.Identity{card}, u.View.Selection)

	state, err := m.State(s.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSelected, state.Outcome)

	var absent triad.Identity
	for _, id := range triad.Universe() {
		if !containsID(u.View.InPlay, id) {
			absent = id
			break
		}
	}
	_, err = m.Toggle(ctx, s.ID, absent)
	assert.ErrorIs(t, err, ErrNotInPlay)
}

func TestManagerShuffleAndReset(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t), WithSeed(9))
	ctx := context.Background()
	s, u, err := m.Create(ctx)
	require.NoError(t, err)

	shuffled, err := m.Shuffle(ctx, s.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, u.View.InPlay, shuffled.View.InPlay)

	reset, err := m.Reset(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reset.View.Score)
	assert.Len(t, reset.View.InPlay, BoardSize)
}

func TestManagerReportsResultOnce(t *testing.T) {
	results := &memoryResults{}
	m := NewManager(zaptest.NewLogger(t), WithSeed(21), WithResultRecorder(results))
	ctx := context.Background()
	s, _, err := m.Create(ctx)
	require.NoError(t, err)

	final := playOut(t, m, s.ID)
	require.True(t, final.View.GameOver)

	_, err = m.Shuffle(ctx, s.ID)
	require.NoError(t, err)

	got := results.all()
	require.Len(t, got, 1)
	assert.Equal(t, s.ID, got[0].SessionID)
	assert.Equal(t, final.View.Score, got[0].Score)
	assert.Equal(t, final.View.Claimed, got[0].Claimed)
	assert.Equal(t, final.View.DeckRemaining, got[0].DeckRemaining)

	u, err := m.NewGame(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, u.View.GameOver)
	assert.Equal(t, 2, u.View.Game)

	playOut(t, m, s.ID)
	assert.Len(t, results.all(), 2)
}

func TestManagerSavesReplayOnGameOver(t *testing.T) {
	dir := t.TempDir()
	recorder := NewReplayRecorder(zaptest.NewLogger(t), dir)
	m := NewManager(zaptest.NewLogger(t), WithSeed(4), WithReplays(recorder))
	ctx := context.Background()
	s, _, err := m.Create(ctx)
	require.NoError(t, err)

	final := playOut(t, m, s.ID)

	replay, err := recorder.Load(s.ID + "-1")
	require.NoError(t, err)
	// one frame for the deal plus one per selected card
	assert.Equal(t, 1+final.View.Score*TriadSize, replay.Size())
	assert.Equal(t, ActionNewGame, replay.FrameAt(0).Action)
	last := replay.FrameAt(replay.Size() - 1)
	assert.True(t, last.View.GameOver)
	assert.Equal(t, final.View.Score, last.View.Score)
	assert.ElementsMatch(t, final.View.InPlay, last.View.InPlay)

	_, ok := recorder.Replay(s.ID + "-1")
	assert.False(t, ok)
}

func TestManagerRemoveDiscardsReplay(t *testing.T) {
	dir := t.TempDir()
	recorder := NewReplayRecorder(zaptest.NewLogger(t), dir)
	m := NewManager(zaptest.NewLogger(t), WithReplays(recorder))
	s, _, err := m.Create(context.Background())
	require.NoError(t, err)

	_, ok := recorder.Replay(s.ID + "-1")
	require.True(t, ok)
	require.True(t, m.Remove(s.ID))
	_, ok = recorder.Replay(s.ID + "-1")
	assert.False(t, ok)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestManagerRemoveExpired(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	ctx := context.Background()

	idle, _, err := m.Create(ctx)
	require.NoError(t, err)
	clock = clock.Add(10 * time.Minute)
	busy, _, err := m.Create(ctx)
	require.NoError(t, err)

	clock = clock.Add(20 * time.Minute)
	_, err = m.Shuffle(ctx, busy.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, m.RemoveExpired(25*time.Minute))
	_, ok := m.Get(idle.ID)
	assert.False(t, ok)
	_, ok = m.Get(busy.ID)
	assert.True(t, ok)
}

func TestManagerCleanupExpiredStopsWithContext(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	_, _, err := m.Create(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.CleanupExpired(ctx, time.Nanosecond, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}

func TestManagerCloseAll(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	for i := 0; i < 3; i++ {
		_, _, err := m.Create(context.Background())
		require.NoError(t, err)
	}

	m.CloseAll()
	assert.Equal(t, 0, m.Count())
}

func TestManagerConcurrentSessions(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t), WithSeed(1))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, u, err := m.Create(ctx)
			if !assert.NoError(t, err) {
				return
			}
			for _, card := range u.View.InPlay[:2] {
				_, err := m.Toggle(ctx, s.ID, card)
				assert.NoError(t, err)
			}
			_, err = m.Shuffle(ctx, s.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, m.Count())
}

func TestManagerNewGameMidGameStartsNewReplay(t *testing.T) {
	dir := t.TempDir()
	recorder := NewReplayRecorder(zaptest.NewLogger(t), dir)
	m := NewManager(zaptest.NewLogger(t), WithSeed(6), WithReplays(recorder))
	ctx := context.Background()
	s, first, err := m.Create(ctx)
	require.NoError(t, err)

	_, err = m.Toggle(ctx, s.ID, first.View.InPlay[0])
	require.NoError(t, err)

	u, err := m.NewGame(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, u.View.Game)

	_, ok := recorder.Replay(s.ID + "-1")
	assert.False(t, ok, "abandoned game keeps its replay")
	current, ok := recorder.Replay(s.ID + "-2")
	require.True(t, ok)
	require.Equal(t, 1, current.Size())
	assert.Equal(t, ActionNewGame, current.FrameAt(0).Action)

	playOut(t, m, s.ID)

	saved, err := recorder.Load(s.ID + "-2")
	require.NoError(t, err)
	for _, f := range saved.Snapshot() {
		assert.Equal(t, 2, f.View.Game)
	}
	_, err = recorder.Load(s.ID + "-1")
	assert.Error(t, err)
}

func TestManagerResetMidGameKeepsReplay(t *testing.T) {
	recorder := NewReplayRecorder(zaptest.NewLogger(t), t.TempDir())
	m := NewManager(zaptest.NewLogger(t), WithSeed(6), WithReplays(recorder))
	ctx := context.Background()
	s, _, err := m.Create(ctx)
	require.NoError(t, err)

	_, err = m.Reset(ctx, s.ID)
	require.NoError(t, err)

	replay, ok := recorder.Replay(s.ID + "-1")
	require.True(t, ok)
	assert.Equal(t, 2, replay.Size())
	assert.Equal(t, ActionReset, replay.FrameAt(1).Action)
}

func TestManagerHint(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t), WithSeed(13))
	ctx := context.Background()
	s, before, err := m.Create(ctx)
	require.NoError(t, err)

	cards, found, err := m.Hint(s.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, triad.IsTriad(cards[0], cards[1], cards[2]))
	for _, id := range cards {
		assert.Contains(t, before.View.InPlay, id)
	}

	after, err := m.State(s.ID)
	require.NoError(t, err)
	assert.Equal(t, before.View, after.View)

	_, _, err = m.Hint("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerReplay(t *testing.T) {
	recorder := NewReplayRecorder(zaptest.NewLogger(t), t.TempDir())
	m := NewManager(zaptest.NewLogger(t), WithSeed(9), WithReplays(recorder))
	ctx := context.Background()
	s, _, err := m.Create(ctx)
	require.NoError(t, err)

	_, err = m.Shuffle(ctx, s.ID)
	require.NoError(t, err)

	key, frames, err := m.Replay(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID+"-1", key)
	require.Len(t, frames, 2)
	assert.Equal(t, ActionShuffle, frames[1].Action)

	// a finished game is read back from its saved file
	final := playOut(t, m, s.ID)
	_, frames, err = m.Replay(s.ID)
	require.NoError(t, err)
	require.NotEmpty(t, frames)
	assert.True(t, frames[len(frames)-1].View.GameOver)
	assert.Equal(t, final.View.Score, frames[len(frames)-1].View.Score)

	_, _, err = NewManager(zaptest.NewLogger(t)).Replay("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	plain := NewManager(zaptest.NewLogger(t))
	p, _, err := plain.Create(ctx)
	require.NoError(t, err)
	_, _, err = plain.Replay(p.ID)
	assert.ErrorIs(t, err, ErrNoReplay)
}
