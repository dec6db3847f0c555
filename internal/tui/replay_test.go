package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tmak94/legallynotset/internal/game"
)

func recordedGame(t *testing.T, steps int) *game.Replay {
	t.Helper()

	engine := game.NewEngine(game.NewRNG(23), zaptest.NewLogger(t))
	replay := game.NewReplay("s-1")
	require.NoError(t, replay.Record(game.ActionNewGame, engine.Snapshot()))
	for i := 1; i < steps; i++ {
		engine.ShuffleInPlay()
		require.NoError(t, replay.Record(game.ActionShuffle, engine.Snapshot()))
	}
	return replay
}

func step(t *testing.T, v ReplayViewer, keys ...string) (ReplayViewer, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = v.Update(key(k))
		v = next.(ReplayViewer)
	}
	return v, cmd
}

func TestReplayViewerStepping(t *testing.T) {
	v := NewReplayViewer("s-1", recordedGame(t, 25))
	require.NotNil(t, v.Frame())
	assert.Equal(t, 0, v.Frame().Seq)
	assert.Contains(t, v.View(), "Frame  1/25")
	assert.Contains(t, v.View(), game.ActionNewGame)

	v, _ = step(t, v, "right", "l")
	assert.Equal(t, 2, v.Frame().Seq)
	assert.Contains(t, v.View(), game.ActionShuffle)

	v, _ = step(t, v, "left")
	assert.Equal(t, 1, v.Frame().Seq)

	v, _ = step(t, v, "]")
	assert.Equal(t, 11, v.Frame().Seq)
	v, _ = step(t, v, "]", "]")
	assert.Equal(t, 24, v.Frame().Seq)
	v, _ = step(t, v, "right")
	assert.Equal(t, 24, v.Frame().Seq)

	v, _ = step(t, v, "[")
	assert.Equal(t, 14, v.Frame().Seq)
	v, _ = step(t, v, "g")
	assert.Equal(t, 0, v.Frame().Seq)
	v, _ = step(t, v, "left")
	assert.Equal(t, 0, v.Frame().Seq)
	v, _ = step(t, v, "G")
	assert.Equal(t, 24, v.Frame().Seq)
	assert.Contains(t, v.View(), "Frame  25/25")
}

func TestReplayViewerShowsBoard(t *testing.T) {
	replay := recordedGame(t, 1)
	v := NewReplayViewer("s-1", replay)

	view := v.View()
	for _, id := range replay.FrameAt(0).View.InPlay {
		assert.Contains(t, view, id.String())
	}
}

func TestReplayViewerEmptyAndQuit(t *testing.T) {
	v := NewReplayViewer("none", game.NewReplay("none"))
	assert.Nil(t, v.Frame())
	assert.Contains(t, v.View(), "no frames recorded")

	v, _ = step(t, v, "right")
	assert.Nil(t, v.Frame())

	v, cmd := step(t, v, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, v.View())
}
