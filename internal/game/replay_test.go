package game

import (
	"compress/gzip"
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func recordedReplay(t *testing.T, frames int) *Replay {
	t.Helper()

	replay := NewReplay("session-123")
	for i := 0; i < frames; i++ {
		require.NoError(t, replay.Record("select", View{Game: 1, Score: i}))
	}
	return replay
}

func TestNewReplay(t *testing.T) {
	replay := NewReplay("session-123")
	assert.Equal(t, "session-123", replay.SessionID)
	assert.Equal(t, 0, replay.CurrentIndex)
	assert.Equal(t, 0, replay.Size())
}

func TestReplayRecord(t *testing.T) {
	replay := recordedReplay(t, 3)

	require.Equal(t, 3, replay.Size())
	for i, f := range replay.Frames {
		assert.Equal(t, i, f.Seq)
		assert.Equal(t, "select", f.Action)
		assert.Equal(t, i, f.View.Score)
		assert.NotEmpty(t, f.Checksum.Hash)
		assert.False(t, f.Timestamp.IsZero())
	}
}

func TestReplayNavigation(t *testing.T) {
	replay := recordedReplay(t, 5)

	f := replay.Start()
	require.NotNil(t, f)
	assert.Equal(t, 0, f.View.Score)
	assert.Same(t, f, replay.Current())

	f = replay.Next()
	require.NotNil(t, f)
	assert.Equal(t, 1, f.View.Score)
	f = replay.Next()
	require.NotNil(t, f)
	assert.Equal(t, 2, f.View.Score)
	assert.Equal(t, 2, replay.CurrentIndex)

	f = replay.Previous()
	require.NotNil(t, f)
	assert.Equal(t, 1, f.View.Score)
	assert.Equal(t, 1, replay.Current().View.Score)

	replay.Start()
	assert.Nil(t, replay.Previous())
	assert.Equal(t, 0, replay.Current().View.Score)

	for i := 0; i < 10; i++ {
		replay.Next()
	}
	assert.Nil(t, replay.Next())
	assert.Equal(t, 4, replay.Current().View.Score)

	empty := NewReplay("empty")
	assert.Nil(t, empty.Start())
	assert.Nil(t, empty.Current())
	assert.Nil(t, empty.Next())
}

func TestReplaySnapshotIsACopy(t *testing.T) {
	replay := recordedReplay(t, 3)

	frames := replay.Snapshot()
	require.Len(t, frames, 3)
	frames[0].Action = "changed"
	assert.Equal(t, "select", replay.FrameAt(0).Action)

	require.NoError(t, replay.Record("shuffle", View{}))
	assert.Len(t, frames, 3)
}

func TestReplaySkip(t *testing.T) {
	replay := recordedReplay(t, 10)
	replay.Start()

	f := replay.Skip(3)
	require.NotNil(t, f)
	assert.Equal(t, 3, f.View.Score)

	f = replay.Skip(100)
	require.NotNil(t, f)
	assert.Equal(t, 9, f.View.Score)

	f = replay.Skip(-5)
	require.NotNil(t, f)
	assert.Equal(t, 4, f.View.Score)

	f = replay.Skip(-100)
	require.NotNil(t, f)
	assert.Equal(t, 0, f.View.Score)

	assert.Nil(t, NewReplay("empty").Skip(1))
}

func TestReplayFrameAt(t *testing.T) {
	replay := recordedReplay(t, 5)

	assert.Equal(t, 4, replay.FrameAt(4).View.Score)
	assert.Nil(t, replay.FrameAt(-1))
	assert.Nil(t, replay.FrameAt(5))
}

func TestReplaySaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "replays")
	e := newTestEngine(t, 11)

	replay := NewReplay("session-123")
	require.NoError(t, replay.Record("new_game", e.Snapshot()))
	hint, ok := e.Hint()
	require.True(t, ok)
	for _, id := range hint {
		_, err := e.Toggle(id)
		require.NoError(t, err)
		require.NoError(t, replay.Record("select", e.Snapshot()))
	}

	path, err := replay.SaveToFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "session-123.replay"), path)

	loaded, err := LoadReplayFromFile(dir, "session-123")
	require.NoError(t, err)
	assert.Equal(t, replay.SessionID, loaded.SessionID)
	require.Equal(t, replay.Size(), loaded.Size())
	for i := 0; i < replay.Size(); i++ {
		want, got := replay.FrameAt(i), loaded.FrameAt(i)
		assert.Equal(t, want.Action, got.Action)
		assert.Equal(t, want.View, got.View)
		assert.Equal(t, want.Checksum, got.Checksum)
	}
	assert.Equal(t, 1, loaded.FrameAt(loaded.Size()-1).View.Score)
}

func TestReplayLoadDetectsTampering(t *testing.T) {
	dir := t.TempDir()
	replay := recordedReplay(t, 2)
	replay.Frames[1].View.Score = 99

	_, err := replay.SaveToFile(dir)
	require.NoError(t, err)

	_, err = LoadReplayFromFile(dir, "session-123")
	assert.ErrorIs(t, err, ErrReplayCorrupt)
}

func TestReplayLoadRejectsUnknownVersion(t *testing.T) {
	dir := t.TempDir()
	file, err := os.Create(filepath.Join(dir, "old.replay"))
	require.NoError(t, err)
	gz := gzip.NewWriter(file)
	require.NoError(t, gob.NewEncoder(gz).Encode(&replayMetadata{SessionID: "old", Version: replayVersion + 1}))
	require.NoError(t, gz.Close())
	require.NoError(t, file.Close())

	_, err = LoadReplayFromFile(dir, "old")
	assert.ErrorContains(t, err, "unsupported replay version")
}

func TestReplayLoadNonexistentFile(t *testing.T) {
	_, err := LoadReplayFromFile(t.TempDir(), "nonexistent")
	assert.Error(t, err)
}

func TestReplayRecorder(t *testing.T) {
	dir := t.TempDir()
	recorder := NewReplayRecorder(zaptest.NewLogger(t), dir)

	recorder.Record("unknown", "select", View{})
	_, ok := recorder.Replay("unknown")
	assert.False(t, ok)

	recorder.Begin("s1")
	for i := 0; i < 4; i++ {
		recorder.Record("s1", "select", View{Score: i})
	}
	replay, ok := recorder.Replay("s1")
	require.True(t, ok)
	assert.Equal(t, 4, replay.Size())

	_, err := recorder.Save("s1")
	require.NoError(t, err)
	_, ok = recorder.Replay("s1")
	assert.False(t, ok)

	_, err = recorder.Save("s1")
	assert.Error(t, err)

	loaded, err := recorder.Load("s1")
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Size())
}

func TestReplayRecorderDiscard(t *testing.T) {
	recorder := NewReplayRecorder(zaptest.NewLogger(t), t.TempDir())

	recorder.Begin("s1")
	recorder.Record("s1", "select", View{})
	recorder.Discard("s1")

	_, ok := recorder.Replay("s1")
	assert.False(t, ok)
}
