package game

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ReplayRecorder keeps one in-memory replay per session and flushes it to
// disk when the session's game ends.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay // sessionID -> Replay
	saveDir string
}

// NewReplayRecorder creates a recorder writing to saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		saveDir: saveDir,
	}
}

// Begin starts a fresh replay for sessionID, dropping any earlier one.
func (rr *ReplayRecorder) Begin(sessionID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[sessionID] = NewReplay(sessionID)
	rr.logger.Debug("started replay recording", zap.String("session_id", sessionID))
}

// Record appends a frame if sessionID is being recorded.
func (rr *ReplayRecorder) Record(sessionID, action string, v View) {
	rr.mu.RLock()
	replay := rr.replays[sessionID]
	rr.mu.RUnlock()

	if replay == nil {
		return
	}
	if err := replay.Record(action, v); err != nil {
		rr.logger.Warn("failed to record replay frame",
			zap.String("session_id", sessionID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// Replay returns the in-memory replay for sessionID.
func (rr *ReplayRecorder) Replay(sessionID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, ok := rr.replays[sessionID]
	return replay, ok
}

// Save writes the replay to disk and removes it from memory.
func (rr *ReplayRecorder) Save(sessionID string) (string, error) {
	rr.mu.Lock()
	replay, ok := rr.replays[sessionID]
	if !ok {
		rr.mu.Unlock()
		return "", fmt.Errorf("no replay for session %s", sessionID)
	}
	delete(rr.replays, sessionID)
	rr.mu.Unlock()

	path, err := replay.SaveToFile(rr.saveDir)
	if err != nil {
		return "", fmt.Errorf("failed to save replay: %w", err)
	}

	rr.logger.Info("saved replay",
		zap.String("session_id", sessionID),
		zap.Int("frames", replay.Size()),
		zap.String("path", path),
	)
	return path, nil
}

// Load reads a saved replay back from disk.
func (rr *ReplayRecorder) Load(sessionID string) (*Replay, error) {
	return LoadReplayFromFile(rr.saveDir, sessionID)
}

// Discard drops the in-memory replay without saving it.
func (rr *ReplayRecorder) Discard(sessionID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, sessionID)
}
