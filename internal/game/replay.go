package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const replayVersion = 1

// Frame is one recorded step of a game: the action taken and the state after it.
type Frame struct {
	Seq       int                   `json:"seq"`
	Action    string                `json:"action"`
	View      View                  `json:"view"`
	Checksum  SerializationChecksum `json:"checksum"`
	Timestamp time.Time             `json:"timestamp"`
}

// Replay is the ordered list of frames recorded for one session.
type Replay struct {
	SessionID    string
	Frames       []*Frame
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay.
func NewReplay(sessionID string) *Replay {
	return &Replay{
		SessionID: sessionID,
		Frames:    make([]*Frame, 0, 64),
	}
}

// Record appends a frame for action with the given resulting view.
func (r *Replay) Record(action string, v View) error {
	sum, err := v.ComputeChecksum()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.Frames = append(r.Frames, &Frame{
		Seq:       len(r.Frames),
		Action:    action,
		View:      v,
		Checksum:  *sum,
		Timestamp: time.Now(),
	})
	return nil
}

// Start rewinds to the first frame and returns it.
func (r *Replay) Start() *Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
	return r.frameLocked(0)
}

// Current returns the frame under the cursor.
func (r *Replay) Current() *Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.frameLocked(r.CurrentIndex)
}

// Next advances the cursor and returns the new frame, or nil at the end.
func (r *Replay) Next() *Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex+1 < len(r.Frames) {
		r.CurrentIndex++
		return r.Frames[r.CurrentIndex]
	}
	return nil
}

// Previous moves the cursor back and returns that frame, or nil at the start.
func (r *Replay) Previous() *Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.Frames[r.CurrentIndex]
	}
	return nil
}

// Skip moves the cursor by count frames, clamped to the recorded range.
func (r *Replay) Skip(count int) *Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.CurrentIndex + count
	if idx >= len(r.Frames) {
		idx = len(r.Frames) - 1
	}
	if idx < 0 {
		idx = 0
	}

	r.CurrentIndex = idx
	return r.frameLocked(idx)
}

func (r *Replay) frameLocked(index int) *Frame {
	if index >= 0 && index < len(r.Frames) {
		return r.Frames[index]
	}
	return nil
}

// Size returns the number of recorded frames.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Frames)
}

// FrameAt returns the frame at index, or nil.
func (r *Replay) FrameAt(index int) *Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.frameLocked(index)
}

// Snapshot copies the recorded frames.
func (r *Replay) Snapshot() []Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Frame, len(r.Frames))
	for i, f := range r.Frames {
		out[i] = *f
	}
	return out
}

// SaveToFile writes the replay to <directory>/<session>.replay as gzipped gob.
func (r *Replay) SaveToFile(directory string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filename := replayPath(directory, r.SessionID)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gz)

	meta := replayMetadata{
		SessionID:  r.SessionID,
		Timestamp:  time.Now(),
		Version:    replayVersion,
		FrameCount: len(r.Frames),
	}
	if err := encoder.Encode(&meta); err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i, f := range r.Frames {
		if err := encoder.Encode(f); err != nil {
			return "", fmt.Errorf("failed to encode frame %d: %w", i, err)
		}
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed to flush replay: %w", err)
	}
	return filename, nil
}

// LoadReplayFromFile reads a replay written by SaveToFile and verifies
// every frame's checksum.
func LoadReplayFromFile(directory, sessionID string) (*Replay, error) {
	file, err := os.Open(replayPath(directory, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	decoder := gob.NewDecoder(gz)

	var meta replayMetadata
	if err := decoder.Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if meta.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", meta.Version)
	}

	replay := NewReplay(meta.SessionID)
	for i := 0; i < meta.FrameCount; i++ {
		var f Frame
		if err := decoder.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode frame %d: %w", i, err)
		}
		ok, err := f.View.VerifyChecksum(&f.Checksum)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: frame %d", ErrReplayCorrupt, i)
		}
		replay.Frames = append(replay.Frames, &f)
	}

	return replay, nil
}

func replayPath(directory, sessionID string) string {
	return filepath.Join(directory, sessionID+".replay")
}

type replayMetadata struct {
	SessionID  string
	Timestamp  time.Time
	Version    int
	FrameCount int
}
